package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/service"
	"github.com/crediario/crediario-backend/internal/testutil"
)

func newPlanHandler() (*PlanHandler, *testutil.MockPlanRepository) {
	planRepo := testutil.NewMockPlanRepository()
	return NewPlanHandler(service.NewPlanService(planRepo)), planRepo
}

func TestCreatePlan_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newPlanHandler()

	reqBody := `{
		"name": "12x Eletrodomesticos",
		"numberOfInstallments": 12,
		"annualInterestRate": "12.00",
		"downPaymentPercent": "10.00",
		"processingFee": "50.00",
		"minAmount": "100.00",
		"maxAmount": "100000.00",
		"requiresGuarantor": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.CreatePlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response domain.InstallmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "12x Eletrodomesticos" {
		t.Errorf("Expected plan name '12x Eletrodomesticos', got %s", response.Name)
	}
	if !response.Active {
		t.Error("Expected new plan to be active")
	}
	if !response.RequiresGuarantor {
		t.Error("Expected plan to require a guarantor")
	}
}

func TestCreatePlan_InvalidDecimal(t *testing.T) {
	e := echo.New()
	handler, _ := newPlanHandler()

	reqBody := `{
		"name": "Bad Plan",
		"numberOfInstallments": 12,
		"annualInterestRate": "not-a-number",
		"downPaymentPercent": "10.00",
		"processingFee": "0",
		"minAmount": "100.00",
		"maxAmount": "1000.00"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.CreatePlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "annualInterestRate" {
		t.Errorf("Expected field error on annualInterestRate, got %+v", problem.Errors)
	}
}

func TestCreatePlan_EmptyName(t *testing.T) {
	e := echo.New()
	handler, _ := newPlanHandler()

	reqBody := `{
		"name": "",
		"numberOfInstallments": 12,
		"annualInterestRate": "12.00",
		"downPaymentPercent": "10.00",
		"processingFee": "0",
		"minAmount": "100.00",
		"maxAmount": "1000.00"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.CreatePlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetPlans_ActiveFilter(t *testing.T) {
	e := echo.New()
	handler, planRepo := newPlanHandler()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, StoreID: 1, Name: "Active Plan",
		NumberOfInstallments: 6,
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(1000),
		Active:               true,
	})
	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 2, StoreID: 1, Name: "Retired Plan",
		NumberOfInstallments: 6,
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(1000),
		Active:               false,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans?active=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.GetPlans(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var plans []*domain.InstallmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plans); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(plans) != 1 {
		t.Fatalf("Expected 1 active plan, got %d", len(plans))
	}
	if plans[0].Name != "Active Plan" {
		t.Errorf("Expected 'Active Plan', got %s", plans[0].Name)
	}
}

func TestGetPlan_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newPlanHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.GetPlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeactivatePlan_Success(t *testing.T) {
	e := echo.New()
	handler, planRepo := newPlanHandler()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, StoreID: 1, Name: "Plan",
		NumberOfInstallments: 6,
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(1000),
		Active:               true,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/plans/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := handler.DeactivatePlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	plan, err := planRepo.GetByID(1, 1)
	if err != nil {
		t.Fatalf("Expected plan to still exist, got %v", err)
	}
	if plan.Active {
		t.Error("Expected plan to be deactivated")
	}
}

func TestCreatePlan_NoStore(t *testing.T) {
	e := echo.New()
	handler, _ := newPlanHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreatePlan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
