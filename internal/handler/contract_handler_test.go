package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/crediario/crediario-backend/internal/domain"
	"github.com/crediario/crediario-backend/internal/service"
	"github.com/crediario/crediario-backend/internal/testutil"
)

type contractHandlerFixture struct {
	handler      *ContractHandler
	contractRepo *testutil.MockContractRepository
	paymentRepo  *testutil.MockPaymentRepository
	planRepo     *testutil.MockPlanRepository
	customerRepo *testutil.MockCustomerRepository
}

func newContractHandlerFixture() *contractHandlerFixture {
	contractRepo := testutil.NewMockContractRepository()
	paymentRepo := testutil.NewMockPaymentRepository()
	planRepo := testutil.NewMockPlanRepository()
	customerRepo := testutil.NewMockCustomerRepository()

	svc := service.NewContractService(
		nil,
		contractRepo,
		paymentRepo,
		planRepo,
		customerRepo,
		domain.DefaultPolicy{
			MaxOverdueInstallments: 3,
			MaxOverdueFraction:     decimal.NewFromFloat(0.25),
			ReinstateCured:         true,
		},
		domain.LateFeePolicy{
			DailyRatePercent: decimal.NewFromFloat(0.1),
			CapPercent:       decimal.NewFromInt(10),
		},
	)

	return &contractHandlerFixture{
		handler:      NewContractHandler(svc),
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		planRepo:     planRepo,
		customerRepo: customerRepo,
	}
}

func (f *contractHandlerFixture) addStandardPlan() {
	f.planRepo.AddPlan(&domain.InstallmentPlan{
		ID:                   1,
		StoreID:              1,
		Name:                 "12x Standard",
		NumberOfInstallments: 12,
		AnnualInterestRate:   decimal.NewFromInt(12),
		DownPaymentPercent:   decimal.NewFromInt(10),
		ProcessingFee:        decimal.NewFromInt(50),
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(100000),
		Active:               true,
	})
}

func TestPreviewContract_Success(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()
	f.addStandardPlan()

	reqBody := `{"planId": 1, "totalAmount": "100000.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/preview", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.PreviewContract(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var preview service.ContractPreview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if preview.DownPayment.StringFixed(2) != "10000.00" {
		t.Errorf("Expected down payment 10000.00, got %s", preview.DownPayment.StringFixed(2))
	}
	if preview.FinancedAmount.StringFixed(2) != "90000.00" {
		t.Errorf("Expected financed amount 90000.00, got %s", preview.FinancedAmount.StringFixed(2))
	}
	if preview.MonthlyPayment.StringFixed(2) != "7996.39" {
		t.Errorf("Expected monthly payment 7996.39, got %s", preview.MonthlyPayment.StringFixed(2))
	}
	if preview.DueAtSigning.StringFixed(2) != "10050.00" {
		t.Errorf("Expected due at signing 10050.00, got %s", preview.DueAtSigning.StringFixed(2))
	}
}

func TestPreviewContract_BadAmount(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()
	f.addStandardPlan()

	reqBody := `{"planId": 1, "totalAmount": "abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/preview", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.PreviewContract(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestPreviewContract_PlanNotFound(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()

	reqBody := `{"planId": 42, "totalAmount": "1000.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/preview", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.PreviewContract(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestCreateContract_GuarantorRequired(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()
	f.planRepo.AddPlan(&domain.InstallmentPlan{
		ID:                   1,
		StoreID:              1,
		Name:                 "Guaranteed",
		NumberOfInstallments: 6,
		AnnualInterestRate:   decimal.NewFromInt(12),
		DownPaymentPercent:   decimal.Zero,
		ProcessingFee:        decimal.Zero,
		MinAmount:            decimal.NewFromInt(100),
		MaxAmount:            decimal.NewFromInt(100000),
		RequiresGuarantor:    true,
		Active:               true,
	})

	customerID := "2b1f9c94-3b14-4c43-9f3e-111111111111"
	f.customerRepo.AddCustomer(&domain.Customer{
		ID:      uuid.MustParse(customerID),
		StoreID: 1,
		Name:    "Maria Silva",
	})

	reqBody := `{"customerId": "` + customerID + `", "planId": 1, "totalAmount": "1000.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.CreateContract(c)
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
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "guarantorName" {
		t.Errorf("Expected field error on guarantorName, got %+v", problem.Errors)
	}
}

func TestCollectInstallment_DraftContract(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()

	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusDraft,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/1/installments/1/collect", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "number")
	c.SetParamValues("1", "1")

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.CollectInstallment(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestCollectInstallment_AlreadyPaid(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()

	f.contractRepo.AddContract(&domain.InstallmentContract{
		ID:      1,
		StoreID: 1,
		Status:  domain.ContractStatusActive,
	})
	paidAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f.paymentRepo.AddPayment(&domain.InstallmentPayment{
		ID:                1,
		ContractID:        1,
		InstallmentNumber: 1,
		Amount:            decimal.NewFromInt(100),
		DueDate:           paidAt,
		Paid:              true,
		PaidDate:          &paidAt,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/1/installments/1/collect", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "number")
	c.SetParamValues("1", "1")

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.CollectInstallment(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestGetContract_NotFound(t *testing.T) {
	e := echo.New()
	f := newContractHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	setupAuthContextWithStore(c, "auth0|test", "test@example.com", "Test User", "", 1)

	err := f.handler.GetContract(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
