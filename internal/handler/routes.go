package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/crediario/crediario-backend/internal/middleware"
)

// Handlers bundles everything RegisterRoutes needs
type Handlers struct {
	Auth      *AuthHandler
	Plan      *PlanHandler
	Customer  *CustomerHandler
	Contract  *ContractHandler
	Dashboard *DashboardHandler
	APIToken  *APITokenHandler
	Document  *DocumentHandler
	Overdue   *OverdueHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Data routes accept either a JWT or
// an API token; token management and auth routes are JWT-only.
func RegisterRoutes(e *echo.Echo, dualAuth *middleware.DualAuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api/v1")

	// Auth routes (JWT only)
	auth := api.Group("/auth")
	auth.Use(dualAuth.JWTOnly())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	// Rate limiting reads the token identity set by dual auth, so it must
	// run after it on every group that accepts API tokens
	rateLimit := middleware.RateLimitMiddleware(rateLimiter)

	// Plan routes
	plans := api.Group("/plans")
	plans.Use(dualAuth.Authenticate(), rateLimit)
	plans.POST("", h.Plan.CreatePlan)
	plans.GET("", h.Plan.GetPlans)
	plans.GET("/:id", h.Plan.GetPlan)
	plans.PUT("/:id", h.Plan.UpdatePlan)
	plans.DELETE("/:id", h.Plan.DeactivatePlan)

	// Customer routes
	customers := api.Group("/customers")
	customers.Use(dualAuth.Authenticate(), rateLimit)
	customers.POST("", h.Customer.CreateCustomer)
	customers.GET("", h.Customer.GetCustomers)
	customers.GET("/:id", h.Customer.GetCustomer)
	customers.PUT("/:id", h.Customer.UpdateCustomer)
	customers.GET("/:id/contracts", h.Customer.GetCustomerContracts)

	// Contract routes
	contracts := api.Group("/contracts")
	contracts.Use(dualAuth.Authenticate(), rateLimit)
	contracts.POST("/preview", h.Contract.PreviewContract)
	contracts.POST("", h.Contract.CreateContract)
	contracts.GET("", h.Contract.GetContracts)
	contracts.GET("/:id", h.Contract.GetContract)
	contracts.POST("/:id/activate", h.Contract.ActivateContract)
	contracts.POST("/:id/cancel", h.Contract.CancelContract)
	contracts.GET("/:id/installments", h.Contract.GetInstallments)
	contracts.POST("/:id/installments/:number/collect", h.Contract.CollectInstallment)

	// Contract document routes
	if h.Document != nil {
		contracts.POST("/:id/documents", h.Document.UploadDocument)
		contracts.GET("/:id/documents/:documentId/url", h.Document.GetDocumentURL)
		contracts.DELETE("/:id/documents/:documentId", h.Document.DeleteDocument)
	}

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Use(dualAuth.Authenticate(), rateLimit)
	dashboard.GET("/summary", h.Dashboard.GetSummary)
	dashboard.POST("/summary/refresh", h.Dashboard.RefreshSummary)

	// Overdue sweep (JWT only, manual trigger)
	overdue := api.Group("/overdue")
	overdue.Use(dualAuth.JWTOnly())
	overdue.POST("/sweep", h.Overdue.RunSweep)

	// API token management (JWT only; tokens cannot mint tokens)
	apiTokens := api.Group("/api-tokens")
	apiTokens.Use(dualAuth.JWTOnly())
	apiTokens.POST("", h.APIToken.CreateToken)
	apiTokens.GET("", h.APIToken.ListTokens)
	apiTokens.DELETE("/:id", h.APIToken.RevokeToken)

	// WebSocket endpoint (token validated from query param)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}
}
