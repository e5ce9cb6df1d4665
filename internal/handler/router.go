package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/segyhp/debt-tracker/pkg/middleware"

	"go.uber.org/zap"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Debtor       *DebtorHandler
	Debt         *DebtHandler
	Payment      *PaymentHandler
	Collateral   *CollateralHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	Report       *ReportHandler
	Health       *HealthHandler
}

// NewRouter mounts the API under /api/v1. Everything except registration,
// login and the health checks requires a bearer token.
func NewRouter(h Handlers, jwtSecret []byte, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging(logger))

	// Health check
	if h.Health != nil {
		router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(jwtSecret))

	protected.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)

	protected.HandleFunc("/debtors", h.Debtor.Create).Methods(http.MethodPost)
	protected.HandleFunc("/debtors", h.Debtor.List).Methods(http.MethodGet)
	protected.HandleFunc("/debtors/{id}", h.Debtor.Get).Methods(http.MethodGet)
	protected.HandleFunc("/debtors/{id}", h.Debtor.Update).Methods(http.MethodPut)
	protected.HandleFunc("/debtors/{id}", h.Debtor.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/debts", h.Debt.Create).Methods(http.MethodPost)
	protected.HandleFunc("/debts", h.Debt.List).Methods(http.MethodGet)
	protected.HandleFunc("/debts/{id}", h.Debt.Get).Methods(http.MethodGet)
	protected.HandleFunc("/debts/{id}", h.Debt.Update).Methods(http.MethodPut)
	protected.HandleFunc("/debts/{id}", h.Debt.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/debts/{id}/increase-interest", h.Debt.IncreaseInterest).Methods(http.MethodPatch)
	protected.HandleFunc("/debts/{id}/mark-paid", h.Debt.MarkPaid).Methods(http.MethodPatch)

	protected.HandleFunc("/payments", h.Payment.Create).Methods(http.MethodPost)
	protected.HandleFunc("/payments", h.Payment.ListByDebt).Methods(http.MethodGet)
	protected.HandleFunc("/payments/{id}", h.Payment.Get).Methods(http.MethodGet)
	protected.HandleFunc("/payments/{id}", h.Payment.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/collaterals", h.Collateral.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/collaterals", h.Collateral.ListByDebt).Methods(http.MethodGet)
	protected.HandleFunc("/collaterals/{id}", h.Collateral.Get).Methods(http.MethodGet)
	protected.HandleFunc("/collaterals/{id}", h.Collateral.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/collaterals/{id}/download", h.Collateral.Download).Methods(http.MethodGet)

	protected.HandleFunc("/notifications", h.Notification.List).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/send-manual/{debtId}", h.Notification.SendManual).Methods(http.MethodPost)
	protected.HandleFunc("/notifications/{id}", h.Notification.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/dashboard/stats", h.Dashboard.Stats).Methods(http.MethodGet)
	protected.HandleFunc("/reports/debts.xlsx", h.Report.Debts).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests never reach route matching.
	return middleware.CORS(router)
}
