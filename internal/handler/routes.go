package handler

import (
	"net/http"

	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/budgetwise/forecast-service/internal/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint onto a mux router. Request logging wraps the
// router so unmatched paths and 405s are logged too.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))
	api.HandleFunc("/transactions", h.AddTransaction).Methods(http.MethodPost)
	api.HandleFunc("/ai/expense-trend", h.ExpenseTrend).Methods(http.MethodGet)
	api.HandleFunc("/ai/expense-trend.svg", h.ExpenseTrendSVG).Methods(http.MethodGet)
	api.HandleFunc("/ai/expense-regression", h.ExpenseRegression).Methods(http.MethodGet)
	api.HandleFunc("/ai/next-month-prediction-chat", h.NextMonthPredictionChat).Methods(http.MethodGet)

	return middleware.LoggingMiddleware(h.log)(r)
}
