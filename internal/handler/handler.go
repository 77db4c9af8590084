package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/budgetwise/forecast-service/internal/chart"
	"github.com/budgetwise/forecast-service/internal/forecast"
	"github.com/budgetwise/forecast-service/internal/middleware"
	"github.com/budgetwise/forecast-service/internal/narrative"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/budgetwise/forecast-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc        *service.Service
	forecaster *forecast.Forecaster
	narrator   *narrative.Narrator
	log        *logrus.Logger
}

func NewHandler(svc *service.Service, forecaster *forecast.Forecaster, narrator *narrative.Narrator, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, forecaster: forecaster, narrator: narrator, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// AddTransaction records a transaction for the authenticated user
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.Principal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var in service.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := h.svc.AddTransaction(r.Context(), email, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// ExpenseTrend returns the current month total and next month projection
func (h *Handler) ExpenseTrend(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.Principal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	p, err := h.forecaster.ComputeExpensePrediction(r.Context(), email)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ExpenseTrendSVG renders the expense trend as an SVG bar chart
func (h *Handler) ExpenseTrendSVG(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.Principal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	p, err := h.forecaster.ComputeExpensePrediction(r.Context(), email)
	if err != nil {
		h.fail(w, err)
		return
	}
	svg, err := chart.RenderSVG(p)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

// ExpenseRegression returns a least-squares trend over recent months
func (h *Handler) ExpenseRegression(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.Principal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}
	trend, err := h.forecaster.ComputeRegressionTrend(r.Context(), email, months)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// NextMonthPredictionChat returns a chat message about next month's expenses
func (h *Handler) NextMonthPredictionChat(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.Principal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	msg, err := h.narrator.NextMonthMessage(r.Context(), email)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"predictionMessage": msg})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps domain errors onto HTTP status codes
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.log.Errorf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
