package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finsight/invoice-analytics/internal/analytics"
	"github.com/finsight/invoice-analytics/internal/models"
	"github.com/finsight/invoice-analytics/internal/repository"
	"github.com/finsight/invoice-analytics/internal/service"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// asOf resolves the reference time for time-sensitive analytics. The
// engine never samples a clock itself; an explicit as_of query parameter
// allows deterministic replays, otherwise the current time is fixed here
// at the edge.
func asOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(analytics.DateLayout, raw)
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateInvoice handles invoice creation
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID  string  `json:"client_id"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		IssueDate string  `json:"issue_date"`
		DueDate   string  `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.CreateInvoice(r.Context(), req.ClientID, req.Amount, req.Currency, req.IssueDate, req.DueDate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// ListInvoices returns the user's invoices, optionally bounded by
// from/to issue dates
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, err)
		return
	}
	if invoices == nil {
		invoices = []models.InvoiceRecord{}
	}
	respondJSON(w, http.StatusOK, invoices)
}

// RecordPayment handles payment registration
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID string  `json:"invoice_id"`
		Amount    float64 `json:"amount"`
		Date      string  `json:"date"`
		Method    string  `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payment, err := h.svc.RecordPayment(r.Context(), req.InvoiceID, req.Amount, req.Date, req.Method)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// ListPayments returns the user's payments, optionally bounded by from/to
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, err)
		return
	}
	if payments == nil {
		payments = []models.PaymentRecord{}
	}
	respondJSON(w, http.StatusOK, payments)
}

// Summary returns the aggregated financial summary for the optional range
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// InvoiceRisk returns the risk assessment for a single invoice
func (h *Handler) InvoiceRisk(w http.ResponseWriter, r *http.Request) {
	now, err := asOf(r)
	if err != nil {
		http.Error(w, "Invalid as_of date", http.StatusBadRequest)
		return
	}

	assessment, err := h.svc.InvoiceRisk(r.Context(), mux.Vars(r)["id"], now)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assessment)
}

// Forecast returns the payment trend forecast. An empty series means the
// history is too thin to forecast.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	now, err := asOf(r)
	if err != nil {
		http.Error(w, "Invalid as_of date", http.StatusBadRequest)
		return
	}

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid months parameter", http.StatusBadRequest)
			return
		}
	}

	series, err := h.svc.PaymentForecast(r.Context(), months, now)
	if err != nil {
		respondError(w, err)
		return
	}
	if series == nil {
		series = []models.ForecastPoint{}
	}
	respondJSON(w, http.StatusOK, series)
}
