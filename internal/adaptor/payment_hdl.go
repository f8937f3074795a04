package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"learnx/internal/dto/request"
	"learnx/internal/usecase"
	"learnx/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	access  usecase.AccessService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, access usecase.AccessService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		access:  access,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Create handles POST /api/payments (protected). Starts a deferred payment
// that must be self-reported and then approved by an admin.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	payment, err := h.service.CreateDeferred(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// CreateWalletOrder handles POST /api/payments/wallet/order (protected).
func (h *PaymentHandler) CreateWalletOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateWalletOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	order, err := h.service.CreateWalletOrder(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create wallet order")
		return
	}

	utils.ResponseCreated(w, "success", order)
}

// SelfReport handles POST /api/payments/verify (protected). The payer
// submits the bank reference for a deferred payment.
func (h *PaymentHandler) SelfReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.SelfReport(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// InstantVerify handles POST /api/payments/wallet/verify (protected).
func (h *PaymentHandler) InstantVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.WalletVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.InstantVerify(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "verify wallet payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// GetStatus handles GET /api/payments/status/{transactionId} (protected).
func (h *PaymentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	transactionID := chi.URLParam(r, "transactionId")
	if transactionID == "" {
		utils.ResponseBadRequest(w, "Transaction ID is required", nil)
		return
	}

	payment, err := h.service.GetStatus(r.Context(), userID, transactionID)
	if err != nil {
		respondServiceError(w, h.log, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// GetHistory handles GET /api/payments/history (protected).
func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	history, err := h.service.GetHistory(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.log, err, "get payment history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

// Receipt handles GET /api/payments/receipt/{transactionId} (protected).
// Responds with a PDF, not the JSON envelope.
func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	transactionID := chi.URLParam(r, "transactionId")
	if transactionID == "" {
		utils.ResponseBadRequest(w, "Transaction ID is required", nil)
		return
	}

	pdf, err := h.service.Receipt(r.Context(), userID, transactionID)
	if err != nil {
		respondServiceError(w, h.log, err, "generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%s.pdf", transactionID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log.Warn("Failed to write receipt response", zap.Error(err))
	}
}

// CheckAccess handles GET /api/payments/access/{courseId} (protected).
func (h *PaymentHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid course ID", nil)
		return
	}

	decision, err := h.access.Evaluate(r.Context(), userID, courseID)
	if err != nil {
		respondServiceError(w, h.log, err, "check course access")
		return
	}

	utils.ResponseSuccess(w, "success", decision)
}

// ==================== ADMIN METHODS ====================

// Decide handles PUT /api/admin/payments/{id}/verify (admin only). The body
// carries the approve or reject decision.
func (h *PaymentHandler) Decide(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	var req request.AdminDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	payment, err := h.service.Decide(r.Context(), isAdminRequest(r), paymentID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "decide payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// ListAll handles GET /api/admin/payments (admin only). Supports an
// optional status query filter.
func (h *PaymentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	payments, err := h.service.ListAll(r.Context(), isAdminRequest(r), query.Get("status"), req)
	if err != nil {
		respondServiceError(w, h.log, err, "list payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// Export handles GET /api/admin/payments/export (admin only). Responds with
// an XLSX workbook.
func (h *PaymentHandler) Export(w http.ResponseWriter, r *http.Request) {
	workbook, err := h.service.ExportAll(r.Context(), isAdminRequest(r))
	if err != nil {
		respondServiceError(w, h.log, err, "export payments")
		return
	}

	filename := fmt.Sprintf("payments_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		h.log.Warn("Failed to write export response", zap.Error(err))
	}
}
