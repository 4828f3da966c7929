package handlers

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/services"
	"github.com/senyabanana/common-elements/internal/utils"
)

// ApprovalHandler - структура для обработки HTTP-запросов к заявкам подрядчиков.
type ApprovalHandler struct {
	Base
	Service *services.ApprovalService
}

// NewApprovalHandler создаёт новый экземпляр ApprovalHandler.
func NewApprovalHandler(service *services.ApprovalService, base Base) *ApprovalHandler {
	return &ApprovalHandler{Base: base, Service: service}
}

// RequestToBid обрабатывает заявку подрядчика на участие в закрытом RFP.
func (h *ApprovalHandler) RequestToBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	approval, err := h.Service.RequestToBid(ctx, actor, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendMessage(w, http.StatusCreated, "Request submitted successfully", approval)
}

// ResolveApproval обрабатывает решение автора RFP по заявке.
func (h *ApprovalHandler) ResolveApproval(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	decision := r.URL.Query().Get("decision")
	if decision == "" {
		utils.SendErrorResponse(w, models.NewValidationError("decision is required"))
		return
	}

	approval, err := h.Service.ResolveApproval(ctx, actor, r.PathValue("approvalId"), models.ApprovalDecision(decision))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, approval)
}

// GetPendingApprovals обрабатывает запросы для получения ожидающих заявок.
func (h *ApprovalHandler) GetPendingApprovals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	approvals, err := h.Service.GetPendingApprovals(ctx, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, approvals)
}

// GetRFPApprovals обрабатывает запросы для получения заявок по RFP.
func (h *ApprovalHandler) GetRFPApprovals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	approvals, err := h.Service.GetRFPApprovals(ctx, actor, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, approvals)
}
