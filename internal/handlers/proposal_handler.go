package handlers

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/services"
	"github.com/senyabanana/common-elements/internal/utils"
)

// ProposalHandler - структура для обработки HTTP-запросов к предложениям.
type ProposalHandler struct {
	Base
	Service *services.ProposalService
}

// NewProposalHandler создаёт новый экземпляр ProposalHandler.
func NewProposalHandler(service *services.ProposalService, base Base) *ProposalHandler {
	return &ProposalHandler{Base: base, Service: service}
}

// CreateProposal обрабатывает запросы для создания предложения.
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var proposalReq models.ProposalRequest
	if err := utils.DecodeJSON(r, &proposalReq); err != nil {
		h.handleError(w, r, err)
		return
	}

	proposal, err := h.Service.CreateProposal(ctx, actor, proposalReq)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusCreated, proposal)
}

// GetRFPProposals обрабатывает запросы для получения предложений по RFP.
func (h *ProposalHandler) GetRFPProposals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	proposals, err := h.Service.GetRFPProposals(ctx, actor, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, proposals)
}

// GetProposal обрабатывает запросы для получения предложения.
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	proposal, err := h.Service.GetProposal(ctx, actor, r.PathValue("proposalId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, proposal)
}

// EditProposal обрабатывает запросы для изменения предложения.
func (h *ProposalHandler) EditProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var update models.ProposalUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		h.handleError(w, r, err)
		return
	}

	proposal, err := h.Service.UpdateProposal(ctx, actor, r.PathValue("proposalId"), update)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendMessage(w, http.StatusOK, "Proposal updated successfully", proposal)
}

// UpdateProposalStatus обрабатывает запросы для изменения статуса предложения.
func (h *ProposalHandler) UpdateProposalStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	status := r.URL.Query().Get("status")
	if status == "" {
		utils.SendErrorResponse(w, models.NewValidationError("status is required"))
		return
	}

	proposal, err := h.Service.UpdateProposalStatus(ctx, actor, r.PathValue("proposalId"), models.ProposalStatus(status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, proposal)
}
