package handlers

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/services"
	"github.com/senyabanana/common-elements/internal/utils"
)

// RFPHandler - структура для обработки HTTP-запросов к RFP.
type RFPHandler struct {
	Base
	Service *services.RFPService
	Access  *services.AccessService
}

// NewRFPHandler создаёт новый экземпляр RFPHandler.
func NewRFPHandler(service *services.RFPService, access *services.AccessService, base Base) *RFPHandler {
	return &RFPHandler{Base: base, Service: service, Access: access}
}

// GetRFPs обрабатывает запросы для получения списка RFP.
func (h *RFPHandler) GetRFPs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	query := r.URL.Query()
	limit, offset, err := utils.ParseLimitOffset(query.Get("limit"), query.Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, models.NewValidationError(err.Error()))
		return
	}

	list, err := h.Service.GetRFPs(ctx, models.RFPFilter{
		Status:     models.RFPStatus(query.Get("status")),
		Visibility: models.RFPVisibility(query.Get("visibility")),
		Categories: query["category"],
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, list)
}

// CreateRFP обрабатывает запросы для создания RFP.
func (h *RFPHandler) CreateRFP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var rfpReq models.RFPRequest
	if err := utils.DecodeJSON(r, &rfpReq); err != nil {
		h.handleError(w, r, err)
		return
	}

	rfp, err := h.Service.CreateRFP(ctx, actor, rfpReq)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusCreated, rfp)
}

// GetUserRFPs обрабатывает запросы для получения RFP пользователя.
func (h *RFPHandler) GetUserRFPs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, models.NewValidationError(err.Error()))
		return
	}

	list, err := h.Service.GetUserRFPs(ctx, actor, limit, offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, list)
}

// GetRFP обрабатывает запросы для получения RFP.
func (h *RFPHandler) GetRFP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, _ := h.withTimeout(r)
	defer cancel()

	rfp, err := h.Service.GetRFP(ctx, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, rfp)
}

// GetAccess обрабатывает запросы для проверки доступа к закрытой части RFP.
func (h *RFPHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	decision, err := h.Access.CanViewPrivateDetails(ctx, actor, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, decision)
}

// GetPrivateDetails обрабатывает запросы для получения закрытой части RFP.
func (h *RFPHandler) GetPrivateDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	details, err := h.Access.GetPrivateDetails(ctx, actor, r.PathValue("rfpId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, details)
}

// UpdateRFPStatus обрабатывает запросы для изменения статуса RFP.
func (h *RFPHandler) UpdateRFPStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	status := r.URL.Query().Get("status")
	if status == "" {
		utils.SendErrorResponse(w, models.NewValidationError("status is required"))
		return
	}

	rfp, err := h.Service.UpdateRFPStatus(ctx, actor, r.PathValue("rfpId"), models.RFPStatus(status))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, rfp)
}
