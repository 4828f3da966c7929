package handlers

import (
	"net/http"

	"github.com/senyabanana/common-elements/internal/middleware"
	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/notify"
	"github.com/senyabanana/common-elements/internal/services"
	"github.com/senyabanana/common-elements/internal/utils"
)

// MessageHandler - структура для обработки HTTP-запросов к переписке.
type MessageHandler struct {
	Base
	Service *services.MessageService
	Hub     *notify.Hub
}

// NewMessageHandler создаёт новый экземпляр MessageHandler.
func NewMessageHandler(service *services.MessageService, hub *notify.Hub, base Base) *MessageHandler {
	return &MessageHandler{Base: base, Service: service, Hub: hub}
}

// GetThread обрабатывает запросы для получения переписки по RFP.
func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	thread, err := h.Service.GetThread(ctx, actor, r.PathValue("rfpId"), r.URL.Query().Get("with"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, thread)
}

// SendMessage обрабатывает запросы для отправки сообщения.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	var msgReq models.MessageRequest
	if err := utils.DecodeJSON(r, &msgReq); err != nil {
		h.handleError(w, r, err)
		return
	}

	msg, err := h.Service.SendMessage(ctx, actor, r.PathValue("rfpId"), msgReq)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusCreated, msg)
}

// MarkAsRead обрабатывает запросы для отметки сообщений прочитанными.
func (h *MessageHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	marked, err := h.Service.MarkAsRead(ctx, actor, r.PathValue("rfpId"), r.URL.Query().Get("sender"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, map[string]int64{"marked": marked})
}

// GetUnread обрабатывает запросы для получения непрочитанных сообщений.
func (h *MessageHandler) GetUnread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, actor := h.withTimeout(r)
	defer cancel()

	unread, err := h.Service.GetUnread(ctx, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	utils.SendResult(w, http.StatusOK, unread)
}

// ServeWS подключает пользователя к событиям в реальном времени.
func (h *MessageHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.IsAuthenticated() {
		h.handleError(w, r, models.ErrUnauthenticated)
		return
	}
	if err := h.Hub.ServeWS(w, r, actor.UserID); err != nil {
		h.Logger.Warn().Err(err).Str("userId", actor.UserID).Msg("websocket upgrade failed")
	}
}
