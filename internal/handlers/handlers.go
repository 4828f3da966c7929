package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/senyabanana/common-elements/internal/middleware"
	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/utils"

	"github.com/rs/zerolog"
)

// Base - общие зависимости обработчиков.
type Base struct {
	Logger   zerolog.Logger
	Timeout  time.Duration
	LoginURL string
}

// withTimeout возвращает контекст запроса с таймаутом и пользователя из него.
func (b Base) withTimeout(r *http.Request) (context.Context, context.CancelFunc, models.Actor) {
	ctx, cancel := context.WithTimeout(r.Context(), b.Timeout)
	return ctx, cancel, middleware.ActorFromContext(r.Context())
}

// handleError переводит ошибку сервиса в HTTP-ответ.
func (b Base) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrUnauthenticated) {
		http.Redirect(w, r, b.LoginURL, http.StatusSeeOther)
		return
	}

	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.StatusCode >= http.StatusInternalServerError {
			b.Logger.Error().Err(errResp.Err).Str("method", r.Method).Str("path", r.URL.Path).Msg(errResp.Message)
		} else {
			b.Logger.Warn().Str("method", r.Method).Str("path", r.URL.Path).Str("type", string(errResp.Type)).Msg(errResp.Message)
		}
		utils.SendErrorResponse(w, errResp)
		return
	}

	b.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unexpected error")
	utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusInternalServerError, models.UnknownError,
		"An unexpected error occurred. Please try again."))
}
