package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/utils"

	"github.com/rs/zerolog/log"
)

// PingHandler обрабатывает GET запрос к /api/ping
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "ok"); err != nil {
		log.Error().Err(err).Msg("failed to write ping response")
	}
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler возвращает обработчик GET /api/health
func HealthHandler(db Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusServiceUnavailable, models.DatabaseError, "database is unavailable"))
			return
		}
		utils.SendResult(w, http.StatusOK, map[string]string{"database": "ok"})
	}
}
