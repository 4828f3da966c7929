package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, errResp *models.ErrorResponse) {
	sendJSON(w, errResp.StatusCode, models.Result{Success: false, Error: errResp})
}

// SendResult отправляет успешный результат в формате JSON
func SendResult(w http.ResponseWriter, statusCode int, data any) {
	sendJSON(w, statusCode, models.Result{Success: true, Data: data})
}

// SendMessage отправляет успешный результат с сообщением для пользователя
func SendMessage(w http.ResponseWriter, statusCode int, message string, data any) {
	sendJSON(w, statusCode, models.Result{Success: true, Message: message, Data: data})
}

func sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("failed to write response body")
	}
}

// DecodeJSON разбирает тело запроса, запрещая неизвестные поля
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return models.NewValidationError("invalid request body")
	}
	return nil
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > MaxLimit {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [1:%d]", MaxLimit)
		}
	} else {
		limit = DefaultLimit
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// Contains проверяет, есть ли значение в списке допустимых
func Contains[T comparable](values []T, value T) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
