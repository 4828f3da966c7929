package models

import "net/http"

type ErrorType string // Категория ошибки

const (
	ValidationError    ErrorType = "validation"    // Некорректный ввод или нарушение бизнес-правила
	AuthorizationError ErrorType = "authorization" // Недостаточно прав
	DatabaseError      ErrorType = "database"      // Ошибка хранилища
	UnknownError       ErrorType = "unknown"       // Непредвиденная ошибка
)

// FieldIssue описывает ошибку валидации конкретного поля.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse описывает ошибку с кодом, типом и сообщением.
type ErrorResponse struct {
	StatusCode int          `json:"-"`
	Type       ErrorType    `json:"type"`
	Message    string       `json:"message"`
	Issues     []FieldIssue `json:"issues,omitempty"`
	Err        error        `json:"-"`
}

// NewErrorResponse создает новую ошибку с кодом, типом и сообщением.
func NewErrorResponse(statusCode int, errType ErrorType, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Type:       errType,
		Message:    message}
}

// NewValidationError создает ошибку валидации.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, ValidationError, message)
}

// NewNotFoundError создает ошибку валидации для отсутствующей записи.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, ValidationError, message)
}

// NewConflictError создает ошибку валидации для дубликатов и завершенных состояний.
func NewConflictError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, ValidationError, message)
}

// NewAuthorizationError создает ошибку доступа.
func NewAuthorizationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, AuthorizationError, message)
}

// NewDatabaseError создает ошибку хранилища. Причина не попадает в ответ клиенту.
func NewDatabaseError(message string, err error) *ErrorResponse {
	errResp := NewErrorResponse(http.StatusInternalServerError, DatabaseError, message)
	errResp.Err = err
	return errResp
}

// NewFieldValidationError создает ошибку валидации с ошибками по полям.
func NewFieldValidationError(issues []FieldIssue) *ErrorResponse {
	errResp := NewValidationError("Please check your input and try again.")
	errResp.Issues = issues
	return errResp
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// Result - конверт ответа API.
type Result struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}
