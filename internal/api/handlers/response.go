package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Коды ошибок в ответе
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodePolicy            = "POLICY_VIOLATION"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

const msgInternalError = "внутренняя ошибка сервера"

// SuccessResponse успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

var errEmptyBody = errors.New("empty request body")

// DecodeJSON читает тело запроса в v; пустое тело - ошибка
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// DecodeOptionalJSON как DecodeJSON, но пустое тело допустимо
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	err := DecodeJSON(r, v)
	if errors.Is(err, errEmptyBody) {
		return nil
	}
	return err
}

// RespondJSON отправляет {success:true, data}
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// RespondError отправляет {success:false, message, code}
func RespondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message, Code: code})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeValidation, message)
}

// RespondConflict слот занят; статус 400, отличается от прочих ошибок кодом
func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeConflict, message)
}

func RespondPolicyViolation(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodePolicy, message)
}

func RespondInvalidState(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeInvalidState, message)
}

func RespondInvalidTransition(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, CodeInvalidTransition, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, CodeForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, CodeNotFound, message)
}

// RespondInternalError подробности ошибки остаются в логе
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, CodeInternal, msgInternalError)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
