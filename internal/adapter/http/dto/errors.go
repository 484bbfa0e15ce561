package dto

import (
	"encoding/json"
	"net/http"

	"github.com/iho/budgetbridge/internal/domain"
)

// ErrorBody is the client-facing error payload.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId"`
	Details   map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the envelope for all non-2xx responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes an error envelope. Details are rendered for client
// errors only; causes never leave the server.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	de := domain.AsError(err)
	status := StatusForCode(de.Code)

	body := ErrorBody{
		Code:      string(de.Code),
		Message:   de.Message,
		RequestID: requestID,
	}
	if status >= 400 && status < 500 {
		body.Details = de.Details
	}

	WriteJSON(w, status, ErrorResponse{Error: body})
}

// StatusForCode maps a domain condition code to an HTTP status.
func StatusForCode(code domain.Code) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
