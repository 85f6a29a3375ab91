package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the JSON error body shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

// writeAppError maps an apperrors.Kind to the HTTP status this contract
// uses, falling back to 500 for anything that isn't the closed taxonomy.
func writeAppError(w http.ResponseWriter, log *zap.Logger, err error) {
	e, ok := apperrors.As(err)
	if !ok {
		log.Error("unclassified error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	status := statusFor(e.Kind)
	if status >= 500 {
		log.Error("request failed", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
	writeError(w, status, string(e.Kind), e.Message)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInputInvalid:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindEmbeddingFailed, apperrors.KindRetrievalFailed:
		return http.StatusBadGateway
	case apperrors.KindGenerationFailed:
		return http.StatusGatewayTimeout
	case apperrors.KindPersistenceFailed:
		return http.StatusInternalServerError
	case apperrors.KindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
