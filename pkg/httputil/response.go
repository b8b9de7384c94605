package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	api_models "legalchat-backend/internal/models"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; chat messages are the largest payloads.
const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already written; nothing left but to log.
		zap.L().Warn("Error encoding JSON response", zap.Error(err))
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, api_models.ErrorResponse{Error: message})
}

// DecodeJSON reads a bounded JSON body into dst. An empty body is an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}
