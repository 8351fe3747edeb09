// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"auction-house/internal/util"
)

// DefaultTimeout bounds request handling in the router middleware.
const DefaultTimeout = 15 * time.Second

func respondWithJSON(logger *zap.Logger, w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps the service error taxonomy onto HTTP status codes.
func respondWithError(logger *zap.Logger, w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrValidation), util.IsError(err, util.ErrInvalidBid):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = err.Error()
	case util.IsError(err, util.ErrInvalidState):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds), util.IsError(err, util.ErrInsufficientAvailableBalance):
		statusCode = http.StatusPaymentRequired
		message = err.Error()
	case util.IsError(err, util.ErrLimitExceeded):
		statusCode = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		logger.Error("unhandled service error", zap.Error(err))
	}

	respondWithJSON(logger, w, statusCode, map[string]string{"error": message})
}
