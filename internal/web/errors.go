package web

// errors.go converts core errors into user-visible JSON responses. Every
// failure is caught here and answered with a message, an action hint and a
// support code; nothing is fatal to the running process.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/VinayRevanuruBB/Vin-Decode/internal/core"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/logging"
)

// ErrorResponse is the JSON body for failed API calls. UpstreamStatus and
// DirectURL are set when the document endpoint refused the fetch, so the
// frontend can offer the open-in-new-tab fallback.
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	Action         string `json:"action,omitempty"`
	Code           string `json:"code"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	DirectURL      string `json:"directUrl,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}

	var fetchFailed *core.FetchFailedError
	if errors.As(err, &fetchFailed) {
		resp.UpstreamStatus = fetchFailed.Status
		resp.DirectURL = fetchFailed.URL
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	var fetchFailed *core.FetchFailedError
	var listingErr *core.ListingFetchError

	switch {
	case errors.Is(err, core.ErrInvalidSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoYear),
		errors.Is(err, core.ErrNoMake),
		errors.Is(err, core.ErrNoVersion):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchFailed), errors.As(err, &listingErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v and writes it to w.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; just record it.
		slog.Error("json encode error", "error", err)
	}
}
