package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"postplanner/internal/common"
)

var errMalformedBody = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps the common error taxonomy onto HTTP.
func statusFor(err error) int {
	var vErr *common.ValidationError
	var uErr *common.UploadError
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrBusy),
		errors.Is(err, common.ErrInvalidTransition),
		errors.Is(err, common.ErrQuotaExceeded):
		return http.StatusConflict
	case errors.As(err, &uErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) codes.Code {
	switch statusFor(err) {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusConflict:
		if errors.Is(err, common.ErrQuotaExceeded) {
			return codes.ResourceExhausted
		}
		return codes.FailedPrecondition
	case http.StatusBadGateway:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func grpcError(err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}
	if code == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		resp = errorResponse{Error: "internal error"}
	}
	writeJSON(w, code, resp)
}
