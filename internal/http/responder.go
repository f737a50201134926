package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-scheduler/internal/application"
)

var errBadRequestBody = errors.New("request body is not valid JSON")

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: "bad_request", Message: message})
}

// handleServiceError maps application errors onto status codes. The body
// carries the stable ErrorKind label as error_code.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{ErrorCode: "unexpected", Message: "unknown error"})
		return
	}

	resp := errorResponse{ErrorCode: application.ErrorKind(err), Message: publicMessage(err)}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		resp.Errors = vErr.FieldErrors
	}

	r.writeJSON(ctx, w, statusFor(err), resp)
}

func statusFor(err error) int {
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, application.ErrInvalidInterval):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrTrainerNotFound),
		errors.Is(err, application.ErrRoomNotFound),
		errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrNotOwnedByCaller):
		return http.StatusForbidden
	case errors.Is(err, application.ErrOverlapConflict),
		errors.Is(err, application.ErrOutsideAvailability),
		errors.Is(err, application.ErrRoomAlreadyBooked),
		errors.Is(err, application.ErrNoRoomsAvailable),
		errors.Is(err, application.ErrAlreadyJoined),
		errors.Is(err, application.ErrSessionFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides storage details from clients.
func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
