package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/club-scheduler/internal/application"
)

type sessionService interface {
	BookPersonal(ctx context.Context, params application.BookPersonalParams) (application.Session, error)
	CreateClass(ctx context.Context, params application.CreateClassParams) (application.Session, error)
	Reschedule(ctx context.Context, params application.RescheduleParams) (application.Session, error)
	Cancel(ctx context.Context, memberID, sessionID string) (application.Session, error)
	JoinGroup(ctx context.Context, memberID, sessionID string) (application.Session, error)
	ListMemberBookings(ctx context.Context, memberID string) ([]application.Session, error)
	ListMemberSessions(ctx context.Context, memberID string) ([]application.Session, error)
	ListGroupClasses(ctx context.Context) ([]application.Session, error)
}

// SessionHandler serves member bookings and group classes.
type SessionHandler struct {
	service   sessionService
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

func (h *SessionHandler) unavailable(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return true
	}
	return false
}

type bookingRequest struct {
	TrainerID string `json:"trainer_id"`
	intervalDTO
}

type rescheduleRequest struct {
	intervalDTO
}

type classRequest struct {
	TrainerID string `json:"trainer_id"`
	RoomID    string `json:"room_id"`
	Capacity  int    `json:"capacity"`
	intervalDTO
}

func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()
	memberID := pathValue(r, "memberID")
	logger := h.log(ctx, "Book", "member_id", memberID)

	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.ErrorContext(ctx, "failed to decode booking request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.times()
	if err == nil {
		var session application.Session
		session, err = h.service.BookPersonal(ctx, application.BookPersonalParams{
			MemberID:  memberID,
			TrainerID: req.TrainerID,
			Start:     start,
			End:       end,
		})
		if err == nil {
			logger.With("session_id", session.ID).InfoContext(ctx, "personal session booked")
			h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
			return
		}
	}

	logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *SessionHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()
	memberID, sessionID := pathValue(r, "memberID"), pathValue(r, "sessionID")
	logger := h.log(ctx, "Reschedule", "member_id", memberID, "session_id", sessionID)

	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.ErrorContext(ctx, "failed to decode reschedule request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.times()
	if err == nil {
		var session application.Session
		session, err = h.service.Reschedule(ctx, application.RescheduleParams{
			MemberID:  memberID,
			SessionID: sessionID,
			Start:     start,
			End:       end,
		})
		if err == nil {
			logger.InfoContext(ctx, "session rescheduled")
			h.responder.writeJSON(ctx, w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
			return
		}
	}

	logger.ErrorContext(ctx, "reschedule failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()
	memberID, sessionID := pathValue(r, "memberID"), pathValue(r, "sessionID")
	logger := h.log(ctx, "Cancel", "member_id", memberID, "session_id", sessionID)

	session, err := h.service.Cancel(ctx, memberID, sessionID)
	if err != nil {
		logger.ErrorContext(ctx, "cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "session cancelled")
	h.responder.writeJSON(ctx, w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()
	memberID, sessionID := pathValue(r, "memberID"), pathValue(r, "sessionID")
	logger := h.log(ctx, "Join", "member_id", memberID, "session_id", sessionID)

	session, err := h.service.JoinGroup(ctx, memberID, sessionID)
	if err != nil {
		logger.ErrorContext(ctx, "join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "class joined")
	h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
}

func (h *SessionHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	ctx := r.Context()

	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "CreateClass", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode class request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	logger := h.log(ctx, "CreateClass", "trainer_id", req.TrainerID, "room_id", req.RoomID)

	start, end, err := req.times()
	if err == nil {
		var session application.Session
		session, err = h.service.CreateClass(ctx, application.CreateClassParams{
			TrainerID: req.TrainerID,
			RoomID:    req.RoomID,
			Capacity:  req.Capacity,
			Start:     start,
			End:       end,
		})
		if err == nil {
			logger.With("session_id", session.ID).InfoContext(ctx, "class created")
			h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
			return
		}
	}

	logger.ErrorContext(ctx, "class creation failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *SessionHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	memberID := pathValue(r, "memberID")
	h.writeList(w, r, "ListBookings", func(ctx context.Context) ([]application.Session, error) {
		return h.service.ListMemberBookings(ctx, memberID)
	}, "member_id", memberID)
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	memberID := pathValue(r, "memberID")
	h.writeList(w, r, "ListSessions", func(ctx context.Context) ([]application.Session, error) {
		return h.service.ListMemberSessions(ctx, memberID)
	}, "member_id", memberID)
}

func (h *SessionHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}
	h.writeList(w, r, "ListClasses", h.service.ListGroupClasses)
}

func (h *SessionHandler) writeList(w http.ResponseWriter, r *http.Request, operation string, list func(context.Context) ([]application.Session, error), attrs ...any) {
	ctx := r.Context()
	logger := h.log(ctx, operation, attrs...)

	sessions, err := list(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "session listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(ctx, "sessions listed")
	h.responder.writeJSON(ctx, w, http.StatusOK, sessionListResponse{Sessions: toSessionDTOs(sessions)})
}
