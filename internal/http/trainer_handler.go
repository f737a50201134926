package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/schedule"
)

type trainerService interface {
	RegisterTrainer(ctx context.Context, input application.TrainerInput) (application.Trainer, error)
	SetAvailability(ctx context.Context, params application.SetAvailabilityParams) (application.Trainer, error)
	ListTrainers(ctx context.Context) ([]application.Trainer, error)
}

// trainerViews are the session listings a trainer sees.
type trainerViews interface {
	ListTrainerSessions(ctx context.Context, trainerID string, kind schedule.Kind) ([]application.Session, error)
	ListTrainerMembers(ctx context.Context, trainerID string) ([]application.Member, error)
}

type TrainerHandler struct {
	service   trainerService
	views     trainerViews
	responder responder
	logger    *slog.Logger
}

func NewTrainerHandler(service trainerService, views trainerViews, logger *slog.Logger) *TrainerHandler {
	base := defaultLogger(logger)
	return &TrainerHandler{service: service, views: views, responder: newResponder(base), logger: base}
}

func (h *TrainerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TrainerHandler", operation, attrs...)
}

type trainerRequest struct {
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	Availability intervalDTO `json:"availability"`
}

type trainerResponse struct {
	Trainer trainerDTO `json:"trainer"`
}

type trainerListResponse struct {
	Trainers []trainerDTO `json:"trainers"`
}

type memberListResponse struct {
	Members []memberDTO `json:"members"`
}

func (h *TrainerHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	logger := h.log(ctx, "Register")

	var req trainerRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.ErrorContext(ctx, "failed to decode trainer request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.Availability.times()
	if err == nil {
		var trainer application.Trainer
		trainer, err = h.service.RegisterTrainer(ctx, application.TrainerInput{
			FullName:          req.FullName,
			Phone:             req.Phone,
			AvailabilityStart: start,
			AvailabilityEnd:   end,
		})
		if err == nil {
			logger.With("trainer_id", trainer.ID).InfoContext(ctx, "trainer registered")
			h.responder.writeJSON(ctx, w, http.StatusCreated, trainerResponse{Trainer: toTrainerDTO(trainer)})
			return
		}
	}

	logger.ErrorContext(ctx, "trainer registration failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *TrainerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	logger := h.log(ctx, "List")

	trainers, err := h.service.ListTrainers(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "trainer listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	resp := trainerListResponse{Trainers: make([]trainerDTO, 0, len(trainers))}
	for _, t := range trainers {
		resp.Trainers = append(resp.Trainers, toTrainerDTO(t))
	}
	logger.With("result_count", len(trainers)).InfoContext(ctx, "trainers listed")
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *TrainerHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	trainerID := pathValue(r, "trainerID")
	logger := h.log(ctx, "SetAvailability", "trainer_id", trainerID)

	var req intervalDTO
	if err := decodeJSON(r, &req); err != nil {
		logger.ErrorContext(ctx, "failed to decode availability request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.times()
	if err == nil {
		var trainer application.Trainer
		trainer, err = h.service.SetAvailability(ctx, application.SetAvailabilityParams{
			TrainerID: trainerID,
			Start:     start,
			End:       end,
		})
		if err == nil {
			logger.InfoContext(ctx, "availability updated")
			h.responder.writeJSON(ctx, w, http.StatusOK, trainerResponse{Trainer: toTrainerDTO(trainer)})
			return
		}
	}

	logger.ErrorContext(ctx, "availability update failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

// Sessions lists the trainer's sessions of one kind; kind defaults to personal.
func (h *TrainerHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	trainerID := pathValue(r, "trainerID")

	kind := schedule.Kind(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind"))))
	if kind == "" {
		kind = schedule.KindPersonal
	}
	logger := h.log(ctx, "Sessions", "trainer_id", trainerID, "kind", string(kind))

	sessions, err := h.views.ListTrainerSessions(ctx, trainerID, kind)
	if err != nil {
		logger.ErrorContext(ctx, "trainer session listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(ctx, "trainer sessions listed")
	h.responder.writeJSON(ctx, w, http.StatusOK, sessionListResponse{Sessions: toSessionDTOs(sessions)})
}

func (h *TrainerHandler) Members(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	trainerID := pathValue(r, "trainerID")
	logger := h.log(ctx, "Members", "trainer_id", trainerID)

	members, err := h.views.ListTrainerMembers(ctx, trainerID)
	if err != nil {
		logger.ErrorContext(ctx, "trainer member listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.With("result_count", len(members)).InfoContext(ctx, "trainer members listed")
	h.responder.writeJSON(ctx, w, http.StatusOK, memberListResponse{Members: toMemberDTOs(members)})
}
