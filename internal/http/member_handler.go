package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/application"
)

type memberService interface {
	RegisterMember(ctx context.Context, input application.MemberInput) (application.Member, error)
	GetMember(ctx context.Context, id string) (application.Member, error)
}

type MemberHandler struct {
	service   memberService
	responder responder
	logger    *slog.Logger
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	base := defaultLogger(logger)
	return &MemberHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MemberHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MemberHandler", operation, attrs...)
}

type memberRequest struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`
}

// toInput parses date_of_birth as YYYY-MM-DD; an empty value means unknown.
func (req memberRequest) toInput() (application.MemberInput, error) {
	input := application.MemberInput{
		FullName: req.FullName,
		Gender:   req.Gender,
		Phone:    req.Phone,
	}
	if dob := strings.TrimSpace(req.DateOfBirth); dob != "" {
		parsed, err := time.Parse(dateLayout, dob)
		if err != nil {
			return input, &application.ValidationError{FieldErrors: map[string]string{
				"date_of_birth": "date_of_birth must use YYYY-MM-DD",
			}}
		}
		input.DateOfBirth = &parsed
	}
	return input, nil
}

type memberResponse struct {
	Member memberDTO `json:"member"`
}

func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	logger := h.log(ctx, "Register")

	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.ErrorContext(ctx, "failed to decode member request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err == nil {
		var member application.Member
		member, err = h.service.RegisterMember(ctx, input)
		if err == nil {
			logger.With("member_id", member.ID).InfoContext(ctx, "member registered")
			h.responder.writeJSON(ctx, w, http.StatusCreated, memberResponse{Member: toMemberDTO(member)})
			return
		}
	}

	logger.ErrorContext(ctx, "member registration failed", "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	memberID := pathValue(r, "memberID")
	logger := h.log(ctx, "Get", "member_id", memberID)

	member, err := h.service.GetMember(ctx, memberID)
	if err != nil {
		logger.ErrorContext(ctx, "member lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "member fetched")
	h.responder.writeJSON(ctx, w, http.StatusOK, memberResponse{Member: toMemberDTO(member)})
}
