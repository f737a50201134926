package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/schedule"
)

const dateLayout = "2006-01-02"

type intervalDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// times parses the wire values. The abort sentinel "0" is passed through so
// the service can report it as an aborted request.
func (d intervalDTO) times() (schedule.TimeOfDay, schedule.TimeOfDay, error) {
	start, err := schedule.ParseTimeOfDay(d.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: start: %v", application.ErrInvalidInterval, err)
	}
	end, err := schedule.ParseTimeOfDay(d.End)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: end: %v", application.ErrInvalidInterval, err)
	}
	return start, end, nil
}

func toIntervalDTO(i schedule.Interval) intervalDTO {
	return intervalDTO{Start: i.Start.String(), End: i.End.String()}
}

type sessionDTO struct {
	ID        string    `json:"id"`
	TrainerID string    `json:"trainer_id"`
	RoomID    *string   `json:"room_id,omitempty"`
	Kind      string    `json:"kind"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Status    string    `json:"status"`
	Capacity  int       `json:"capacity"`
	Enrolled  int       `json:"enrolled,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSessionDTO(s application.Session) sessionDTO {
	return sessionDTO{
		ID:        s.ID,
		TrainerID: s.TrainerID,
		RoomID:    s.RoomID,
		Kind:      string(s.Kind),
		Start:     s.Interval.Start.String(),
		End:       s.Interval.End.String(),
		Status:    string(s.Status),
		Capacity:  s.Capacity,
		Enrolled:  s.Enrolled,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSessionDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionDTO(s))
	}
	return out
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type sessionListResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type trainerDTO struct {
	ID           string      `json:"id"`
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	Availability intervalDTO `json:"availability"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func toTrainerDTO(t application.Trainer) trainerDTO {
	return trainerDTO{
		ID:           t.ID,
		FullName:     t.FullName,
		Phone:        t.Phone,
		Availability: toIntervalDTO(t.Availability),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type memberDTO struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMemberDTO(m application.Member) memberDTO {
	dto := memberDTO{
		ID:        m.ID,
		FullName:  m.FullName,
		Gender:    m.Gender,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DateOfBirth != nil {
		dob := m.DateOfBirth.Format(dateLayout)
		dto.DateOfBirth = &dob
	}
	return dto
}

func toMemberDTOs(members []application.Member) []memberDTO {
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberDTO(m))
	}
	return out
}

type roomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Booked    bool      `json:"booked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoomDTO(r application.Room) roomDTO {
	return roomDTO{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Booked:    r.Booked,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func pathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}
