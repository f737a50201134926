package http

import (
	"net/http"
)

type RouterConfig struct {
	Sessions   *SessionHandler
	Trainers   *TrainerHandler
	Rooms      *RoomHandler
	Members    *MemberHandler
	Health     *HealthHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter registers every configured handler on a method-aware mux. Nil
// handlers leave their routes unregistered.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Members != nil {
		mux.HandleFunc("POST /members", cfg.Members.Register)
		mux.HandleFunc("GET /members/{memberID}", cfg.Members.Get)
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("GET /members/{memberID}/bookings", cfg.Sessions.ListBookings)
		mux.HandleFunc("POST /members/{memberID}/bookings", cfg.Sessions.Book)
		mux.HandleFunc("PUT /members/{memberID}/bookings/{sessionID}", cfg.Sessions.Reschedule)
		mux.HandleFunc("DELETE /members/{memberID}/bookings/{sessionID}", cfg.Sessions.Cancel)
		mux.HandleFunc("GET /members/{memberID}/sessions", cfg.Sessions.ListSessions)
		mux.HandleFunc("POST /members/{memberID}/classes/{sessionID}", cfg.Sessions.Join)
		mux.HandleFunc("GET /classes", cfg.Sessions.ListClasses)
		mux.HandleFunc("POST /classes", cfg.Sessions.CreateClass)
	}

	if cfg.Trainers != nil {
		mux.HandleFunc("GET /trainers", cfg.Trainers.List)
		mux.HandleFunc("POST /trainers", cfg.Trainers.Register)
		mux.HandleFunc("PUT /trainers/{trainerID}/availability", cfg.Trainers.SetAvailability)
		mux.HandleFunc("GET /trainers/{trainerID}/sessions", cfg.Trainers.Sessions)
		mux.HandleFunc("GET /trainers/{trainerID}/members", cfg.Trainers.Members)
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("GET /rooms", cfg.Rooms.List)
		mux.HandleFunc("POST /rooms", cfg.Rooms.Create)
	}

	if cfg.Health != nil {
		mux.HandleFunc("GET /healthz", cfg.Health.Check)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
