package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/club-scheduler/internal/persistence/memory"
	"github.com/example/club-scheduler/internal/schedule"
	"github.com/example/club-scheduler/internal/testfixtures"
)

type apiEnv struct {
	t       *testing.T
	handler http.Handler
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	store := memory.New()
	testfixtures.Seed{
		Trainers: []testfixtures.TrainerFixture{
			testfixtures.NewTrainerFixture(testfixtures.WithTrainerID("t1")),
		},
		Rooms: []testfixtures.RoomFixture{
			testfixtures.NewRoomFixture(testfixtures.WithRoomID("r1"), testfixtures.WithRoomName("A")),
			testfixtures.NewRoomFixture(testfixtures.WithRoomID("r2"), testfixtures.WithRoomName("B")),
		},
		Members: []testfixtures.MemberFixture{
			testfixtures.NewMemberFixture(testfixtures.WithMemberID("m1")),
			testfixtures.NewMemberFixture(testfixtures.WithMemberID("m2")),
		},
	}.Apply(t, store)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	services := testfixtures.NewServiceFactory(testfixtures.WithLogger(logger)).NewServices(store)

	handler := NewRouter(RouterConfig{
		Sessions:   NewSessionHandler(services.Sessions, logger),
		Trainers:   NewTrainerHandler(services.Trainers, services.Sessions, logger),
		Rooms:      NewRoomHandler(services.Rooms, logger),
		Members:    NewMemberHandler(services.Members, logger),
		Health:     NewHealthHandler(store, logger),
		Middleware: []func(http.Handler) http.Handler{Recoverer(logger), RequestLogger(logger)},
	})
	return &apiEnv{t: t, handler: handler}
}

func (e *apiEnv) do(method, path, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	resp := decodeBody[errorResponse](t, rec)
	if resp.ErrorCode != code {
		t.Fatalf("expected error_code %q, got %q", code, resp.ErrorCode)
	}
}

func TestRouter_BookingFlow(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(http.MethodPost, "/members/m1/bookings", `{"trainer_id":"t1","start":"10:00","end":"11:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	booked := decodeBody[sessionResponse](t, rec).Session
	if booked.Kind != string(schedule.KindPersonal) || booked.Start != "10:00" || booked.End != "11:00" {
		t.Fatalf("unexpected session %+v", booked)
	}
	if booked.RoomID == nil || *booked.RoomID != "r1" {
		t.Fatalf("expected room r1, got %v", booked.RoomID)
	}

	t.Run("overlap is a conflict", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/members/m2/bookings", `{"trainer_id":"t1","start":"10:30","end":"11:30"}`)
		expectError(t, rec, http.StatusConflict, "overlap_conflict")
	})

	t.Run("interval past availability end", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/members/m2/bookings", `{"trainer_id":"t1","start":"16:30","end":"17:30"}`)
		expectError(t, rec, http.StatusConflict, "outside_availability")
	})

	t.Run("listing shows the booking", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/members/m1/bookings", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		list := decodeBody[sessionListResponse](t, rec)
		if len(list.Sessions) != 1 || list.Sessions[0].ID != booked.ID {
			t.Fatalf("unexpected bookings %+v", list.Sessions)
		}
	})

	t.Run("other member cannot reschedule", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/members/m2/bookings/"+booked.ID, `{"start":"12:00","end":"13:00"}`)
		expectError(t, rec, http.StatusForbidden, "not_owned_by_caller")
	})

	t.Run("owner reschedules", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/members/m1/bookings/"+booked.ID, `{"start":"10:30","end":"11:30"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeBody[sessionResponse](t, rec).Session; got.Start != "10:30" || got.End != "11:30" {
			t.Fatalf("unexpected rescheduled session %+v", got)
		}
	})

	t.Run("owner cancels", func(t *testing.T) {
		rec := env.do(http.MethodDelete, "/members/m1/bookings/"+booked.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeBody[sessionResponse](t, rec).Session; got.Status != "cancelled" {
			t.Fatalf("expected cancelled session, got %+v", got)
		}
		rec = env.do(http.MethodPut, "/members/m1/bookings/"+booked.ID, `{"start":"12:00","end":"13:00"}`)
		expectError(t, rec, http.StatusNotFound, "session_not_found")
	})
}

func TestRouter_BookingValidation(t *testing.T) {
	env := newAPIEnv(t)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed time", "/members/m1/bookings", `{"trainer_id":"t1","start":"25:00","end":"11:00"}`, http.StatusUnprocessableEntity, "invalid_interval"},
		{"empty interval", "/members/m1/bookings", `{"trainer_id":"t1","start":"11:00","end":"11:00"}`, http.StatusUnprocessableEntity, "invalid_interval"},
		{"abort sentinel", "/members/m1/bookings", `{"trainer_id":"t1","start":"0","end":"11:00"}`, http.StatusUnprocessableEntity, "aborted"},
		{"unknown trainer", "/members/m1/bookings", `{"trainer_id":"nobody","start":"10:00","end":"11:00"}`, http.StatusNotFound, "trainer_not_found"},
		{"unknown member", "/members/ghost/bookings", `{"trainer_id":"t1","start":"10:00","end":"11:00"}`, http.StatusNotFound, "member_not_found"},
		{"bad json", "/members/m1/bookings", `{"trainer_id":`, http.StatusBadRequest, "bad_request"},
		{"unknown field", "/members/m1/bookings", `{"trainer":"t1"}`, http.StatusBadRequest, "bad_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, env.do(http.MethodPost, tc.path, tc.body), tc.status, tc.code)
		})
	}
}

func TestRouter_GroupClasses(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(http.MethodPost, "/classes", `{"trainer_id":"t1","room_id":"r2","capacity":1,"start":"13:00","end":"14:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	class := decodeBody[sessionResponse](t, rec).Session

	if rec := env.do(http.MethodPost, "/members/m1/classes/"+class.ID, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected join to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	expectError(t, env.do(http.MethodPost, "/members/m1/classes/"+class.ID, ""), http.StatusConflict, "already_joined")
	expectError(t, env.do(http.MethodPost, "/members/m2/classes/"+class.ID, ""), http.StatusConflict, "session_full")

	rec = env.do(http.MethodGet, "/classes", "")
	classes := decodeBody[sessionListResponse](t, rec).Sessions
	if len(classes) != 1 || classes[0].Enrolled != 1 {
		t.Fatalf("unexpected classes %+v", classes)
	}

	rec = env.do(http.MethodGet, "/trainers/t1/sessions?kind=group", "")
	if got := decodeBody[sessionListResponse](t, rec).Sessions; len(got) != 1 || got[0].ID != class.ID {
		t.Fatalf("unexpected trainer sessions %+v", got)
	}
	expectError(t, env.do(http.MethodGet, "/trainers/t1/sessions?kind=yoga", ""), http.StatusUnprocessableEntity, "validation")

	rec = env.do(http.MethodGet, "/trainers/t1/members", "")
	if got := decodeBody[memberListResponse](t, rec).Members; len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("unexpected trainer members %+v", got)
	}

	rec = env.do(http.MethodGet, "/members/m1/sessions", "")
	if got := decodeBody[sessionListResponse](t, rec).Sessions; len(got) != 1 {
		t.Fatalf("unexpected member sessions %+v", got)
	}
}

func TestRouter_Directory(t *testing.T) {
	env := newAPIEnv(t)

	t.Run("register trainer and move availability", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/trainers", `{"full_name":"Kim","phone":"555","availability":{"start":"06:00","end":"12:00"}}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		trainer := decodeBody[trainerResponse](t, rec).Trainer
		if trainer.Availability.Start != "06:00" || trainer.Availability.End != "12:00" {
			t.Fatalf("unexpected availability %+v", trainer.Availability)
		}

		rec = env.do(http.MethodPut, "/trainers/"+trainer.ID+"/availability", `{"start":"07:00","end":"15:00"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		expectError(t, env.do(http.MethodPut, "/trainers/missing/availability", `{"start":"07:00","end":"15:00"}`), http.StatusNotFound, "trainer_not_found")

		rec = env.do(http.MethodGet, "/trainers", "")
		if got := decodeBody[trainerListResponse](t, rec).Trainers; len(got) != 2 {
			t.Fatalf("expected 2 trainers, got %+v", got)
		}
	})

	t.Run("trainer registration reports missing fields", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/trainers", `{"availability":{"start":"06:00","end":"12:00"}}`)
		expectError(t, rec, http.StatusUnprocessableEntity, "validation")
		if errs := decodeBody[errorResponse](t, rec).Errors; errs["full_name"] == "" || errs["phone"] == "" {
			t.Fatalf("expected field errors, got %v", errs)
		}
	})

	t.Run("rooms", func(t *testing.T) {
		if rec := env.do(http.MethodPost, "/rooms", `{"name":"C","capacity":8}`); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		expectError(t, env.do(http.MethodPost, "/rooms", `{"name":"C","capacity":8}`), http.StatusUnprocessableEntity, "validation")
		rec := env.do(http.MethodGet, "/rooms", "")
		if got := decodeBody[roomListResponse](t, rec).Rooms; len(got) != 3 {
			t.Fatalf("expected 3 rooms, got %+v", got)
		}
	})

	t.Run("members", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/members", `{"full_name":"Lee","date_of_birth":"1991-04-05"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		member := decodeBody[memberResponse](t, rec).Member
		if member.DateOfBirth == nil || *member.DateOfBirth != "1991-04-05" {
			t.Fatalf("unexpected date of birth %v", member.DateOfBirth)
		}

		rec = env.do(http.MethodGet, "/members/"+member.ID, "")
		if got := decodeBody[memberResponse](t, rec).Member; got.FullName != "Lee" {
			t.Fatalf("unexpected member %+v", got)
		}
		expectError(t, env.do(http.MethodGet, "/members/ghost", ""), http.StatusNotFound, "member_not_found")
		expectError(t, env.do(http.MethodPost, "/members", `{"full_name":"Lee","date_of_birth":"05/04/1991"}`), http.StatusUnprocessableEntity, "validation")
	})
}

func TestRouter_HealthAndMethods(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}

	if rec := env.do(http.MethodDelete, "/rooms", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/nowhere", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
