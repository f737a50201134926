package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
	"github.com/example/club-scheduler/internal/testfixtures"
)

type world struct {
	services testfixtures.Services
	trainer  testfixtures.TrainerFixture
	rooms    []testfixtures.RoomFixture
	members  []testfixtures.MemberFixture
}

func newWorld(t *testing.T, store persistence.Store, rooms, members int) world {
	t.Helper()

	w := world{trainer: testfixtures.NewTrainerFixture()}
	for i := 0; i < rooms; i++ {
		w.rooms = append(w.rooms, testfixtures.NewRoomFixture(testfixtures.WithRoomCapacity(20)))
	}
	for i := 0; i < members; i++ {
		w.members = append(w.members, testfixtures.NewMemberFixture())
	}
	testfixtures.Seed{
		Trainers: []testfixtures.TrainerFixture{w.trainer},
		Rooms:    w.rooms,
		Members:  w.members,
	}.Apply(t, store)

	w.services = testfixtures.NewServiceFactory().NewServices(store)
	return w
}

func at(value string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

func (w world) book(ctx context.Context, member, start, end string) (application.Session, error) {
	return w.services.Sessions.BookPersonal(ctx, application.BookPersonalParams{
		MemberID:  member,
		TrainerID: w.trainer.ID,
		Start:     at(start),
		End:       at(end),
	})
}

func TestScenario_BookingOverlapAndAvailability(t *testing.T) {
	for _, tc := range testfixtures.StoreCases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			w := newWorld(t, tc.New(t), 3, 3)
			alice, bob := w.members[0].ID, w.members[1].ID

			first, err := w.book(ctx, alice, "10:00", "11:00")
			if err != nil {
				t.Fatalf("first booking failed: %v", err)
			}

			if _, err := w.book(ctx, bob, "10:30", "11:30"); !errors.Is(err, application.ErrOverlapConflict) {
				t.Fatalf("expected ErrOverlapConflict, got %v", err)
			}
			if _, err := w.book(ctx, bob, "11:00", "12:00"); err != nil {
				t.Fatalf("touching booking failed: %v", err)
			}
			if _, err := w.book(ctx, bob, "08:00", "09:00"); !errors.Is(err, application.ErrOutsideAvailability) {
				t.Fatalf("expected ErrOutsideAvailability, got %v", err)
			}

			moved, err := w.services.Sessions.Reschedule(ctx, application.RescheduleParams{
				MemberID: alice, SessionID: first.ID, Start: at("09:30"), End: at("10:30"),
			})
			if err != nil {
				t.Fatalf("reschedule overlapping only itself failed: %v", err)
			}
			if moved.Interval.String() != "09:30-10:30" {
				t.Fatalf("unexpected interval %s", moved.Interval)
			}

			_, err = w.services.Sessions.Reschedule(ctx, application.RescheduleParams{
				MemberID: bob, SessionID: first.ID, Start: at("13:00"), End: at("14:00"),
			})
			if !errors.Is(err, application.ErrNotOwnedByCaller) {
				t.Fatalf("expected ErrNotOwnedByCaller, got %v", err)
			}
		})
	}
}

func TestScenario_CancelFreesRoomForRebooking(t *testing.T) {
	for _, tc := range testfixtures.StoreCases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			w := newWorld(t, tc.New(t), 1, 2)
			alice, bob := w.members[0].ID, w.members[1].ID

			session, err := w.book(ctx, alice, "14:00", "15:00")
			if err != nil {
				t.Fatalf("booking failed: %v", err)
			}
			if _, err := w.book(ctx, bob, "15:00", "16:00"); !errors.Is(err, application.ErrNoRoomsAvailable) {
				t.Fatalf("expected ErrNoRoomsAvailable while the only room is held, got %v", err)
			}

			if _, err := w.services.Sessions.Cancel(ctx, alice, session.ID); err != nil {
				t.Fatalf("cancel failed: %v", err)
			}
			rooms, err := w.services.Rooms.ListRooms(ctx)
			if err != nil || len(rooms) != 1 || rooms[0].Booked {
				t.Fatalf("expected the room to be free, got %+v (err=%v)", rooms, err)
			}

			if _, err := w.book(ctx, bob, "14:00", "15:00"); err != nil {
				t.Fatalf("rebooking the cancelled interval failed: %v", err)
			}

			_, err = w.services.Sessions.Reschedule(ctx, application.RescheduleParams{
				MemberID: alice, SessionID: session.ID, Start: at("09:00"), End: at("10:00"),
			})
			if !errors.Is(err, application.ErrSessionNotFound) {
				t.Fatalf("expected cancelled session to be not found, got %v", err)
			}
		})
	}
}

func TestScenario_GroupClassCapacity(t *testing.T) {
	for _, tc := range testfixtures.StoreCases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			w := newWorld(t, tc.New(t), 1, 4)

			class, err := w.services.Sessions.CreateClass(ctx, application.CreateClassParams{
				TrainerID: w.trainer.ID, RoomID: w.rooms[0].ID, Capacity: 3, Start: at("12:00"), End: at("13:00"),
			})
			if err != nil {
				t.Fatalf("create class failed: %v", err)
			}

			for _, member := range w.members[:3] {
				if _, err := w.services.Sessions.JoinGroup(ctx, member.ID, class.ID); err != nil {
					t.Fatalf("join by %s failed: %v", member.ID, err)
				}
			}
			if _, err := w.services.Sessions.JoinGroup(ctx, w.members[0].ID, class.ID); !errors.Is(err, application.ErrAlreadyJoined) {
				t.Fatalf("expected ErrAlreadyJoined, got %v", err)
			}
			if _, err := w.services.Sessions.JoinGroup(ctx, w.members[3].ID, class.ID); !errors.Is(err, application.ErrSessionFull) {
				t.Fatalf("expected ErrSessionFull, got %v", err)
			}

			classes, err := w.services.Sessions.ListGroupClasses(ctx)
			if err != nil || len(classes) != 1 || classes[0].Enrolled != 3 {
				t.Fatalf("unexpected classes %+v (err=%v)", classes, err)
			}

			sessions, err := w.services.Sessions.ListMemberSessions(ctx, w.members[1].ID)
			if err != nil || len(sessions) != 1 || sessions[0].Kind != schedule.KindGroup {
				t.Fatalf("unexpected member sessions %+v (err=%v)", sessions, err)
			}
		})
	}
}

func TestScenario_RacingBookingsYieldOneWinner(t *testing.T) {
	for _, tc := range testfixtures.StoreCases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			const racers = 6
			w := newWorld(t, tc.New(t), racers, racers)

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				others    []error
			)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(member string, offset int) {
					defer wg.Done()
					_, err := w.book(ctx, member, fmt.Sprintf("10:%02d", offset), fmt.Sprintf("11:%02d", offset))
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
						return
					}
					if !errors.Is(err, application.ErrOverlapConflict) {
						others = append(others, err)
					}
				}(w.members[i].ID, i*5)
			}
			wg.Wait()

			if len(others) > 0 {
				t.Fatalf("unexpected errors: %v", others)
			}
			if successes != 1 {
				t.Fatalf("expected exactly one successful booking, got %d", successes)
			}
		})
	}
}

func TestScenario_RacingJoinsRespectCapacity(t *testing.T) {
	for _, tc := range testfixtures.StoreCases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			const (
				capacity = 3
				joiners  = 8
			)
			w := newWorld(t, tc.New(t), 1, joiners)

			class, err := w.services.Sessions.CreateClass(ctx, application.CreateClassParams{
				TrainerID: w.trainer.ID, RoomID: w.rooms[0].ID, Capacity: capacity, Start: at("16:00"), End: at("17:00"),
			})
			if err != nil {
				t.Fatalf("create class failed: %v", err)
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				others    []error
			)
			for _, member := range w.members {
				wg.Add(1)
				go func(memberID string) {
					defer wg.Done()
					_, err := w.services.Sessions.JoinGroup(ctx, memberID, class.ID)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
						return
					}
					if !errors.Is(err, application.ErrSessionFull) {
						others = append(others, err)
					}
				}(member.ID)
			}
			wg.Wait()

			if len(others) > 0 {
				t.Fatalf("unexpected errors: %v", others)
			}
			if successes != capacity {
				t.Fatalf("expected %d joins, got %d", capacity, successes)
			}

			classes, err := w.services.Sessions.ListGroupClasses(ctx)
			if err != nil || len(classes) != 1 || classes[0].Enrolled != capacity {
				t.Fatalf("unexpected enrolment %+v (err=%v)", classes, err)
			}
		})
	}
}
