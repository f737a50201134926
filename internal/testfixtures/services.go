package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers, clocks and room choices.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
	// PickRoom replaces random room choice. It defaults to the first free room.
	PickRoom func(n int) int
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		PickRoom:    FirstRoom,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.PickRoom == nil {
		factory.PickRoom = FirstRoom
	}
	return factory
}

// FirstRoom always selects the first free room in name order.
func FirstRoom(int) int { return 0 }

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// WithRoomPicker overrides the room choice used by the session service.
func WithRoomPicker(pick func(n int) int) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.PickRoom = pick
	}
}

// Services bundles every application service over one store.
type Services struct {
	Sessions *application.SessionService
	Trainers *application.TrainerService
	Rooms    *application.RoomService
	Members  *application.MemberService
}

// NewServices builds all services over store.
func (f *ServiceFactory) NewServices(store persistence.Store) Services {
	return Services{
		Sessions: f.NewSessionService(store),
		Trainers: f.NewTrainerService(store),
		Rooms:    f.NewRoomService(store),
		Members:  f.NewMemberService(store),
	}
}

// NewSessionService builds a session service over store.
func (f *ServiceFactory) NewSessionService(store persistence.Store) *application.SessionService {
	return application.NewSessionServiceWithLogger(
		store,
		application.NewRoomAllocator(f.PickRoom),
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		f.Logger,
	)
}

// NewTrainerService builds a trainer service over store.
func (f *ServiceFactory) NewTrainerService(store persistence.Store) *application.TrainerService {
	return application.NewTrainerServiceWithLogger(store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewRoomService builds a room service over store.
func (f *ServiceFactory) NewRoomService(store persistence.Store) *application.RoomService {
	return application.NewRoomServiceWithLogger(store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewMemberService builds a member service over store.
func (f *ServiceFactory) NewMemberService(store persistence.Store) *application.MemberService {
	return application.NewMemberServiceWithLogger(store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}
