package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/recurrence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
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
	return factory
}

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

// ExpansionServiceDeps captures dependencies for constructing an expansion
// service.
type ExpansionServiceDeps struct {
	Store       application.BookingStore
	Calendar    recurrence.HolidayCalendar
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewExpansionService builds an expansion service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewExpansionService(deps ExpansionServiceDeps) *application.ExpansionService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewExpansionService(
		deps.Store,
		deps.Calendar,
		idGen,
		now,
		deps.Logger,
	)
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Bookings    application.BookingRepository
	Rooms       application.RoomCatalog
	Expander    application.Expander
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingServiceWithLogger(
		deps.Bookings,
		deps.Rooms,
		deps.Expander,
		idGen,
		now,
		deps.Logger,
	)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       application.RoomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		idGen,
		now,
		deps.Logger,
	)
}
