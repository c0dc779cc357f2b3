package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/conflict"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]Booking, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// Expander generates recurring occurrences for a persisted seed booking.
type Expander interface {
	Expand(ctx context.Context, params ExpandParams) (ExpandResult, error)
}

// BookingService orchestrates validation and persistence for bookings.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	expander    Expander
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	warnings    *warningCache
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, expander Expander, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, expander, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, expander Expander, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		expander:    expander,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		warnings:    newWarningCache(0, 0, now),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the request, rejects overlapping reservations and
// persists the seed booking. When a repeating type is requested, the
// recurring expansion runs after the seed is persisted; its occurrences
// reference the seed through ParentBookingID.
func (s *BookingService) CreateBooking(ctx context.Context, input BookingInput) (result CreateBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking", "room_id", input.RoomID, "user_id", input.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.Booking.ID).InfoContext(ctx, "booking created")
	}()

	vErr := validateBookingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}

	overlapping, qErr := s.bookings.QueryOverlap(ctx, input.RoomID, input.Date, input.StartTime, input.EndTime, "")
	if qErr != nil {
		err = fmt.Errorf("conflict check: %w", qErr)
		return
	}
	if len(overlapping) > 0 {
		conflictErr := &ValidationError{}
		conflictErr.add("time_slot", "time slot conflicts with an existing booking")
		err = conflictErr
		return
	}

	createdAt := s.now()
	seed := Booking{
		ID:          s.idGenerator(),
		UserID:      input.UserID,
		RoomID:      input.RoomID,
		Title:       strings.TrimSpace(input.Title),
		Remarks:     input.Remarks,
		Date:        input.Date,
		StartTime:   normalizeWallClock(input.StartTime),
		EndTime:     normalizeWallClock(input.EndTime),
		RepeatType:  input.RepeatType,
		IsRecurring: false,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if seed.RepeatType == "" {
		seed.RepeatType = recurrence.RepeatNone
	}

	if err = mapBookingRepoError(s.bookings.CreateBooking(ctx, seed)); err != nil {
		return
	}
	s.warnings.Invalidate()
	result.Booking = seed

	if seed.RepeatType.Repeats() && s.expander != nil {
		var expansion ExpandResult
		expansion, err = s.expander.Expand(ctx, ExpandParams{
			Seed:       seed,
			RepeatType: seed.RepeatType,
			EndDate:    input.EndDate,
			UserID:     seed.UserID,
		})
		if err != nil {
			err = fmt.Errorf("expand recurring bookings: %w", err)
			return
		}
		s.warnings.Invalidate()
		result.Expansion = &expansion
	}

	return
}

// Expand runs recurring-booking generation for an already persisted seed.
// It fronts the expansion service so that cached list warnings are dropped
// once new occurrences land; callers holding only a BookingService get the
// same wire behavior as calling the expansion service directly.
func (s *BookingService) Expand(ctx context.Context, params ExpandParams) (ExpandResult, error) {
	if s == nil || s.expander == nil {
		return ExpandResult{}, fmt.Errorf("expansion service not configured")
	}
	result, err := s.expander.Expand(ctx, params)
	if err != nil {
		return ExpandResult{}, err
	}
	if result.Count > 0 {
		s.warnings.Invalidate()
	}
	return result, nil
}

// GetBooking retrieves a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s == nil || s.bookings == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Booking{}, ErrNotFound
	}
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	return booking, nil
}

// ListBookings enumerates bookings matching the filter in calendar order,
// together with warnings for overlapping pairs in the result set.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, []ConflictWarning, error) {
	if s == nil || s.bookings == nil {
		return nil, nil, fmt.Errorf("booking repository not configured")
	}

	vErr := &ValidationError{}
	if params.DateFrom != "" {
		if _, err := recurrence.ParseDate(params.DateFrom); err != nil {
			vErr.add("date_from", "date must be formatted as YYYY-MM-DD")
		}
	}
	if params.DateTo != "" {
		if _, err := recurrence.ParseDate(params.DateTo); err != nil {
			vErr.add("date_to", "date must be formatted as YYYY-MM-DD")
		}
	}
	if vErr.HasErrors() {
		return nil, nil, vErr
	}

	filter := persistence.BookingFilter{
		RoomID:   params.RoomID,
		UserID:   params.UserID,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	ordered := make([]Booking, len(bookings))
	copy(ordered, bookings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		if ordered[i].StartTime != ordered[j].StartTime {
			return ordered[i].StartTime < ordered[j].StartTime
		}
		return ordered[i].ID < ordered[j].ID
	})

	cacheKey := buildWarningCacheKey(filter)
	warnings, ok := s.warnings.Get(cacheKey)
	if !ok {
		warnings = detectListWarnings(ordered)
		s.warnings.Store(cacheKey, warnings)
	}

	return ordered, warnings, nil
}

// DeleteBooking removes a booking and every occurrence generated from it.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if s == nil || s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "booking_id", id)

	if _, err := s.bookings.GetBooking(ctx, id); err != nil {
		return mapBookingRepoError(err)
	}
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return mapBookingRepoError(err)
	}
	s.warnings.Invalidate()
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room_id", "room does not exist")
	return vErr
}

func detectListWarnings(bookings []Booking) []ConflictWarning {
	if len(bookings) <= 1 {
		return nil
	}

	converted := make([]conflict.Booking, len(bookings))
	for i, b := range bookings {
		converted[i] = conflict.Booking{
			ID:        b.ID,
			RoomID:    b.RoomID,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		}
	}

	warnings := make([]ConflictWarning, 0)
	for i, candidate := range converted {
		if i+1 >= len(converted) {
			break
		}
		for _, found := range conflict.Detect(converted[i+1:], candidate) {
			warnings = append(warnings, ConflictWarning{
				BookingID:     candidate.ID,
				WithBookingID: found.WithBookingID,
				RoomID:        found.RoomID,
				Date:          found.Date,
			})
		}
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.UserID) == "" {
		vErr.add("user_id", "user id is required")
	}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	} else if _, err := recurrence.ParseDate(input.Date); err != nil {
		vErr.add("date", "date must be formatted as YYYY-MM-DD")
	}

	validTimeRange(input.StartTime, input.EndTime, vErr)

	if input.RepeatType != "" && !input.RepeatType.Known() {
		vErr.add("repeat_type", "unknown repeat type")
	}
	if input.EndDate != nil && strings.TrimSpace(*input.EndDate) != "" {
		if _, err := recurrence.ParseDate(*input.EndDate); err != nil {
			vErr.add("end_date", "end date must be formatted as YYYY-MM-DD")
		}
	}

	return vErr
}

// normalizeWallClock trims a seconds component so stored times compare
// uniformly as "HH:MM".
func normalizeWallClock(value string) string {
	if len(value) == 8 {
		return value[:5]
	}
	return value
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start time must be before end time")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	return err
}
