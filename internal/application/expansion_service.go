package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

// BookingStore captures the persistence interactions needed by recurring
// expansion: one overlap query per candidate date and a single transactional
// bulk insert at the end.
type BookingStore interface {
	QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]Booking, error)
	InsertBookings(ctx context.Context, bookings []Booking) error
}

// ExpansionService generates recurring occurrences from a seed booking.
//
// The seed booking has already been persisted by the caller; the service
// enumerates future occurrence dates, filters them through the holiday
// calendar and per-date conflict checks, and bulk-inserts only the surviving
// occurrences. The run is a single sequential pass: each conflict check is a
// blocking round trip, executed one after another, so conflict visibility is
// not reordered against concurrently inserted bookings.
type ExpansionService struct {
	store       BookingStore
	calendar    recurrence.HolidayCalendar
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewExpansionService wires dependencies for recurring expansion.
func NewExpansionService(store BookingStore, calendar recurrence.HolidayCalendar, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ExpansionService {
	if calendar == nil {
		calendar = recurrence.RegionalCalendar{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ExpansionService{
		store:       store,
		calendar:    calendar,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Expand validates the request, enumerates candidate dates and persists the
// non-conflicting occurrences.
//
// Malformed input is fatal and nothing is enumerated. A conflict-check query
// failure for a single candidate date is not fatal: that date is skipped,
// the failure is logged and counted in the result, and enumeration
// continues. A bulk-insert failure at the end is fatal; the attempted batch
// is discarded.
func (s *ExpansionService) Expand(ctx context.Context, params ExpandParams) (ExpandResult, error) {
	if s == nil || s.store == nil {
		return ExpandResult{}, fmt.Errorf("expansion service not configured")
	}

	seedDate, endDate, err := s.validate(params)
	if err != nil {
		return ExpandResult{}, err
	}

	seed := params.Seed
	logger := serviceLogger(ctx, s.logger, "expansion", "expand",
		"seed_id", seed.ID,
		"room_id", seed.RoomID,
		"repeat_type", string(params.RepeatType),
	)

	candidates, err := recurrence.Enumerate(seedDate, params.RepeatType, endDate, s.calendar)
	if err != nil {
		// Unreachable for validated input; the enumerator stops defensively
		// on repeat types without a step rule.
		return ExpandResult{}, err
	}

	result := ExpandResult{}
	staged := make([]Booking, 0, len(candidates))

	for _, candidate := range candidates {
		date := recurrence.FormatDate(candidate.Date)

		if candidate.Excluded {
			result.SkippedExcluded++
			logger.DebugContext(ctx, "skipping excluded date", "date", date)
			continue
		}

		conflicts, err := s.store.QueryOverlap(ctx, seed.RoomID, date, seed.StartTime, seed.EndTime, seed.ID)
		if err != nil {
			result.SkippedErrors++
			logger.ErrorContext(ctx, "conflict check failed, skipping date", "date", date, "error", err)
			continue
		}
		if len(conflicts) > 0 {
			result.SkippedConflicts++
			logger.InfoContext(ctx, "skipping conflicting date", "date", date, "existing_id", conflicts[0].ID)
			continue
		}

		staged = append(staged, s.buildOccurrence(seed, params.UserID, date))
	}

	// The seed was persisted by the caller; never emit a duplicate of it.
	emitted := staged[:0]
	for _, occurrence := range staged {
		if occurrence.Date == seed.Date && occurrence.StartTime == seed.StartTime && occurrence.EndTime == seed.EndTime {
			continue
		}
		emitted = append(emitted, occurrence)
	}

	result.Emitted = emitted
	result.Count = len(emitted)

	if len(emitted) == 0 {
		logger.InfoContext(ctx, "no occurrences to insert",
			"excluded", result.SkippedExcluded,
			"conflicts", result.SkippedConflicts,
			"errors", result.SkippedErrors,
		)
		return result, nil
	}

	if err := s.store.InsertBookings(ctx, emitted); err != nil {
		return ExpandResult{}, fmt.Errorf("insert occurrences: %w", err)
	}

	logger.InfoContext(ctx, "inserted recurring occurrences",
		"count", result.Count,
		"excluded", result.SkippedExcluded,
		"conflicts", result.SkippedConflicts,
		"errors", result.SkippedErrors,
	)
	return result, nil
}

func (s *ExpansionService) buildOccurrence(seed Booking, userID, date string) Booking {
	parentID := seed.ID
	createdAt := s.now()
	return Booking{
		ID:              s.idGenerator(),
		UserID:          userID,
		RoomID:          seed.RoomID,
		Title:           seed.Title,
		Remarks:         seed.Remarks,
		Date:            date,
		StartTime:       seed.StartTime,
		EndTime:         seed.EndTime,
		RepeatType:      recurrence.RepeatNone,
		IsRecurring:     true,
		ParentBookingID: &parentID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// validate rejects malformed input before anything is enumerated. Unknown
// repeat types are an explicit validation failure rather than a silent stop.
func (s *ExpansionService) validate(params ExpandParams) (time.Time, *time.Time, error) {
	vErr := &ValidationError{}

	seed := params.Seed
	if seed.ID == "" {
		vErr.add("initial_booking", "initial booking is required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("user_id", "user id is required")
	}
	if params.RepeatType == "" {
		vErr.add("repeat_type", "repeat type is required")
	} else if !params.RepeatType.Repeats() {
		vErr.add("repeat_type", "repeat type must be daily, weekly, monthly or custom")
	}

	var seedDate time.Time
	if seed.ID != "" {
		parsed, err := recurrence.ParseDate(seed.Date)
		if err != nil {
			vErr.add("date", "date must be formatted as YYYY-MM-DD")
		} else {
			seedDate = parsed
		}
		if seed.RoomID == "" {
			vErr.add("room_id", "room id is required")
		}
		validTimeRange(seed.StartTime, seed.EndTime, vErr)
	}

	var endDate *time.Time
	if params.EndDate != nil && strings.TrimSpace(*params.EndDate) != "" {
		parsed, err := recurrence.ParseDate(*params.EndDate)
		if err != nil {
			vErr.add("end_date", "end date must be formatted as YYYY-MM-DD")
		} else {
			endDate = &parsed
		}
	}

	if vErr.HasErrors() {
		return time.Time{}, nil, vErr
	}
	return seedDate, endDate, nil
}

func validTimeRange(start, end string, vErr *ValidationError) bool {
	ok := true
	if !validWallClock(start) {
		vErr.add("start_time", "start time must be formatted as HH:MM")
		ok = false
	}
	if !validWallClock(end) {
		vErr.add("end_time", "end time must be formatted as HH:MM")
		ok = false
	}
	if ok && start >= end {
		vErr.add("time", "start time must be before end time")
		ok = false
	}
	return ok
}

// validWallClock accepts zero-padded "HH:MM" (seconds tolerated), the format
// in which times compare lexicographically in temporal order.
func validWallClock(value string) bool {
	if len(value) != 5 && len(value) != 8 {
		return false
	}
	layout := "15:04"
	if len(value) == 8 {
		layout = "15:04:05"
	}
	_, err := time.Parse(layout, value)
	return err == nil
}
