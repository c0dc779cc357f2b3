package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

type bookingRepoStub struct {
	created    []Booking
	createErr  error
	booking    Booking
	getErr     error
	list       []Booking
	listErr    error
	deleted    []string
	deleteErr  error
	overlaps   []Booking
	overlapErr error
}

func (s *bookingRepoStub) CreateBooking(ctx context.Context, booking Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, booking)
	return nil
}

func (s *bookingRepoStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	if s.getErr != nil {
		return Booking{}, s.getErr
	}
	return s.booking, nil
}

func (s *bookingRepoStub) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list, nil
}

func (s *bookingRepoStub) DeleteBooking(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *bookingRepoStub) QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]Booking, error) {
	if s.overlapErr != nil {
		return nil, s.overlapErr
	}
	return s.overlaps, nil
}

type roomCatalogStub struct {
	exists bool
	err    error
}

func (s *roomCatalogStub) RoomExists(ctx context.Context, id string) (bool, error) {
	return s.exists, s.err
}

type expanderStub struct {
	params ExpandParams
	result ExpandResult
	err    error
	calls  int
}

func (s *expanderStub) Expand(ctx context.Context, params ExpandParams) (ExpandResult, error) {
	s.calls++
	s.params = params
	return s.result, s.err
}

func newTestBookingService(repo *bookingRepoStub, rooms *roomCatalogStub, expander Expander) *BookingService {
	idGen := func() string { return "booking-1" }
	now := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return NewBookingService(repo, rooms, expander, idGen, now)
}

func validBookingInput() BookingInput {
	return BookingInput{
		UserID:    "user-1",
		RoomID:    "room-1",
		Title:     "Planning",
		Date:      "2024-06-03",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestCreateBookingPersistsSeed(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, nil)

	result, err := service.CreateBooking(context.Background(), validBookingInput())
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created booking, got %d", len(repo.created))
	}
	seed := repo.created[0]
	if seed.ID != "booking-1" {
		t.Errorf("seed id = %q", seed.ID)
	}
	if seed.RepeatType != recurrence.RepeatNone {
		t.Errorf("seed repeat type = %q, want %q", seed.RepeatType, recurrence.RepeatNone)
	}
	if seed.IsRecurring {
		t.Error("seed must not be marked recurring")
	}
	if result.Expansion != nil {
		t.Error("non repeating booking must not trigger expansion")
	}
}

func TestCreateBookingNormalizesTimes(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, nil)

	input := validBookingInput()
	input.StartTime = "10:00:00"
	input.EndTime = "11:00:00"

	if _, err := service.CreateBooking(context.Background(), input); err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if got := repo.created[0]; got.StartTime != "10:00" || got.EndTime != "11:00" {
		t.Fatalf("stored slot = %s-%s, want 10:00-11:00", got.StartTime, got.EndTime)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{
		overlaps: []Booking{{ID: "other", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:30", EndTime: "11:30"}},
	}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, nil)

	_, err := service.CreateBooking(context.Background(), validBookingInput())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time_slot"]; !ok {
		t.Fatalf("expected time_slot field, got %v", vErr.FieldErrors)
	}
	if len(repo.created) != 0 {
		t.Fatal("conflicting booking must not be persisted")
	}
}

func TestCreateBookingRejectsUnknownRoom(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{}
	service := newTestBookingService(repo, &roomCatalogStub{exists: false}, nil)

	_, err := service.CreateBooking(context.Background(), validBookingInput())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["room_id"]; !ok {
		t.Fatalf("expected room_id field, got %v", vErr.FieldErrors)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(*BookingInput)
		wantField string
	}{
		{"missing user", func(i *BookingInput) { i.UserID = "" }, "user_id"},
		{"missing room", func(i *BookingInput) { i.RoomID = "" }, "room_id"},
		{"missing title", func(i *BookingInput) { i.Title = "  " }, "title"},
		{"missing date", func(i *BookingInput) { i.Date = "" }, "date"},
		{"malformed date", func(i *BookingInput) { i.Date = "June 3rd" }, "date"},
		{"malformed start", func(i *BookingInput) { i.StartTime = "10" }, "start_time"},
		{"malformed end", func(i *BookingInput) { i.EndTime = "25:99" }, "end_time"},
		{"inverted range", func(i *BookingInput) { i.StartTime, i.EndTime = "11:00", "10:00" }, "time"},
		{"unknown repeat type", func(i *BookingInput) { i.RepeatType = "yearly" }, "repeat_type"},
		{"malformed end date", func(i *BookingInput) { end := "soon"; i.EndDate = &end }, "end_date"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &bookingRepoStub{}
			service := newTestBookingService(repo, &roomCatalogStub{exists: true}, nil)

			input := validBookingInput()
			tc.mutate(&input)

			_, err := service.CreateBooking(context.Background(), input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.wantField]; !ok {
				t.Fatalf("expected field %q in %v", tc.wantField, vErr.FieldErrors)
			}
		})
	}
}

func TestCreateBookingRunsExpansionForRepeatingTypes(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{}
	expander := &expanderStub{result: ExpandResult{Count: 4}}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, expander)

	input := validBookingInput()
	input.RepeatType = recurrence.RepeatWeekly
	input.EndDate = strPtr("2024-06-24")

	result, err := service.CreateBooking(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	if expander.calls != 1 {
		t.Fatalf("expander calls = %d, want 1", expander.calls)
	}
	if expander.params.Seed.ID != "booking-1" {
		t.Errorf("expansion seed id = %q", expander.params.Seed.ID)
	}
	if expander.params.RepeatType != recurrence.RepeatWeekly {
		t.Errorf("expansion repeat type = %q", expander.params.RepeatType)
	}
	if expander.params.EndDate == nil || *expander.params.EndDate != "2024-06-24" {
		t.Errorf("expansion end date = %v", expander.params.EndDate)
	}
	if result.Expansion == nil || result.Expansion.Count != 4 {
		t.Fatalf("expansion result = %+v", result.Expansion)
	}
}

func TestCreateBookingExpansionFailureSurfaces(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{}
	expander := &expanderStub{err: errors.New("insert occurrences: disk full")}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, expander)

	input := validBookingInput()
	input.RepeatType = recurrence.RepeatDaily

	_, err := service.CreateBooking(context.Background(), input)
	if err == nil {
		t.Fatal("expected error when expansion fails")
	}
	if !errors.Is(err, expander.err) {
		t.Fatalf("error %v does not wrap expansion failure", err)
	}
	// The seed itself is persisted before expansion runs.
	if len(repo.created) != 1 {
		t.Fatalf("expected the seed to be persisted, created = %d", len(repo.created))
	}
}

func TestGetBookingMapsNotFound(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{getErr: persistence.ErrNotFound}
	service := newTestBookingService(repo, nil, nil)

	_, err := service.GetBooking(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBookingsSortsAndWarns(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{list: []Booking{
		{ID: "b2", RoomID: "room-1", Date: "2024-06-04", StartTime: "09:00", EndTime: "10:00"},
		{ID: "b1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"},
		{ID: "b3", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:30", EndTime: "11:30"},
	}}
	service := newTestBookingService(repo, nil, nil)

	bookings, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}

	wantOrder := []string{"b1", "b3", "b2"}
	for i, booking := range bookings {
		if booking.ID != wantOrder[i] {
			t.Errorf("bookings[%d] = %s, want %s", i, booking.ID, wantOrder[i])
		}
	}

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", warnings)
	}
	if warnings[0].BookingID != "b1" || warnings[0].WithBookingID != "b3" {
		t.Fatalf("unexpected warning %+v", warnings[0])
	}
}

func TestListBookingsRejectsMalformedDates(t *testing.T) {
	t.Parallel()

	service := newTestBookingService(&bookingRepoStub{}, nil, nil)

	_, _, err := service.ListBookings(context.Background(), ListBookingsParams{DateFrom: "yesterday"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["date_from"]; !ok {
		t.Fatalf("expected date_from field, got %v", vErr.FieldErrors)
	}
}

func TestDeleteBooking(t *testing.T) {
	t.Parallel()

	t.Run("removes existing booking", func(t *testing.T) {
		t.Parallel()
		repo := &bookingRepoStub{booking: Booking{ID: "b1"}}
		service := newTestBookingService(repo, nil, nil)

		if err := service.DeleteBooking(context.Background(), "b1"); err != nil {
			t.Fatalf("DeleteBooking returned error: %v", err)
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != "b1" {
			t.Fatalf("deleted = %v", repo.deleted)
		}
	})

	t.Run("maps missing booking", func(t *testing.T) {
		t.Parallel()
		repo := &bookingRepoStub{getErr: persistence.ErrNotFound}
		service := newTestBookingService(repo, nil, nil)

		if err := service.DeleteBooking(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMapBookingRepoError(t *testing.T) {
	t.Parallel()

	if err := mapBookingRepoError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := mapBookingRepoError(persistence.ErrDuplicate); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate mapped to %v", err)
	}

	var vErr *ValidationError
	if err := mapBookingRepoError(persistence.ErrConstraintViolation); !errors.As(err, &vErr) {
		t.Fatalf("constraint violation mapped to %v", err)
	} else if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("constraint violation fields = %v", vErr.FieldErrors)
	}

	vErr = nil
	if err := mapBookingRepoError(persistence.ErrForeignKeyViolation); !errors.As(err, &vErr) {
		t.Fatalf("foreign key violation mapped to %v", err)
	} else if _, ok := vErr.FieldErrors["room_id"]; !ok {
		t.Fatalf("foreign key violation fields = %v", vErr.FieldErrors)
	}

	sentinel := errors.New("opaque")
	if err := mapBookingRepoError(sentinel); !errors.Is(err, sentinel) {
		t.Fatalf("opaque error mapped to %v", err)
	}
}

func TestExpandRefreshesListWarnings(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{list: []Booking{
		{ID: "b1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"},
		{ID: "b2", RoomID: "room-1", Date: "2024-06-03", StartTime: "11:00", EndTime: "12:00"},
	}}
	expander := &expanderStub{result: ExpandResult{Count: 2}}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, expander)

	if _, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{}); err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	} else if len(warnings) != 0 {
		t.Fatalf("expected no warnings for adjacent slots, got %+v", warnings)
	}

	// The repository now holds an overlapping pair, but the cached (empty)
	// warning set is still served.
	repo.list[1].StartTime = "10:30"
	repo.list[1].EndTime = "11:30"
	if _, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{}); err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	} else if len(warnings) != 0 {
		t.Fatalf("expected cached warnings, got %+v", warnings)
	}

	if _, err := service.Expand(context.Background(), ExpandParams{}); err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if expander.calls != 1 {
		t.Fatalf("expander called %d times", expander.calls)
	}

	_, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(warnings) != 1 || warnings[0].BookingID != "b1" || warnings[0].WithBookingID != "b2" {
		t.Fatalf("expected recomputed warning for b1/b2, got %+v", warnings)
	}
}

func TestExpandKeepsCacheWhenNothingInserted(t *testing.T) {
	t.Parallel()

	repo := &bookingRepoStub{list: []Booking{
		{ID: "b1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"},
	}}
	expander := &expanderStub{result: ExpandResult{Count: 0}}
	service := newTestBookingService(repo, &roomCatalogStub{exists: true}, expander)

	if _, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{}); err != nil || warnings != nil {
		t.Fatalf("ListBookings = %v, %v", warnings, err)
	}

	if _, err := service.Expand(context.Background(), ExpandParams{}); err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	repo.list = append(repo.list, Booking{ID: "b2", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:30", EndTime: "11:30"})
	if _, warnings, err := service.ListBookings(context.Background(), ListBookingsParams{}); err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	} else if warnings != nil {
		t.Fatalf("expected cache to survive a no-op expansion, got %+v", warnings)
	}
}

func TestExpandPropagatesFailure(t *testing.T) {
	t.Parallel()

	expander := &expanderStub{err: errors.New("insert occurrences: disk full")}
	service := newTestBookingService(&bookingRepoStub{}, nil, expander)

	if _, err := service.Expand(context.Background(), ExpandParams{}); err == nil || err.Error() != "insert occurrences: disk full" {
		t.Fatalf("expected expansion failure, got %v", err)
	}
}
