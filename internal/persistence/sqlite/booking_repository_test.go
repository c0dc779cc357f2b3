package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func createTestRoom(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	if err := store.Rooms.CreateRoom(context.Background(), testRoom(id, "Room "+id)); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")

	booking := testBooking("b1", "room1", "2024-06-03", "10:00", "11:00")
	booking.Remarks = "Bring the roadmap"
	if err := store.Bookings.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	retrieved, err := store.Bookings.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if retrieved.Title != "Team meeting" || retrieved.Remarks != "Bring the roadmap" {
		t.Errorf("unexpected booking: %+v", retrieved)
	}
	if retrieved.Date != "2024-06-03" || retrieved.StartTime != "10:00" || retrieved.EndTime != "11:00" {
		t.Errorf("unexpected slot: %s %s-%s", retrieved.Date, retrieved.StartTime, retrieved.EndTime)
	}
	if retrieved.ParentBookingID != nil {
		t.Errorf("expected nil parent, got %v", *retrieved.ParentBookingID)
	}
	if !retrieved.CreatedAt.Equal(testTimestamp()) {
		t.Errorf("CreatedAt = %v, want %v", retrieved.CreatedAt, testTimestamp())
	}
}

func TestBookingRepository_ForeignKeys(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")

	t.Run("unknown room", func(t *testing.T) {
		booking := testBooking("b1", "missing-room", "2024-06-03", "10:00", "11:00")
		err := store.Bookings.CreateBooking(ctx, booking)
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("unknown parent booking", func(t *testing.T) {
		booking := testBooking("b2", "room1", "2024-06-03", "10:00", "11:00")
		parent := "missing-parent"
		booking.ParentBookingID = &parent
		err := store.Bookings.CreateBooking(ctx, booking)
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})
}

func TestBookingRepository_TimeRangeCheck(t *testing.T) {
	store := setupStore(t)
	createTestRoom(t, store, "room1")

	booking := testBooking("b1", "room1", "2024-06-03", "11:00", "10:00")
	err := store.Bookings.CreateBooking(context.Background(), booking)
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestBookingRepository_QueryOverlap(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")
	createTestRoom(t, store, "room2")

	bookings := []persistence.Booking{
		testBooking("b1", "room1", "2024-06-03", "10:00", "11:00"),
		testBooking("b2", "room1", "2024-06-03", "11:00", "12:00"),
		testBooking("b3", "room2", "2024-06-03", "10:00", "11:00"),
		testBooking("b4", "room1", "2024-06-04", "10:00", "11:00"),
	}
	for _, booking := range bookings {
		if err := store.Bookings.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("CreateBooking(%s) failed: %v", booking.ID, err)
		}
	}

	t.Run("open interval overlap", func(t *testing.T) {
		matches, err := store.Bookings.QueryOverlap(ctx, "room1", "2024-06-03", "10:30", "11:30", "")
		if err != nil {
			t.Fatalf("QueryOverlap failed: %v", err)
		}
		if len(matches) != 2 || matches[0].ID != "b1" || matches[1].ID != "b2" {
			t.Fatalf("unexpected matches: %+v", matches)
		}
	})

	t.Run("touching ranges excluded", func(t *testing.T) {
		matches, err := store.Bookings.QueryOverlap(ctx, "room1", "2024-06-03", "09:00", "10:00", "")
		if err != nil {
			t.Fatalf("QueryOverlap failed: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no matches, got %+v", matches)
		}
	})

	t.Run("exclude id", func(t *testing.T) {
		matches, err := store.Bookings.QueryOverlap(ctx, "room1", "2024-06-03", "10:00", "11:00", "b1")
		if err != nil {
			t.Fatalf("QueryOverlap failed: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no matches when excluding b1, got %+v", matches)
		}
	})

	t.Run("scoped to room and date", func(t *testing.T) {
		matches, err := store.Bookings.QueryOverlap(ctx, "room2", "2024-06-04", "10:00", "11:00", "")
		if err != nil {
			t.Fatalf("QueryOverlap failed: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no matches, got %+v", matches)
		}
	})
}

func TestBookingRepository_InsertBookingsAtomic(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")

	batch := []persistence.Booking{
		testBooking("b1", "room1", "2024-06-03", "10:00", "11:00"),
		testBooking("b2", "missing-room", "2024-06-04", "10:00", "11:00"),
	}
	err := store.Bookings.InsertBookings(ctx, batch)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	// The transaction must roll back the first row as well.
	if _, err := store.Bookings.GetBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected rollback of b1, got %v", err)
	}
}

func TestBookingRepository_DeleteCascadesToOccurrences(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")

	seed := testBooking("seed", "room1", "2024-06-03", "10:00", "11:00")
	if err := store.Bookings.CreateBooking(ctx, seed); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	parent := "seed"
	occurrences := []persistence.Booking{
		testBooking("occ1", "room1", "2024-06-04", "10:00", "11:00"),
		testBooking("occ2", "room1", "2024-06-05", "10:00", "11:00"),
	}
	for i := range occurrences {
		occurrences[i].ParentBookingID = &parent
		occurrences[i].IsRecurring = true
	}
	if err := store.Bookings.InsertBookings(ctx, occurrences); err != nil {
		t.Fatalf("InsertBookings failed: %v", err)
	}

	if err := store.Bookings.DeleteBooking(ctx, "seed"); err != nil {
		t.Fatalf("DeleteBooking failed: %v", err)
	}
	for _, id := range []string{"occ1", "occ2"} {
		if _, err := store.Bookings.GetBooking(ctx, id); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected %s to cascade, got %v", id, err)
		}
	}
}

func TestBookingRepository_DeleteMissingBooking(t *testing.T) {
	store := setupStore(t)

	err := store.Bookings.DeleteBooking(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_ListBookings(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	createTestRoom(t, store, "room1")
	createTestRoom(t, store, "room2")

	b1 := testBooking("b1", "room1", "2024-06-04", "09:00", "10:00")
	b2 := testBooking("b2", "room1", "2024-06-03", "10:00", "11:00")
	b3 := testBooking("b3", "room2", "2024-06-03", "10:00", "11:00")
	b3.UserID = "user2"
	for _, booking := range []persistence.Booking{b1, b2, b3} {
		if err := store.Bookings.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("CreateBooking(%s) failed: %v", booking.ID, err)
		}
	}

	t.Run("unfiltered list is ordered", func(t *testing.T) {
		bookings, err := store.Bookings.ListBookings(ctx, persistence.BookingFilter{})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(bookings) != 3 {
			t.Fatalf("expected 3 bookings, got %d", len(bookings))
		}
		if bookings[0].Date != "2024-06-03" || bookings[2].ID != "b1" {
			t.Fatalf("unexpected order: %+v", bookings)
		}
	})

	t.Run("filters combine", func(t *testing.T) {
		bookings, err := store.Bookings.ListBookings(ctx, persistence.BookingFilter{
			RoomID:   "room1",
			UserID:   "user1",
			DateFrom: "2024-06-04",
			DateTo:   "2024-06-04",
		})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(bookings) != 1 || bookings[0].ID != "b1" {
			t.Fatalf("unexpected filtered result: %+v", bookings)
		}
	})
}
