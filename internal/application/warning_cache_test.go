package application

import (
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

func TestWarningCacheStoresAndReturnsCopies(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newWarningCache(time.Minute, 4, func() time.Time { return current })

	original := []ConflictWarning{{BookingID: "booking-1", WithBookingID: "booking-2"}}
	cache.Store("key", original)

	// Mutating the original slice should not affect the cached copy.
	original[0].BookingID = "mutated"

	cached, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0].BookingID != "booking-1" {
		t.Fatalf("expected cached booking id to remain unchanged, got %s", cached[0].BookingID)
	}

	// Mutating the returned slice should not be visible on subsequent reads.
	cached[0].BookingID = "changed"
	cachedAgain, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit on second read")
	}
	if cachedAgain[0].BookingID != "booking-1" {
		t.Fatalf("expected cache to return independent copy, got %s", cachedAgain[0].BookingID)
	}
}

func TestWarningCacheExpiresEntries(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newWarningCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", []ConflictWarning{{BookingID: "booking-1"}})
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestWarningCacheInvalidate(t *testing.T) {
	cache := newWarningCache(time.Minute, 4, time.Now)
	cache.Store("key", []ConflictWarning{{BookingID: "booking-1"}})
	cache.Invalidate()
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestWarningCacheEvictsWhenFull(t *testing.T) {
	cache := newWarningCache(time.Minute, 2, time.Now)
	cache.Store("a", []ConflictWarning{{BookingID: "booking-1"}})
	cache.Store("b", []ConflictWarning{{BookingID: "booking-2"}})
	cache.Store("c", []ConflictWarning{{BookingID: "booking-3"}})

	hits := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := cache.Get(key); ok {
			hits++
		}
	}
	if hits != 2 {
		t.Fatalf("expected 2 surviving entries, got %d", hits)
	}
}

func TestBuildWarningCacheKey(t *testing.T) {
	key := buildWarningCacheKey(persistence.BookingFilter{RoomID: "room-1", UserID: "user-1", DateFrom: "2024-06-01", DateTo: "2024-06-30"})
	if key != "room-1|user-1|2024-06-01|2024-06-30" {
		t.Fatalf("unexpected cache key %q", key)
	}

	other := buildWarningCacheKey(persistence.BookingFilter{RoomID: "room-2"})
	if key == other {
		t.Fatalf("distinct filters must produce distinct keys")
	}
}
