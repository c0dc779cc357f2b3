package conflict

import "testing"

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical ranges", "10:00", "11:00", "10:00", "11:00", true},
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"containment", "09:00", "12:00", "10:00", "11:00", true},
		{"touching end to start", "10:00", "11:00", "11:00", "12:00", false},
		{"touching start to end", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps(%s-%s, %s-%s) = %v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "b1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"},
		{ID: "b2", RoomID: "room-1", Date: "2024-06-03", StartTime: "11:00", EndTime: "12:00"},
		{ID: "b3", RoomID: "room-2", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"},
		{ID: "b4", RoomID: "room-1", Date: "2024-06-04", StartTime: "10:00", EndTime: "11:00"},
	}

	t.Run("overlapping booking in same room and date", func(t *testing.T) {
		t.Parallel()
		candidate := Booking{ID: "c1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:30", EndTime: "11:30"}
		conflicts := Detect(existing, candidate)
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %d: %+v", len(conflicts), conflicts)
		}
		if conflicts[0].WithBookingID != "b1" || conflicts[1].WithBookingID != "b2" {
			t.Fatalf("unexpected conflict partners: %+v", conflicts)
		}
	})

	t.Run("adjacent slot does not conflict", func(t *testing.T) {
		t.Parallel()
		candidate := Booking{ID: "c2", RoomID: "room-1", Date: "2024-06-03", StartTime: "12:00", EndTime: "13:00"}
		if conflicts := Detect(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("different room never conflicts", func(t *testing.T) {
		t.Parallel()
		candidate := Booking{ID: "c3", RoomID: "room-3", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"}
		if conflicts := Detect(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("booking never conflicts with itself", func(t *testing.T) {
		t.Parallel()
		candidate := Booking{ID: "b1", RoomID: "room-1", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"}
		conflicts := Detect(existing, candidate)
		for _, conflict := range conflicts {
			if conflict.WithBookingID == "b1" {
				t.Fatalf("booking conflicted with itself: %+v", conflicts)
			}
		}
	})

	t.Run("missing room id yields nothing", func(t *testing.T) {
		t.Parallel()
		candidate := Booking{ID: "c4", Date: "2024-06-03", StartTime: "10:00", EndTime: "11:00"}
		if conflicts := Detect(existing, candidate); conflicts != nil {
			t.Fatalf("expected nil conflicts, got %+v", conflicts)
		}
	})
}
