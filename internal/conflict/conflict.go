package conflict

// Booking carries the fields relevant to room double-booking detection.
// Dates are civil date strings and times are zero-padded wall-clock "HH:MM"
// strings, so lexicographic comparison matches temporal order.
type Booking struct {
	ID        string
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
}

// Conflict details an overlapping booking relation that callers can present
// to users.
type Conflict struct {
	WithBookingID string
	RoomID        string
	Date          string
}

// Overlaps applies the open-interval overlap test: [aStart, aEnd) and
// [bStart, bEnd) overlap iff aStart < bEnd AND bStart < aEnd. Ranges that
// merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// Detect identifies room conflicts for the candidate booking against
// existing ones. A booking never conflicts with itself.
func Detect(existing []Booking, candidate Booking) []Conflict {
	if candidate.RoomID == "" {
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if other.RoomID != candidate.RoomID || other.Date != candidate.Date {
			continue
		}
		if Overlaps(other.StartTime, other.EndTime, candidate.StartTime, candidate.EndTime) {
			conflicts = append(conflicts, Conflict{
				WithBookingID: other.ID,
				RoomID:        other.RoomID,
				Date:          other.Date,
			})
		}
	}
	return conflicts
}
