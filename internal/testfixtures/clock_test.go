package testfixtures

import (
	"testing"
	"time"
)

func TestClockZeroStartUsesReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if got := clock.Now(); !got.Equal(ReferenceTime()) {
		t.Fatalf("Now() = %v, want ReferenceTime %v", got, ReferenceTime())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	advanced := clock.Advance(45 * time.Minute)
	if want := start.Add(45 * time.Minute); !advanced.Equal(want) {
		t.Fatalf("Advance returned %v, want %v", advanced, want)
	}

	pinned := start.Add(3 * time.Hour)
	clock.Set(pinned)
	if got := clock.Current(); !got.Equal(pinned) {
		t.Fatalf("Current() = %v, want %v", got, pinned)
	}
}

func TestClockNowFuncTracksClock(t *testing.T) {
	clock := NewClock(time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	if got := nowFn(); !got.Equal(clock.Current()) {
		t.Fatalf("NowFunc() = %v, want %v", got, clock.Current())
	}

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Current()) {
		t.Fatalf("NowFunc() after Advance = %v, want %v", got, clock.Current())
	}
}

func TestClockNilFallsBackToRealTime(t *testing.T) {
	var clock *Clock
	nowFn := clock.NowFunc()

	before := time.Now()
	got := nowFn()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Fatalf("nil clock NowFunc() = %v, want a real timestamp", got)
	}
}
