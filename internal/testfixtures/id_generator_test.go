package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("booking")

	if got := gen.Next(); got != "booking-1" {
		t.Fatalf("first id = %q", got)
	}
	if got := gen.Next(); got != "booking-2" {
		t.Fatalf("second id = %q", got)
	}

	gen.SetCounter(41)
	if got := gen.Next(); got != "booking-42" {
		t.Fatalf("after SetCounter got %q", got)
	}

	gen.SetPrefix("room")
	if got := gen.Next(); got != "room-43" {
		t.Fatalf("after SetPrefix got %q", got)
	}
}

func TestIDGeneratorDefaults(t *testing.T) {
	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("default prefix id = %q", got)
	}

	var nilGen *IDGenerator
	if got := nilGen.NextFunc()(); got != "" {
		t.Fatalf("nil generator produced %q", got)
	}
}

func TestBookingFixtureParentOption(t *testing.T) {
	fixture := NewBookingFixture(WithBookingParent("seed-1"))
	if fixture.ParentBookingID == nil || *fixture.ParentBookingID != "seed-1" {
		t.Fatalf("parent = %v", fixture.ParentBookingID)
	}
	if !fixture.IsRecurring {
		t.Fatal("occurrence fixture must be marked recurring")
	}
	if fixture.RepeatType != "no_repeat" {
		t.Fatalf("occurrence repeat type = %q", fixture.RepeatType)
	}
}
