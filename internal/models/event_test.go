package models

import "testing"

func TestNewEventAssignsDistinctIDs(t *testing.T) {
	a := NewEvent("k1", "Smoke detected", "2024-05-01T08:00:00")
	b := NewEvent("k1", "Smoke detected", "2024-05-01T08:00:00")

	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %s twice", a.ID)
	}
	if a.Equal(b) {
		t.Fatal("events with different ids must not be equal")
	}
	if !a.Equal(a) {
		t.Fatal("event must equal itself")
	}
}

func TestEqualIgnoresKey(t *testing.T) {
	a := NewEvent("k1", "Door opened", "2024-05-01T08:00:00")
	b := a
	b.Key = "k2"

	if !a.Equal(b) {
		t.Fatal("key is not part of identity")
	}

	b.AlertMessage = "Window opened"
	if a.Equal(b) {
		t.Fatal("different messages must not be equal")
	}
}
