package models

import "github.com/google/uuid"

// Event is a single detection alert as shown in the feed.
type Event struct {
	ID              uuid.UUID `json:"id"`
	AlertMessage    string    `json:"alert_message"`
	TimeOfDetection string    `json:"time_of_detection"`
	// Remote record key, used only to keep ordering stable
	Key string `json:"-"`
}

// Events is an ordered feed of events.
type Events []Event

// NewEvent creates an event with a fresh local identity.
func NewEvent(key, alertMessage, timeOfDetection string) Event {
	return Event{
		ID:              uuid.New(),
		AlertMessage:    alertMessage,
		TimeOfDetection: timeOfDetection,
		Key:             key,
	}
}

// Equal reports whether both events have the same identity and content.
func (e Event) Equal(other Event) bool {
	return e.ID == other.ID &&
		e.AlertMessage == other.AlertMessage &&
		e.TimeOfDetection == other.TimeOfDetection
}

// Batch is the outcome of a single fetch.
type Batch struct {
	Events Events
	// Records that were discarded because a required field was missing or not a string
	Dropped int
}
