package models

// Detection is the record a detector pushes to the database.
type Detection struct {
	EventType    string `json:"event_type"`
	EventMessage string `json:"event_message"`
	Timestamp    string `json:"timestamp"`
}
