package models

import "time"

type EventStatus string

const (
	EventUpcoming         EventStatus = "upcoming"
	EventRegistrationOpen EventStatus = "registration_open"
	EventCheckIn          EventStatus = "check_in"
	EventInProgress       EventStatus = "in_progress"
	EventCompleted        EventStatus = "completed"
	EventCancelled        EventStatus = "cancelled"
)

type Event struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Date      time.Time   `json:"date"`
	Venue     string      `json:"venue"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
