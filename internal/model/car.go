// Package model defines data structures used throughout the application.
package model

import (
	"time"
)

// Car represents a stored car record.
type Car struct {
	ID    int64  `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// CarInput holds the client-supplied fields of a car.
// Values reaching a store have already passed Validate.
type CarInput struct {
	Make  string `json:"make" validate:"carmake"`
	Model string `json:"model" validate:"carmodel"`
	Year  int    `json:"year" validate:"min=1886,max=2023"`
}

// Input returns the mutable fields of the car.
func (c Car) Input() CarInput {
	return CarInput{
		Make:  c.Make,
		Model: c.Model,
		Year:  c.Year,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CarEvent is published on the event stream after a successful write.
type CarEvent struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Car       *Car      `json:"car,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Car event types.
const (
	CarEventCreated = "car_created"
	CarEventUpdated = "car_updated"
	CarEventDeleted = "car_deleted"
)

// NewCarEvent creates an event of the given type for car.
func NewCarEvent(eventType string, car Car) CarEvent {
	c := car
	return CarEvent{
		Type:      eventType,
		ID:        car.ID,
		Car:       &c,
		Timestamp: time.Now().UTC(),
	}
}

// NewCarDeletedEvent creates a deletion event for the car with the given ID.
func NewCarDeletedEvent(id int64) CarEvent {
	return CarEvent{
		Type:      CarEventDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}
