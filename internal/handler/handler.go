// Package handler provides HTTP request handlers for the cars API.
package handler

import "github.com/vyrodovalexey/cars-api/internal/model"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// EventPublisher receives car events after successful writes.
type EventPublisher interface {
	Publish(event model.CarEvent)
}
