// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/cars-api/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("car not found")
	ErrInvalidID = errors.New("invalid car ID")
	ErrNilInput  = errors.New("car input cannot be nil")
)

// Store defines the interface for car storage operations.
// Implementations do not re-validate input; callers validate before writing.
type Store interface {
	// List returns all cars ordered by ID.
	List(ctx context.Context) ([]model.Car, error)

	// Get retrieves a car by its ID.
	Get(ctx context.Context, id int64) (*model.Car, error)

	// Create adds a new car and returns it with its assigned ID.
	Create(ctx context.Context, input *model.CarInput) (*model.Car, error)

	// Update replaces make, model and year of an existing car.
	Update(ctx context.Context, id int64, input *model.CarInput) (*model.Car, error)

	// Delete removes a car by its ID.
	Delete(ctx context.Context, id int64) error
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
