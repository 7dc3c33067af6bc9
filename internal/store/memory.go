package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vyrodovalexey/cars-api/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
// IDs come from a monotonic counter and are never reused.
type MemoryStore struct {
	mu     sync.RWMutex
	cars   map[int64]model.Car
	lastID int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cars: make(map[int64]model.Car),
	}
}

// List returns all cars ordered by ID.
func (s *MemoryStore) List(ctx context.Context) ([]model.Car, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list cars: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cars := make([]model.Car, 0, len(s.cars))
	for _, car := range s.cars {
		cars = append(cars, car)
	}

	slices.SortFunc(cars, func(a, b model.Car) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return cars, nil
}

// Get retrieves a car by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Car, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get car: %w", ctx.Err())
	default:
	}

	if id < 1 {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	car, exists := s.cars[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &car, nil
}

// Create adds a new car and returns it with its assigned ID.
func (s *MemoryStore) Create(ctx context.Context, input *model.CarInput) (*model.Car, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create car: %w", ctx.Err())
	default:
	}

	if input == nil {
		return nil, fmt.Errorf("create car: %w", ErrNilInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	car := model.Car{
		ID:    s.lastID,
		Make:  input.Make,
		Model: input.Model,
		Year:  input.Year,
	}

	s.cars[car.ID] = car

	return &car, nil
}

// Update replaces make, model and year of an existing car.
func (s *MemoryStore) Update(ctx context.Context, id int64, input *model.CarInput) (*model.Car, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update car: %w", ctx.Err())
	default:
	}

	if id < 1 {
		return nil, ErrInvalidID
	}

	if input == nil {
		return nil, fmt.Errorf("update car: %w", ErrNilInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cars[id]; !exists {
		return nil, ErrNotFound
	}

	car := model.Car{
		ID:    id,
		Make:  input.Make,
		Model: input.Model,
		Year:  input.Year,
	}

	s.cars[id] = car

	return &car, nil
}

// Delete removes a car by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete car: %w", ctx.Err())
	default:
	}

	if id < 1 {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cars[id]; !exists {
		return ErrNotFound
	}

	delete(s.cars, id)

	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
