package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/cars-api/internal/model"
)

// Operation result labels.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

// Prometheus metrics.
var (
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cars_store_operations_total",
			Help: "Total number of car store operations by result",
		},
		[]string{"operation", "result"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cars_store_operation_duration_seconds",
			Help:    "Car store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// InstrumentedStore wraps a Store and records Prometheus metrics for every call.
type InstrumentedStore struct {
	next Store
}

// NewInstrumentedStore creates a new InstrumentedStore around next.
func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

// List returns all cars ordered by ID.
func (s *InstrumentedStore) List(ctx context.Context) ([]model.Car, error) {
	defer s.observe("list", time.Now())
	cars, err := s.next.List(ctx)
	s.count("list", err)
	return cars, err
}

// Get retrieves a car by its ID.
func (s *InstrumentedStore) Get(ctx context.Context, id int64) (*model.Car, error) {
	defer s.observe("get", time.Now())
	car, err := s.next.Get(ctx, id)
	s.count("get", err)
	return car, err
}

// Create adds a new car and returns it with its assigned ID.
func (s *InstrumentedStore) Create(ctx context.Context, input *model.CarInput) (*model.Car, error) {
	defer s.observe("create", time.Now())
	car, err := s.next.Create(ctx, input)
	s.count("create", err)
	return car, err
}

// Update replaces make, model and year of an existing car.
func (s *InstrumentedStore) Update(ctx context.Context, id int64, input *model.CarInput) (*model.Car, error) {
	defer s.observe("update", time.Now())
	car, err := s.next.Update(ctx, id, input)
	s.count("update", err)
	return car, err
}

// Delete removes a car by its ID.
func (s *InstrumentedStore) Delete(ctx context.Context, id int64) error {
	defer s.observe("delete", time.Now())
	err := s.next.Delete(ctx, id)
	s.count("delete", err)
	return err
}

// Ping forwards to the wrapped store when it supports health checks.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *InstrumentedStore) observe(operation string, start time.Time) {
	storeOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) count(operation string, err error) {
	storeOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrNotFound):
		return resultNotFound
	default:
		return resultError
	}
}
