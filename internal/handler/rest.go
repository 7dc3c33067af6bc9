package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/cars-api/internal/model"
	"github.com/vyrodovalexey/cars-api/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 2 * time.Second
)

// Error messages returned to clients.
const (
	msgCarNotFound   = "car not found"
	msgInternalError = "internal server error"
)

// RESTHandler handles REST API requests for cars.
type RESTHandler struct {
	store  store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. events may be nil.
func NewRESTHandler(s store.Store, events EventPublisher, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadinessCheck).Methods(http.MethodGet)
	router.HandleFunc("/cars", h.ListCars).Methods(http.MethodGet)
	router.HandleFunc("/cars", h.CreateCar).Methods(http.MethodPost)
	router.HandleFunc("/cars/{id:[0-9]+}", h.GetCar).Methods(http.MethodGet)
	router.HandleFunc("/cars/{id:[0-9]+}", h.UpdateCar).Methods(http.MethodPut)
	router.HandleFunc("/cars/{id:[0-9]+}", h.DeleteCar).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadinessCheck handles GET /ready requests.
func (h *RESTHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(store.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready"})
			return
		}
	}

	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// ListCars handles GET /cars requests.
func (h *RESTHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.store.List(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "list cars")
		return
	}

	h.writeJSON(w, http.StatusOK, cars)
}

// GetCar handles GET /cars/{id} requests.
func (h *RESTHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.carID(w, r)
	if !ok {
		return
	}

	car, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get car")
		return
	}

	h.writeJSON(w, http.StatusOK, car)
}

// CreateCar handles POST /cars requests.
func (h *RESTHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	car, err := h.store.Create(r.Context(), input)
	if err != nil {
		h.handleStoreError(w, err, "create car")
		return
	}

	h.publish(model.NewCarEvent(model.CarEventCreated, *car))
	h.writeJSON(w, http.StatusCreated, car)
}

// UpdateCar handles PUT /cars/{id} requests. A missing car is reported
// before the payload is validated.
func (h *RESTHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.carID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.Get(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "update car")
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	car, err := h.store.Update(r.Context(), id, input)
	if err != nil {
		h.handleStoreError(w, err, "update car")
		return
	}

	h.publish(model.NewCarEvent(model.CarEventUpdated, *car))
	h.writeJSON(w, http.StatusOK, car)
}

// DeleteCar handles DELETE /cars/{id} requests.
func (h *RESTHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.carID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete car")
		return
	}

	h.publish(model.NewCarDeletedEvent(id))
	h.writeJSON(w, http.StatusNoContent, nil)
}

// carID parses the {id} path variable. IDs that cannot name a stored car are
// answered with 404.
func (h *RESTHandler) carID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, http.StatusNotFound, msgCarNotFound)
		return 0, false
	}
	return id, true
}

// decodeInput reads and validates the request body, writing a 400 response
// on failure.
func (h *RESTHandler) decodeInput(w http.ResponseWriter, r *http.Request) (*model.CarInput, bool) {
	payload, err := model.DecodeCarPayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, model.ErrMalformedPayload.Error())
		return nil, false
	}

	input, err := payload.Input()
	if err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		if model.IsValidationError(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			h.writeError(w, http.StatusInternalServerError, msgInternalError)
		}
		return nil, false
	}

	return input, true
}

func (h *RESTHandler) publish(event model.CarEvent) {
	if h.events != nil {
		h.events.Publish(event)
	}
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusNotFound, msgCarNotFound)
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}
