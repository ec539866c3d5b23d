// Package http exposes the trip planner over plain JSON/HTTP: the one
// external interface SPEC_FULL names beyond the gRPC health/reflection
// shell. No framework is used because none of the examples pull one in —
// every HTTP surface in the corpus is a bare http.ServeMux.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/geocode"
	"github.com/draymaster/eld-planner/internal/service"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
	"github.com/draymaster/eld-planner/pkg/logger"
)

// Handler wires the trip service and the geocode collaborator onto a mux.
type Handler struct {
	trips   *service.TripService
	geocode *geocode.Client
	log     *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(trips *service.TripService, geo *geocode.Client, log *logger.Logger) *Handler {
	return &Handler{trips: trips, geocode: geo, log: log}
}

// Mux builds the HTTP routing table.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/api/trips", h.handleTrips)
	mux.HandleFunc("/api/trips/", h.handleTripSchedule)
	mux.HandleFunc("/api/geocode/reverse", h.handleReverseGeocode)

	return mux
}

type planTripRequest struct {
	ID                     string  `json:"id"`
	CurrentLat             float64 `json:"current_lat"`
	CurrentLon             float64 `json:"current_lon"`
	PickupLat              float64 `json:"pickup_lat"`
	PickupLon              float64 `json:"pickup_lon"`
	DropoffLat             float64 `json:"dropoff_lat"`
	DropoffLon             float64 `json:"dropoff_lon"`
	AccumulatedWeeklyHours float64 `json:"accumulated_weekly_hours"`
}

func (h *Handler) handleTrips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.New("METHOD_NOT_ALLOWED", "only POST is supported"))
		return
	}

	var req planTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidTripInputError("malformed request body"))
		return
	}

	schedule, err := h.trips.PlanTrip(r.Context(), service.PlanTripInput{
		ID:                     req.ID,
		Current:                domain.NamedAt(req.CurrentLat, req.CurrentLon),
		Pickup:                 domain.NamedAt(req.PickupLat, req.PickupLon),
		Dropoff:                domain.NamedAt(req.DropoffLat, req.DropoffLon),
		AccumulatedWeeklyHours: req.AccumulatedWeeklyHours,
	})
	if err != nil {
		h.log.Warnw("plan trip failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, schedule)
}

func (h *Handler) handleTripSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, apperrors.New("METHOD_NOT_ALLOWED", "only GET is supported"))
		return
	}

	tripID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/trips/"), "/schedule")
	if tripID == "" || tripID == r.URL.Path {
		writeError(w, apperrors.ValidationError("trip id is required in path", "trip_id", nil))
		return
	}

	schedule, err := h.trips.GetSchedule(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, latErr := parseFloatQuery(r, "lat")
	lon, lonErr := parseFloatQuery(r, "lon")
	if latErr != nil || lonErr != nil {
		writeError(w, apperrors.ValidationError("lat and lon query parameters are required", "lat/lon", nil))
		return
	}

	result, err := h.geocode.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		writeError(w, apperrors.ExternalServiceError("geocode", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseFloatQuery(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New("missing query parameter " + key)
	}
	return strconv.ParseFloat(raw, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, "INTERNAL", "internal error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(appErr.Code))
	_ = json.NewEncoder(w).Encode(appErr)
}

func statusForCode(code string) int {
	switch code {
	case "INVALID_TRIP_INPUT", "VALIDATION_ERROR":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "METHOD_NOT_ALLOWED":
		return http.StatusMethodNotAllowed
	case "CONFLICT":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
