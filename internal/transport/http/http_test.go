package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/geocode"
	"github.com/draymaster/eld-planner/internal/service"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
	"github.com/draymaster/eld-planner/pkg/logger"
)

// stubTripRepo is the minimal in-memory repository.TripRepository needed to
// exercise the HTTP layer without a live Postgres connection.
type stubTripRepo struct {
	trips     map[string]domain.TripInput
	schedules map[string]*domain.ELDSchedule
}

func newStubTripRepo() *stubTripRepo {
	return &stubTripRepo{
		trips:     make(map[string]domain.TripInput),
		schedules: make(map[string]*domain.ELDSchedule),
	}
}

func (r *stubTripRepo) CreateTrip(ctx context.Context, trip domain.TripInput) error {
	r.trips[trip.ID] = trip
	return nil
}

func (r *stubTripRepo) SaveSchedule(ctx context.Context, schedule *domain.ELDSchedule) error {
	r.schedules[schedule.TripID] = schedule
	return nil
}

func (r *stubTripRepo) GetTrip(ctx context.Context, tripID string) (*domain.TripInput, error) {
	trip, ok := r.trips[tripID]
	if !ok {
		return nil, apperrors.NotFoundError("trip", tripID)
	}
	return &trip, nil
}

func (r *stubTripRepo) GetScheduleByTripID(ctx context.Context, tripID string) (*domain.ELDSchedule, error) {
	schedule, ok := r.schedules[tripID]
	if !ok {
		return nil, apperrors.NotFoundError("schedule", tripID)
	}
	return schedule, nil
}

// stubFetcher is a fixed single-step route, short enough to never trigger a
// break, fuel stop, or day change.
type stubFetcher struct{}

func (stubFetcher) Route(ctx context.Context, from, to domain.Location) (*domain.Route, error) {
	return &domain.Route{
		TotalMiles: 50,
		TotalHours: 1,
		Steps:      []domain.RouteStep{{Start: from, End: to, Miles: 50, Hours: 1}},
	}, nil
}

func newTestHandler(repo *stubTripRepo) *Handler {
	trips := service.NewTripService(repo, stubFetcher{}, nil, nil, logger.Default())
	geo := geocode.New(geocode.Config{BaseURL: "http://127.0.0.1:0", FallbackBaseURL: "http://127.0.0.1:0"}, logger.Default())
	return NewHandler(trips, geo, logger.Default())
}

func TestHealth_ReturnsOK(t *testing.T) {
	h := newTestHandler(newStubTripRepo())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleTrips_PlansAndReturnsSchedule(t *testing.T) {
	h := newTestHandler(newStubTripRepo())
	body := `{"current_lat":40.0,"current_lon":-74.0,"pickup_lat":40.1,"pickup_lon":-74.0,"dropoff_lat":40.2,"dropoff_lon":-74.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/trips", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var schedule domain.ELDSchedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.NotEmpty(t, schedule.TripID)
}

func TestHandleTrips_RejectsNonPOST(t *testing.T) {
	h := newTestHandler(newStubTripRepo())
	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleTrips_RejectsMalformedBody(t *testing.T) {
	h := newTestHandler(newStubTripRepo())
	req := httptest.NewRequest(http.MethodPost, "/api/trips", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var appErr apperrors.AppError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appErr))
	assert.Equal(t, "INVALID_TRIP_INPUT", appErr.Code)
}

func TestHandleTripSchedule_ReturnsStoredSchedule(t *testing.T) {
	repo := newStubTripRepo()
	repo.schedules["trip-1"] = &domain.ELDSchedule{TripID: "trip-1", TotalMiles: 50}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/schedule", nil)
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var schedule domain.ELDSchedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.Equal(t, "trip-1", schedule.TripID)
}

func TestHandleTripSchedule_UnknownTripReturnsNotFound(t *testing.T) {
	h := newTestHandler(newStubTripRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/trips/missing/schedule", nil)
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReverseGeocode_MissingQueryParamsReturnsBadRequest(t *testing.T) {
	h := newTestHandler(newStubTripRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/geocode/reverse", nil)
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReverseGeocode_ProviderFailureReturnsExternalServiceError(t *testing.T) {
	h := newTestHandler(newStubTripRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=40.0&lon=-74.0", nil)
	rec := httptest.NewRecorder()

	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
