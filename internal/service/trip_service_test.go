package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymaster/eld-planner/internal/domain"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
)

// mockTripRepo is an in-memory TripRepository used to exercise TripService
// without a live Postgres connection.
type mockTripRepo struct {
	trips         map[string]domain.TripInput
	schedules     map[string]*domain.ELDSchedule
	createErr     error
	saveErr       error
	getScheduleErr error
}

func newMockTripRepo() *mockTripRepo {
	return &mockTripRepo{
		trips:     make(map[string]domain.TripInput),
		schedules: make(map[string]*domain.ELDSchedule),
	}
}

func (m *mockTripRepo) CreateTrip(ctx context.Context, trip domain.TripInput) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *mockTripRepo) SaveSchedule(ctx context.Context, schedule *domain.ELDSchedule) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.schedules[schedule.TripID] = schedule
	return nil
}

func (m *mockTripRepo) GetTrip(ctx context.Context, tripID string) (*domain.TripInput, error) {
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, apperrors.NotFoundError("trip", tripID)
	}
	return &trip, nil
}

func (m *mockTripRepo) GetScheduleByTripID(ctx context.Context, tripID string) (*domain.ELDSchedule, error) {
	if m.getScheduleErr != nil {
		return nil, m.getScheduleErr
	}
	schedule, ok := m.schedules[tripID]
	if !ok {
		return nil, apperrors.NotFoundError("schedule", tripID)
	}
	return schedule, nil
}

// fakeFetcher returns a fixed single-step route, short enough to never
// trigger a break, fuel stop, or day change.
type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Route(ctx context.Context, from, to domain.Location) (*domain.Route, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Route{
		TotalMiles: 50,
		TotalHours: 1,
		Steps:      []domain.RouteStep{{Start: from, End: to, Miles: 50, Hours: 1}},
	}, nil
}

func validPlanInput() PlanTripInput {
	return PlanTripInput{
		Current: domain.NamedAt(40.0, -74.0),
		Pickup:  domain.NamedAt(40.1, -74.0),
		Dropoff: domain.NamedAt(40.2, -74.0),
	}
}

func TestPlanTrip_GeneratesIDAndPersistsSchedule(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	schedule, err := svc.PlanTrip(context.Background(), validPlanInput())
	require.NoError(t, err)
	require.NotNil(t, schedule)

	assert.NotEmpty(t, schedule.TripID)
	assert.Len(t, repo.trips, 1)
	assert.Len(t, repo.schedules, 1)
	assert.Same(t, schedule, repo.schedules[schedule.TripID])
}

func TestPlanTrip_UsesCallerSuppliedID(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	input := validPlanInput()
	input.ID = "trip-fixed-id"

	schedule, err := svc.PlanTrip(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "trip-fixed-id", schedule.TripID)
}

func TestPlanTrip_RejectsOutOfRangeLatitude(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	input := validPlanInput()
	input.Current.Lat = 200

	_, err := svc.PlanTrip(context.Background(), input)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TRIP_INPUT", appErr.Code)
	assert.Empty(t, repo.trips, "should not persist a trip that failed validation")
}

func TestPlanTrip_RejectsWeeklyHoursAtOrAboveLimit(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	input := validPlanInput()
	input.AccumulatedWeeklyHours = 70

	_, err := svc.PlanTrip(context.Background(), input)
	require.Error(t, err)
}

func TestPlanTrip_PropagatesRepoCreateError(t *testing.T) {
	repo := newMockTripRepo()
	repo.createErr = errors.New("db unavailable")
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	_, err := svc.PlanTrip(context.Background(), validPlanInput())
	require.Error(t, err)
}

func TestPlanTrip_DoesNotSaveScheduleWhenSimulationFails(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	// A route-fetch error is recovered inside the simulator, so the failure
	// here comes from the simulator's own input check: all three locations
	// left at (0, 0) pass the range validation but are rejected as missing.
	_, err := svc.PlanTrip(context.Background(), PlanTripInput{})
	require.Error(t, err)
	assert.Empty(t, repo.schedules)
}

func TestGetSchedule_DelegatesToRepository(t *testing.T) {
	repo := newMockTripRepo()
	repo.schedules["trip-1"] = &domain.ELDSchedule{TripID: "trip-1"}
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	schedule, err := svc.GetSchedule(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.Equal(t, "trip-1", schedule.TripID)
}

func TestGetSchedule_NotFound(t *testing.T) {
	repo := newMockTripRepo()
	svc := NewTripService(repo, &fakeFetcher{}, nil, nil, nil)

	_, err := svc.GetSchedule(context.Background(), "missing")
	require.Error(t, err)
}
