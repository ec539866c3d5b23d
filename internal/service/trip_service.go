// Package service orchestrates a trip request end to end: validation, the
// core simulation, persistence, and domain-event publishing. The simulator
// itself stays pure; everything with a side effect lives here.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/hos"
	"github.com/draymaster/eld-planner/internal/repository"
	"github.com/draymaster/eld-planner/pkg/config"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
	"github.com/draymaster/eld-planner/pkg/kafka"
	"github.com/draymaster/eld-planner/pkg/logger"
	"github.com/draymaster/eld-planner/pkg/validation"
)

var (
	coordValidator  = validation.NewCoordinateValidator()
	stringValidator = validation.NewStringValidator()
)

// TripService plans trips: it validates the request, runs the simulator
// against a live route fetcher, persists the result, and announces it.
type TripService struct {
	repo     repository.TripRepository
	fetcher  domain.RouteFetcher
	producer *kafka.Producer
	rules    *config.HOSRules
	logger   *logger.Logger
}

// NewTripService creates a TripService.
func NewTripService(
	repo repository.TripRepository,
	fetcher domain.RouteFetcher,
	producer *kafka.Producer,
	rules *config.HOSRules,
	log *logger.Logger,
) *TripService {
	if rules == nil {
		rules = config.DefaultHOSRules()
	}
	return &TripService{repo: repo, fetcher: fetcher, producer: producer, rules: rules, logger: log}
}

// PlanTripInput is the inbound request to plan a trip. The ID is generated
// server-side if the caller leaves it blank.
type PlanTripInput struct {
	ID                     string
	Current                domain.Location
	Pickup                 domain.Location
	Dropoff                domain.Location
	AccumulatedWeeklyHours float64
}

// PlanTrip validates the request, runs the simulator, persists both the
// request and its schedule, and publishes a trip.scheduled (or
// trip.schedule_failed) event.
func (s *TripService) PlanTrip(ctx context.Context, input PlanTripInput) (*domain.ELDSchedule, error) {
	if err := validateCoordinates(input); err != nil {
		return nil, err
	}

	tripID := input.ID
	if tripID == "" {
		tripID = uuid.New().String()
	}

	trip := domain.TripInput{
		ID:                     tripID,
		Current:                input.Current,
		Pickup:                 input.Pickup,
		Dropoff:                input.Dropoff,
		AccumulatedWeeklyHours: input.AccumulatedWeeklyHours,
	}

	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}

	schedule, recoveries, err := hos.Simulate(ctx, trip, s.fetcher, time.Now(), s.rules, s.logger)
	if err != nil {
		s.publishFailure(ctx, trip, err)
		return nil, err
	}

	if err := s.repo.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.publishScheduled(ctx, schedule)
	for _, r := range recoveries {
		s.publishRecovery(ctx, trip.ID, r)
	}
	return schedule, nil
}

// GetSchedule returns a previously computed schedule by trip ID.
func (s *TripService) GetSchedule(ctx context.Context, tripID string) (*domain.ELDSchedule, error) {
	return s.repo.GetScheduleByTripID(ctx, tripID)
}

func validateCoordinates(input PlanTripInput) error {
	if input.ID != "" {
		if err := stringValidator.ValidateLength(input.ID, "id", 0, 64); err != nil {
			return apperrors.InvalidTripInputError(err.Error())
		}
	}
	for _, loc := range []domain.Location{input.Current, input.Pickup, input.Dropoff} {
		if err := coordValidator.ValidateCoordinates(loc.Lat, loc.Lon); err != nil {
			return apperrors.InvalidTripInputError(err.Error())
		}
	}
	if input.AccumulatedWeeklyHours < 0 || input.AccumulatedWeeklyHours >= 70 {
		return apperrors.InvalidTripInputError("accumulated_weekly_hours must be in [0, 70)")
	}
	return nil
}

func (s *TripService) publishScheduled(ctx context.Context, schedule *domain.ELDSchedule) {
	if s.producer == nil {
		return
	}
	event := kafka.NewEvent(kafka.Topics.TripScheduled, "eld-planner", map[string]interface{}{
		"trip_id":     schedule.TripID,
		"total_miles": schedule.TotalMiles,
		"total_days":  schedule.TotalDays,
	})
	if err := s.producer.Publish(ctx, kafka.Topics.TripScheduled, event); err != nil {
		s.logger.Warnw("failed to publish trip.scheduled event", "trip_id", schedule.TripID, "error", err)
	}
}

func (s *TripService) publishRecovery(ctx context.Context, tripID string, r hos.RecoveryEvent) {
	if s.producer == nil {
		return
	}
	event := kafka.NewEvent(kafka.Topics.HOSRecoveryTriggered, "eld-planner", map[string]interface{}{
		"trip_id": tripID,
		"kind":    r.Kind,
		"at":      r.At,
	})
	if err := s.producer.Publish(ctx, kafka.Topics.HOSRecoveryTriggered, event); err != nil {
		s.logger.Warnw("failed to publish hos.recovery_triggered event", "trip_id", tripID, "kind", r.Kind, "error", err)
	}
}

func (s *TripService) publishFailure(ctx context.Context, trip domain.TripInput, cause error) {
	if s.producer == nil {
		return
	}
	event := kafka.NewEvent(kafka.Topics.TripScheduleFailed, "eld-planner", map[string]interface{}{
		"trip_id": trip.ID,
		"reason":  cause.Error(),
	})
	if err := s.producer.Publish(ctx, kafka.Topics.TripScheduleFailed, event); err != nil {
		s.logger.Warnw("failed to publish trip.schedule_failed event", "trip_id", trip.ID, "error", err)
	}
}
