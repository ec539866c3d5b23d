// Package repository persists trip requests and their rendered ELD
// schedules. It is a collaborator to the core: the simulator never reads
// or writes this layer, the service orchestrator does.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draymaster/eld-planner/internal/domain"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
)

// TripRepository persists a trip request and the schedule computed for it.
type TripRepository interface {
	CreateTrip(ctx context.Context, trip domain.TripInput) error
	SaveSchedule(ctx context.Context, schedule *domain.ELDSchedule) error
	GetTrip(ctx context.Context, tripID string) (*domain.TripInput, error)
	GetScheduleByTripID(ctx context.Context, tripID string) (*domain.ELDSchedule, error)
}

// PostgresTripRepository is the pgx-backed TripRepository.
type PostgresTripRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTripRepository creates a repository backed by the given
// connection pool.
func NewPostgresTripRepository(pool *pgxpool.Pool) *PostgresTripRepository {
	return &PostgresTripRepository{pool: pool}
}

// CreateTrip inserts the trip request, keyed by its caller-supplied ID.
func (r *PostgresTripRepository) CreateTrip(ctx context.Context, trip domain.TripInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trips (id, current_lat, current_lon, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon, accumulated_weekly_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		trip.ID, trip.Current.Lat, trip.Current.Lon, trip.Pickup.Lat, trip.Pickup.Lon,
		trip.Dropoff.Lat, trip.Dropoff.Lon, trip.AccumulatedWeeklyHours,
	)
	if err != nil {
		return apperrors.DatabaseError("create trip", err)
	}
	return nil
}

// SaveSchedule stores the rendered schedule as JSON, replacing any prior
// schedule for the same trip.
func (r *PostgresTripRepository) SaveSchedule(ctx context.Context, schedule *domain.ELDSchedule) error {
	encoded, err := json.Marshal(schedule)
	if err != nil {
		return apperrors.Wrap(err, "INTERNAL", "failed to encode schedule")
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO eld_schedules (trip_id, payload)
		 VALUES ($1, $2)
		 ON CONFLICT (trip_id) DO UPDATE SET payload = EXCLUDED.payload`,
		schedule.TripID, encoded,
	)
	if err != nil {
		return apperrors.DatabaseError("save schedule", err)
	}
	return nil
}

// GetTrip fetches a previously created trip request by ID.
func (r *PostgresTripRepository) GetTrip(ctx context.Context, tripID string) (*domain.TripInput, error) {
	var trip domain.TripInput
	trip.ID = tripID

	err := r.pool.QueryRow(ctx,
		`SELECT current_lat, current_lon, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon, accumulated_weekly_hours
		 FROM trips WHERE id = $1`,
		tripID,
	).Scan(
		&trip.Current.Lat, &trip.Current.Lon,
		&trip.Pickup.Lat, &trip.Pickup.Lon,
		&trip.Dropoff.Lat, &trip.Dropoff.Lon,
		&trip.AccumulatedWeeklyHours,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NotFoundError("trip", tripID)
	}
	if err != nil {
		return nil, apperrors.DatabaseError("get trip", err)
	}
	return &trip, nil
}

// GetScheduleByTripID fetches the schedule previously computed for a trip.
func (r *PostgresTripRepository) GetScheduleByTripID(ctx context.Context, tripID string) (*domain.ELDSchedule, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM eld_schedules WHERE trip_id = $1`,
		tripID,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NotFoundError("schedule", tripID)
	}
	if err != nil {
		return nil, apperrors.DatabaseError("get schedule", err)
	}

	var schedule domain.ELDSchedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, apperrors.Wrap(err, "INTERNAL", fmt.Sprintf("failed to decode schedule for trip %s", tripID))
	}
	return &schedule, nil
}
