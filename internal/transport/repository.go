package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

// Repository persists transport jobs.
type Repository interface {
	FindByReference(ctx context.Context, reference string) (Job, error)
	Upsert(ctx context.Context, job Job) (Job, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const jobColumns = `id, reference, driver_name, truck_plate, trailer_plate, current_leg,
	assigned_at, loaded_at, departed_at, arrived_at, closed_at, created_at, updated_at`

func (r *repository) FindByReference(ctx context.Context, reference string) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM transport_jobs WHERE reference = $1`
	var job Job
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&job.ID, &job.Reference, &job.DriverName, &job.TruckPlate, &job.TrailerPlate, &job.CurrentLeg,
		&job.AssignedAt, &job.LoadedAt, &job.DepartedAt, &job.ArrivedAt, &job.ClosedAt,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, fmt.Errorf("%w: transport job %s", httpx.ErrNotFound, reference)
		}
		return Job{}, fmt.Errorf("find transport job: %w", err)
	}
	return job, nil
}

func (r *repository) Upsert(ctx context.Context, job Job) (Job, error) {
	query := `INSERT INTO transport_jobs (
		reference, driver_name, truck_plate, trailer_plate, current_leg,
		assigned_at, loaded_at, departed_at, arrived_at, closed_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	ON CONFLICT (reference) DO UPDATE SET
		driver_name = EXCLUDED.driver_name,
		truck_plate = EXCLUDED.truck_plate,
		trailer_plate = EXCLUDED.trailer_plate,
		current_leg = EXCLUDED.current_leg,
		assigned_at = EXCLUDED.assigned_at,
		loaded_at = EXCLUDED.loaded_at,
		departed_at = EXCLUDED.departed_at,
		arrived_at = EXCLUDED.arrived_at,
		closed_at = EXCLUDED.closed_at,
		updated_at = NOW()
	RETURNING ` + jobColumns
	var saved Job
	err := r.pool.QueryRow(ctx, query,
		job.Reference, job.DriverName, job.TruckPlate, job.TrailerPlate, job.CurrentLeg,
		job.AssignedAt, job.LoadedAt, job.DepartedAt, job.ArrivedAt, job.ClosedAt,
	).Scan(
		&saved.ID, &saved.Reference, &saved.DriverName, &saved.TruckPlate, &saved.TrailerPlate, &saved.CurrentLeg,
		&saved.AssignedAt, &saved.LoadedAt, &saved.DepartedAt, &saved.ArrivedAt, &saved.ClosedAt,
		&saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return Job{}, fmt.Errorf("upsert transport job: %w", err)
	}
	return saved, nil
}
