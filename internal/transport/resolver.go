package transport

import (
	"context"
	"errors"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

// Resolver joins transport references with live job status. It never mutates
// order or sale state; a missing job is a degraded view, not an error.
type Resolver struct {
	repo Repository
}

// NewResolver constructs a resolver.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the richest available movement view for an order's
// transport reference, preferring the live job record over the static fields
// embedded in the order.
func (r *Resolver) Resolve(ctx context.Context, ref OrderRef) (Movement, error) {
	fallback := Movement{
		Reference:       ref.TransportRef,
		Live:            false,
		TransportNumber: ref.TransportNumber,
		DriverName:      ref.DriverName,
		TruckPlate:      ref.TruckPlate,
		TrailerPlate:    ref.TrailerPlate,
	}
	if ref.TransportRef == "" || r == nil || r.repo == nil {
		return fallback, nil
	}

	job, err := r.repo.FindByReference(ctx, ref.TransportRef)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return fallback, nil
		}
		return Movement{}, err
	}

	return Movement{
		Reference:    job.Reference,
		Live:         true,
		DriverName:   job.DriverName,
		TruckPlate:   job.TruckPlate,
		TrailerPlate: job.TrailerPlate,
		CurrentLeg:   job.CurrentLeg,
		DepartedAt:   job.DepartedAt,
		ArrivedAt:    job.ArrivedAt,
	}, nil
}
