package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

type memoryRepo struct {
	jobs map[string]Job
	err  error
}

func (m *memoryRepo) FindByReference(_ context.Context, reference string) (Job, error) {
	if m.err != nil {
		return Job{}, m.err
	}
	job, ok := m.jobs[reference]
	if !ok {
		return Job{}, fmt.Errorf("%w: transport job %s", httpx.ErrNotFound, reference)
	}
	return job, nil
}

func (m *memoryRepo) Upsert(_ context.Context, job Job) (Job, error) {
	if m.jobs == nil {
		m.jobs = make(map[string]Job)
	}
	job.ID = int64(len(m.jobs) + 1)
	m.jobs[job.Reference] = job
	return job, nil
}

func TestResolvePrefersLiveJob(t *testing.T) {
	departed := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	repo := &memoryRepo{jobs: map[string]Job{
		"TR-7001": {
			Reference:  "TR-7001",
			DriverName: "prasit",
			TruckPlate: "83-4521",
			CurrentLeg: LegEnRoute,
			DepartedAt: &departed,
		},
	}}
	resolver := NewResolver(repo)

	movement, err := resolver.Resolve(context.Background(), OrderRef{
		TransportRef:    "TR-7001",
		TransportNumber: "TN-0042",
		DriverName:      "someone else",
		TruckPlate:      "00-0000",
	})
	require.NoError(t, err)

	assert.True(t, movement.Live)
	assert.Empty(t, movement.TransportNumber)
	assert.Equal(t, "prasit", movement.DriverName)
	assert.Equal(t, "83-4521", movement.TruckPlate)
	assert.Equal(t, LegEnRoute, movement.CurrentLeg)
	require.NotNil(t, movement.DepartedAt)
	assert.Equal(t, departed, *movement.DepartedAt)
}

func TestResolveFallsBackToOrderFields(t *testing.T) {
	resolver := NewResolver(&memoryRepo{})

	movement, err := resolver.Resolve(context.Background(), OrderRef{
		TransportRef:    "TR-9999",
		TransportNumber: "TN-0042",
		DriverName:      "prasit",
		TruckPlate:      "83-4521",
		TrailerPlate:    "83-4522",
	})
	require.NoError(t, err)

	assert.False(t, movement.Live)
	assert.Equal(t, "TR-9999", movement.Reference)
	assert.Equal(t, "TN-0042", movement.TransportNumber)
	assert.Equal(t, "prasit", movement.DriverName)
	assert.Equal(t, "83-4521", movement.TruckPlate)
	assert.Equal(t, "83-4522", movement.TrailerPlate)
	assert.Empty(t, movement.CurrentLeg)
}

func TestResolveEmptyReference(t *testing.T) {
	resolver := NewResolver(&memoryRepo{err: errors.New("must not be called")})

	movement, err := resolver.Resolve(context.Background(), OrderRef{DriverName: "prasit"})
	require.NoError(t, err)
	assert.False(t, movement.Live)
	assert.Equal(t, "prasit", movement.DriverName)
}

func TestResolvePropagatesRepoFailure(t *testing.T) {
	resolver := NewResolver(&memoryRepo{err: errors.New("connection refused")})

	_, err := resolver.Resolve(context.Background(), OrderRef{TransportRef: "TR-7001"})
	assert.Error(t, err)
}
