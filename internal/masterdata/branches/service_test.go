package branches

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

type memoryRepo struct {
	branches map[int64]Branch
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{branches: make(map[int64]Branch), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Branch, int, error) {
	var result []Branch
	for _, b := range m.branches {
		result = append(result, b)
	}
	return result, len(result), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Branch, error) {
	b, ok := m.branches[id]
	if !ok {
		return Branch{}, fmt.Errorf("%w: branch %d", httpx.ErrNotFound, id)
	}
	return b, nil
}

func (m *memoryRepo) Create(_ context.Context, branch Branch) (Branch, error) {
	branch.ID = m.nextID
	m.nextID++
	m.branches[branch.ID] = branch
	return branch, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, branch Branch) error {
	if _, ok := m.branches[id]; !ok {
		return fmt.Errorf("%w: branch %d", httpx.ErrNotFound, id)
	}
	branch.ID = id
	m.branches[id] = branch
	return nil
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Branch{Name: "Central Depot"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(context.Background(), Branch{Code: "BR01"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	branch, err := svc.Create(context.Background(), Branch{Code: "BR01", Name: "Central Depot"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), branch.ID)
}

func TestServiceBranchRef(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Branch{Code: "BR02", Name: "North Station"})
	require.NoError(t, err)

	ref, err := svc.BranchRef(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, ref.ID)
	assert.Equal(t, "North Station", ref.Name)

	_, err = svc.BranchRef(context.Background(), 999)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}
