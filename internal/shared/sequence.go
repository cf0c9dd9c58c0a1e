package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Numbering series used across the application.
const (
	SeriesInternalOilOrder = "internal-oil-order"
	SeriesInternalPumpSale = "internal-pump-sale"
)

// SequenceStore issues monotonically increasing numbers per named series.
type SequenceStore struct {
	pool *pgxpool.Pool
}

// NewSequenceStore constructs the store.
func NewSequenceStore(pool *pgxpool.Pool) *SequenceStore {
	return &SequenceStore{pool: pool}
}

// Next reserves and returns the next value for the series.
func (s *SequenceStore) Next(ctx context.Context, series string) (int64, error) {
	if s == nil {
		return 0, errors.New("sequence store not initialised")
	}
	if series == "" {
		return 0, errors.New("sequence series required")
	}
	const query = `INSERT INTO sequences (series, value) VALUES ($1, 1)
		ON CONFLICT (series) DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var value int64
	if err := s.pool.QueryRow(ctx, query, series).Scan(&value); err != nil {
		return 0, fmt.Errorf("shared: next sequence %s: %w", series, err)
	}
	return value, nil
}

// FormatSequence renders a running number as <prefix>-<zero padded value>.
func FormatSequence(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}
