package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApprovalAction enumerates approval log actions.
type ApprovalAction string

const (
	// ApprovalApprove marks an approve action.
	ApprovalApprove ApprovalAction = "APPROVE"
	// ApprovalDispatch marks a dispatch action.
	ApprovalDispatch ApprovalAction = "DISPATCH"
	// ApprovalCancel marks a cancel action.
	ApprovalCancel ApprovalAction = "CANCEL"
	// ApprovalReceive marks a delivery receipt confirmation.
	ApprovalReceive ApprovalAction = "RECEIVE"
)

// ApprovalLog represents a single approval record.
type ApprovalLog struct {
	ID        int64
	Module    string
	RefID     uuid.UUID
	ActorName string
	Action    ApprovalAction
	Note      string
	At        time.Time
}

// ApprovalRecorder persists approval history.
type ApprovalRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ApprovalRecorder {
	return &ApprovalRecorder{pool: pool, logger: logger}
}

// Record writes approval entry to database.
func (r *ApprovalRecorder) Record(ctx context.Context, log ApprovalLog) error {
	if r == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.ActorName == "" {
		return errors.New("approval actor required")
	}
	if log.RefID == uuid.Nil {
		return errors.New("approval ref id required")
	}
	at := log.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO approval_logs (module, ref_id, actor_name, action, note, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`, log.Module, log.RefID, log.ActorName, log.Action, log.Note, at)
	if err != nil && r.logger != nil {
		r.logger.Error("record approval", slog.Any("error", err), slog.String("module", log.Module))
	}
	return err
}
