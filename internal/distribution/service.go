package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fueldesk/fueldesk/internal/distribution/ledger"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, int, error)
	NextOrderNumber(ctx context.Context) (string, error)
}

// BranchPort resolves branch reference data for stamping onto orders.
type BranchPort interface {
	BranchRef(ctx context.Context, id int64) (BranchRef, error)
}

// BranchRef is the subset of branch masterdata an order carries.
type BranchRef struct {
	ID   int64
	Name string
}

// TruckResale is a pump sale drawing down a truck-resident remainder, as seen
// by the remainder tracker.
type TruckResale struct {
	SaleNumber         string
	Quantity           float64
	SourceOrderNumber  string
	SourceTransportRef string
	Notes              string
}

// SalesPort lists active truck-remainder sales recorded by a branch.
type SalesPort interface {
	ListTruckResales(ctx context.Context, sellingBranchID int64) ([]TruckResale, error)
}

// ApprovalPort records approval history entries.
type ApprovalPort interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

const approvalModule = "distribution"

// Service orchestrates the internal oil order lifecycle.
type Service struct {
	repo      RepositoryPort
	branches  BranchPort
	sales     SalesPort
	locks     *shared.RedisLock
	cache     *RemainderCache
	approvals ApprovalPort
	audit     AuditPort
	remainder singleflight.Group
	now       func() time.Time
}

// NewService constructs the distribution service.
func NewService(repo RepositoryPort, branches BranchPort, sales SalesPort, locks *shared.RedisLock, cache *RemainderCache, approvals ApprovalPort, audit AuditPort) *Service {
	return &Service{
		repo:      repo,
		branches:  branches,
		sales:     sales,
		locks:     locks,
		cache:     cache,
		approvals: approvals,
		audit:     audit,
		now:       time.Now,
	}
}

// OrderItemInput describes a requested line.
type OrderItemInput struct {
	OilType           OilType
	RequestedQuantity float64
	PricePerLiter     float64
}

// CreateOrderInput describes creation payload.
type CreateOrderInput struct {
	RequestingBranchID int64
	RequestedDate      time.Time
	Notes              string
	Items              []OrderItemInput
}

// ApproveInput assigns the source branch and transport to a pending order.
type ApproveInput struct {
	SourceBranchID  int64
	TransportRef    string
	TransportNumber *string
	TruckPlate      *string
	TrailerPlate    *string
	DriverName      *string
	Note            string
}

// CancelInput describes a cancellation.
type CancelInput struct {
	Reason string
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status             *OrderStatus
	RequestingBranchID *int64
	Page               int
	PerPage            int
}

// Create records a new order in pending approval with a freshly assigned
// order number.
func (s *Service) Create(ctx context.Context, input CreateOrderInput, actor shared.Actor) (Order, error) {
	if err := validateCreate(input); err != nil {
		return Order{}, err
	}
	if actor.Name == "" {
		return Order{}, fmt.Errorf("%w: acting user required", httpx.ErrValidation)
	}

	branch, err := s.branches.BranchRef(ctx, input.RequestingBranchID)
	if err != nil {
		return Order{}, fmt.Errorf("%w: requesting branch %d", httpx.ErrValidation, input.RequestingBranchID)
	}

	number, err := s.repo.NextOrderNumber(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("assign order number: %w", err)
	}

	now := s.now()
	order := Order{
		RefID:                uuid.New(),
		OrderNumber:          number,
		Status:               StatusPendingApproval,
		RequestingBranchID:   branch.ID,
		RequestingBranchName: branch.Name,
		OrderDate:            now,
		RequestedDate:        input.RequestedDate,
		Notes:                input.Notes,
		CreatedBy:            actor.Name,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, in := range input.Items {
		order.Items = append(order.Items, Item{
			OilType:           in.OilType,
			RequestedQuantity: in.RequestedQuantity,
			Quantity:          in.RequestedQuantity,
			PricePerLiter:     in.PricePerLiter,
			TotalAmount:       ledger.ItemTotal(in.RequestedQuantity, in.PricePerLiter),
		})
	}
	order.TotalAmount = ledger.SumAmount(itemLines(order.Items))

	var orderID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID = id
		for i := range order.Items {
			order.Items[i].OrderID = id
			if _, err := tx.InsertItem(ctx, order.Items[i]); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.recordAudit(ctx, actor, "create", orderID, map[string]any{"order_number": number})
	return s.repo.GetOrder(ctx, orderID)
}

// Approve assigns a source branch and transport reference, moving the order
// from pending approval to approved.
func (s *Service) Approve(ctx context.Context, id int64, input ApproveInput, actor shared.Actor) (Order, error) {
	if input.SourceBranchID <= 0 {
		return Order{}, fmt.Errorf("%w: source branch required", httpx.ErrValidation)
	}
	if input.TransportRef == "" {
		return Order{}, fmt.Errorf("%w: transport reference required", httpx.ErrValidation)
	}

	source, err := s.branches.BranchRef(ctx, input.SourceBranchID)
	if err != nil {
		return Order{}, fmt.Errorf("%w: source branch %d", httpx.ErrValidation, input.SourceBranchID)
	}

	order, release, err := s.lockAndGet(ctx, id)
	if err != nil {
		return Order{}, err
	}
	defer release()

	if !order.Status.CanApprove() {
		return Order{}, fmt.Errorf("%w: approve from %s", httpx.ErrInvalidState, order.Status)
	}

	updates := map[string]any{
		"source_branch_id":   source.ID,
		"source_branch_name": source.Name,
		"transport_ref":      input.TransportRef,
	}
	if input.TransportNumber != nil {
		updates["transport_number"] = *input.TransportNumber
	}
	if input.TruckPlate != nil {
		updates["truck_plate"] = *input.TruckPlate
	}
	if input.TrailerPlate != nil {
		updates["trailer_plate"] = *input.TrailerPlate
	}
	if input.DriverName != nil {
		updates["driver_name"] = *input.DriverName
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateOrderStatus(ctx, id, StatusApproved, updates); err != nil {
			return fmt.Errorf("approve order: %w", err)
		}
		return tx.SetItemTransportRef(ctx, id, input.TransportRef)
	})
	if err != nil {
		return Order{}, err
	}

	s.recordApproval(ctx, order, actor, shared.ApprovalApprove, input.Note)
	s.recordAudit(ctx, actor, "approve", id, map[string]any{"source_branch": source.ID, "transport_ref": input.TransportRef})
	return s.repo.GetOrder(ctx, id)
}

// Dispatch marks an approved order as in transit once goods leave the source.
func (s *Service) Dispatch(ctx context.Context, id int64, actor shared.Actor) (Order, error) {
	order, release, err := s.lockAndGet(ctx, id)
	if err != nil {
		return Order{}, err
	}
	defer release()

	if !order.Status.CanDispatch() {
		return Order{}, fmt.Errorf("%w: dispatch from %s", httpx.ErrInvalidState, order.Status)
	}
	if !order.HasTransportRef() {
		return Order{}, fmt.Errorf("%w: dispatch without transport reference", httpx.ErrInvalidState)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, id, StatusInTransit, nil)
	})
	if err != nil {
		return Order{}, fmt.Errorf("dispatch order: %w", err)
	}

	s.recordApproval(ctx, order, actor, shared.ApprovalDispatch, "")
	s.recordAudit(ctx, actor, "dispatch", id, nil)
	return s.repo.GetOrder(ctx, id)
}

// Cancel flips a non-delivered order to cancelled, recording the actor and
// time. No quantity reversal happens because nothing physical has moved yet.
func (s *Service) Cancel(ctx context.Context, id int64, input CancelInput, actor shared.Actor) (Order, error) {
	if actor.Name == "" {
		return Order{}, fmt.Errorf("%w: acting user required", httpx.ErrValidation)
	}

	order, release, err := s.lockAndGet(ctx, id)
	if err != nil {
		return Order{}, err
	}
	defer release()

	if !order.Status.CanCancel() {
		return Order{}, fmt.Errorf("%w: cancel from %s", httpx.ErrInvalidState, order.Status)
	}

	updates := map[string]any{
		"cancelled_by": actor.Name,
		"cancelled_at": s.now(),
	}
	if input.Reason != "" {
		updates["notes"] = appendNote(order.Notes, "cancelled: "+input.Reason)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, id, StatusCancelled, updates)
	})
	if err != nil {
		return Order{}, fmt.Errorf("cancel order: %w", err)
	}

	s.recordApproval(ctx, order, actor, shared.ApprovalCancel, input.Reason)
	s.recordAudit(ctx, actor, "cancel", id, map[string]any{"reason": input.Reason})
	return s.repo.GetOrder(ctx, id)
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// List returns orders matching the filter with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, shared.Pagination, error) {
	orders, total, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return orders, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// lockAndGet takes the per-order lock and loads a snapshot. Callers must
// invoke release even on failure paths after this returns nil error.
func (s *Service) lockAndGet(ctx context.Context, id int64) (Order, func(), error) {
	release, err := s.locks.Acquire(ctx, shared.OrderLockKey(id))
	if err != nil {
		return Order{}, nil, err
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		release()
		return Order{}, nil, err
	}
	return order, release, nil
}

func (s *Service) recordApproval(ctx context.Context, order Order, actor shared.Actor, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	_ = s.approvals.Record(ctx, shared.ApprovalLog{
		Module:    approvalModule,
		RefID:     order.RefID,
		ActorName: actor.Name,
		Action:    action,
		Note:      note,
		At:        s.now(),
	})
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorName: actor.Name,
		Action:    action,
		Entity:    "internal_oil_order",
		EntityID:  fmt.Sprintf("%d", orderID),
		Meta:      meta,
		At:        s.now(),
	})
}

func itemLines(items []Item) []ledger.Line {
	lines := make([]ledger.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, ledger.Line{
			Quantity:      item.Quantity,
			PricePerLiter: item.PricePerLiter,
			TotalAmount:   item.TotalAmount,
		})
	}
	return lines
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	if note == "" {
		return existing
	}
	return existing + "\n" + note
}
