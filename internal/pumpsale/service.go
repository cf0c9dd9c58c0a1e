package pumpsale

import (
	"context"
	"fmt"
	"time"

	"github.com/fueldesk/fueldesk/internal/distribution"
	"github.com/fueldesk/fueldesk/internal/distribution/ledger"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error)
	ListActiveTruckResales(ctx context.Context, sellingBranchID int64) ([]Sale, error)
	NextSaleNumber(ctx context.Context) (string, error)
}

// RemainderInvalidator drops cached remaining-on-truck figures after a sale
// changes what has been sold.
type RemainderInvalidator interface {
	Bump(ctx context.Context) error
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service provides business logic for pump sale records.
type Service struct {
	repo      RepositoryPort
	remainder RemainderInvalidator
	audit     AuditPort
	now       func() time.Time
}

// NewService constructs the pump sale service.
func NewService(repo RepositoryPort, remainder RemainderInvalidator, audit AuditPort) *Service {
	return &Service{repo: repo, remainder: remainder, audit: audit, now: time.Now}
}

// SaleItemInput describes one sold line.
type SaleItemInput struct {
	OilType       distribution.OilType
	Quantity      float64
	PricePerLiter float64
}

// CreateSaleInput describes a new sale record.
type CreateSaleInput struct {
	SaleType           SaleType
	CustomerType       CustomerType
	SellingBranchID    int64
	SellingBranchName  string
	BuyerBranchID      *int64
	CustomerName       string
	CustomerTaxID      string
	CustomerAddress    string
	SourceOrderNumber  string
	SourceTransportRef string
	Notes              string
	PaidAmount         float64
	PaymentMethod      PaymentMethod
	Items              []SaleItemInput
}

// CancelSaleInput describes a cancellation.
type CancelSaleInput struct {
	Reason string
}

// Create records a sale in status normal with a fresh sale number.
func (s *Service) Create(ctx context.Context, input CreateSaleInput, actor shared.Actor) (Sale, error) {
	if err := validateCreateSale(input); err != nil {
		return Sale{}, err
	}
	if actor.Name == "" {
		return Sale{}, fmt.Errorf("%w: acting user required", httpx.ErrValidation)
	}

	number, err := s.repo.NextSaleNumber(ctx)
	if err != nil {
		return Sale{}, fmt.Errorf("assign sale number: %w", err)
	}

	now := s.now()
	sale := Sale{
		SaleNumber:           number,
		Status:               StatusNormal,
		SaleType:             input.SaleType,
		CustomerType:         input.CustomerType,
		SellingBranchID:      input.SellingBranchID,
		SellingBranchName:    input.SellingBranchName,
		BuyerBranchID:        input.BuyerBranchID,
		CustomerName:         input.CustomerName,
		CustomerTaxID:        input.CustomerTaxID,
		CustomerAddress:      input.CustomerAddress,
		SourceOrderNumber:    input.SourceOrderNumber,
		SourceTransportRef:   input.SourceTransportRef,
		Notes:                input.Notes,
		PaidAmount:           input.PaidAmount,
		PaymentMethod:        input.PaymentMethod,
		PaymentRequestStatus: PaymentRequestNone,
		RecordedBy:           actor.Name,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	var lines []ledger.Line
	for _, in := range input.Items {
		item := SaleItem{
			OilType:       in.OilType,
			Quantity:      in.Quantity,
			PricePerLiter: in.PricePerLiter,
			TotalAmount:   ledger.ItemTotal(in.Quantity, in.PricePerLiter),
		}
		sale.Items = append(sale.Items, item)
		lines = append(lines, ledger.Line{Quantity: item.Quantity, TotalAmount: item.TotalAmount})
	}
	sale.TotalAmount = ledger.SumAmount(lines)

	var saleID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		saleID = id
		for i := range sale.Items {
			sale.Items[i].SaleID = id
			if _, err := tx.InsertSaleItem(ctx, sale.Items[i]); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	// A truck-remainder sale shrinks an order's live balance.
	if sale.SaleType == SaleTruckRemnant && s.remainder != nil {
		_ = s.remainder.Bump(ctx)
	}
	s.recordAudit(ctx, actor, "create", saleID, map[string]any{"sale_number": number, "sale_type": sale.SaleType})

	return s.repo.GetSale(ctx, saleID)
}

// Cancel soft-deletes a sale: the record is preserved but excluded from
// totals, and who cancelled it when is kept.
func (s *Service) Cancel(ctx context.Context, id int64, input CancelSaleInput, actor shared.Actor) (Sale, error) {
	if actor.Name == "" {
		return Sale{}, fmt.Errorf("%w: acting user required", httpx.ErrValidation)
	}

	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	if !sale.Status.CanCancel() {
		return Sale{}, fmt.Errorf("%w: cancel from %s", httpx.ErrInvalidState, sale.Status)
	}

	updates := map[string]any{
		"cancelled_by": actor.Name,
		"cancelled_at": s.now(),
	}
	if input.Reason != "" {
		updates["cancel_reason"] = input.Reason
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateSaleStatus(ctx, id, StatusCancelled, updates)
	})
	if err != nil {
		return Sale{}, fmt.Errorf("cancel sale: %w", err)
	}

	// Cancelling a resale returns its liters to the order's balance.
	if sale.SaleType == SaleTruckRemnant && s.remainder != nil {
		_ = s.remainder.Bump(ctx)
	}
	s.recordAudit(ctx, actor, "cancel", id, map[string]any{"reason": input.Reason})

	return s.repo.GetSale(ctx, id)
}

// Get returns a single sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// List returns sales matching the filter with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, shared.Pagination, error) {
	sales, total, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return sales, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, saleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorName: actor.Name,
		Action:    action,
		Entity:    "internal_pump_sale",
		EntityID:  fmt.Sprintf("%d", saleID),
		Meta:      meta,
		At:        s.now(),
	})
}
