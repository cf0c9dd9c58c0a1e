package pumpsale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fueldesk/fueldesk/internal/platform/db"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for pump sales.
type Repository struct {
	pool      *pgxpool.Pool
	sequences *shared.SequenceStore
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, sequences: shared.NewSequenceStore(pool)}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateSale(ctx context.Context, sale Sale) (int64, error)
	InsertSaleItem(ctx context.Context, item SaleItem) (int64, error)
	UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus, updates map[string]any) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// NextSaleNumber reserves the next sale number in the IPS series.
func (r *Repository) NextSaleNumber(ctx context.Context) (string, error) {
	value, err := r.sequences.Next(ctx, shared.SeriesInternalPumpSale)
	if err != nil {
		return "", err
	}
	return shared.FormatSequence("IPS", value), nil
}

const saleColumns = `id, sale_number, status, sale_type, customer_type,
	selling_branch_id, selling_branch_name, buyer_branch_id,
	customer_name, customer_tax_id, customer_address,
	source_order_number, source_transport_ref, notes,
	total_amount, paid_amount, payment_method, payment_request_status,
	recorded_by, cancelled_by, cancelled_at, cancel_reason, created_at, updated_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(
		&s.ID, &s.SaleNumber, &s.Status, &s.SaleType, &s.CustomerType,
		&s.SellingBranchID, &s.SellingBranchName, &s.BuyerBranchID,
		&s.CustomerName, &s.CustomerTaxID, &s.CustomerAddress,
		&s.SourceOrderNumber, &s.SourceTransportRef, &s.Notes,
		&s.TotalAmount, &s.PaidAmount, &s.PaymentMethod, &s.PaymentRequestStatus,
		&s.RecordedBy, &s.CancelledBy, &s.CancelledAt, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetSale returns a sale with its items.
func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM internal_pump_sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, fmt.Errorf("%w: internal pump sale %d", httpx.ErrNotFound, id)
		}
		return Sale{}, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.getItems(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

func (r *Repository) getItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, oil_type, quantity, price_per_liter, total_amount
		FROM internal_pump_sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.OilType, &item.Quantity, &item.PricePerLiter, &item.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListFilter narrows sale listings.
type ListFilter struct {
	SellingBranchID *int64
	SaleType        *SaleType
	Status          *SaleStatus
	Page            int
	PerPage         int
}

// ListSales returns sales matching the filter plus the unpaged total.
func (r *Repository) ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.SellingBranchID != nil {
		args = append(args, *filter.SellingBranchID)
		where += fmt.Sprintf(" AND selling_branch_id = $%d", len(args))
	}
	if filter.SaleType != nil {
		args = append(args, *filter.SaleType)
		where += fmt.Sprintf(" AND sale_type = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM internal_pump_sales`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	args = append(args, page.PerPage, page.Offset())
	query := `SELECT ` + saleColumns + ` FROM internal_pump_sales` + where +
		fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range sales {
		items, err := r.getItems(ctx, sales[i].ID)
		if err != nil {
			return nil, 0, err
		}
		sales[i].Items = items
	}
	return sales, total, nil
}

// ListActiveTruckResales returns non-cancelled truck-remainder sales for a
// branch, items included, for the remainder tracker. The query is unpaged:
// every active resale must count or the remainder overstates.
func (r *Repository) ListActiveTruckResales(ctx context.Context, sellingBranchID int64) ([]Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM internal_pump_sales
		WHERE selling_branch_id = $1 AND sale_type = $2 AND status = $3
		ORDER BY id`
	rows, err := r.pool.Query(ctx, query, sellingBranchID, SaleTruckRemnant, StatusNormal)
	if err != nil {
		return nil, fmt.Errorf("list truck resales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := r.getItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

// CreateSale inserts the sale header.
func (t *txRepo) CreateSale(ctx context.Context, sale Sale) (int64, error) {
	query := `INSERT INTO internal_pump_sales (
		sale_number, status, sale_type, customer_type,
		selling_branch_id, selling_branch_name, buyer_branch_id,
		customer_name, customer_tax_id, customer_address,
		source_order_number, source_transport_ref, notes,
		total_amount, paid_amount, payment_method, payment_request_status,
		recorded_by, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		sale.SaleNumber, sale.Status, sale.SaleType, sale.CustomerType,
		sale.SellingBranchID, sale.SellingBranchName, sale.BuyerBranchID,
		sale.CustomerName, sale.CustomerTaxID, sale.CustomerAddress,
		sale.SourceOrderNumber, sale.SourceTransportRef, sale.Notes,
		sale.TotalAmount, sale.PaidAmount, sale.PaymentMethod, sale.PaymentRequestStatus,
		sale.RecordedBy, sale.CreatedAt, sale.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert sale: %w", err)
	}
	return id, nil
}

// InsertSaleItem inserts one sale line.
func (t *txRepo) InsertSaleItem(ctx context.Context, item SaleItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO internal_pump_sale_items (sale_id, oil_type, quantity, price_per_liter, total_amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.SaleID, item.OilType, item.Quantity, item.PricePerLiter, item.TotalAmount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert sale item: %w", err)
	}
	return id, nil
}

// UpdateSaleStatus sets the status plus any additional columns.
func (t *txRepo) UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus, updates map[string]any) error {
	set := []string{"status = $1", "updated_at = NOW()"}
	args := []any{status}
	for column, value := range updates {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE internal_pump_sales SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: internal pump sale %d", httpx.ErrNotFound, id)
	}
	return nil
}
