package distribution

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

// Repository provides PostgreSQL backed persistence for distribution orders.
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
	CreateOrder(ctx context.Context, order Order) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus, updates map[string]any) error
	UpdateItemReceipt(ctx context.Context, item Item) error
	SetItemTransportRef(ctx context.Context, orderID int64, transportRef string) error
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

// NextOrderNumber reserves the next order number in the REQ series.
func (r *Repository) NextOrderNumber(ctx context.Context) (string, error) {
	value, err := r.sequences.Next(ctx, shared.SeriesInternalOilOrder)
	if err != nil {
		return "", err
	}
	return shared.FormatSequence("REQ", value), nil
}

const orderColumns = `id, ref_id, order_number, status,
	requesting_branch_id, requesting_branch_name, source_branch_id, source_branch_name,
	order_date, requested_date,
	transport_ref, transport_number, truck_plate, trailer_plate, driver_name,
	received_by_name, notes, cancelled_by, cancelled_at,
	total_amount, created_by, created_at, updated_at`

// GetOrder returns the order and its items.
func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM internal_oil_orders WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)

	var o Order
	err := row.Scan(
		&o.ID, &o.RefID, &o.OrderNumber, &o.Status,
		&o.RequestingBranchID, &o.RequestingBranchName, &o.SourceBranchID, &o.SourceBranchName,
		&o.OrderDate, &o.RequestedDate,
		&o.TransportRef, &o.TransportNumber, &o.TruckPlate, &o.TrailerPlate, &o.DriverName,
		&o.ReceivedByName, &o.Notes, &o.CancelledBy, &o.CancelledAt,
		&o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: internal oil order %d", httpx.ErrNotFound, id)
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *Repository) getItems(ctx context.Context, orderID int64) ([]Item, error) {
	query := `SELECT id, order_id, oil_type, requested_quantity, quantity,
		unloaded_quantity, kept_on_truck_quantity, price_per_liter, total_amount,
		transport_ref, delivery_source
		FROM internal_oil_order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.OilType, &item.RequestedQuantity, &item.Quantity,
			&item.UnloadedQuantity, &item.KeptOnTruckQuantity, &item.PricePerLiter, &item.TotalAmount,
			&item.TransportRef, &item.DeliverySource,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListOrders returns orders matching the filter plus the unpaged total.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]Order, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.RequestingBranchID != nil {
		args = append(args, *filter.RequestingBranchID)
		where += fmt.Sprintf(" AND requesting_branch_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM internal_oil_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	args = append(args, page.PerPage, page.Offset())
	query := `SELECT ` + orderColumns + ` FROM internal_oil_orders` + where +
		fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.RefID, &o.OrderNumber, &o.Status,
			&o.RequestingBranchID, &o.RequestingBranchName, &o.SourceBranchID, &o.SourceBranchName,
			&o.OrderDate, &o.RequestedDate,
			&o.TransportRef, &o.TransportNumber, &o.TruckPlate, &o.TrailerPlate, &o.DriverName,
			&o.ReceivedByName, &o.Notes, &o.CancelledBy, &o.CancelledAt,
			&o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// CreateOrder inserts the order header.
func (t *txRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	query := `INSERT INTO internal_oil_orders (
		ref_id, order_number, status,
		requesting_branch_id, requesting_branch_name,
		order_date, requested_date, notes, total_amount,
		created_by, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		order.RefID, order.OrderNumber, order.Status,
		order.RequestingBranchID, order.RequestingBranchName,
		order.OrderDate, order.RequestedDate, order.Notes, order.TotalAmount,
		order.CreatedBy, order.CreatedAt, order.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// InsertItem inserts one order line.
func (t *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	query := `INSERT INTO internal_oil_order_items (
		order_id, oil_type, requested_quantity, quantity,
		unloaded_quantity, kept_on_truck_quantity,
		price_per_liter, total_amount, transport_ref, delivery_source
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		item.OrderID, item.OilType, item.RequestedQuantity, item.Quantity,
		item.UnloadedQuantity, item.KeptOnTruckQuantity,
		item.PricePerLiter, item.TotalAmount, item.TransportRef, item.DeliverySource,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order item: %w", err)
	}
	return id, nil
}

// UpdateOrderStatus sets the status plus any additional columns, stamping
// updated_at.
func (t *txRepo) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus, updates map[string]any) error {
	set := []string{"status = $1", "updated_at = NOW()"}
	args := []any{status}
	for column, value := range updates {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE internal_oil_orders SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: internal oil order %d", httpx.ErrNotFound, id)
	}
	return nil
}

// UpdateItemReceipt writes the reconciled quantities of record for one item.
func (t *txRepo) UpdateItemReceipt(ctx context.Context, item Item) error {
	query := `UPDATE internal_oil_order_items SET
		quantity = $1, unloaded_quantity = $2, kept_on_truck_quantity = $3,
		total_amount = $4, delivery_source = $5
		WHERE id = $6`
	tag, err := t.tx.Exec(ctx, query,
		item.Quantity, item.UnloadedQuantity, item.KeptOnTruckQuantity,
		item.TotalAmount, item.DeliverySource, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order item %d", httpx.ErrNotFound, item.ID)
	}
	return nil
}

// SetItemTransportRef stamps the assigned transport reference on all items.
func (t *txRepo) SetItemTransportRef(ctx context.Context, orderID int64, transportRef string) error {
	_, err := t.tx.Exec(ctx, `UPDATE internal_oil_order_items SET transport_ref = $1 WHERE order_id = $2`, transportRef, orderID)
	if err != nil {
		return fmt.Errorf("set item transport ref: %w", err)
	}
	return nil
}
