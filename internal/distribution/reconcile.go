package distribution

import (
	"context"
	"fmt"

	"github.com/fueldesk/fueldesk/internal/distribution/ledger"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// ReceivedItem supplies the physical receipt split for one order item,
// matched to order items by position.
type ReceivedItem struct {
	UnloadedQuantity    float64
	KeptOnTruckQuantity float64
	DeliverySource      *DeliverySource
}

// ReconcileInput describes a receipt confirmation.
type ReconcileInput struct {
	Items      []ReceivedItem
	ReceivedBy string
	Note       string
}

// Reconcile confirms physical receipt of an in-transit order. Per item the
// received amount (unloaded + kept on truck) replaces the quantity of record
// and totals are recomputed. This is the only path into the delivered state;
// an order already delivered is rejected unchanged.
func (s *Service) Reconcile(ctx context.Context, id int64, input ReconcileInput, actor shared.Actor) (Order, error) {
	order, release, err := s.lockAndGet(ctx, id)
	if err != nil {
		return Order{}, err
	}
	defer release()

	if !order.Status.CanReconcile() {
		return Order{}, fmt.Errorf("%w: reconcile from %s", httpx.ErrInvalidState, order.Status)
	}
	if err := validateReconcile(order, input); err != nil {
		return Order{}, err
	}

	items := make([]Item, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		received := input.Items[i]
		unloaded := received.UnloadedQuantity
		kept := received.KeptOnTruckQuantity
		items[i].Quantity = unloaded + kept
		items[i].UnloadedQuantity = &unloaded
		items[i].KeptOnTruckQuantity = &kept
		items[i].TotalAmount = ledger.ItemTotal(items[i].Quantity, items[i].PricePerLiter)
		if received.DeliverySource != nil {
			items[i].DeliverySource = received.DeliverySource
		} else if kept > 0 {
			src := SourceFromTruck
			items[i].DeliverySource = &src
		} else {
			src := SourceFromTank
			items[i].DeliverySource = &src
		}
	}
	total := ledger.SumAmount(itemLines(items))

	updates := map[string]any{
		"received_by_name": input.ReceivedBy,
		"total_amount":     total,
	}
	if input.Note != "" {
		updates["notes"] = appendNote(order.Notes, input.Note)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, item := range items {
			if err := tx.UpdateItemReceipt(ctx, item); err != nil {
				return fmt.Errorf("update item %d: %w", item.ID, err)
			}
		}
		return tx.UpdateOrderStatus(ctx, id, StatusDelivered, updates)
	})
	if err != nil {
		return Order{}, err
	}

	// Delivered quantities feed the remainder figure; stale cached values
	// must not survive the receipt.
	s.bumpRemainderVersion(ctx)

	s.recordApproval(ctx, order, actor, shared.ApprovalReceive, input.Note)
	s.recordAudit(ctx, actor, "reconcile", id, map[string]any{
		"received_by":  input.ReceivedBy,
		"total_amount": total,
	})
	return s.repo.GetOrder(ctx, id)
}

// ItemVariance reports signed liters between the received quantity of record
// and the original request. Computed on read, never stored.
func ItemVariance(item Item) float64 {
	return ledger.Variance(item.Quantity, item.RequestedQuantity)
}

func (s *Service) bumpRemainderVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
