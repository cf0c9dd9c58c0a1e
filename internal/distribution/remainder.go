package distribution

import (
	"context"
	"fmt"
	"strings"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

// RemainingOnTruck computes the live truck-resident balance for a delivered
// order: the kept-on-truck total minus every active truck-remainder sale
// tagged against the order, floored at zero. The figure is recomputed from
// snapshots on every read; storing it would drift from the sales that
// deplete it.
func (s *Service) RemainingOnTruck(ctx context.Context, id int64) (float64, error) {
	key := fmt.Sprintf("order:%d", id)
	value, err, _ := s.remainder.Do(key, func() (any, error) {
		return s.remainingOnTruck(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	return value.(float64), nil
}

func (s *Service) remainingOnTruck(ctx context.Context, id int64) (float64, error) {
	if s.cache != nil {
		var cached float64
		hit, err := s.cache.Get(ctx, id, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return 0, err
	}
	if order.Status != StatusDelivered {
		return 0, fmt.Errorf("%w: remainder only exists for delivered orders, order is %s", httpx.ErrInvalidState, order.Status)
	}

	sales, err := s.sales.ListTruckResales(ctx, order.RequestingBranchID)
	if err != nil {
		return 0, fmt.Errorf("list truck resales: %w", err)
	}

	var sold float64
	for _, sale := range sales {
		if saleMatchesOrder(sale, order) {
			sold += sale.Quantity
		}
	}

	remaining := order.KeptOnTruck() - sold
	if remaining < 0 {
		remaining = 0
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, id, remaining)
	}
	return remaining, nil
}

// saleMatchesOrder links a resale ticket to its originating order. Explicit
// source references written at sale creation are authoritative; the legacy
// convention of embedding the order number or transport reference in the
// notes text is still honored for tickets recorded by older clients.
func saleMatchesOrder(sale TruckResale, order Order) bool {
	if sale.SourceOrderNumber != "" && sale.SourceOrderNumber == order.OrderNumber {
		return true
	}
	if sale.SourceTransportRef != "" && order.HasTransportRef() && sale.SourceTransportRef == *order.TransportRef {
		return true
	}
	if sale.Notes == "" {
		return false
	}
	if order.OrderNumber != "" && strings.Contains(sale.Notes, order.OrderNumber) {
		return true
	}
	if order.HasTransportRef() && strings.Contains(sale.Notes, *order.TransportRef) {
		return true
	}
	return false
}
