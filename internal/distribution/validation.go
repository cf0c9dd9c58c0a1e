package distribution

import (
	"fmt"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

func validateCreate(input CreateOrderInput) error {
	if input.RequestingBranchID <= 0 {
		return fmt.Errorf("%w: requesting branch required", httpx.ErrValidation)
	}
	if input.RequestedDate.IsZero() {
		return fmt.Errorf("%w: requested delivery date required", httpx.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item required", httpx.ErrValidation)
	}
	for i, item := range input.Items {
		if !item.OilType.IsValid() {
			return fmt.Errorf("%w: item %d: unknown oil type %q", httpx.ErrValidation, i+1, item.OilType)
		}
		if item.RequestedQuantity <= 0 {
			return fmt.Errorf("%w: item %d: requested quantity must be positive", httpx.ErrValidation, i+1)
		}
		if item.PricePerLiter < 0 {
			return fmt.Errorf("%w: item %d: price per liter must not be negative", httpx.ErrValidation, i+1)
		}
	}
	return nil
}

func validateReconcile(order Order, input ReconcileInput) error {
	if input.ReceivedBy == "" {
		return fmt.Errorf("%w: receiver name required", httpx.ErrValidation)
	}
	if len(input.Items) != len(order.Items) {
		return fmt.Errorf("%w: expected %d received items, got %d", httpx.ErrValidation, len(order.Items), len(input.Items))
	}
	for i, item := range input.Items {
		if item.UnloadedQuantity < 0 || item.KeptOnTruckQuantity < 0 {
			return fmt.Errorf("%w: item %d: received quantities must not be negative", httpx.ErrValidation, i+1)
		}
		if item.DeliverySource != nil && !item.DeliverySource.IsValid() {
			return fmt.Errorf("%w: item %d: unknown delivery source %q", httpx.ErrValidation, i+1, *item.DeliverySource)
		}
	}
	return nil
}
