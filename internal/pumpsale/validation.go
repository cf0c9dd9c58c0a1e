package pumpsale

import (
	"fmt"
	"strings"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
)

func validateCreateSale(input CreateSaleInput) error {
	if !input.SaleType.IsValid() {
		return fmt.Errorf("%w: unknown sale type %q", httpx.ErrValidation, input.SaleType)
	}
	if !input.CustomerType.IsValid() {
		return fmt.Errorf("%w: unknown customer type %q", httpx.ErrValidation, input.CustomerType)
	}
	if !input.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, input.PaymentMethod)
	}
	if input.SellingBranchID <= 0 {
		return fmt.Errorf("%w: selling branch required", httpx.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item required", httpx.ErrValidation)
	}
	for i, item := range input.Items {
		if !item.OilType.IsValid() {
			return fmt.Errorf("%w: item %d: unknown oil type %q", httpx.ErrValidation, i+1, item.OilType)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", httpx.ErrValidation, i+1)
		}
		if item.PricePerLiter < 0 {
			return fmt.Errorf("%w: item %d: price per liter must not be negative", httpx.ErrValidation, i+1)
		}
	}
	if input.PaidAmount < 0 {
		return fmt.Errorf("%w: paid amount must not be negative", httpx.ErrValidation)
	}
	if input.SaleType == SaleTruckRemnant {
		if strings.TrimSpace(input.SourceOrderNumber) == "" && strings.TrimSpace(input.SourceTransportRef) == "" {
			return fmt.Errorf("%w: truck remainder sale requires a source order number or transport reference", httpx.ErrValidation)
		}
	}
	return nil
}
