package pumpsale

import (
	"context"

	"github.com/fueldesk/fueldesk/internal/distribution"
)

// ResaleSource adapts the pump sale repository to the distribution remainder
// tracker's SalesPort.
type ResaleSource struct {
	repo RepositoryPort
}

// NewResaleSource constructs the adapter.
func NewResaleSource(repo RepositoryPort) *ResaleSource {
	return &ResaleSource{repo: repo}
}

// ListTruckResales returns active truck-remainder sales for the branch in the
// shape the remainder tracker consumes.
func (a *ResaleSource) ListTruckResales(ctx context.Context, sellingBranchID int64) ([]distribution.TruckResale, error) {
	sales, err := a.repo.ListActiveTruckResales(ctx, sellingBranchID)
	if err != nil {
		return nil, err
	}
	resales := make([]distribution.TruckResale, 0, len(sales))
	for i := range sales {
		sale := &sales[i]
		resales = append(resales, distribution.TruckResale{
			SaleNumber:         sale.SaleNumber,
			Quantity:           sale.TotalQuantity(),
			SourceOrderNumber:  sale.SourceOrderNumber,
			SourceTransportRef: sale.SourceTransportRef,
			Notes:              sale.Notes,
		})
	}
	return resales, nil
}
