package distribution

import (
	"time"

	"github.com/fueldesk/fueldesk/internal/shared"
	"github.com/fueldesk/fueldesk/internal/transport"
)

// CreateOrderRequest is the JSON payload for creating an order.
type CreateOrderRequest struct {
	RequestingBranchID int64                    `json:"requesting_branch_id" validate:"required,gt=0"`
	RequestedDate      time.Time                `json:"requested_date" validate:"required"`
	Notes              string                   `json:"notes,omitempty"`
	Items              []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItemRequest is one requested line in the create payload.
type CreateOrderItemRequest struct {
	OilType           OilType `json:"oil_type" validate:"required"`
	RequestedQuantity float64 `json:"requested_quantity" validate:"required,gt=0"`
	PricePerLiter     float64 `json:"price_per_liter" validate:"gte=0"`
}

// ApproveOrderRequest assigns source branch and transport.
type ApproveOrderRequest struct {
	SourceBranchID  int64   `json:"source_branch_id" validate:"required,gt=0"`
	TransportRef    string  `json:"transport_ref" validate:"required,max=100"`
	TransportNumber *string `json:"transport_number,omitempty" validate:"omitempty,max=100"`
	TruckPlate      *string `json:"truck_plate,omitempty" validate:"omitempty,max=50"`
	TrailerPlate    *string `json:"trailer_plate,omitempty" validate:"omitempty,max=50"`
	DriverName      *string `json:"driver_name,omitempty" validate:"omitempty,max=200"`
	Note            string  `json:"note,omitempty"`
}

// CancelOrderRequest carries the cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ReceiveItemRequest is the receipt split for one order item, by position.
type ReceiveItemRequest struct {
	UnloadedQuantity    float64         `json:"unloaded_quantity" validate:"gte=0"`
	KeptOnTruckQuantity float64         `json:"kept_on_truck_quantity" validate:"gte=0"`
	DeliverySource      *DeliverySource `json:"delivery_source,omitempty"`
}

// ReceiveOrderRequest confirms physical receipt of an order.
type ReceiveOrderRequest struct {
	Items      []ReceiveItemRequest `json:"items" validate:"required,min=1,dive"`
	ReceivedBy string               `json:"received_by" validate:"required,max=200"`
	Note       string               `json:"note,omitempty"`
}

// ItemView decorates an item with its read-side variance.
type ItemView struct {
	Item
	Variance float64 `json:"variance"`
}

// OrderView is the detail representation served to clients.
type OrderView struct {
	Order
	Items    []ItemView          `json:"items"`
	Movement *transport.Movement `json:"movement,omitempty"`
}

// ListOrdersResponse wraps a page of orders.
type ListOrdersResponse struct {
	Orders     []Order           `json:"orders"`
	Pagination shared.Pagination `json:"pagination"`
}

// RemainderResponse reports the live remaining-on-truck balance.
type RemainderResponse struct {
	OrderID          int64   `json:"order_id"`
	OrderNumber      string  `json:"order_number"`
	RemainingOnTruck float64 `json:"remaining_on_truck"`
}

// NewOrderView builds the detail view, computing variance per item.
func NewOrderView(order Order, movement *transport.Movement) OrderView {
	view := OrderView{Order: order, Movement: movement}
	view.Items = make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{Item: item, Variance: ItemVariance(item)})
	}
	return view
}
