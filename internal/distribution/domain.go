package distribution

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle of an internal oil order.
type OrderStatus string

const (
	StatusPendingApproval OrderStatus = "PENDING_APPROVAL" // created by requesting branch
	StatusApproved        OrderStatus = "APPROVED"         // source branch and transport assigned
	StatusInTransit       OrderStatus = "IN_TRANSIT"       // goods left the source branch
	StatusDelivered       OrderStatus = "DELIVERED"        // receipt reconciled, terminal
	StatusCancelled       OrderStatus = "CANCELLED"        // terminal
)

// IsValid checks if the status is valid.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanApprove checks if the order can be approved.
func (s OrderStatus) CanApprove() bool {
	return s == StatusPendingApproval
}

// CanDispatch checks if the order can be marked in transit.
func (s OrderStatus) CanDispatch() bool {
	return s == StatusApproved
}

// CanReconcile checks if a receipt can be confirmed against the order.
func (s OrderStatus) CanReconcile() bool {
	return s == StatusInTransit
}

// CanCancel checks if the order can still be cancelled. Nothing physical has
// been committed before delivery, so a cancel is a pure status flip.
func (s OrderStatus) CanCancel() bool {
	return s == StatusPendingApproval || s == StatusApproved || s == StatusInTransit
}

// OilType enumerates the fuel grades branches trade between each other.
type OilType string

const (
	OilDiesel        OilType = "DIESEL"
	OilPremiumDiesel OilType = "PREMIUM_DIESEL"
	OilGasohol91     OilType = "GASOHOL_91"
	OilGasohol95     OilType = "GASOHOL_95"
	OilE20           OilType = "E20"
	OilLPG           OilType = "LPG"
)

// IsValid checks if the oil type is a known grade.
func (o OilType) IsValid() bool {
	switch o {
	case OilDiesel, OilPremiumDiesel, OilGasohol91, OilGasohol95, OilE20, OilLPG:
		return true
	default:
		return false
	}
}

// DeliverySource records where a delivered item was physically served from.
type DeliverySource string

const (
	SourceFromTank    DeliverySource = "FROM_TANK"
	SourceFromTruck   DeliverySource = "FROM_TRUCK"
	SourceFromSuction DeliverySource = "FROM_SUCTION"
)

// IsValid checks if the delivery source is valid.
func (d DeliverySource) IsValid() bool {
	switch d {
	case SourceFromTank, SourceFromTruck, SourceFromSuction:
		return true
	default:
		return false
	}
}

// Order is one requisition moving fuel from a source branch to a requesting
// branch.
type Order struct {
	ID          int64       `json:"id"`
	RefID       uuid.UUID   `json:"ref_id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`

	RequestingBranchID   int64   `json:"requesting_branch_id"`
	RequestingBranchName string  `json:"requesting_branch_name"`
	SourceBranchID       *int64  `json:"source_branch_id,omitempty"`
	SourceBranchName     *string `json:"source_branch_name,omitempty"`

	OrderDate     time.Time `json:"order_date"`
	RequestedDate time.Time `json:"requested_date"`

	// TransportRef correlates the order with its physical transport job.
	// The embedded fields below are the static fallback shown while no live
	// job record exists yet.
	TransportRef    *string `json:"transport_ref,omitempty"`
	TransportNumber *string `json:"transport_number,omitempty"`
	TruckPlate      *string `json:"truck_plate,omitempty"`
	TrailerPlate    *string `json:"trailer_plate,omitempty"`
	DriverName      *string `json:"driver_name,omitempty"`

	ReceivedByName *string    `json:"received_by_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CancelledBy    *string    `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`

	TotalAmount float64 `json:"total_amount"`
	Items       []Item  `json:"items"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one fuel grade line on an order. RequestedQuantity is immutable
// after creation; Quantity becomes the received quantity of record once the
// receipt is reconciled.
type Item struct {
	ID                   int64           `json:"id"`
	OrderID              int64           `json:"order_id"`
	OilType              OilType         `json:"oil_type"`
	RequestedQuantity    float64         `json:"requested_quantity"`
	Quantity             float64         `json:"quantity"`
	UnloadedQuantity     *float64        `json:"unloaded_quantity,omitempty"`
	KeptOnTruckQuantity  *float64        `json:"kept_on_truck_quantity,omitempty"`
	PricePerLiter        float64         `json:"price_per_liter"`
	TotalAmount          float64         `json:"total_amount"`
	TransportRef         *string         `json:"transport_ref,omitempty"`
	DeliverySource       *DeliverySource `json:"delivery_source,omitempty"`
}

// KeptOnTruck sums the kept-on-truck portion across items. Zero until the
// order is delivered.
func (o *Order) KeptOnTruck() float64 {
	var sum float64
	for _, item := range o.Items {
		if item.KeptOnTruckQuantity != nil {
			sum += *item.KeptOnTruckQuantity
		}
	}
	return sum
}

// HasTransportRef reports whether a transport reference is assigned.
func (o *Order) HasTransportRef() bool {
	return o.TransportRef != nil && *o.TransportRef != ""
}
