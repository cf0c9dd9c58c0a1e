// Package pumpsale records internal pump sale transactions, including sales
// served directly from fuel still resident on a delivery truck.
package pumpsale

import (
	"time"

	"github.com/fueldesk/fueldesk/internal/distribution"
)

// SaleType classifies where the sold fuel physically came from.
type SaleType string

const (
	SaleFromTank     SaleType = "TANK"
	SaleTruckRemnant SaleType = "TRUCK_REMAINDER"
	SaleFromSuction  SaleType = "SUCTION"
)

// IsValid checks if the sale type is valid.
func (s SaleType) IsValid() bool {
	switch s {
	case SaleFromTank, SaleTruckRemnant, SaleFromSuction:
		return true
	default:
		return false
	}
}

// CustomerType classifies the buyer.
type CustomerType string

const (
	CustomerGeneral        CustomerType = "GENERAL"
	CustomerMember         CustomerType = "MEMBER"
	CustomerCompanyVehicle CustomerType = "COMPANY_VEHICLE"
	CustomerGovernment     CustomerType = "GOVERNMENT"
	CustomerPrivate        CustomerType = "PRIVATE"
)

// IsValid checks if the customer type is valid.
func (c CustomerType) IsValid() bool {
	switch c {
	case CustomerGeneral, CustomerMember, CustomerCompanyVehicle, CustomerGovernment, CustomerPrivate:
		return true
	default:
		return false
	}
}

// PaymentMethod enumerates accepted settlement methods.
type PaymentMethod string

const (
	PayCash     PaymentMethod = "CASH"
	PayTransfer PaymentMethod = "TRANSFER"
	PayCredit   PaymentMethod = "CREDIT"
	PayOther    PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PayCash, PayTransfer, PayCredit, PayOther:
		return true
	default:
		return false
	}
}

// PaymentRequestStatus tracks the internal payment request workflow.
type PaymentRequestStatus string

const (
	PaymentRequestNone     PaymentRequestStatus = "NONE"
	PaymentRequestPending  PaymentRequestStatus = "PENDING"
	PaymentRequestApproved PaymentRequestStatus = "APPROVED"
)

// IsValid checks if the payment request status is valid.
func (p PaymentRequestStatus) IsValid() bool {
	switch p {
	case PaymentRequestNone, PaymentRequestPending, PaymentRequestApproved:
		return true
	default:
		return false
	}
}

// SaleStatus is the record lifecycle. Cancellation is a soft delete: the
// record stays but is excluded from totals.
type SaleStatus string

const (
	StatusNormal    SaleStatus = "NORMAL"
	StatusCancelled SaleStatus = "CANCELLED"
)

// CanCancel checks if the sale can still be cancelled.
func (s SaleStatus) CanCancel() bool {
	return s == StatusNormal
}

// Sale is one pump sale transaction.
type Sale struct {
	ID         int64      `json:"id"`
	SaleNumber string     `json:"sale_number"`
	Status     SaleStatus `json:"status"`

	SaleType     SaleType     `json:"sale_type"`
	CustomerType CustomerType `json:"customer_type"`

	SellingBranchID   int64  `json:"selling_branch_id"`
	SellingBranchName string `json:"selling_branch_name"`
	BuyerBranchID     *int64 `json:"buyer_branch_id,omitempty"`

	CustomerName    string `json:"customer_name,omitempty"`
	CustomerTaxID   string `json:"customer_tax_id,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`

	// SourceOrderNumber/SourceTransportRef link a truck-remainder sale to
	// the order whose remainder it draws down. Notes may additionally carry
	// the reference in free text, which older tickets relied on.
	SourceOrderNumber  string `json:"source_order_number,omitempty"`
	SourceTransportRef string `json:"source_transport_ref,omitempty"`
	Notes              string `json:"notes,omitempty"`

	Items []SaleItem `json:"items"`

	TotalAmount          float64              `json:"total_amount"`
	PaidAmount           float64              `json:"paid_amount"`
	PaymentMethod        PaymentMethod        `json:"payment_method"`
	PaymentRequestStatus PaymentRequestStatus `json:"payment_request_status"`

	RecordedBy   string     `json:"recorded_by"`
	CancelledBy  *string    `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SaleItem is one fuel grade line on a sale.
type SaleItem struct {
	ID            int64                `json:"id"`
	SaleID        int64                `json:"sale_id"`
	OilType       distribution.OilType `json:"oil_type"`
	Quantity      float64              `json:"quantity"`
	PricePerLiter float64              `json:"price_per_liter"`
	TotalAmount   float64              `json:"total_amount"`
}

// TotalQuantity sums liters across items.
func (s *Sale) TotalQuantity() float64 {
	var sum float64
	for _, item := range s.Items {
		sum += item.Quantity
	}
	return sum
}
