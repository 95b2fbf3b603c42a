package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one ordered line within an order or split.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VendorID  string          `json:"vendor_id"`
}

// LineTotal returns unit price times quantity, unrounded.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed uniform order. A multi-vendor cart produces a parent
// order with one OrderSplit per vendor; a single-vendor cart produces a
// standalone order with no splits.
type Order struct {
	ID                    string          `json:"id"`
	EmployeeID            string          `json:"employee_id"`
	CompanyID             string          `json:"company_id"`
	Items                 []OrderItem     `json:"items"`
	DeliveryAddress       string          `json:"delivery_address"`
	DispatchPreference    string          `json:"dispatch_preference"`
	IsPersonalPayment     bool            `json:"is_personal_payment"`
	PersonalPaymentAmount decimal.Decimal `json:"personal_payment_amount"`
	Status                string          `json:"status"`
	PRNumber              string          `json:"pr_number,omitempty"`
	PRDate                *time.Time      `json:"pr_date,omitempty"`
	PONumber              string          `json:"po_number,omitempty"`
	ApprovedBy            string          `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time      `json:"approved_at,omitempty"`
	IsSplit               bool            `json:"is_split"`
	Splits                []*OrderSplit   `json:"splits,omitempty"`
	ItemCount             int             `json:"item_count"`
	Total                 decimal.Decimal `json:"total"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// OrderSplit is the subset of a parent order fulfilled by a single vendor.
// It moves through the same lifecycle as a standalone order; the parent's
// displayed status aggregates over its children.
type OrderSplit struct {
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id"`
	VendorID   string          `json:"vendor_id"`
	Items      []OrderItem     `json:"items"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	PRNumber   string          `json:"pr_number,omitempty"`
	PRDate     *time.Time      `json:"pr_date,omitempty"`
	PONumber   string          `json:"po_number,omitempty"`
	ApprovedBy string          `json:"approved_by,omitempty"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AggregateStatus computes the display status of a split parent from its
// children. All children in the same state yield that state; a mix that
// includes delivered children yields PARTIALLY_DELIVERED, otherwise a mix
// that includes dispatched children yields PARTIALLY_DISPATCHED, otherwise
// the earliest state among the children. Standalone orders report their own
// stored status.
func (o *Order) AggregateStatus() string {
	if !o.IsSplit || len(o.Splits) == 0 {
		return o.Status
	}

	first := o.Splits[0].Status
	uniform := true
	delivered := 0
	dispatched := 0
	for _, s := range o.Splits {
		if s.Status != first {
			uniform = false
		}
		switch s.Status {
		case StatusDelivered:
			delivered++
		case StatusDispatched:
			dispatched++
		}
	}
	if uniform {
		return first
	}
	if delivered > 0 {
		return StatusPartiallyDelivered
	}
	if dispatched > 0 {
		return StatusPartiallyDispatched
	}
	return earliestStatus(o.Splits)
}

var statusRank = map[string]int{
	StatusAwaitingApproval:   0,
	StatusAwaitingFulfilment: 1,
	StatusLinkedToPO:         2,
	StatusAwaitingDispatch:   3,
	StatusDispatched:         4,
	StatusDelivered:          5,
}

func earliestStatus(splits []*OrderSplit) string {
	earliest := splits[0].Status
	for _, s := range splits[1:] {
		if statusRank[s.Status] < statusRank[earliest] {
			earliest = s.Status
		}
	}
	return earliest
}
