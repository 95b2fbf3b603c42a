package entity

import "github.com/shopspring/decimal"

// CartItem is a cart line after catalog resolution: the product's category,
// unit price and fulfilling vendor are known. One vendor per product.
type CartItem struct {
	ProductID string
	Name      string
	Category  string
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
	VendorID  string
}

// LineTotal returns unit price times quantity, unrounded.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Product is a catalog entry resolvable from a cart line.
type Product struct {
	ID       string
	Name     string
	Category string
	Sizes    string
	Price    decimal.Decimal
	VendorID string
}

// Vendor fulfils products assigned to it.
type Vendor struct {
	ID    string
	Name  string
	Email string
}

// Employee belongs to a client company and owns the orders it places.
type Employee struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Location  string
}
