package entity

// EmployeeEntitlement is the per-category allowance budget of an employee.
// The four legacy categories are fixed fields; any other category is carried
// in the dynamic map. The record is written by the entitlement-rules
// collaborator and is read-only to the order engine.
type EmployeeEntitlement struct {
	EmployeeID string         `json:"employee_id"`
	Shirt      int            `json:"shirt"`
	Pant       int            `json:"pant"`
	Shoe       int            `json:"shoe"`
	Jacket     int            `json:"jacket"`
	Dynamic    map[string]int `json:"dynamic,omitempty"`
}

// ConsumedEntitlement mirrors EmployeeEntitlement and records quantity
// already ordered. Consumed exceeding total is not an error; it is what
// triggers personal payment.
type ConsumedEntitlement struct {
	EmployeeID string         `json:"employee_id"`
	Shirt      int            `json:"shirt"`
	Pant       int            `json:"pant"`
	Shoe       int            `json:"shoe"`
	Jacket     int            `json:"jacket"`
	Dynamic    map[string]int `json:"dynamic,omitempty"`
}

// Merged flattens legacy fields and the dynamic map into one lookup map.
// Dynamic entries win over legacy fields when both carry the same key.
func (e *EmployeeEntitlement) Merged() map[string]int {
	return mergeCategories(e.Shirt, e.Pant, e.Shoe, e.Jacket, e.Dynamic)
}

// Merged flattens legacy fields and the dynamic map into one lookup map.
func (c *ConsumedEntitlement) Merged() map[string]int {
	return mergeCategories(c.Shirt, c.Pant, c.Shoe, c.Jacket, c.Dynamic)
}

func mergeCategories(shirt, pant, shoe, jacket int, dynamic map[string]int) map[string]int {
	m := map[string]int{
		CategoryShirt:  shirt,
		CategoryPant:   pant,
		CategoryShoe:   shoe,
		CategoryJacket: jacket,
	}
	for k, v := range dynamic {
		m[k] = v
	}
	return m
}
