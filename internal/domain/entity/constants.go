package entity

// Status constants for Order and OrderSplit
const (
	StatusAwaitingApproval   = "AWAITING_APPROVAL"
	StatusAwaitingFulfilment = "AWAITING_FULFILMENT"
	StatusLinkedToPO         = "LINKED_TO_PO"
	StatusAwaitingDispatch   = "AWAITING_DISPATCH"
	StatusDispatched         = "DISPATCHED"
	StatusDelivered          = "DELIVERED"
)

// Aggregate status constants for split-order parents. These are display views
// computed over child statuses and are never stored.
const (
	StatusPartiallyDispatched = "PARTIALLY_DISPATCHED"
	StatusPartiallyDelivered  = "PARTIALLY_DELIVERED"
)

// Legacy entitlement categories. These are always present on an entitlement
// record; any other category lives in the dynamic map.
const (
	CategoryShirt  = "shirt"
	CategoryPant   = "pant"
	CategoryShoe   = "shoe"
	CategoryJacket = "jacket"
)

// Dispatch preference constants
const (
	DispatchToSite = "SITE"
	DispatchToHome = "HOME"
)
