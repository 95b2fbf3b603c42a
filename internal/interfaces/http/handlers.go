package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	"github.com/uniformhq/uniform-orders/internal/application/service"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	"github.com/uniformhq/uniform-orders/internal/domain/workflow"
	"github.com/uniformhq/uniform-orders/pkg/apperrors"
)

// dateFormat is the wire format of PR dates.
const dateFormat = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	orderService    service.OrderService
	approvalService service.ApprovalService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	orderService service.OrderService,
	approvalService service.ApprovalService,
	logger Logger,
) *Handlers {
	return &Handlers{
		orderService:    orderService,
		approvalService: approvalService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CartLineRequest is one submitted cart line.
type CartLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest struct {
	EmployeeID         string            `json:"employee_id" binding:"required"`
	DeliveryAddress    string            `json:"delivery_address"`
	DispatchPreference string            `json:"dispatch_preference"`
	Items              []CartLineRequest `json:"items" binding:"required"`
}

// ApproveOrderRequest is the body of POST /api/orders/:id/approve.
type ApproveOrderRequest struct {
	ApproverEmail string `json:"approver_email" binding:"required"`
	PRNumber      string `json:"pr_number"`
	PRDate        string `json:"pr_date"`
}

// BulkApproveEntry is one order in a bulk approval request.
type BulkApproveEntry struct {
	OrderID  string `json:"order_id" binding:"required"`
	PRNumber string `json:"pr_number"`
	PRDate   string `json:"pr_date"`
}

// BulkApproveRequest is the body of POST /api/orders/bulk-approve.
type BulkApproveRequest struct {
	ApproverEmail string             `json:"approver_email" binding:"required"`
	Orders        []BulkApproveEntry `json:"orders" binding:"required"`
}

// LinkPORequest is the body of POST /api/orders/link-po.
type LinkPORequest struct {
	ApproverEmail string   `json:"approver_email" binding:"required"`
	PONumber      string   `json:"po_number"`
	OrderIDs      []string `json:"order_ids" binding:"required"`
}

// FulfilmentRequest is the body of POST /api/orders/:id/fulfilment.
type FulfilmentRequest struct {
	Trigger string `json:"trigger" binding:"required"`
}

// ListOrdersRequest represents query parameters for listing orders
type ListOrdersRequest struct {
	EmployeeID string `form:"employee_id"`
	Status     string `form:"status"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	VendorID  string `json:"vendor_id"`
}

// OrderSplitResponse represents a vendor sub-order in API responses
type OrderSplitResponse struct {
	ID        string              `json:"id"`
	VendorID  string              `json:"vendor_id"`
	Status    string              `json:"status"`
	ItemCount int                 `json:"item_count"`
	Total     string              `json:"total"`
	PRNumber  string              `json:"pr_number,omitempty"`
	PONumber  string              `json:"po_number,omitempty"`
	Items     []OrderItemResponse `json:"items"`
}

// OrderResponse represents an order in API responses. Status is the display
// status: for split orders it aggregates over the vendor sub-orders.
type OrderResponse struct {
	ID                    string               `json:"id"`
	EmployeeID            string               `json:"employee_id"`
	CompanyID             string               `json:"company_id"`
	Status                string               `json:"status"`
	IsSplit               bool                 `json:"is_split"`
	ItemCount             int                  `json:"item_count"`
	Total                 string               `json:"total"`
	IsPersonalPayment     bool                 `json:"is_personal_payment"`
	PersonalPaymentAmount string               `json:"personal_payment_amount"`
	PRNumber              string               `json:"pr_number,omitempty"`
	PRDate                *string              `json:"pr_date,omitempty"`
	PONumber              string               `json:"po_number,omitempty"`
	ApprovedBy            string               `json:"approved_by,omitempty"`
	ApprovedAt            *string              `json:"approved_at,omitempty"`
	Items                 []OrderItemResponse  `json:"items"`
	Splits                []OrderSplitResponse `json:"splits,omitempty"`
	CreatedAt             string               `json:"created_at"`
	UpdatedAt             string               `json:"updated_at"`
}

// PlaceOrderResponse pairs the created order with any cart lines that were
// dropped during catalog resolution.
type PlaceOrderResponse struct {
	Order      OrderResponse            `json:"order"`
	Unresolved []service.UnresolvedLine `json:"unresolved,omitempty"`
}

func toItemResponses(items []entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			VendorID:  item.VendorID,
		})
	}
	return out
}

func toOrderResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:                    order.ID,
		EmployeeID:            order.EmployeeID,
		CompanyID:             order.CompanyID,
		Status:                order.AggregateStatus(),
		IsSplit:               order.IsSplit,
		ItemCount:             order.ItemCount,
		Total:                 order.Total.StringFixed(2),
		IsPersonalPayment:     order.IsPersonalPayment,
		PersonalPaymentAmount: order.PersonalPaymentAmount.StringFixed(2),
		PRNumber:              order.PRNumber,
		PONumber:              order.PONumber,
		ApprovedBy:            order.ApprovedBy,
		Items:                 toItemResponses(order.Items),
		CreatedAt:             order.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             order.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if order.PRDate != nil {
		d := order.PRDate.UTC().Format(dateFormat)
		resp.PRDate = &d
	}
	if order.ApprovedAt != nil {
		at := order.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	for _, split := range order.Splits {
		resp.Splits = append(resp.Splits, OrderSplitResponse{
			ID:        split.ID,
			VendorID:  split.VendorID,
			Status:    split.Status,
			ItemCount: split.ItemCount,
			Total:     split.Total.StringFixed(2),
			PRNumber:  split.PRNumber,
			PONumber:  split.PONumber,
			Items:     toItemResponses(split.Items),
		})
	}
	return resp
}

// respondError maps a classified application error to an HTTP status.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindDependency:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func parsePRDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateFormat, raw)
	if err != nil {
		return nil, apperrors.Validation("invalid PR date %q, expected YYYY-MM-DD", raw)
	}
	return &d, nil
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// PlaceOrder handles POST /api/orders
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	input := service.PlaceOrderInput{
		EmployeeID:         req.EmployeeID,
		DeliveryAddress:    req.DeliveryAddress,
		DispatchPreference: req.DispatchPreference,
	}
	for _, line := range req.Items {
		input.Lines = append(input.Lines, service.CartLine{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
		})
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: PlaceOrderResponse{
			Order:      toOrderResponse(result.Order),
			Unresolved: result.Unresolved,
		},
	})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toOrderResponse(order)})
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), port.ListOrdersFilter{
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// ApproveOrder handles POST /api/orders/:id/approve
func (h *Handlers) ApproveOrder(c *gin.Context) {
	var req ApproveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	prDate, err := parsePRDate(req.PRDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.approvalService.Approve(c.Request.Context(), c.Param("id"), req.ApproverEmail, req.PRNumber, prDate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toOrderResponse(order)})
}

// BulkApprove handles POST /api/orders/bulk-approve
func (h *Handlers) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	entries := make([]service.BulkEntry, 0, len(req.Orders))
	for _, o := range req.Orders {
		prDate, err := parsePRDate(o.PRDate)
		if err != nil {
			h.respondError(c, err)
			return
		}
		entries = append(entries, service.BulkEntry{
			OrderID:  o.OrderID,
			PRNumber: o.PRNumber,
			PRDate:   prDate,
		})
	}

	result, err := h.approvalService.BulkApprove(c.Request.Context(), req.ApproverEmail, entries)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// LinkPO handles POST /api/orders/link-po
func (h *Handlers) LinkPO(c *gin.Context) {
	var req LinkPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.approvalService.LinkPO(c.Request.Context(), req.ApproverEmail, req.PONumber, req.OrderIDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

var fulfilmentTriggers = map[string]workflow.Trigger{
	workflow.TriggerReadyForDispatch.String(): workflow.TriggerReadyForDispatch,
	workflow.TriggerDispatch.String():         workflow.TriggerDispatch,
	workflow.TriggerDeliver.String():          workflow.TriggerDeliver,
}

// AdvanceFulfilment handles POST /api/orders/:id/fulfilment
func (h *Handlers) AdvanceFulfilment(c *gin.Context) {
	var req FulfilmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	trigger, ok := fulfilmentTriggers[req.Trigger]
	if !ok {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown fulfilment trigger"})
		return
	}

	order, err := h.approvalService.AdvanceFulfilment(c.Request.Context(), c.Param("id"), trigger)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toOrderResponse(order)})
}

// EmployeeBalance handles GET /api/employees/:id/balance
func (h *Handlers) EmployeeBalance(c *gin.Context) {
	balance, err := h.orderService.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: balance})
}
