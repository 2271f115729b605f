package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pooja-supplies/internal/orders/application"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/middleware"
	"pooja-supplies/pkg/money"
)

const maxPageSize = 100

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
	loc     *time.Location
}

// NewHTTPHandler creates a new HTTP handler. loc interprets date query
// parameters.
func NewHTTPHandler(useCase *application.OrderUseCase, loc *time.Location) *HTTPHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPHandler{useCase: useCase, loc: loc}
}

// RegisterRoutes registers buyer routes on api and console routes on admin
func (h *HTTPHandler) RegisterRoutes(api, admin *gin.RouterGroup) {
	api.POST("/cart/quote", h.QuoteCart)

	orders := api.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/utr", h.SubmitUTR)
	}

	adminOrders := admin.Group("/orders")
	{
		adminOrders.GET("", h.ListOrders)
		adminOrders.PATCH("/:id/status", h.AdvanceStatus)
		adminOrders.POST("/:id/mark-paid", h.MarkPaid)
		adminOrders.POST("/:id/reconcile-stock", h.ReconcileStock)
		adminOrders.POST("/reconcile-stock", h.ReconcilePendingStock)
	}
	admin.GET("/reports/sales", h.SalesReport)
}

// ItemRequest is one cart line in a request
type ItemRequest struct {
	ProductID string `json:"product_id" binding:"required" example:"6f1c2a4e-brass-diya"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=1000" example:"2"`
}

// QuoteRequest is the request body for pricing a cart
type QuoteRequest struct {
	Items      []ItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode string        `json:"coupon_code" example:"DIWALI10"`
}

// PlaceOrderRequest is the request body for placing an order
type PlaceOrderRequest struct {
	Items           []ItemRequest  `json:"items" binding:"required,min=1,dive"`
	CouponCode      string         `json:"coupon_code" example:"DIWALI10"`
	ShippingAddress domain.Address `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method" binding:"required" example:"UPI"`
	// ExpectedTotal is the total shown to the buyer; a mismatch is rejected
	ExpectedTotal *money.Money `json:"expected_total,omitempty" swaggertype:"number" example:"180.00"`
}

// UpdateStatusRequest is the request body for an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Shipped"`
}

// SubmitUTRRequest is the request body for a UPI transaction reference
type SubmitUTRRequest struct {
	UTR string `json:"utr" binding:"required" example:"412345678901"`
}

// LineResponse is one order line
type LineResponse struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price" swaggertype:"number"`
	Quantity  int         `json:"quantity"`
	LineTotal money.Money `json:"line_total" swaggertype:"number"`
}

// QuoteResponse is a priced cart
type QuoteResponse struct {
	Lines      []LineResponse `json:"lines"`
	CouponCode string         `json:"coupon_code,omitempty"`
	Subtotal   money.Money    `json:"subtotal" swaggertype:"number"`
	Discount   money.Money    `json:"discount" swaggertype:"number"`
	FinalTotal money.Money    `json:"final_total" swaggertype:"number"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"user_id"`
	Lines            []LineResponse         `json:"lines"`
	ShippingAddress  domain.Address         `json:"shipping_address"`
	PaymentMethod    string                 `json:"payment_method"`
	Coupon           *domain.CouponSnapshot `json:"coupon,omitempty"`
	Subtotal         money.Money            `json:"subtotal" swaggertype:"number"`
	Discount         money.Money            `json:"discount" swaggertype:"number"`
	TotalAmount      money.Money            `json:"total_amount" swaggertype:"number"`
	Status           string                 `json:"status"`
	PaymentStatus    string                 `json:"payment_status"`
	UPITransactionID string                 `json:"upi_transaction_id,omitempty"`
	StockApplied     bool                   `json:"stock_applied"`
	StockPending     bool                   `json:"stock_pending,omitempty"`
	PlacedAt         string                 `json:"placed_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

func toLines(lines []domain.CartLine) []LineResponse {
	resp := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, LineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.Extension(),
		})
	}
	return resp
}

func toResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		UserID:           o.UserID,
		Lines:            toLines(o.Lines),
		ShippingAddress:  o.ShippingAddress,
		PaymentMethod:    string(o.PaymentMethod),
		Coupon:           o.Coupon,
		Subtotal:         o.Subtotal,
		Discount:         o.Discount,
		TotalAmount:      o.TotalAmount,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		UPITransactionID: o.UPITransactionID,
		StockApplied:     o.StockApplied(),
		PlacedAt:         o.PlacedAt.Format(time.RFC3339),
		UpdatedAt:        o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOutputResponse(output *application.OrderOutput) OrderResponse {
	resp := toResponse(output.Order)
	resp.StockPending = output.StockPending
	return resp
}

func toListResponse(orders []*domain.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toResponse(o))
	}
	return resp
}

func toItems(items []ItemRequest) []application.ItemInput {
	out := make([]application.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, application.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// QuoteCart handles POST /cart/quote
// @Summary Price a cart
// @Description Prices the cart at current catalog prices and applies an optional coupon
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body QuoteRequest true "Cart"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse "Validation error or coupon rejected"
// @Router /api/v1/cart/quote [post]
func (h *HTTPHandler) QuoteCart(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.QuoteCart(c.Request.Context(), application.QuoteInput{
		Items:      toItems(req.Items),
		CouponCode: req.CouponCode,
	})
	if err != nil {
		c.Error(err)
		return
	}

	resp := QuoteResponse{
		Lines:      toLines(output.Lines),
		Subtotal:   output.Pricing.Subtotal,
		Discount:   output.Pricing.Discount,
		FinalTotal: output.Pricing.FinalTotal,
	}
	if output.Coupon != nil {
		resp.CouponCode = output.Coupon.Code
	}
	middleware.Respond(c, http.StatusOK, resp)
}

// PlaceOrder handles POST /orders
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body PlaceOrderRequest true "Order"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 409 {object} errors.ErrorResponse "Total changed"
// @Failure 503 {object} errors.ErrorResponse "Store unavailable"
// @Router /api/v1/orders [post]
func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	principal, _ := auth.PrincipalFrom(c)

	output, err := h.useCase.PlaceOrder(c.Request.Context(), application.PlaceOrderInput{
		UserID:        principal.UserID,
		Items:         toItems(req.Items),
		CouponCode:    req.CouponCode,
		Address:       req.ShippingAddress,
		PaymentMethod: req.PaymentMethod,
		ExpectedTotal: req.ExpectedTotal,
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Respond(c, http.StatusCreated, toOutputResponse(output))
}

// ListMyOrders handles GET /orders
// @Summary List the caller's orders
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/orders [get]
func (h *HTTPHandler) ListMyOrders(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}
	principal, _ := auth.PrincipalFrom(c)

	orders, err := h.useCase.ListMyOrders(c.Request.Context(), principal.UserID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toListResponse(orders))
}

// GetOrder handles GET /orders/:id
// @Summary Get an order
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse "Order not found"
// @Router /api/v1/orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	output, err := h.useCase.GetOrder(c.Request.Context(), application.GetOrderInput{
		ID:     c.Param("id"),
		UserID: principal.UserID,
		Admin:  principal.Admin,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// CancelOrder handles POST /orders/:id/cancel
// @Summary Cancel a pending order
// @Tags orders
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.ErrorResponse "Order cannot be cancelled"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	output, err := h.useCase.CancelOrder(c.Request.Context(), application.CancelOrderInput{
		ID:     c.Param("id"),
		UserID: principal.UserID,
		Admin:  principal.Admin,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// SubmitUTR handles POST /orders/:id/utr
// @Summary Submit a UPI transaction reference
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Param request body SubmitUTRRequest true "UTR"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.ErrorResponse "Payment cannot take a UTR"
// @Router /api/v1/orders/{id}/utr [post]
func (h *HTTPHandler) SubmitUTR(c *gin.Context) {
	var req SubmitUTRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	principal, _ := auth.PrincipalFrom(c)

	output, err := h.useCase.SubmitUTR(c.Request.Context(), application.SubmitUTRInput{
		ID:     c.Param("id"),
		UserID: principal.UserID,
		Admin:  principal.Admin,
		UTR:    req.UTR,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// ListOrders handles GET /admin/orders
// @Summary List all orders
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Pending, Shipped, Delivered or Cancelled"
// @Param user_id query string false "Buyer"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/orders [get]
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}
	from, to, err := h.dateRange(c)
	if err != nil {
		c.Error(err)
		return
	}

	filter := ports.OrderFilter{
		UserID: c.Query("user_id"),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	}
	if s := c.Query("status"); s != "" {
		status, err := domain.ParseOrderStatus(s)
		if err != nil {
			c.Error(err)
			return
		}
		filter.Status = status
	}

	orders, err := h.useCase.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toListResponse(orders))
}

// AdvanceStatus handles PATCH /admin/orders/:id/status
// @Summary Move an order to a new status
// @Description Delivering an order decrements stock once
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.ErrorResponse "Illegal transition"
// @Router /api/v1/admin/orders/{id}/status [patch]
func (h *HTTPHandler) AdvanceStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.AdvanceStatus(c.Request.Context(), application.AdvanceStatusInput{
		ID:     c.Param("id"),
		Status: req.Status,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// MarkPaid handles POST /admin/orders/:id/mark-paid
// @Summary Mark an order paid
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.ErrorResponse "Already paid"
// @Router /api/v1/admin/orders/{id}/mark-paid [post]
func (h *HTTPHandler) MarkPaid(c *gin.Context) {
	output, err := h.useCase.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// ReconcileStock handles POST /admin/orders/:id/reconcile-stock
// @Summary Finish the stock decrement of a delivered order
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} errors.ErrorResponse "Catalog unavailable"
// @Router /api/v1/admin/orders/{id}/reconcile-stock [post]
func (h *HTTPHandler) ReconcileStock(c *gin.Context) {
	output, err := h.useCase.ReconcileStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toOutputResponse(output))
}

// ReconcilePendingStock handles POST /admin/orders/reconcile-stock
// @Summary Retry every unfinished delivery stock decrement
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/orders/reconcile-stock [post]
func (h *HTTPHandler) ReconcilePendingStock(c *gin.Context) {
	done, err := h.useCase.ReconcilePendingStock(c.Request.Context(), maxPageSize)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, gin.H{"reconciled": done})
}

// SalesReport handles GET /admin/reports/sales
// @Summary Sales by month and orders by status
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/reports/sales [get]
func (h *HTTPHandler) SalesReport(c *gin.Context) {
	from, to, err := h.dateRange(c)
	if err != nil {
		c.Error(err)
		return
	}

	report, err := h.useCase.SalesReport(c.Request.Context(), application.SalesReportInput{From: from, To: to})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, report)
}

func pagination(c *gin.Context) (int, int, error) {
	limit := 20
	offset := 0
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, errors.NewValidation("limit must be a positive integer", nil)
		}
		limit = min(v, maxPageSize)
	}
	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, errors.NewValidation("offset must be a non-negative integer", nil)
		}
		offset = v
	}
	return limit, offset, nil
}

// dateRange parses inclusive from/to days into a half-open time range
func (h *HTTPHandler) dateRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if s := c.Query("from"); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return from, to, errors.NewValidation("from must be a YYYY-MM-DD date", nil)
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			return from, to, errors.NewValidation("to must be a YYYY-MM-DD date", nil)
		}
		to = d.AddDate(0, 0, 1)
	}
	return from, to, nil
}
