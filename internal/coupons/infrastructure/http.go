package infrastructure

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pooja-supplies/internal/coupons/application"
	"pooja-supplies/internal/coupons/domain"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/middleware"
	"pooja-supplies/pkg/money"
)

// HTTPHandler handles HTTP requests for coupons
type HTTPHandler struct {
	useCase *application.CouponUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CouponUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the public coupon routes on api and the
// management routes on admin
func (h *HTTPHandler) RegisterRoutes(api, admin *gin.RouterGroup) {
	api.POST("/coupons/validate", h.ValidateCoupon)

	coupons := admin.Group("/coupons")
	{
		coupons.GET("", h.ListCoupons)
		coupons.POST("", h.CreateCoupon)
		coupons.PUT("/:id", h.UpdateCoupon)
		coupons.DELETE("/:id", h.DeleteCoupon)
	}
}

// CouponRequest is the request body for creating or updating a coupon
type CouponRequest struct {
	Code     string          `json:"code" binding:"required" example:"DIWALI10"`
	Type     string          `json:"type" binding:"required,oneof=percent flat" example:"percent"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"number" example:"10"`
	MinOrder money.Money     `json:"min_order" swaggertype:"number" example:"499"`
	Expiry   string          `json:"expiry" binding:"required" example:"2025-11-15"`
}

// ValidateCouponRequest is the request body for validating a coupon
type ValidateCouponRequest struct {
	Code     string      `json:"code" binding:"required" example:"DIWALI10"`
	Subtotal money.Money `json:"subtotal" swaggertype:"number" example:"1250.00"`
}

// CouponResponse is the response body for coupon operations
type CouponResponse struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount" swaggertype:"number"`
	MinOrder  money.Money `json:"min_order" swaggertype:"number"`
	Expiry    string      `json:"expiry"`
	CreatedAt string      `json:"created_at"`
}

func toResponse(c *domain.Coupon) CouponResponse {
	return CouponResponse{
		ID:        c.ID,
		Code:      c.Code,
		Type:      string(c.Kind),
		Amount:    json.Number(c.Amount.String()),
		MinOrder:  c.MinOrderAmount,
		Expiry:    c.Expiry.Format(time.DateOnly),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func (r CouponRequest) toInput() (application.CouponInput, error) {
	expiry, err := domain.ParseDate(r.Expiry)
	if err != nil {
		return application.CouponInput{}, errors.NewValidation("expiry must be a YYYY-MM-DD date", nil)
	}
	return application.CouponInput{
		Code:           r.Code,
		Kind:           domain.Kind(r.Type),
		Amount:         r.Amount,
		MinOrderAmount: r.MinOrder,
		Expiry:         expiry,
	}, nil
}

// ValidateCoupon checks a coupon code against a cart subtotal
// @Summary Validate a coupon
// @Description Rejections carry reason NOT_FOUND, EXPIRED or BELOW_MINIMUM
// @Tags coupons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ValidateCouponRequest true "Coupon code and cart subtotal"
// @Success 200 {object} map[string]interface{} "Coupon is applicable"
// @Failure 400 {object} errors.ErrorResponse "Coupon rejected"
// @Router /api/v1/coupons/validate [post]
func (h *HTTPHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.ValidateCoupon(c.Request.Context(), application.ValidateCouponInput{
		Code:     req.Code,
		Subtotal: req.Subtotal,
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Respond(c, http.StatusOK, toResponse(output.Coupon))
}

// ListCoupons handles GET /admin/coupons
// @Summary List coupons
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/coupons [get]
func (h *HTTPHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.useCase.ListCoupons(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	resp := make([]CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		resp = append(resp, toResponse(coupon))
	}
	middleware.Respond(c, http.StatusOK, resp)
}

// CreateCoupon handles POST /admin/coupons
// @Summary Create a coupon
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CouponRequest true "Coupon"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 409 {object} errors.ErrorResponse "Code already exists"
// @Router /api/v1/admin/coupons [post]
func (h *HTTPHandler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.useCase.CreateCoupon(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Respond(c, http.StatusCreated, toResponse(output.Coupon))
}

// UpdateCoupon handles PUT /admin/coupons/:id
// @Summary Update a coupon
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Coupon ID"
// @Param request body CouponRequest true "Coupon"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/coupons/{id} [put]
func (h *HTTPHandler) UpdateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.useCase.UpdateCoupon(c.Request.Context(), application.UpdateCouponInput{
		ID:          c.Param("id"),
		CouponInput: input,
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Respond(c, http.StatusOK, toResponse(output.Coupon))
}

// DeleteCoupon handles DELETE /admin/coupons/:id
// @Summary Delete a coupon
// @Tags admin
// @Security ApiKeyAuth
// @Param id path string true "Coupon ID"
// @Success 204
// @Router /api/v1/admin/coupons/{id} [delete]
func (h *HTTPHandler) DeleteCoupon(c *gin.Context) {
	if err := h.useCase.DeleteCoupon(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
