package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pooja-supplies/internal/catalog/application"
	"pooja-supplies/internal/catalog/domain"
	"pooja-supplies/internal/catalog/ports"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/middleware"
	"pooja-supplies/pkg/money"
)

const maxPageSize = 100

// HTTPHandler handles HTTP requests for the catalog
type HTTPHandler struct {
	useCase *application.CatalogUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CatalogUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers browsing routes on public, wishlist and review
// writes on api and product management on admin
func (h *HTTPHandler) RegisterRoutes(public, api, admin *gin.RouterGroup) {
	public.GET("/products", h.ListProducts)
	public.GET("/products/:id", h.GetProduct)
	public.GET("/products/:id/reviews", h.ListReviews)
	api.POST("/products/:id/reviews", h.AddReview)

	wishlist := api.Group("/wishlist")
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.POST("/:productId", h.AddToWishlist)
		wishlist.DELETE("/:productId", h.RemoveFromWishlist)
	}

	products := admin.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.PUT("/:id/stock", h.SetStock)
	}
}

// ProductRequest is the request body for creating or updating a product
type ProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       money.Money `json:"price"`
	Stock       int         `json:"stock" binding:"min=0"`
	Images      []string    `json:"images"`
}

func (r ProductRequest) fields() domain.ProductFields {
	return domain.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Images:      r.Images,
	}
}

// SetStockRequest is the request body for setting stock
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// ProductResponse is the response body for product operations
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       money.Money `json:"price"`
	Stock       int         `json:"stock"`
	InStock     bool        `json:"in_stock"`
	Images      []string    `json:"images"`
	UpdatedAt   string      `json:"updated_at"`
}

func toResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Images:      p.Images,
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toListResponse(products []*domain.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toResponse(p))
	}
	return resp
}

// ListProducts handles GET /products
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	filter := ports.ProductFilter{
		Category:    c.Query("category"),
		Search:      c.Query("q"),
		InStockOnly: c.Query("in_stock") == "true",
		Limit:       20,
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			c.Error(errors.NewValidation("limit must be a positive integer", nil))
			return
		}
		filter.Limit = min(v, maxPageSize)
	}
	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.Error(errors.NewValidation("offset must be a non-negative integer", nil))
			return
		}
		filter.Offset = v
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toListResponse(products))
}

// GetProduct handles GET /products/:id
func (h *HTTPHandler) GetProduct(c *gin.Context) {
	output, err := h.useCase.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toResponse(output.Product))
}

// CreateProduct handles POST /admin/products
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.CreateProduct(c.Request.Context(), req.fields())
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusCreated, toResponse(output.Product))
}

// UpdateProduct handles PUT /admin/products/:id
func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.UpdateProduct(c.Request.Context(), application.UpdateProductInput{
		ID:            c.Param("id"),
		ProductFields: req.fields(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toResponse(output.Product))
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	if err := h.useCase.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStock handles PUT /admin/products/:id/stock
func (h *HTTPHandler) SetStock(c *gin.Context) {
	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.SetStock(c.Request.Context(), c.Param("id"), *req.Stock)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toResponse(output.Product))
}

// GetWishlist handles GET /wishlist
func (h *HTTPHandler) GetWishlist(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	products, err := h.useCase.Wishlist(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toListResponse(products))
}

// AddToWishlist handles POST /wishlist/:productId
func (h *HTTPHandler) AddToWishlist(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	if err := h.useCase.AddToWishlist(c.Request.Context(), principal.UserID, c.Param("productId")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFromWishlist handles DELETE /wishlist/:productId
func (h *HTTPHandler) RemoveFromWishlist(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	if err := h.useCase.RemoveFromWishlist(c.Request.Context(), principal.UserID, c.Param("productId")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReviewRequest is the request body for reviewing a product
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

// ReviewResponse is a single review
type ReviewResponse struct {
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	UpdatedAt string `json:"updated_at"`
}

// ReviewsResponse is the response body for review operations
type ReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Average float64          `json:"average_rating"`
	Count   int              `json:"count"`
}

func toReviewsResponse(out *application.ReviewsOutput) ReviewsResponse {
	resp := ReviewsResponse{
		Reviews: make([]ReviewResponse, 0, len(out.Reviews)),
		Average: out.Average,
		Count:   len(out.Reviews),
	}
	for _, r := range out.Reviews {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			UserID:    r.UserID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// ListReviews handles GET /products/:id/reviews
func (h *HTTPHandler) ListReviews(c *gin.Context) {
	output, err := h.useCase.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusOK, toReviewsResponse(output))
}

// AddReview handles POST /products/:id/reviews
func (h *HTTPHandler) AddReview(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.AddReview(c.Request.Context(), application.ReviewInput{
		ProductID: c.Param("id"),
		UserID:    principal.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusCreated, toReviewsResponse(output))
}
