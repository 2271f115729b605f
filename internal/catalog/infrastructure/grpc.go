package infrastructure

import (
	"context"

	catalogv1 "pooja-supplies/api/catalog/v1"
	"pooja-supplies/internal/catalog/application"
	"pooja-supplies/pkg/errors"
)

// GRPCServer implements catalog.v1.InventoryService
type GRPCServer struct {
	catalogv1.UnimplementedInventoryServiceServer
	useCase *application.CatalogUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.CatalogUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

// GetProduct returns the current name, price and stock of a product
func (s *GRPCServer) GetProduct(ctx context.Context, req *catalogv1.GetProductRequest) (*catalogv1.Product, error) {
	output, err := s.useCase.GetProduct(ctx, req.Id)
	if err != nil {
		return nil, errors.GRPCStatus(err)
	}

	p := output.Product
	return &catalogv1.Product{
		Id:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PricePaise:  p.Price.Paise(),
		Stock:       int64(p.Stock),
		Images:      p.Images,
	}, nil
}

// DecrementStock applies a delivery's stock movement
func (s *GRPCServer) DecrementStock(ctx context.Context, req *catalogv1.DecrementStockRequest) (*catalogv1.DecrementStockResponse, error) {
	result, err := s.useCase.DecrementStock(ctx, application.DecrementStockInput{
		ProductID: req.ProductId,
		Quantity:  int(req.Quantity),
		Reference: req.Reference,
	})
	if err != nil {
		return nil, errors.GRPCStatus(err)
	}

	return &catalogv1.DecrementStockResponse{
		ProductId: req.ProductId,
		Stock:     int64(result.Stock),
		Applied:   result.Applied,
	}, nil
}
