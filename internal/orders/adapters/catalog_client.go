package adapters

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	catalogv1 "pooja-supplies/api/catalog/v1"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/circuitbreaker"
	"pooja-supplies/pkg/config"
	"pooja-supplies/pkg/errors"
	grpcpkg "pooja-supplies/pkg/grpc"
	"pooja-supplies/pkg/money"
)

const (
	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// GRPCCatalogClient implements CatalogClient using gRPC
type GRPCCatalogClient struct {
	client  catalogv1.InventoryServiceClient
	breaker *circuitbreaker.CircuitBreaker
	conn    *grpc.ClientConn
}

// NewGRPCCatalogClient dials the catalog service
func NewGRPCCatalogClient(cfg *config.Config) (*GRPCCatalogClient, error) {
	creds, err := grpcpkg.ClientCredentials(
		cfg.TLS.GRPCMTLSEnabled,
		cfg.TLS.GRPCClientCert,
		cfg.TLS.GRPCClientKey,
		cfg.TLS.CAFile,
	)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.CatalogGRPCAddr,
		creds,
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(cfg.GRPCTimeout)),
	)
	if err != nil {
		return nil, err
	}

	c := NewCatalogClient(catalogv1.NewInventoryServiceClient(conn))
	c.conn = conn
	return c, nil
}

// NewCatalogClient wraps an InventoryService client in a circuit breaker
func NewCatalogClient(client catalogv1.InventoryServiceClient) *GRPCCatalogClient {
	return &GRPCCatalogClient{
		client:  client,
		breaker: circuitbreaker.New(breakerMaxFailures, breakerResetTimeout, circuitbreaker.WithFailurePredicate(isOutage)),
	}
}

// GetProduct retrieves a product via gRPC
func (c *GRPCCatalogClient) GetProduct(ctx context.Context, productID string) (*ports.ProductInfo, error) {
	var resp *catalogv1.Product
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.client.GetProduct(ctx, &catalogv1.GetProductRequest{Id: productID})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ports.ProductInfo{
		ID:    resp.Id,
		Name:  resp.Name,
		Price: money.FromPaise(resp.PricePaise),
		Stock: int(resp.Stock),
	}, nil
}

// DecrementStock removes qty units of a product via gRPC
func (c *GRPCCatalogClient) DecrementStock(ctx context.Context, productID string, qty int, reference string) (int, error) {
	var resp *catalogv1.DecrementStockResponse
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.client.DecrementStock(ctx, &catalogv1.DecrementStockRequest{
			ProductId: productID,
			Quantity:  int64(qty),
			Reference: reference,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(resp.Stock), nil
}

// Close closes the gRPC connection
func (c *GRPCCatalogClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCCatalogClient) call(ctx context.Context, fn func(ctx context.Context) error) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return toAppError(err)
		}
		return nil
	})
	if stderrors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return errors.NewUnavailable("catalog service unavailable", err)
	}
	return err
}

func toAppError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.FromGRPCStatus(err)
}

// isOutage counts only transport and server failures against the breaker
func isOutage(err error) bool {
	return errors.Is(err, errors.CodeUnavailable) || errors.Is(err, errors.CodeInternal)
}
