// Package catalogv1 is the catalog.v1.InventoryService contract.
//
// Messages are plain structs carried by the JSON codec registered in
// pkg/grpc; the client forces that codec with CallContentSubtype.
package catalogv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcpkg "pooja-supplies/pkg/grpc"
)

const (
	InventoryService_ServiceName                   = "catalog.v1.InventoryService"
	InventoryService_GetProduct_FullMethodName     = "/catalog.v1.InventoryService/GetProduct"
	InventoryService_DecrementStock_FullMethodName = "/catalog.v1.InventoryService/DecrementStock"
)

type GetProductRequest struct {
	Id string `json:"id"`
}

type Product struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	PricePaise  int64    `json:"price_paise"`
	Stock       int64    `json:"stock"`
	Images      []string `json:"images,omitempty"`
}

type DecrementStockRequest struct {
	ProductId string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	// Reference de-duplicates retries; the orders service sends the order ID
	Reference string `json:"reference"`
}

type DecrementStockResponse struct {
	ProductId string `json:"product_id"`
	Stock     int64  `json:"stock"`
	// Applied is false when Reference had already been applied
	Applied bool `json:"applied"`
}

// InventoryServiceClient is the client API for InventoryService
type InventoryServiceClient interface {
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error)
	DecrementStock(ctx context.Context, in *DecrementStockRequest, opts ...grpc.CallOption) (*DecrementStockResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc}
}

func (c *inventoryServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*Product, error) {
	out := new(Product)
	if err := c.cc.Invoke(ctx, InventoryService_GetProduct_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) DecrementStock(ctx context.Context, in *DecrementStockRequest, opts ...grpc.CallOption) (*DecrementStockResponse, error) {
	out := new(DecrementStockResponse)
	if err := c.cc.Invoke(ctx, InventoryService_DecrementStock_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(grpcpkg.JSONCodecName)}, opts...)
}

// InventoryServiceServer is the server API for InventoryService.
// Implementations must embed UnimplementedInventoryServiceServer.
type InventoryServiceServer interface {
	GetProduct(context.Context, *GetProductRequest) (*Product, error)
	DecrementStock(context.Context, *DecrementStockRequest) (*DecrementStockResponse, error)
	mustEmbedUnimplementedInventoryServiceServer()
}

// UnimplementedInventoryServiceServer must be embedded to have forward compatible implementations.
type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) GetProduct(context.Context, *GetProductRequest) (*Product, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetProduct not implemented")
}

func (UnimplementedInventoryServiceServer) DecrementStock(context.Context, *DecrementStockRequest) (*DecrementStockResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DecrementStock not implemented")
}

func (UnimplementedInventoryServiceServer) mustEmbedUnimplementedInventoryServiceServer() {}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

func _InventoryService_GetProduct_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InventoryService_GetProduct_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InventoryServiceServer).GetProduct(ctx, req.(*GetProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InventoryService_DecrementStock_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DecrementStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServiceServer).DecrementStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InventoryService_DecrementStock_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InventoryServiceServer).DecrementStock(ctx, req.(*DecrementStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// InventoryService_ServiceDesc is the grpc.ServiceDesc for InventoryService
var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryService_ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler:    _InventoryService_GetProduct_Handler,
		},
		{
			MethodName: "DecrementStock",
			Handler:    _InventoryService_DecrementStock_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/inventory",
}
