package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/tls"
)

const (
	// TraceIDMetadataKey is the metadata key for trace ID
	TraceIDMetadataKey = "x-trace-id"
)

// UnaryServerInterceptor creates a server interceptor for logging, tracing, and error handling
func UnaryServerInterceptor(log *logger.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		traceID := extractTraceID(ctx)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx = logger.WithTraceIDContext(ctx, traceID)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := handler(ctx, req)

		logFields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			// Convert domain errors to gRPC status
			grpcErr := errors.GRPCStatus(err)
			st, _ := status.FromError(grpcErr)
			logFields = append(logFields, zap.String("grpc_code", st.Code().String()), zap.Error(err))
			log.WithContext(ctx).Warn("grpc request failed", logFields...)
			return nil, grpcErr
		}

		log.WithContext(ctx).Debug("grpc request completed", logFields...)
		return resp, nil
	}
}

// UnaryClientInterceptor creates a client interceptor for tracing and timeout
func UnaryClientInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if traceID := logger.GetTraceID(ctx); traceID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, TraceIDMetadataKey, traceID)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := invoker(ctx, method, req, reply, cc, opts...); err != nil {
			// Convert gRPC status to domain error
			return errors.FromGRPCStatus(err)
		}
		return nil
	}
}

// ServerCredentials returns the mTLS server option, or nil when mTLS is off
func ServerCredentials(enabled bool, certFile, keyFile, caFile string) (grpc.ServerOption, error) {
	if !enabled {
		return nil, nil
	}
	tlsConfig, err := tls.ServerConfig(tls.Files{CertFile: certFile, KeyFile: keyFile, CAFile: caFile}, true)
	if err != nil {
		return nil, err
	}
	return grpc.Creds(credentials.NewTLS(tlsConfig)), nil
}

// ClientCredentials returns mTLS transport credentials, or insecure ones when mTLS is off
func ClientCredentials(enabled bool, certFile, keyFile, caFile string) (grpc.DialOption, error) {
	if !enabled {
		return grpc.WithTransportCredentials(insecure.NewCredentials()), nil
	}
	tlsConfig, err := tls.ClientConfig(tls.Files{CertFile: certFile, KeyFile: keyFile, CAFile: caFile})
	if err != nil {
		return nil, err
	}
	return grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)), nil
}

func extractTraceID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(TraceIDMetadataKey)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
