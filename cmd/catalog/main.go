package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	catalogv1 "pooja-supplies/api/catalog/v1"
	"pooja-supplies/internal/catalog/adapters"
	"pooja-supplies/internal/catalog/application"
	"pooja-supplies/internal/catalog/infrastructure"
	"pooja-supplies/internal/catalog/ports"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/config"
	"pooja-supplies/pkg/db"
	grpcpkg "pooja-supplies/pkg/grpc"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/server"
	"pooja-supplies/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadForService("CATALOG", config.WithPorts("8081", "50061"), config.WithDBName("catalog_db"))
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.NewWithFormat("catalog-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting catalog service")

	shutdownTracing, err := tracing.Init("catalog-service", cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
	if err != nil {
		log.Fatal("failed to initialize tracing: " + err.Error())
	}
	defer shutdownTracing(context.Background())

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Driver:   cfg.DB.Driver,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		Path:     cfg.DB.Path,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database", zap.String("driver", cfg.DB.Driver))

	// Initialize repositories and run migrations
	productRepo := adapters.NewGormProductRepository(dbConn)
	if err := productRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate products: " + err.Error())
	}
	wishlistRepo := adapters.NewGormWishlistRepository(dbConn)
	if err := wishlistRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate wishlist: " + err.Error())
	}
	reviewRepo := adapters.NewGormReviewRepository(dbConn)
	if err := reviewRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate reviews: " + err.Error())
	}

	cache, closeCache := newProductCache(cfg, log)
	defer closeCache()

	// Initialize use case
	catalogUseCase := application.NewCatalogUseCase(productRepo, wishlistRepo, reviewRepo, cache, log)

	// HTTP routes
	router := server.NewRouter("catalog-service", log)
	public := router.Group("/api/v1")
	api := public.Group("", auth.Middleware([]byte(cfg.JWTSecret)))
	admin := api.Group("/admin", auth.RequireAdmin())
	infrastructure.NewHTTPHandler(catalogUseCase).RegisterRoutes(public, api, admin)

	// gRPC server for the orders service
	grpcServer, err := newGRPCServer(cfg, log)
	if err != nil {
		log.Fatal("failed to configure gRPC server: " + err.Error())
	}
	catalogv1.RegisterInventoryServiceServer(grpcServer, infrastructure.NewGRPCServer(catalogUseCase))

	server.StartGRPC(cfg, log, grpcServer)
	httpServer := server.StartHTTP(cfg, log, router)
	server.WaitForShutdown(log, httpServer, grpcServer)
}

func newGRPCServer(cfg *config.Config, log *logger.Logger) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout)),
	}

	creds, err := grpcpkg.ServerCredentials(cfg.TLS.GRPCMTLSEnabled, cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		log.Info("gRPC mTLS enabled")
		opts = append(opts, creds)
	}

	return grpc.NewServer(opts...), nil
}

// newProductCache connects Redis. The catalog runs uncached when Redis is
// unreachable at startup.
func newProductCache(cfg *config.Config, log *logger.Logger) (ports.ProductCache, func()) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("failed to connect to Redis, product cache disabled: " + err.Error())
		_ = client.Close()
		return nil, func() {}
	}

	log.Info("product cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.ProductTTL))
	return adapters.NewRedisProductCache(client, cfg.Redis.ProductTTL), func() { _ = client.Close() }
}
