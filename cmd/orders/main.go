// Package main Pooja Supplies Orders API
//
// Carts, coupons, orders and the admin console of the storefront.
//
//	@title			Pooja Supplies Orders API
//	@version		1.0
//	@description	Cart pricing, coupons and the order lifecycle
//
//	@host		localhost:8082
//	@BasePath	/
//	@schemes	http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "pooja-supplies/docs/swagger"
	couponadapters "pooja-supplies/internal/coupons/adapters"
	couponapp "pooja-supplies/internal/coupons/application"
	couponhttp "pooja-supplies/internal/coupons/infrastructure"
	"pooja-supplies/internal/orders/adapters"
	"pooja-supplies/internal/orders/application"
	"pooja-supplies/internal/orders/infrastructure"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/config"
	"pooja-supplies/pkg/db"
	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/kafka"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/rabbitmq"
	"pooja-supplies/pkg/server"
	"pooja-supplies/pkg/tracing"
)

const (
	reconcileInterval = time.Minute
	reconcileBatch    = 50
)

func main() {
	// Load configuration
	cfg, err := config.LoadForService("ORDERS", config.WithPorts("8082", ""), config.WithDBName("orders_db"))
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.NewWithFormat("orders-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting orders service")

	shutdownTracing, err := tracing.Init("orders-service", cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
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
	orderRepo := adapters.NewGormOrderRepository(dbConn)
	if err := orderRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate orders: " + err.Error())
	}
	couponRepo := couponadapters.NewGormCouponRepository(dbConn)
	if err := couponRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate coupons: " + err.Error())
	}

	// Catalog service via gRPC; connections are lazy, so this only fails on bad config
	catalogClient, err := adapters.NewGRPCCatalogClient(cfg)
	if err != nil {
		log.Fatal("failed to create catalog client: " + err.Error())
	}
	defer catalogClient.Close()

	publisher, closePublisher := newEventPublisher(cfg, log)
	defer closePublisher()

	// Initialize use cases
	couponUseCase := couponapp.NewCouponUseCase(couponRepo, cfg.Location(), log).
		WithStoreTimeout(cfg.StoreTimeout)
	orderUseCase := application.NewOrderUseCase(orderRepo, couponRepo, catalogClient, publisher, log, application.Options{
		Location:              cfg.Location(),
		CODAutoPaidOnDelivery: cfg.Store.CODAutoPaidOnDelivery,
		StoreTimeout:          cfg.StoreTimeout,
		PublishTimeout:        cfg.PublishTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconcileStock(ctx, log, orderUseCase)

	// HTTP routes
	router := server.NewRouter("orders-service", log)
	api := router.Group("/api/v1", auth.Middleware([]byte(cfg.JWTSecret)))
	admin := api.Group("/admin", auth.RequireAdmin())
	infrastructure.NewHTTPHandler(orderUseCase, cfg.Location()).RegisterRoutes(api, admin)
	couponhttp.NewHTTPHandler(couponUseCase).RegisterRoutes(api, admin)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	httpServer := server.StartHTTP(cfg, log, router)
	server.WaitForShutdown(log, httpServer, nil)
}

// newEventPublisher connects the configured broker. Without one, orders
// are still placed and no events are sent.
func newEventPublisher(cfg *config.Config, log *logger.Logger) (ports.EventPublisher, func()) {
	switch cfg.EventsBackend {
	case "kafka":
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Warn("failed to connect to Kafka, events will be disabled: " + err.Error())
			return nil, func() {}
		}
		pub := kafka.NewPublisher(producer, cfg.Kafka.Topic, log)
		log.Info("publishing order events to Kafka", zap.String("topic", cfg.Kafka.Topic))
		return adapters.NewKafkaPublisher(pub), func() { _ = pub.Close() }

	case "rabbitmq":
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
			return nil, func() {}
		}
		pub, err := rabbitmq.NewPublisher(conn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
			_ = conn.Close()
			return nil, func() {}
		}
		log.Info("publishing order events to RabbitMQ", zap.String("exchange", events.ExchangeOrders))
		return adapters.NewRabbitMQPublisher(pub), func() { _ = conn.Close() }

	default:
		log.Info("order events disabled")
		return nil, func() {}
	}
}

// reconcileStock retries delivery stock decrements that did not finish
func reconcileStock(ctx context.Context, log *logger.Logger, uc *application.OrderUseCase) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, reconcileInterval)
			if _, err := uc.ReconcilePendingStock(tickCtx, reconcileBatch); err != nil {
				log.Warn("stock reconciliation skipped", zap.Error(err))
			}
			cancel()
		}
	}
}
