package main

import (
	"context"

	"go.uber.org/zap"

	"pooja-supplies/internal/notifier/adapters"
	"pooja-supplies/internal/notifier/application"
	"pooja-supplies/internal/notifier/infrastructure"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/config"
	"pooja-supplies/pkg/db"
	"pooja-supplies/pkg/kafka"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/rabbitmq"
	"pooja-supplies/pkg/server"
	"pooja-supplies/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadForService("NOTIFIER", config.WithPorts("8083", ""), config.WithDBName("notifier_db"))
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.NewWithFormat("notifier-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting notifier service")

	shutdownTracing, err := tracing.Init("notifier-service", cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
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

	tokenRepo := adapters.NewGormTokenRepository(dbConn)
	if err := tokenRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate push tokens: " + err.Error())
	}

	sender := adapters.NewExpoSender(cfg.ExpoPushURL, cfg.HTTPTimeout)
	notifierUseCase := application.NewNotifierUseCase(tokenRepo, sender, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe to order events
	switch cfg.EventsBackend {
	case "kafka":
		consumer := adapters.NewKafkaConsumer(kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log))
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx, notifierUseCase.HandleEvent); err != nil {
				log.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
		log.Info("consuming order events from Kafka", zap.String("topic", cfg.Kafka.Topic))

	case "rabbitmq":
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, notifications will be disabled: " + err.Error())
			break
		}
		defer conn.Close()

		consumer, err := adapters.NewRabbitMQConsumer(conn, log)
		if err != nil {
			log.Fatal("failed to create consumer: " + err.Error())
		}
		if err := consumer.Start(ctx, notifierUseCase.HandleEvent); err != nil {
			log.Fatal("failed to start consumer: " + err.Error())
		}
		log.Info("consuming order events from RabbitMQ", zap.String("queue", adapters.OrderEventsQueue))

	default:
		log.Info("order events disabled, only push token routes are served")
	}

	router := server.NewRouter("notifier-service", log)
	api := router.Group("/api/v1", auth.Middleware([]byte(cfg.JWTSecret)))
	infrastructure.NewHTTPHandler(notifierUseCase).RegisterRoutes(api)

	httpServer := server.StartHTTP(cfg, log, router)
	server.WaitForShutdown(log, httpServer, nil)
}
