package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"google.golang.org/grpc"

	"pooja-supplies/pkg/config"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/metrics"
	"pooja-supplies/pkg/middleware"
	pkgtls "pooja-supplies/pkg/tls"
)

// NewRouter builds the gin engine shared by every service: trace id,
// OpenTelemetry, request logging, metrics, error rendering and CORS, plus
// /health and /metrics.
func NewRouter(service string, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(otelgin.Middleware(service))
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": service})
	})
	router.GET("/metrics", metrics.Handler())

	return router
}

// StartHTTP serves the router over HTTP, or HTTPS when TLS is enabled
func StartHTTP(cfg *config.Config, log *logger.Logger, router http.Handler) *http.Server {
	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	if cfg.TLS.Enabled {
		tlsConfig, err := pkgtls.ServerConfig(pkgtls.Files{
			CertFile: cfg.TLS.CertFile,
			KeyFile:  cfg.TLS.KeyFile,
		}, false)
		if err != nil {
			log.Fatal("failed to load TLS config: " + err.Error())
		}
		server.Addr = ":" + cfg.HTTPSPort
		server.TLSConfig = tlsConfig

		go func() {
			log.Info("HTTPS server listening on :" + cfg.HTTPSPort)
			if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				log.Fatal("HTTPS server error: " + err.Error())
			}
		}()
		return server
	}

	server.Addr = ":" + cfg.HTTPPort
	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()
	return server
}

// StartGRPC serves a gRPC server on the configured port
func StartGRPC(cfg *config.Config, log *logger.Logger, grpcServer *grpc.Server) {
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC: " + err.Error())
	}

	go func() {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server error: " + err.Error())
		}
	}()
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then stops the servers
func WaitForShutdown(log *logger.Logger, httpServer *http.Server, grpcServer *grpc.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown error: " + err.Error())
		}
	}

	log.Info("servers stopped")
}
