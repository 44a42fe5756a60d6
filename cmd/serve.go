package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/api"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/config"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/handlers"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/lock"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/repository"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/service"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/session"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/telemetry"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/transport"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the checkout HTTP API and gRPC health service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry
	if err := telemetry.InitTelemetry(serviceName, cfg.JaegerEndpoint); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
		}
	}()

	logger := telemetry.Logger
	logger.Info("Starting Checkout Orchestrator")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewActionJournalRepository(db)
	if err := repo.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	// Connect to Kafka
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers),
		Topic:    journal.TopicActionApplied,
		Balancer: &kafka.LeastBytes{},
	}
	defer kafkaWriter.Close()

	codec := journal.NewCodec()
	state.RegisterPayloads(codec)
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	sender := transport.NewRequestSender(nc, transport.WithTimeout(cfg.RequestTimeout), transport.WithLogger(logger))
	sessions := session.NewManager(sender, cfg.Methods,
		session.WithProcessors(func(checkoutID, methodID string) provider.WalletProcessor {
			return transport.NewWalletBridge(nc, checkoutID, transport.WithTimeout(cfg.RequestTimeout), transport.WithLogger(logger))
		}),
		session.WithJournal(codec, journal.NewRepositorySink(repo), journal.NewKafkaSink(kafkaWriter)),
		session.WithMetrics(metrics),
		session.WithLogger(logger),
		session.WithTracer(telemetry.Tracer),
	)

	checkoutHandler := handlers.NewCheckoutHandler(
		sessions,
		lock.NewLocker(redisClient, logger),
		handlers.NewRateLimiter(cfg.SignInRate, cfg.SignInBurst),
		logger,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(sessions, checkoutHandler, prometheus.DefaultGatherer),
	}

	// gRPC health service
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Close sessions of completed checkouts
	reaper := service.NewSessionReaper(service.NewKafkaReader(cfg.KafkaBrokers), sessions, logger)
	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		if err := reaper.Run(ctx); err != nil {
			logger.Error("Session reaper stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("gRPC health service starting", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC server failed", zap.Error(err))
			stop()
		}
	}()

	go func() {
		logger.Info("Checkout Orchestrator starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sessions.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close checkout sessions", zap.Error(err))
	}
	grpcServer.GracefulStop()
	<-reaperDone

	logger.Info("Server exited")
	return nil
}
