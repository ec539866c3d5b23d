package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/draymaster/eld-planner/internal/geocode"
	"github.com/draymaster/eld-planner/internal/repository"
	"github.com/draymaster/eld-planner/internal/routeclient"
	"github.com/draymaster/eld-planner/internal/service"
	transporthttp "github.com/draymaster/eld-planner/internal/transport/http"
	"github.com/draymaster/eld-planner/pkg/config"
	"github.com/draymaster/eld-planner/pkg/database"
	"github.com/draymaster/eld-planner/pkg/kafka"
	"github.com/draymaster/eld-planner/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Service.Name, cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting eld-planner...")

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()
	log.Info("Connected to database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalw("Failed to connect to Redis", "error", err)
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	eventProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer eventProducer.Close()
	log.Info("Connected to Kafka")

	rawRouteClient := routeclient.New(routeclient.Config{
		BaseURL: cfg.Routing.BaseURL,
		Timeout: cfg.Routing.Timeout,
	}, log)
	cachedRouteClient := routeclient.NewCachedClient(rawRouteClient, redisClient, cfg.Redis.RouteTTL, log)

	geocodeClient := geocode.New(geocode.Config{
		BaseURL:         cfg.Geocode.BaseURL,
		APIKey:          cfg.Geocode.APIKey,
		FallbackBaseURL: cfg.Geocode.FallbackBaseURL,
		Timeout:         cfg.Geocode.Timeout,
	}, log)

	tripRepo := repository.NewPostgresTripRepository(db.Pool)
	rules := config.DefaultHOSRules()
	tripService := service.NewTripService(tripRepo, cachedRouteClient, eventProducer, rules, log)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(),
			logging.UnaryServerInterceptor(interceptorLogger(log)),
		),
	)

	// Domain RPC registration is intentionally deferred: the planner is
	// exposed over HTTP below. The gRPC surface carries health/reflection
	// only until the wire API is generated.
	// pb.RegisterTripPlannerServer(grpcServer, grpcHandler.NewTripHandler(tripService))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(cfg.Service.Name, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalw("Failed to listen on gRPC port", "error", err, "port", cfg.Server.GRPCPort)
	}

	go func() {
		log.Infow("gRPC server listening", "port", cfg.Server.GRPCPort)
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatalw("gRPC server failed", "error", err)
		}
	}()

	httpHandler := transporthttp.NewHandler(tripService, geocodeClient, log)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpHandler.Mux(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalw("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down eld-planner...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("eld-planner stopped")
}

// interceptorLogger adapts the SugaredLogger to the grpc-middleware logging
// interface used by the unary interceptor chain.
func interceptorLogger(log *logger.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		switch lvl {
		case logging.LevelDebug:
			log.Debugw(msg, fields...)
		case logging.LevelWarn:
			log.Warnw(msg, fields...)
		case logging.LevelError:
			log.Errorw(msg, fields...)
		default:
			log.Infow(msg, fields...)
		}
	})
}
