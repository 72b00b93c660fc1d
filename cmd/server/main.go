package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-store-service/config"
	"github.com/fekuna/omnipos-store-service/internal/dashboard"
	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/image"
	"github.com/fekuna/omnipos-store-service/internal/inflight"
	"github.com/fekuna/omnipos-store-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-store-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-store-service/internal/pkg/response"
	"github.com/fekuna/omnipos-store-service/internal/pkg/search"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	pgstore "github.com/fekuna/omnipos-store-service/internal/store/postgres"

	catH "github.com/fekuna/omnipos-store-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-store-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-store-service/internal/category/usecase"

	imgH "github.com/fekuna/omnipos-store-service/internal/image/handler"

	invRepoPkg "github.com/fekuna/omnipos-store-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-store-service/internal/inventory/usecase"

	loanH "github.com/fekuna/omnipos-store-service/internal/loan/handler"
	loanRepoPkg "github.com/fekuna/omnipos-store-service/internal/loan/repository"
	loanUCPkg "github.com/fekuna/omnipos-store-service/internal/loan/usecase"

	orderH "github.com/fekuna/omnipos-store-service/internal/order/handler"
	orderListenerPkg "github.com/fekuna/omnipos-store-service/internal/order/listener"
	orderRepoPkg "github.com/fekuna/omnipos-store-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-store-service/internal/order/usecase"

	prodH "github.com/fekuna/omnipos-store-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-store-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-store-service/internal/product/usecase"

	saleH "github.com/fekuna/omnipos-store-service/internal/sale/handler"
	saleRepoPkg "github.com/fekuna/omnipos-store-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-store-service/internal/sale/usecase"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	shutdownTimeout    = 10 * time.Second
	healthPollInterval = 15 * time.Second
)

func main() {
	// 1. Load Configuration
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	loc, err := cfg.Server.Location()
	if err != nil {
		appLogger.Fatal("Invalid store time zone", zap.Error(err))
	}
	clk := clock.Local(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the document store
	st, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not open store", zap.String("backend", cfg.Server.StoreBackend), zap.Error(err))
	}
	defer st.Close()

	// 4. Duplicate-submission guard
	guard := inflight.NewLocalGuard()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		guard = inflight.NewRedisGuard(redisClient, inflight.DefaultTTL)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Event publisher
	publisher := events.NewNop()
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.EventsTopic,
		})
		defer producer.Close()
		publisher = events.NewKafkaPublisher(producer, appLogger)
		appLogger.Info("Publishing store events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	}

	// 6. Elasticsearch
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, product search falls back to the store", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize Repositories
	catRepo := catRepoPkg.NewDocumentRepository(st)
	prodRepo := prodRepoPkg.NewDocumentRepository(st)
	invRepo := invRepoPkg.NewDocumentRepository(st)
	saleRepo := saleRepoPkg.NewDocumentRepository(st)
	orderRepo := orderRepoPkg.NewDocumentRepository(st)
	loanRepo := loanRepoPkg.NewDocumentRepository(st)

	// 8. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, invUC, st, esClient, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleRepo, prodRepo, invUC, st, guard, publisher, clk, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, invUC, st, guard, publisher, appLogger)
	loanUC := loanUCPkg.NewLoanUseCase(loanRepo, st, publisher, appLogger)
	uploader := image.NewUploader(image.Config{
		UploadURL:    cfg.Image.UploadURL,
		UploadPreset: cfg.Image.UploadPreset,
		Timeout:      time.Duration(cfg.Image.Timeout) * time.Second,
	}, appLogger)

	live := dashboard.NewLive(st, clk, appLogger)
	if err := live.Start(); err != nil {
		appLogger.Fatal("Could not start dashboard subscriptions", zap.Error(err))
	}
	defer live.Stop()

	// 9. HTTP routes
	router := mux.NewRouter()
	router.Use(middleware.Recoverer(appLogger), middleware.HTTPLogger(appLogger))
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, response.Response{Success: false, Message: "unhealthy", Error: err.Error()})
			return
		}
		response.OK(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	catH.NewCategoryHandler(catUC, appLogger).RegisterRoutes(router)
	prodH.NewProductHandler(prodUC, appLogger).RegisterRoutes(router)
	saleH.NewSaleHandler(saleUC, appLogger).RegisterRoutes(router)
	orderH.NewOrderHandler(orderUC, appLogger).RegisterRoutes(router)
	loanH.NewLoanHandler(loanUC, appLogger).RegisterRoutes(router)
	imgH.NewImageHandler(uploader, appLogger).RegisterRoutes(router)
	dashboard.NewHandler(live, st, invUC, clk, appLogger).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr: cfg.Server.HTTPPort,
		Handler: cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 10. gRPC health service
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(middleware.LoggingInterceptor(appLogger)))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		watchHealth(gctx, st, healthServer, appLogger)
		return nil
	})

	if cfg.Kafka.Enabled() {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.DeliveryTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		deliveries := orderListenerPkg.NewDeliveryListener(consumer, orderUC, appLogger)
		g.Go(func() error {
			deliveries.Start(gctx)
			return nil
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server exited with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (store.Store, error) {
	switch cfg.Server.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn("Using the in-memory store, data is lost on exit")
		return memory.New(), nil
	case config.StoreBackendPostgres:
	default:
		return nil, errors.New("unknown STORE_BACKEND " + cfg.Server.StoreBackend)
	}

	pgConfig := &postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	}
	db, err := postgres.NewPostgres(pgConfig)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	st := pgstore.NewStore(db, log)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := st.Watch(pgConfig.DSN()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// watchHealth reports the store's reachability on the gRPC health service.
func watchHealth(ctx context.Context, st store.Store, hs *health.Server, log logger.ZapLogger) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if err := st.Ping(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Warn("Store ping failed", zap.Error(err))
		}
		if status != last {
			hs.SetServingStatus("", status)
			last = status
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
