package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"maedn/internal/adapters"
	"maedn/internal/bootstrap"
	gameDelivery "maedn/internal/delivery/game"
	domain "maedn/internal/domain/game"
	ownMiddleware "maedn/internal/middleware"
	"maedn/internal/random"
	repo "maedn/internal/repository"
	gameUsecase "maedn/internal/usecase/game"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		panic("failed to setup configuration: " + err.Error())
	}
	logger := NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := databaseAdapters.Close(closeCtx); err != nil {
			logger.Error("Failed to close adapters: ", err)
		}
	}()

	hub, wins := initHub(logger, *cfg, databaseAdapters)
	handler := gameDelivery.NewGameHandler(*cfg, logger, hub, wins)

	r := chi.NewRouter()
	Router(r, handler, cfg.IsLocalCors)

	socketServer := gameDelivery.NewSocketServer(":"+cfg.SocketPort, logger, hub)
	go func() {
		if err := socketServer.ListenAndServe(ctx); err != nil {
			logger.Error("Socket server stopped: ", err)
			cancel()
		}
	}()

	grpcServer := newHealthServer()
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
		if err != nil {
			logger.Error("Failed to listen for grpc: ", err)
			cancel()
			return
		}
		logger.Infof("gRPC health server is running on port %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped: ", err)
		}
	}()
	defer grpcServer.GracefulStop()

	server := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server: ", err)
	}
}

func NewLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func Router(r *chi.Mux, h *gameDelivery.GameHandler, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Get("/ws", h.HandleWebSocket)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/wins/{name}", h.GetWins)
	r.Get("/health", h.Health)
}

// initDatabaseAdapters connects the optional stores. An empty url leaves the
// adapter nil and the hub falls back to no-op publishing and archiving.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	result := &dataBaseAdapters{}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(&cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to init MongoDB: ", err)
		}
		result.mongoAdapter = mongoAdapter
	}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(&cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to init Redis: ", err)
		}
		result.redisAdapter = redisAdapter
	}

	log.Info("Database adapters initialized")
	return result
}

func (d *dataBaseAdapters) Close(ctx context.Context) error {
	var result *multierror.Error
	if d.redisAdapter != nil {
		if err := d.redisAdapter.Close(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if d.mongoAdapter != nil {
		if err := d.mongoAdapter.Close(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func initHub(log *zap.SugaredLogger, cfg bootstrap.Config, d *dataBaseAdapters) (*gameDelivery.Hub, gameDelivery.WinCounter) {
	game := gameUsecase.NewGame(log, func() domain.Roller { return random.NewDie() })

	var publisher gameDelivery.SnapshotPublisher
	if d.redisAdapter != nil {
		publisher = repo.NewSnapshotRedisStorage(d.redisAdapter.GetClient(), cfg.RedisChannel, log)
	}

	var archive gameDelivery.MatchArchive
	var wins gameDelivery.WinCounter
	if d.mongoAdapter != nil {
		store := repo.NewMatchArchiveMongo(d.mongoAdapter.Database, log)
		archive = store
		wins = store
	}

	return gameDelivery.NewHub(log, game, publisher, archive), wins
}

func newHealthServer() *grpc.Server {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("maedn.Game", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
