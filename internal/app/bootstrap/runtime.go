package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/bilalafzal6349/ssc-system/internal/adapters/cache"
	"github.com/bilalafzal6349/ssc-system/internal/adapters/githost"
	httpadapter "github.com/bilalafzal6349/ssc-system/internal/adapters/http"
	"github.com/bilalafzal6349/ssc-system/internal/adapters/ledger"
	"github.com/bilalafzal6349/ssc-system/internal/adapters/postgres"
	"github.com/bilalafzal6349/ssc-system/internal/adapters/security"
	"github.com/bilalafzal6349/ssc-system/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.MaxDBConns))
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		return nil, err
	}
	repos := postgres.NewRepositories(db)

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	locks := cache.NewRedisTrustLocker(redisClient, cache.TrustLockerConfig{
		TTL:        cfg.TrustLockTTL,
		RetryEvery: cfg.TrustLockRetryEvery,
		MaxWait:    cfg.TrustLockMaxWait,
	})

	ledgerClient, err := ledger.NewClient(ledger.Config{
		BaseURL:    cfg.LedgerURL,
		SigningKey: cfg.LedgerSigningKey,
		Timeout:    cfg.LedgerTimeout,
	})
	if err != nil {
		return nil, err
	}
	gitHost, err := githost.NewClient(githost.Config{
		BaseURL:       cfg.GitHostURL,
		Token:         cfg.GitHostToken,
		DefaultBranch: cfg.GitHostDefaultBranch,
		Timeout:       cfg.GitHostTimeout,
	})
	if err != nil {
		return nil, err
	}
	verifier, err := security.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:         cfg.ServiceID,
			SubmissionThreshold: cfg.SubmissionThreshold,
			InitialTrustBias:    cfg.InitialTrustBias,
			DefaultPageSize:     cfg.DefaultPageSize,
		},
		Users:         repos.Users,
		Contributions: repos.Contributions,
		Communities:   repos.Communities,
		History:       repos.TrustHistory,
		Ledger:        ledgerClient,
		CodeHost:      gitHost,
		Locks:         locks,
		Logger:        logger,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, verifier, logger)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 5 * time.Second}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, err
	}

	return &Runtime{cfg: cfg, logger: logger, httpServer: httpServer, grpcServer: grpcServer, grpcLis: lis}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.grpcLis.Close()

	errCh := make(chan error, 2)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "runtime started", "http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	return nil
}
