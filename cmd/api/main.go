package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/guildledger/internal/api"
	"github.com/fastprodman/guildledger/internal/events"
	"github.com/fastprodman/guildledger/internal/events/kafka"
	"github.com/fastprodman/guildledger/internal/infra/logging"
	"github.com/fastprodman/guildledger/internal/infra/pgutils"
	"github.com/fastprodman/guildledger/internal/infra/rediscache"
	"github.com/fastprodman/guildledger/internal/services/leaderboard"
	"github.com/fastprodman/guildledger/internal/services/ledger"
	"github.com/fastprodman/guildledger/pkg/envconf"
	"github.com/fastprodman/guildledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	err := envconf.LoadDotEnv()
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(cfg.LogLevel, slog.String("service", "guildledger-api"))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error { return db.Close() })

	publisher := newPublisher(cfg, logger)
	shutdownqueue.Add("kafka", func(context.Context) error { return publisher.Close() })

	ledgerSrv := ledger.New(db, ledger.WithPublisher(publisher))
	boardSrv := newBoard(ctx, cfg, db, logger)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, ledgerSrv, boardSrv)

	shutdownqueue.Add("http", func(c context.Context) error {
		return srv.Shutdown(c)
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", slog.Int("port", int(cfg.Port)))

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func newPublisher(cfg *apiConfig, logger *slog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("kafka disabled, ledger events are not published")
		return events.Noop{}
	}

	return kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.BatchTimeout, logger)
}

// newBoard wires the Redis cache when configured and reachable. The
// leaderboard works without it.
func newBoard(ctx context.Context, cfg *apiConfig, db *sql.DB, logger *slog.Logger) *leaderboard.Service {
	if cfg.Redis.Addr == "" {
		return leaderboard.New(db)
	}

	cache := rediscache.New(cfg.Redis)

	err := cache.Ping(ctx)
	if err != nil {
		logger.Warn("redis unavailable, leaderboard cache disabled", slog.Any("err", err))
		_ = cache.Close()

		return leaderboard.New(db)
	}

	shutdownqueue.Add("redis", func(context.Context) error { return cache.Close() })

	return leaderboard.New(db, leaderboard.WithCache(cache))
}
