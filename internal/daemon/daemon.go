package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/deukgeun/deukgeun/internal/api"
	"github.com/deukgeun/deukgeun/internal/app/battle"
	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/app/store"
	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/health"
	"github.com/deukgeun/deukgeun/internal/infra/sqlite"
	"github.com/deukgeun/deukgeun/internal/logging"
)

// Version is stamped at build time.
var Version = "dev"

// Daemon is the core deukgeun runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *sqlite.DB
	Store   *store.Store
	Engine  *progression.Engine
	Tracker *tracker.Tracker
	Server  *api.Server
	Health  *health.Checker

	log       logrus.FieldLogger
	logCloser io.Closer
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}

	logCloser := logging.Setup(cfg.LogParams())
	log := logrus.WithField("component", "daemon")

	db, err := sqlite.Open(cfg.DataDir())
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	engine := progression.NewEngine(progression.WithThresholds(thresholds))
	st := store.New(db, engine.NewState, logrus.WithField("component", "store"))

	ctrl := battle.NewController(cfg.BattleSettings(), engine, st,
		battle.WithSource(battle.NewSource(cfg.Battle.Seed)),
		battle.WithLogger(logrus.WithField("component", "battle")),
	)

	trk, err := tracker.New(engine, ctrl, st, st)
	if err != nil {
		_ = multierr.Combine(db.Close(), logCloser.Close())
		return nil, fmt.Errorf("start tracker: %w", err)
	}

	checker := health.NewChecker(db, cfg.DataDir(), health.Check{
		Name: "progression_state",
		CheckFn: func(ctx context.Context) error {
			_, err := st.LoadState()
			return err
		},
	})

	srv := api.NewServer(trk)
	srv.SetHealth(checker)
	srv.SetVersion(Version)
	if len(cfg.API.CORSOrigins) > 0 {
		srv.SetCORSOrigins(cfg.API.CORSOrigins)
	}

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:    cfg,
		DB:        db,
		Store:     st,
		Engine:    engine,
		Tracker:   trk,
		Server:    srv,
		Health:    checker,
		log:       log,
		logCloser: logCloser,
	}, nil
}

// Serve starts the HTTP server and blocks until ctx is cancelled or a
// termination signal arrives. Resources are released before it returns.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case sig := <-sigCh:
			d.log.WithField("signal", sig.String()).Info("shutting down")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("deukgeun serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	d.log.WithFields(logrus.Fields{
		"addr":     addr,
		"data_dir": d.Config.DataDir(),
		"dev_mode": d.Config.Battle.DevMode,
	}).Info("api listening")

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-shutdownErr
		return multierr.Append(fmt.Errorf("listen %s: %w", addr, err), d.Close())
	}
	return multierr.Append(<-shutdownErr, d.Close())
}

// Close shuts down all daemon resources. The tracker applies any pending
// boss advance and persists before the database closes.
func (d *Daemon) Close() error {
	d.closeOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		var err error
		if d.Tracker != nil {
			err = multierr.Append(err, d.Tracker.Close())
		}
		if d.DB != nil {
			err = multierr.Append(err, d.DB.Close())
		}
		if d.logCloser != nil {
			err = multierr.Append(err, d.logCloser.Close())
		}
		d.closeErr = err
	})
	return d.closeErr
}
