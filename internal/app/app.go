package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/bot"
	"github.com/Reso1992/DmoTimer/internal/chat"
	"github.com/Reso1992/DmoTimer/internal/config"
	"github.com/Reso1992/DmoTimer/internal/discord"
	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/metrics"
	"github.com/Reso1992/DmoTimer/internal/registry"
	"github.com/Reso1992/DmoTimer/internal/scheduler"
	"github.com/Reso1992/DmoTimer/internal/sticky"
	"github.com/Reso1992/DmoTimer/internal/store"
	"github.com/Reso1992/DmoTimer/internal/telegram"
	"github.com/Reso1992/DmoTimer/internal/timer"
)

// platform is a connected chat backend.
type platform interface {
	Messenger() chat.Messenger
	Open(ctx context.Context, h bot.Handler) error
	Close() error
}

type App struct {
	cfg      config.Config
	log      *zap.Logger
	clock    clockwork.Clock
	platform platform
	promReg  *prometheus.Registry
	httpSrv  *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	p, err := newPlatform(cfg, log)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, clock: clockwork.NewRealClock(), platform: p, promReg: promReg, httpSrv: srv}, nil
}

func newPlatform(cfg config.Config, log *zap.Logger) (platform, error) {
	switch cfg.Platform {
	case config.PlatformDiscord:
		return discord.New(cfg.DiscordToken, log.Named("discord")), nil
	case config.PlatformTelegram:
		b, err := telegram.New(cfg.TelegramToken, log.Named("telegram"))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", cfg.Platform)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting dmotimer",
		zap.String("platform", a.cfg.Platform),
		zap.String("store", a.cfg.StoreDriver),
		zap.String("http", a.cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.Open(ctx, a.cfg.StoreDriver, a.cfg.StorePath())
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.log.Warn("store close error", zap.Error(err))
		}
	}()

	reg := registry.New(repo, a.clock, a.log.Named("registry"))
	if err := reg.Restore(ctx); err != nil {
		// Start empty rather than refuse to run.
		a.log.Error("restore timers failed", zap.Error(err))
	}

	var stickyDefs []domain.StickyDef
	if a.cfg.StickyConfig != "" {
		stickyDefs, err = sticky.LoadFile(a.cfg.StickyConfig)
		if err != nil {
			return fmt.Errorf("load stickies: %w", err)
		}
	}

	mt := metrics.New(a.promReg)
	metrics.RegisterActiveTimers(a.promReg, reg.Count)

	messenger := a.platform.Messenger()
	notifier := chat.NewNotifier(messenger, a.clock, a.log.Named("notifier"))
	sched := scheduler.New(a.clock, a.log.Named("scheduler"))
	engine := timer.NewEngine(timer.Options{
		Clock:     a.clock,
		Scheduler: sched,
		Messenger: messenger,
		Notifier:  notifier,
		Registry:  reg,
		Metrics:   mt,
		Logger:    a.log.Named("timer"),
		Footer:    a.cfg.TimerFooter,
	})
	stickies := sticky.NewManager(stickyDefs, messenger, mt, a.log.Named("sticky"))
	router := bot.NewRouter(bot.Options{
		Prefixes:  []string{a.cfg.CommandPrefix, "/"},
		Engine:    engine,
		Registry:  reg,
		Messenger: messenger,
		Notifier:  notifier,
		Stickies:  stickies,
		Metrics:   mt,
		Logger:    a.log.Named("bot"),
		ImageURL:  a.cfg.TimerImageURL,
	})

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	if err := a.platform.Open(ctx, router); err != nil {
		stop()
		<-schedDone
		a.shutdownHTTP()
		return err
	}

	if err := stickies.PublishAll(ctx); err != nil {
		a.log.Warn("initial sticky publish failed", zap.Error(err))
	}
	a.log.Info("ready", zap.Int("restored_timers", reg.Count()), zap.Int("stickies", stickies.Len()))

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	if err := a.platform.Close(); err != nil {
		a.log.Warn("platform close error", zap.Error(err))
	}
	<-schedDone
	a.shutdownHTTP()

	// Final snapshot with a fresh context; ctx is already cancelled.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := reg.Persist(shCtx); err != nil {
		a.log.Warn("final persist failed", zap.Error(err))
	}
	return nil
}

func (a *App) shutdownHTTP() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
}
