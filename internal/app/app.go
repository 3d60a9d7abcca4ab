// Package app wires the engine together: config, logging, storage, the
// reminder service, the expiry sweep, the Telegram router and the keepalive
// surface.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/delivery"
	"remindbot/internal/eventbus"
	"remindbot/internal/keepalive"
	"remindbot/internal/reminder"
	"remindbot/internal/router"
	"remindbot/internal/storage"
	"remindbot/internal/sweep"
	kit "remindbot/internal/transport"
	telegram "remindbot/internal/transport/telegram/adapter"
	logx "remindbot/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	adapter kit.Adapter
	svc     *reminder.Service
	sender  *delivery.Sender
	sweeper *sweep.Service
	keep    *keepalive.Service
	router  *router.Router

	// cur is the last applied config; compared on reload to warn about
	// settings that need a restart. Touched only by New and applyReload.
	cur *config.Config

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	pollTimeout, _ := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()

	var store storage.Store
	if cfg.Storage != nil {
		busyTimeout, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		st, err := storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busyTimeout,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		store = st
		if store != nil {
			log.Info("storage enabled", logx.String("driver", cfg.Storage.Driver))
		}
	}

	svc := reminder.New(log, bus, store)

	// The role check reads the live config so admin list edits take effect
	// on hot reload.
	roles := reminder.RoleFunc(func(userID int64) bool {
		c := cfgm.Get()
		if c == nil {
			return false
		}
		for _, id := range c.Telegram.AdminUserIDs {
			if id == userID {
				return true
			}
		}
		return false
	})
	admin := reminder.NewAdmin(svc, roles)

	sender := delivery.New(delivery.Config{
		RatePerSec: cfg.Delivery.RatePerSec,
		Burst:      cfg.Delivery.Burst,
	}, ad, log)

	sweeper, err := sweep.New(sweep.Config{
		Scan:             cfg.Scheduler.Scan,
		DeliveryRetryMax: cfg.Scheduler.DeliveryRetryMax,
	}, svc, sender, bus, log)
	if err != nil {
		return nil, err
	}

	selfPing, _ := config.ParseDurationOrDefault("keepalive.self_ping_every", cfg.Keepalive.SelfPingEvery, 4*time.Minute)
	keep := keepalive.New(keepalive.Config{
		Enabled:       cfg.Keepalive.Enabled,
		Addr:          cfg.Keepalive.Addr,
		SelfPingEvery: selfPing,
	}, log)

	rt := router.New(log, ad, svc, admin, roles)

	cfgm.SetValidator(func(_ context.Context, c *config.Config) error {
		return validate(c)
	})

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		adapter: ad,
		svc:     svc,
		sender:  sender,
		sweeper: sweeper,
		keep:    keep,
		router:  rt,
		cur:     cfg,
	}, nil
}

// validate rejects configs that would break a hot reload.
func validate(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := sweep.ParseScanSpec(cfg.Scheduler.Scan); err != nil {
		return err
	}
	if cfg.Scheduler.DeliveryRetryMax < 0 {
		return fmt.Errorf("scheduler.delivery_retry_max must be >= 0")
	}
	if cfg.Delivery.RatePerSec < 0 {
		return fmt.Errorf("delivery.rate_per_sec must be >= 0")
	}
	if cfg.Storage != nil {
		if _, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	if _, err := config.ParseDurationField("keepalive.self_ping_every", cfg.Keepalive.SelfPingEvery); err != nil {
		return err
	}
	return nil
}

func (a *App) Start(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.svc.Load(runCtx)

	if err := a.keep.Start(runCtx); err != nil {
		cancel()
		return err
	}
	if err := a.router.Start(runCtx); err != nil {
		cancel()
		return err
	}
	if err := a.sweeper.Start(runCtx); err != nil {
		cancel()
		return err
	}

	// Config watch + reload subscriber.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runCtx)
	}()
	sub := a.cfgm.Subscribe(1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runCtx.Done():
				return
			case cfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyReload(cfg)
			}
		}
	}()

	// Debug trace of lifecycle events.
	events, unsub := a.bus.Subscribe(32)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer unsub()
		for {
			select {
			case <-runCtx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Any("data", e.Data))
			}
		}
	}()

	a.log.Info("started")
	return nil
}

// applyReload applies the hot-reloadable subset of the config: logging
// sinks and levels, the delivery rate and the sweep retry budget. Token,
// storage and scan schedule changes only warn; the admin list is read live
// and needs no handling here.
func (a *App) applyReload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	prev := a.cur
	a.cur = cfg

	if prev != nil {
		if cfg.Telegram.Token != prev.Telegram.Token {
			a.log.Warn("telegram.token changed, restart required")
		}
		if storageChanged(prev.Storage, cfg.Storage) {
			a.log.Warn("storage settings changed, restart required")
		}
		if cfg.Scheduler.Scan != prev.Scheduler.Scan {
			a.log.Warn("scheduler.scan changed, restart required")
		}
	}

	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.sender.Apply(delivery.Config{
		RatePerSec: cfg.Delivery.RatePerSec,
		Burst:      cfg.Delivery.Burst,
	})
	a.sweeper.SetDeliveryRetryMax(cfg.Scheduler.DeliveryRetryMax)
	a.log.Info("config applied", logx.String("level", cfg.Logging.Level))
}

func storageChanged(prev, next *config.StorageConfig) bool {
	if (prev == nil) != (next == nil) {
		return true
	}
	if prev == nil {
		return false
	}
	return prev.Driver != next.Driver || prev.Path != next.Path
}

func (a *App) Stop(ctx context.Context) error {
	a.runMu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.runMu.Unlock()
	if cancel == nil {
		return nil
	}

	a.log.Info("stopping")

	// Stop intake first so nothing mutates state mid-shutdown, then the
	// sweep, then the rest.
	if err := a.router.Stop(ctx); err != nil {
		a.log.Warn("router stop", logx.Err(err))
	}
	if err := a.sweeper.Stop(ctx); err != nil {
		a.log.Warn("sweeper stop", logx.Err(err))
	}
	if err := a.keep.Stop(ctx); err != nil {
		a.log.Warn("keepalive stop", logx.Err(err))
	}

	cancel()
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close", logx.Err(err))
		}
	}
	a.log.Info("stopped")
	_ = a.logs.Close()
	return nil
}
