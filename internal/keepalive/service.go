// Package keepalive exposes the liveness HTTP surface and the self-ping
// loop that keeps free-tier hosts from idling the process out.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	logx "remindbot/pkg/logx"
)

type Config struct {
	Enabled bool
	Addr    string // default "127.0.0.1:5000"
	// SelfPingEvery <= 0 disables the self-ping loop.
	SelfPingEvery time.Duration
}

type Service struct {
	cfg Config
	log logx.Logger

	mu      sync.Mutex
	srv     *http.Server
	cancel  context.CancelFunc
	done    sync.WaitGroup
	running bool

	http *http.Client
}

func New(cfg Config, log logx.Logger) *Service {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:5000"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:  cfg,
		log:  log.With(logx.String("svc", "keepalive")),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled || s.running {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "Бот работает!")
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "pong")
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("keepalive listen %s: %w", s.cfg.Addr, err)
	}

	s.srv = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	s.running = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		s.log.Info("listening", logx.String("addr", s.cfg.Addr))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped", logx.Err(err))
		}
	}()

	if s.cfg.SelfPingEvery > 0 {
		s.done.Add(1)
		go func() {
			defer s.done.Done()
			s.selfPing(runCtx)
		}()
	}
	return nil
}

// selfPing hits our own /ping endpoint on a fixed period. Failures are
// logged and do not stop the loop.
func (s *Service) selfPing(ctx context.Context) {
	url := "http://" + s.cfg.Addr + "/ping"
	ticker := time.NewTicker(s.cfg.SelfPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				continue
			}
			resp, err := s.http.Do(req)
			if err != nil {
				s.log.Warn("self-ping failed", logx.Err(err))
				continue
			}
			resp.Body.Close()
			s.log.Debug("self-ping ok", logx.Int("status", resp.StatusCode))
		}
	}
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	cancel := s.cancel
	s.srv = nil
	s.cancel = nil
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if !wasRunning {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.done.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
