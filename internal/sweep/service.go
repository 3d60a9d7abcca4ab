// Package sweep runs the periodic scan that detects due reminders and hands
// them to delivery. It is the only component that removes reminders from the
// store.
package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"remindbot/internal/delivery"
	"remindbot/internal/eventbus"
	"remindbot/internal/reminder"
	logx "remindbot/pkg/logx"
)

type Config struct {
	// Scan is the schedule between scans; see ParseScanSpec.
	Scan string
	// DeliveryRetryMax > 0 keeps a failed reminder for that many extra
	// scans before discarding it. 0 preserves the classic behavior: one
	// attempt, then the reminder is gone whether or not the send worked.
	DeliveryRetryMax int
}

type Service struct {
	log  logx.Logger
	spec ScanSpec
	svc  *reminder.Service
	out  delivery.Deliverer
	bus  eventbus.Bus
	now  func() time.Time

	// retryMax mirrors Config.DeliveryRetryMax and can be retuned on a
	// config reload.
	retryMax atomic.Int64

	// attempts tracks failed-delivery counts per reminder id in retry mode.
	attempts map[string]int

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func New(cfg Config, svc *reminder.Service, out delivery.Deliverer, bus eventbus.Bus, log logx.Logger) (*Service, error) {
	spec, err := ParseScanSpec(cfg.Scan)
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:      log.With(logx.String("svc", "sweep")),
		spec:     spec,
		svc:      svc,
		out:      out,
		bus:      bus,
		now:      time.Now,
		attempts: map[string]int{},
	}
	s.retryMax.Store(int64(cfg.DeliveryRetryMax))
	return s, nil
}

// SetDeliveryRetryMax retunes the retry budget without a restart. Takes
// effect on the next scan.
func (s *Service) SetDeliveryRetryMax(n int) {
	if n < 0 {
		n = 0
	}
	s.retryMax.Store(int64(n))
}

func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.runMu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.running = false
	s.runMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes scans sequentially. A scan that overruns its slot delays the
// next one; scans never overlap.
func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	s.log.Info("scan loop started")

	timer := time.NewTimer(time.Until(s.spec.next(s.now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scan loop stopped")
			return
		case <-timer.C:
			s.ScanOnce(ctx)
			timer.Reset(time.Until(s.spec.next(s.now())))
		}
	}
}

// ScanOnce performs one scan tick: collect due reminders, attempt delivery
// for each, then remove the collected batch and flush once. With retries
// disabled every attempted reminder is removed regardless of outcome.
func (s *Service) ScanOnce(ctx context.Context) {
	now := s.now()
	due := s.svc.CollectDue(now)
	if len(due) == 0 {
		return
	}

	retryMax := int(s.retryMax.Load())
	remove := make([]string, 0, len(due))
	delivered := 0
	for _, r := range due {
		err := s.out.Deliver(ctx, r.OwnerID, r.Message, r.CategoryLabel)
		if err == nil {
			delivered++
			delete(s.attempts, r.ID)
			remove = append(remove, r.ID)
			s.publish("reminder.delivered", r)
			continue
		}

		// Failure is absorbed; it must not block the rest of the scan.
		s.log.Warn("reminder delivery failed",
			logx.String("id", r.ID),
			logx.Int64("owner", r.OwnerID),
			logx.Err(err))

		if retryMax > 0 {
			s.attempts[r.ID]++
			if s.attempts[r.ID] <= retryMax {
				// Keep it for the next scan.
				continue
			}
			s.log.Warn("reminder dropped after retries",
				logx.String("id", r.ID),
				logx.Int("attempts", s.attempts[r.ID]))
		}
		delete(s.attempts, r.ID)
		remove = append(remove, r.ID)
		s.publish("reminder.delivery_failed", r)
	}

	s.svc.RemoveAll(ctx, remove)
	s.log.Debug("scan finished",
		logx.Int("due", len(due)),
		logx.Int("delivered", delivered),
		logx.Int("removed", len(remove)))
}

func (s *Service) publish(typ string, r reminder.Reminder) {
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: typ, Data: r})
	}
}
