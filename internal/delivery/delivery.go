// Package delivery pushes due reminders to their owners over the chat
// transport. Sends are rate limited so a large batch of simultaneously due
// reminders does not trip platform flood limits.
package delivery

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// Deliverer is the contract the sweep loop depends on. Failure means the
// owner did not get the message; the caller decides what happens to the
// reminder.
type Deliverer interface {
	Deliver(ctx context.Context, ownerID int64, message, categoryLabel string) error
}

type Config struct {
	RatePerSec float64
	Burst      int
}

type Sender struct {
	log     logx.Logger
	adapter transport.Adapter
	limiter *rate.Limiter
}

func New(cfg Config, adapter transport.Adapter, log logx.Logger) *Sender {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Sender{
		log:     log.With(logx.String("svc", "delivery")),
		adapter: adapter,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
	}
}

// Apply retunes the limiter in place. In-flight Wait calls observe the new
// rate.
func (s *Sender) Apply(cfg Config) {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	s.limiter.SetLimit(rate.Limit(cfg.RatePerSec))
	s.limiter.SetBurst(cfg.Burst)
}

// Deliver sends the reminder text to the owner's private chat.
func (s *Sender) Deliver(ctx context.Context, ownerID int64, message, categoryLabel string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	text := fmt.Sprintf("⏰ НАПОМИНАНИЕ\n📁 %s\n💬 %s", categoryLabel, message)
	_, err := s.adapter.SendText(ctx, transport.ChatTarget{ChatID: ownerID}, text, nil)
	if err != nil {
		return err
	}
	s.log.Debug("reminder delivered", logx.Int64("owner", ownerID), logx.String("category", categoryLabel))
	return nil
}
