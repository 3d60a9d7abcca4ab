package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindbot/internal/reminder"
	logx "remindbot/pkg/logx"
)

type fakeDeliverer struct {
	calls []string // "ownerID/category/message"
	fail  bool
}

func (f *fakeDeliverer) Deliver(_ context.Context, ownerID int64, message, categoryLabel string) error {
	f.calls = append(f.calls, categoryLabel+"/"+message)
	_ = ownerID
	if f.fail {
		return errors.New("unreachable")
	}
	return nil
}

func newFixture(t *testing.T, cfg Config, fail bool) (*Service, *reminder.Service, *fakeDeliverer, *time.Time) {
	t.Helper()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := reminder.New(logx.Nop(), nil, nil, reminder.WithClock(func() time.Time { return clock }))
	svc.Load(context.Background())

	out := &fakeDeliverer{fail: fail}
	s, err := New(cfg, svc, out, nil, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return clock }
	return s, svc, out, &clock
}

func TestParseScanSpec(t *testing.T) {
	t.Parallel()

	if spec, err := ParseScanSpec(""); err != nil || spec.Every != 10*time.Second {
		t.Fatalf("empty spec: %+v, %v", spec, err)
	}
	if spec, err := ParseScanSpec("30s"); err != nil || spec.Every != 30*time.Second {
		t.Fatalf("duration spec: %+v, %v", spec, err)
	}
	if spec, err := ParseScanSpec("*/30 * * * * *"); err != nil || spec.Schedule == nil {
		t.Fatalf("cron spec: %+v, %v", spec, err)
	}
	if spec, err := ParseScanSpec("cron:@every 10s"); err != nil || spec.Schedule == nil {
		t.Fatalf("prefixed cron spec: %+v, %v", spec, err)
	}
	if _, err := ParseScanSpec("bogus"); err == nil {
		t.Fatal("expected error for garbage spec")
	}
	if _, err := ParseScanSpec("-5s"); err == nil {
		t.Fatal("expected error for negative interval")
	}
}

func TestScanDeliversAndRemoves(t *testing.T) {
	t.Parallel()

	s, svc, out, clock := newFixture(t, Config{}, false)
	ctx := context.Background()

	r, err := svc.CreateFixed(ctx, "таймер", "оплата_дома", 42)
	if err != nil {
		t.Fatal(err)
	}

	// Not yet due: no delivery, no removal.
	s.ScanOnce(ctx)
	if len(out.calls) != 0 {
		t.Fatalf("premature delivery: %v", out.calls)
	}

	*clock = clock.Add(2 * time.Minute)
	s.ScanOnce(ctx)
	if len(out.calls) != 1 {
		t.Fatalf("expected exactly one delivery, got %v", out.calls)
	}
	want := r.CategoryLabel + "/" + r.Message
	if out.calls[0] != want {
		t.Fatalf("delivered %q, want %q", out.calls[0], want)
	}
	if due := svc.CollectDue(*clock); len(due) != 0 {
		t.Fatalf("reminder survived the scan: %+v", due)
	}

	// A later scan never redelivers.
	s.ScanOnce(ctx)
	if len(out.calls) != 1 {
		t.Fatalf("redelivery happened: %v", out.calls)
	}
}

func TestScanDiscardsOnFailure(t *testing.T) {
	t.Parallel()

	s, svc, out, clock := newFixture(t, Config{}, true)
	ctx := context.Background()

	if _, err := svc.CreateFixed(ctx, "таймер", "оплата_дома", 42); err != nil {
		t.Fatal(err)
	}
	*clock = clock.Add(2 * time.Minute)

	s.ScanOnce(ctx)
	if len(out.calls) != 1 {
		t.Fatalf("expected one attempt, got %d", len(out.calls))
	}
	// Default mode: failed delivery still discards the reminder.
	if due := svc.CollectDue(*clock); len(due) != 0 {
		t.Fatalf("failed reminder was kept: %+v", due)
	}
}

func TestScanRetryMode(t *testing.T) {
	t.Parallel()

	s, svc, out, clock := newFixture(t, Config{DeliveryRetryMax: 2}, true)
	ctx := context.Background()

	if _, err := svc.CreateFixed(ctx, "таймер", "оплата_дома", 42); err != nil {
		t.Fatal(err)
	}
	*clock = clock.Add(2 * time.Minute)

	// First attempt plus two retries, then the reminder is dropped.
	for i := 1; i <= 2; i++ {
		s.ScanOnce(ctx)
		if due := svc.CollectDue(*clock); len(due) != 1 {
			t.Fatalf("attempt %d: reminder dropped too early", i)
		}
	}
	s.ScanOnce(ctx)
	if due := svc.CollectDue(*clock); len(due) != 0 {
		t.Fatalf("reminder survived past retry budget: %+v", due)
	}
	if len(out.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(out.calls))
	}
}

func TestScanBatchesRemoval(t *testing.T) {
	t.Parallel()

	s, svc, out, clock := newFixture(t, Config{}, false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateCustom(ctx, "таймер", "настраиваемый", int64(i), 0, 0, 1, "go"); err != nil {
			t.Fatal(err)
		}
	}
	*clock = clock.Add(2 * time.Minute)

	s.ScanOnce(ctx)
	if len(out.calls) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(out.calls))
	}
	if due := svc.CollectDue(*clock); len(due) != 0 {
		t.Fatalf("batch removal incomplete: %+v", due)
	}
}
