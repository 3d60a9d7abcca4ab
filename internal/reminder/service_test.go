package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"remindbot/internal/storage"
	logx "remindbot/pkg/logx"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	s := New(logx.Nop(), nil, nil, opts...)
	s.Load(context.Background())
	return s
}

func TestCreateFixedFromSeed(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, WithClock(fixedClock(start)))

	r, err := s.CreateFixed(context.Background(), "таймер", "оплата_дома", 42)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.DueAt.Sub(start); got != time.Minute {
		t.Fatalf("dueAt offset = %v, want 1m", got)
	}
	if r.CategoryLabel != "⏰ Таймер - 🏠 Оплата дома" {
		t.Fatalf("label = %q", r.CategoryLabel)
	}
	if r.Message != "Время оплатить дом!" {
		t.Fatalf("message = %q", r.Message)
	}
	if r.OwnerID != 42 {
		t.Fatalf("owner = %d", r.OwnerID)
	}
}

func TestCreateFixedRejectsUnconfigured(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	admin := NewAdmin(s, RoleFunc(func(int64) bool { return true }))

	subKey, err := admin.AddSubcategory(context.Background(), 1, "таймер", "Новый", KindFixed)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.CreateFixed(context.Background(), "таймер", subKey, 42)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unconfigured fixed subcategory, got %v", err)
	}
}

func TestCreateFixedRejectsCustomSub(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	_, err := s.CreateFixed(context.Background(), "таймер", "настраиваемый", 42)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateCustomZeroDuration(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	_, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, 0, 0, 0, "msg")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero duration, got %v", err)
	}
}

func TestCreateCustomRangeValidation(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	cases := []struct{ d, h, m int }{
		{0, 24, 0},
		{0, 0, 60},
		{-1, 0, 0},
	}
	for _, tc := range cases {
		_, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, tc.d, tc.h, tc.m, "msg")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("(%d,%d,%d): expected ErrValidation, got %v", tc.d, tc.h, tc.m, err)
		}
	}
}

func TestListForOwnerExcludesOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	s := newTestService(t, WithClock(func() time.Time { return clock }))

	if _, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, 0, 0, 5, "mine"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 7, 0, 1, 0, "other"); err != nil {
		t.Fatal(err)
	}

	got := s.ListForOwner(42)
	if len(got) != 1 || got[0].Message != "mine" {
		t.Fatalf("expected only owner 42's reminder, got %+v", got)
	}

	// Past the due instant the entry is hidden even before the sweep runs.
	clock = now.Add(6 * time.Minute)
	if got := s.ListForOwner(42); len(got) != 0 {
		t.Fatalf("overdue reminder still listed: %+v", got)
	}
}

func TestCollectDueAndRemoveAll(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, WithClock(fixedClock(now)))

	r1, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, 0, 0, 1, "soon")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, 0, 1, 0, "later"); err != nil {
		t.Fatal(err)
	}

	if due := s.CollectDue(now); len(due) != 0 {
		t.Fatalf("nothing is due yet, got %+v", due)
	}

	due := s.CollectDue(now.Add(time.Minute))
	if len(due) != 1 || due[0].ID != r1.ID {
		t.Fatalf("expected exactly the one-minute reminder, got %+v", due)
	}

	s.RemoveAll(context.Background(), []string{r1.ID})
	if due := s.CollectDue(now.Add(time.Minute)); len(due) != 0 {
		t.Fatalf("removed reminder still collected: %+v", due)
	}
	// The remaining reminder is untouched.
	if due := s.CollectDue(now.Add(2 * time.Hour)); len(due) != 1 {
		t.Fatalf("expected the one-hour reminder, got %+v", due)
	}
}

func TestDistinctIDsOnRapidCreation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, WithClock(fixedClock(now)))

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		r, err := s.CreateCustom(context.Background(), "таймер", "настраиваемый", 42, 0, 0, 1, "x")
		if err != nil {
			t.Fatal(err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestAdminUnauthorized(t *testing.T) {
	t.Parallel()

	s := newTestService(t)
	admin := NewAdmin(s, RoleFunc(func(id int64) bool { return id == 1 }))
	ctx := context.Background()

	if _, err := admin.CreateCategory(ctx, 2, "Sneaky"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := admin.DeleteCategory(ctx, 2, "таймер"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	// Nothing was mutated by the rejected calls.
	if got := len(s.Categories()); got != 3 {
		t.Fatalf("category count changed to %d", got)
	}

	if _, err := admin.CreateCategory(ctx, 1, "Allowed"); err != nil {
		t.Fatalf("authorized call failed: %v", err)
	}
	if got := len(s.Categories()); got != 4 {
		t.Fatalf("expected 4 categories, got %d", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	st, err := storage.Open(storage.Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s1 := New(logx.Nop(), nil, st, WithClock(fixedClock(now)))
	s1.Load(ctx)
	created, err := s1.CreateFixed(ctx, "таймер", "оплата_дома", 42)
	if err != nil {
		t.Fatal(err)
	}

	// A second service over the same store sees the seeded tree and the
	// reminder exactly as written.
	s2 := New(logx.Nop(), nil, st, WithClock(fixedClock(now)))
	s2.Load(ctx)

	if got := len(s2.Categories()); got != 3 {
		t.Fatalf("expected 3 seeded categories after reload, got %d", got)
	}
	list := s2.ListForOwner(42)
	if len(list) != 1 {
		t.Fatalf("expected 1 reminder after reload, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || !got.DueAt.Equal(created.DueAt) ||
		got.Message != created.Message || got.CategoryLabel != created.CategoryLabel {
		t.Fatalf("reminder changed across reload:\n got %+v\nwant %+v", got, created)
	}
}
