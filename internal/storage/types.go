package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON snapshot files (write-new-then-rename)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled and the bot runs
// memory-only (reminders do not survive restarts).
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// ReminderRecord is the persisted form of one reminder, keyed by its opaque
// id. Keep it compact and schema-stable: this layout is shared by both
// drivers and must stay loadable across versions.
type ReminderRecord struct {
	Message  string `json:"message"`
	EndTime  string `json:"end_time"` // RFC3339
	UserID   int64  `json:"user_id"`
	Category string `json:"category"` // frozen "Category - Subcategory" label
}

// SubcategoryRecord is the persisted form of one subcategory. Time and
// Message are nil for custom subcategories and for fixed subcategories whose
// setup step has not completed yet.
type SubcategoryRecord struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"` // "custom" | "fixed"
	Time    *string `json:"time"`
	Message *string `json:"message"`
}

// CategoryRecord is the persisted form of one category, keyed by its slug.
type CategoryRecord struct {
	Name          string                       `json:"name"`
	Subcategories map[string]SubcategoryRecord `json:"subcategories"`
}

// Store is the snapshot persistence API used by the reminder service.
//
// Both documents are whole-snapshot reads/writes: loaded entirely at startup,
// rewritten entirely after each mutation. Load of missing storage returns an
// empty (non-nil) map and no error.
type Store interface {
	LoadReminders(ctx context.Context) (map[string]ReminderRecord, error)
	SaveReminders(ctx context.Context, reminders map[string]ReminderRecord) error

	LoadCategories(ctx context.Context) (map[string]CategoryRecord, error)
	SaveCategories(ctx context.Context, categories map[string]CategoryRecord) error

	Close() error
}
