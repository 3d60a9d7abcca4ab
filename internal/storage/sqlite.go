package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	logx "remindbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadReminders(ctx context.Context) (map[string]ReminderRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, message, end_time, user_id, category FROM reminders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]ReminderRecord{}
	for rows.Next() {
		var id string
		var r ReminderRecord
		if err := rows.Scan(&id, &r.Message, &r.EndTime, &r.UserID, &r.Category); err != nil {
			return nil, err
		}
		out[id] = r
	}
	return out, rows.Err()
}

// SaveReminders replaces the reminder snapshot in one transaction, matching
// the whole-document semantics of the file driver.
func (s *sqliteStore) SaveReminders(ctx context.Context, reminders map[string]ReminderRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return err
	}
	for id, r := range reminders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reminders(id, message, end_time, user_id, category) VALUES(?,?,?,?,?)`,
			id, r.Message, r.EndTime, r.UserID, r.Category,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadCategories(ctx context.Context) (map[string]CategoryRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	out := map[string]CategoryRecord{}

	rows, err := s.db.QueryContext(ctx, `SELECT key, name FROM categories`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			rows.Close()
			return nil, err
		}
		out[key] = CategoryRecord{Name: name, Subcategories: map[string]SubcategoryRecord{}}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	srows, err := s.db.QueryContext(ctx, `SELECT cat_key, key, name, type, time, message FROM subcategories`)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var catKey, key string
		var rec SubcategoryRecord
		var t, m sql.NullString
		if err := srows.Scan(&catKey, &key, &rec.Name, &rec.Type, &t, &m); err != nil {
			return nil, err
		}
		if t.Valid {
			rec.Time = &t.String
		}
		if m.Valid {
			rec.Message = &m.String
		}
		cat, ok := out[catKey]
		if !ok {
			// orphaned row; skip
			continue
		}
		cat.Subcategories[key] = rec
		out[catKey] = cat
	}
	return out, srows.Err()
}

func (s *sqliteStore) SaveCategories(ctx context.Context, categories map[string]CategoryRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM subcategories`); err != nil {
		return err
	}
	for key, c := range categories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories(key, name) VALUES(?,?)`, key, c.Name); err != nil {
			return err
		}
		for skey, sc := range c.Subcategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subcategories(cat_key, key, name, type, time, message) VALUES(?,?,?,?,?,?)`,
				key, skey, sc.Name, sc.Type, nullStr(sc.Time), nullStr(sc.Message),
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func nullStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
