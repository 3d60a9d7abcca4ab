package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "remindbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.reminders.json  (reminder snapshot)
//   - <prefix>.categories.json (category tree snapshot)
//
// Each save writes <file>.tmp and renames it over the previous snapshot.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	remindersPath  string
	categoriesPath string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &fileStore{
		log:            log,
		remindersPath:  prefix + ".reminders.json",
		categoriesPath: prefix + ".categories.json",
	}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadReminders(ctx context.Context) (map[string]ReminderRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]ReminderRecord{}
	if err := loadSnapshot(s.remindersPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) SaveReminders(ctx context.Context, reminders map[string]ReminderRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeSnapshot(s.remindersPath, reminders)
}

func (s *fileStore) LoadCategories(ctx context.Context) (map[string]CategoryRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]CategoryRecord{}
	if err := loadSnapshot(s.categoriesPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fileStore) SaveCategories(ctx context.Context, categories map[string]CategoryRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeSnapshot(s.categoriesPath, categories)
}

func loadSnapshot(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First start: nothing persisted yet.
			return nil
		}
		return err
	}
	return json.Unmarshal(b, out)
}

func writeSnapshot(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
