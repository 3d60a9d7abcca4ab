package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
telegram:
  token: "123:abc"
  admin_user_ids: [1, 2]
  poll_timeout: "10s"
logging:
  level: debug
  console: true
storage:
  driver: file
  path: ./store
scheduler:
  scan: "10s"
delivery:
  rate_per_sec: 20
keepalive:
  enabled: true
  addr: "127.0.0.1:5000"
`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.AdminUserIDs) != 2 || cfg.Telegram.AdminUserIDs[1] != 2 {
		t.Fatalf("admin ids = %v", cfg.Telegram.AdminUserIDs)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Scheduler.Scan != "10s" {
		t.Fatalf("scan = %q", cfg.Scheduler.Scan)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.json", `{"telegram":{"token":"t","bogus_key":1}}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.json", `{"telegram":{"token":"t"}}{"extra":true}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()

	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: %v %v", d, err)
	}
	if _, err := ParseDurationField("x", "nope"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("expected negative rejection")
	}
}
