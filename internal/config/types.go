package config

type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Delivery  DeliveryConfig  `json:"delivery"`
	Keepalive KeepaliveConfig `json:"keepalive"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// AdminUserIDs is the privileged-role allow-list for category
	// administration.
	AdminUserIDs []int64 `json:"admin_user_ids"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./remindbot_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// SchedulerConfig controls the expiry sweep.
type SchedulerConfig struct {
	// Scan is either a Go duration ("10s") or a cron expression
	// ("*/30 * * * * *"). Empty means the 10s default.
	Scan string `json:"scan"`
	// DeliveryRetryMax keeps a failed reminder for that many extra scans.
	// 0 (the default) discards after the single attempt.
	DeliveryRetryMax int `json:"delivery_retry_max,omitempty"`
}

type DeliveryConfig struct {
	RatePerSec float64 `json:"rate_per_sec"`
	Burst      int     `json:"burst,omitempty"`
}

// KeepaliveConfig controls the liveness HTTP endpoint and self-ping loop.
type KeepaliveConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:5000"
	// SelfPingEvery is a Go duration string; "0s" disables the self-ping.
	SelfPingEvery string `json:"self_ping_every,omitempty"`
}
