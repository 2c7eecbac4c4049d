package config

import "time"

// EngineConfig contains orchestration engine configuration.
type EngineConfig struct {
	// BackoffBase is the base delay for the exponential retry backoff of most
	// task categories.
	BackoffBase time.Duration `env:"ENGINE_BACKOFF_BASE" envDefault:"100ms"`

	// NetworkBackoffBase is the base delay for network-bound task categories
	// such as fetch_api_data.
	NetworkBackoffBase time.Duration `env:"ENGINE_NETWORK_BACKOFF_BASE" envDefault:"500ms"`

	// DefaultMaxRetries is the total attempt budget applied to tasks that do
	// not set their own, inclusive of the first attempt.
	DefaultMaxRetries int `env:"ENGINE_DEFAULT_MAX_RETRIES" envDefault:"3"`

	// DefaultTaskTimeout bounds a single task attempt when the task does not
	// set its own timeout.
	DefaultTaskTimeout time.Duration `env:"ENGINE_DEFAULT_TASK_TIMEOUT" envDefault:"5m"`

	// ShutdownTimeout bounds how long shutdown waits for in-flight executions
	// to observe cancellation and finish.
	ShutdownTimeout time.Duration `env:"ENGINE_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// SnapshotRetention is how long terminal execution snapshots stay readable
	// from the in-memory registry before only the persistence layer serves them.
	SnapshotRetention time.Duration `env:"ENGINE_SNAPSHOT_RETENTION" envDefault:"30s"`

	// FetchTimeout bounds a single HTTP fetch performed by fetch_api_data tasks.
	FetchTimeout time.Duration `env:"ENGINE_FETCH_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to engine configuration values.
func (e *EngineConfig) Sanitize() {
	if e.BackoffBase <= 0 {
		e.BackoffBase = 100 * time.Millisecond
	}
	if e.NetworkBackoffBase <= 0 {
		e.NetworkBackoffBase = 500 * time.Millisecond
	}
	if e.DefaultMaxRetries < 1 {
		e.DefaultMaxRetries = 3
	}
	if e.DefaultTaskTimeout <= 0 {
		e.DefaultTaskTimeout = 5 * time.Minute
	}
	if e.ShutdownTimeout <= 0 {
		e.ShutdownTimeout = 30 * time.Second
	}
	if e.SnapshotRetention <= 0 {
		e.SnapshotRetention = 30 * time.Second
	}
	if e.FetchTimeout <= 0 {
		e.FetchTimeout = 30 * time.Second
	}
}
