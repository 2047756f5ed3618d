package scalems

import "time"

// Config holds configuration shared by execution contexts.
type Config struct {
	// Concurrency is the maximum number of tasks executed concurrently
	// by pooled contexts.
	Concurrency int

	// QueueDepth is the task queue capacity of pooled contexts.
	// Submissions beyond this depth block.
	QueueDepth int

	// ShutdownTimeout is the maximum time to wait for in-flight tasks
	// during graceful shutdown.
	ShutdownTimeout time.Duration

	// WorkDir is the directory under which task working directories and
	// captured output files are created. Empty means the process working
	// directory.
	WorkDir string

	// RatePerSecond limits task launches per second in pooled contexts.
	// Zero means unlimited.
	RatePerSecond float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:     8,
		QueueDepth:      64,
		ShutdownTimeout: 30 * time.Second,
	}
}
