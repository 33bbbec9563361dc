package monitors

import (
	"context"
	"time"
)

const (
	StatusUp   = "up"
	StatusDown = "down"

	defaultTimeout = 5 * time.Second
)

// Pinger is anything that can verify its backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (r CheckResult) Healthy() bool {
	return r.Status == StatusUp
}

// CheckDatabase pings the store within timeout.
func CheckDatabase(ctx context.Context, db Pinger, timeout time.Duration) CheckResult {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := db.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return CheckResult{Status: StatusDown, LatencyMS: latency, Error: err.Error()}
	}

	return CheckResult{Status: StatusUp, LatencyMS: latency}
}
