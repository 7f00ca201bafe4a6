package observability

import (
	"context"
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
)

// TimingMetric is a running Server-Timing entry.
type TimingMetric struct {
	metric *servertiming.Metric
}

// Stop ends the entry. Safe on a no-op metric.
func (m *TimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartTiming starts a Server-Timing entry when the request carries a timing
// header collector, and a no-op otherwise.
func StartTiming(ctx context.Context, name string) *TimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &TimingMetric{}
	}
	return &TimingMetric{metric: timing.NewMetric(name).Start()}
}

// ServerTiming installs the Server-Timing collector on every request.
func ServerTiming(next http.Handler) http.Handler {
	return servertiming.Middleware(next, nil)
}
