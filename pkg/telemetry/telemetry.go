// Package telemetry exposes engine counters for the daemon's /metrics
// endpoint. Counters are package-level so every engine instance feeds
// the same registry.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	PollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_polls_total",
		Help: "Completed poll refreshes.",
	})
	PollFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_poll_failures_total",
		Help: "Poll refreshes that failed (silently logged).",
	})
	RefreshesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_refreshes_skipped_total",
		Help: "Refreshes dropped by the debounce guard.",
	})
	Sends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classline_sends_total",
		Help: "Send attempts by result.",
	}, []string{"result"})
	Erasures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classline_erasures_total",
		Help: "Message erasures by kind.",
	}, []string{"kind"})
	ReadFlushes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_read_flushes_total",
		Help: "Bulk mark-as-read flushes issued.",
	})
	MessagesCached = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_messages_cached_total",
		Help: "Messages written through to the local cache.",
	})
	CachePruned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classline_cache_pruned_total",
		Help: "Cached messages removed by retention.",
	})
)

// Register installs all engine collectors on the given registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(PollsTotal, PollFailures, RefreshesSkipped, Sends, Erasures, ReadFlushes, MessagesCached, CachePruned)
}
