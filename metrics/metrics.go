// Package metrics instruments the gateway with prometheus counters and
// optionally serves them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.wm.local/mail/mailgate/log"
)

type Metrics struct {
	registry *prometheus.Registry

	FramesAccepted   prometheus.Counter
	FramesSidegraded prometheus.Counter
	FramesRejected   prometheus.Counter

	EmailsSent    prometheus.Counter
	EmailsFailed  prometheus.Counter
	EmailsExpired prometheus.Counter

	QueueDepth prometheus.Gauge
	LedgerSize prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	namespace := "mailgate"

	return &Metrics{
		registry: registry,
		FramesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "frames_accepted_total",
			Help:      "Number of frames accepted and enqueued",
		}),
		FramesSidegraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "frames_sidegraded_total",
			Help:      "Number of frames answered with an upgrade request",
		}),
		FramesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "frames_rejected_total",
			Help:      "Number of malformed or undecodable frames",
		}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drain",
			Name:      "emails_sent_total",
			Help:      "Number of emails dispatched to the SMTP transport",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drain",
			Name:      "emails_failed_total",
			Help:      "Number of failed dispatch attempts",
		}),
		EmailsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drain",
			Name:      "emails_expired_total",
			Help:      "Number of emails discarded past their TTL",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of emails waiting in the queue",
		}),
		LedgerSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "error_ledger_size",
			Help:      "Number of records in the error ledger",
		}),
	}
}

// Serve exposes /metrics and /ping on listen. It blocks, so callers run it
// in a goroutine; a failed listener is logged, not fatal.
func (m *Metrics) Serve(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
		w.WriteHeader(http.StatusOK)
	}))
	err := http.ListenAndServe(listen, mux)
	if err != nil {
		log.Errorf("failed to start prometheus service:  %s", err)
	}
}

// Registry exposes the backing registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
