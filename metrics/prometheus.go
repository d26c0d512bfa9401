// Package metrics exports client request and refresh observations to
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "apiclient"

var _ apiclient.Recorder = (*Prometheus)(nil)

type Prometheus struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Request attempts by method, status class and error kind.",
		}, []string{"method", "status", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of a single request attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Access credential refreshes by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{p.requests, p.latency, p.refreshes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveRequest(method string, status int, kind string, elapsed time.Duration) {
	if kind == "" {
		kind = "none"
	}
	p.requests.WithLabelValues(method, statusClass(status), kind).Inc()
	p.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveRefresh(outcome apiclient.RefreshOutcome) {
	p.refreshes.WithLabelValues(string(outcome)).Inc()
}

// statusClass folds a status into 2xx/4xx/5xx, keeping 401 separate.
func statusClass(status int) string {
	switch {
	case status == 0:
		return "none"
	case status == 401:
		return "401"
	default:
		return strconv.Itoa(status/100) + "xx"
	}
}
