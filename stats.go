package pinup

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stats holds the refresh cycle metrics on a private registry.
type Stats struct {
	registry      *prometheus.Registry
	refreshes     prometheus.Counter
	fetchFailures prometheus.Counter
	volts         prometheus.Gauge
	lastFetch     prometheus.Gauge
}

func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinup_refresh_total",
			Help: "Completed refresh cycles.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinup_fetch_failures_total",
			Help: "Weather fetches that failed and fell back to the previous snapshot.",
		}),
		volts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pinup_battery_volts",
			Help: "Battery voltage at the last refresh.",
		}),
		lastFetch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pinup_last_fetch_timestamp_seconds",
			Help: "Unix time of the last successful weather fetch.",
		}),
	}
	s.registry.MustRegister(s.refreshes, s.fetchFailures, s.volts, s.lastFetch)
	return s
}

func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *Stats) fetched(t time.Time) {
	s.lastFetch.Set(float64(t.Unix()))
}
