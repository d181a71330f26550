// Package stats records domain counters on a private prometheus registry and
// serves them for scraping.
package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gardenwatch"

// Recorder owns the counters. Its methods are safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	weatherSeen *prometheus.CounterVec
	notifies    *prometheus.CounterVec
	alerts      *prometheus.CounterVec
	feedEvents  *prometheus.CounterVec
}

// New builds a recorder with process and Go runtime collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		weatherSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_sightings_total",
			Help:      "Weather values received from the feed, by raw weather id.",
		}, []string{"weather"}),
		notifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_notifications_total",
			Help:      "Subscriber notifications, by state channel.",
		}, []string{"channel"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Audio alert events, by context and kind.",
		}, []string{"context", "kind"}),
		feedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_total",
			Help:      "Feed payloads dispatched by the listener, by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.weatherSeen, r.notifies, r.alerts, r.feedEvents,
	)
	return r
}

// IncrementWeatherStat counts one sighting of a raw weather value.
func (r *Recorder) IncrementWeatherStat(rawWeatherID string) {
	r.weatherSeen.WithLabelValues(rawWeatherID).Inc()
}

// ObserveNotify counts one broadcast on a state channel.
func (r *Recorder) ObserveNotify(channel string) {
	r.notifies.WithLabelValues(channel).Inc()
}

// ObserveAlert counts one audio event.
func (r *Recorder) ObserveAlert(context, kind string) {
	r.alerts.WithLabelValues(context, kind).Inc()
}

// ObserveFeed counts one feed payload. outcome is "ok" or "error".
func (r *Recorder) ObserveFeed(channel, outcome string) {
	r.feedEvents.WithLabelValues(channel, outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
