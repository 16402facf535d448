package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Trip metrics
	TripsStarted      prometheus.Counter
	TripsEnded        *prometheus.CounterVec
	GPSPoints         prometheus.Counter
	SegmentsCompleted *prometheus.CounterVec

	// Feedback and scoring metrics
	FeedbackSubmitted *prometheus.CounterVec
	ScoreRecomputes   prometheus.Counter
	ScoreDuration     prometheus.Histogram
	SegmentsScored    prometheus.Gauge

	// Routing metrics
	RouteRequests *prometheus.CounterVec
	RouteDuration prometheus.Histogram
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter

	// Network metrics
	NetworkReloads prometheus.Counter
	NetworkNodes   prometheus.Gauge
	NodeDrifts     prometheus.Gauge
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		TripsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_started_total",
			Help:      "Total number of trip sessions created",
		}),
		TripsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_ended_total",
			Help:      "Total number of trip sessions ended, by reason",
		}, []string{"reason"}),
		GPSPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gps_points_total",
			Help:      "Total number of GPS points consumed",
		}),
		SegmentsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_completed_total",
			Help:      "Total number of segment completion events, by reason",
		}, []string{"reason"}),

		FeedbackSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submitted_total",
			Help:      "Total number of feedback submissions, by outcome",
		}, []string{"status"}),
		ScoreRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_recomputes_total",
			Help:      "Total number of full score recomputations",
		}),
		ScoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_recompute_duration_seconds",
			Help:      "Score recomputation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SegmentsScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segments_scored",
			Help:      "Number of segments with at least one feedback record",
		}),

		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_requests_total",
			Help:      "Total number of route requests, by outcome",
		}, []string{"status"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_duration_seconds",
			Help:      "Route computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_cache_hits_total",
			Help:      "Total number of route cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_cache_misses_total",
			Help:      "Total number of route cache misses",
		}),

		NetworkReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_reloads_total",
			Help:      "Total number of successful street network loads",
		}),
		NetworkNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_nodes",
			Help:      "Number of nodes in the active street network",
		}),
		NodeDrifts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_node_drifts",
			Help:      "Shared endpoints whose coordinates disagree between segments",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.TripsStarted, c.TripsEnded, c.GPSPoints, c.SegmentsCompleted,
		c.FeedbackSubmitted, c.ScoreRecomputes, c.ScoreDuration, c.SegmentsScored,
		c.RouteRequests, c.RouteDuration, c.CacheHits, c.CacheMisses,
		c.NetworkReloads, c.NetworkNodes, c.NodeDrifts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the underlying Prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
