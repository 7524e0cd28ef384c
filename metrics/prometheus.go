package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	syncDuration    prom.Histogram
	syncResults     *prom.CounterVec
	corpusPosts     prom.Gauge
	corpusProblems  prom.Gauge
	nextPublish     prom.Gauge
	requestDuration *prom.HistogramVec
	cacheEvents     *prom.CounterVec
	buildDuration   prom.Histogram
	buildOutcomes   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the engine's metrics on reg.
// A nil reg gets a fresh registry, useful in tests.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		syncDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "geopress",
			Name:      "sync_duration_seconds",
			Help:      "Duration of content directory syncs",
			Buckets:   prom.DefBuckets,
		}),
		syncResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geopress",
			Name:      "sync_results_total",
			Help:      "Content sync results by outcome",
		}, []string{"result"}),
		corpusPosts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "geopress",
			Name:      "corpus_posts",
			Help:      "Posts loaded by the last sync",
		}),
		corpusProblems: prom.NewGauge(prom.GaugeOpts{
			Namespace: "geopress",
			Name:      "corpus_problems",
			Help:      "Problems reported by the last sync",
		}),
		nextPublish: prom.NewGauge(prom.GaugeOpts{
			Namespace: "geopress",
			Name:      "next_publish_timestamp_seconds",
			Help:      "pubDatetime of the next scheduled post, 0 when none",
		}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "geopress",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method", "status"}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geopress",
			Name:      "cache_events_total",
			Help:      "Cache lookups by cache name and hit/miss",
		}, []string{"cache", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "geopress",
			Name:      "build_duration_seconds",
			Help:      "Duration of static site builds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "geopress",
			Name:      "build_outcomes_total",
			Help:      "Static build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		pr.syncDuration, pr.syncResults, pr.corpusPosts, pr.corpusProblems,
		pr.nextPublish, pr.requestDuration, pr.cacheEvents, pr.buildDuration,
		pr.buildOutcomes,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveSyncDuration(d time.Duration) {
	if p == nil || p.syncDuration == nil {
		return
	}
	p.syncDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSyncResult(result ResultLabel) {
	if p == nil || p.syncResults == nil {
		return
	}
	p.syncResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetCorpusSize(posts, problems int) {
	if p == nil || p.corpusPosts == nil {
		return
	}
	p.corpusPosts.Set(float64(posts))
	p.corpusProblems.Set(float64(problems))
}

func (p *PrometheusRecorder) SetNextPublish(t time.Time) {
	if p == nil || p.nextPublish == nil {
		return
	}
	if t.IsZero() {
		p.nextPublish.Set(0)
		return
	}
	p.nextPublish.Set(float64(t.Unix()))
}

func (p *PrometheusRecorder) ObserveRequestDuration(route, method string, status int, d time.Duration) {
	if p == nil || p.requestDuration == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheEvent(cache string, hit bool) {
	if p == nil || p.cacheEvents == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheEvents.WithLabelValues(cache, result).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(result ResultLabel) {
	if p == nil || p.buildOutcomes == nil {
		return
	}
	p.buildOutcomes.WithLabelValues(string(result)).Inc()
}

// HTTPHandler serves the registry in the Prometheus exposition format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
