package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "daybook"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	cacheLookups   *prom.CounterVec
	cacheEvictions prom.Counter
	cacheFlushes   *prom.CounterVec
	cacheEntries   prom.Gauge
	renderDuration *prom.HistogramVec
	aggregateBuild *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Content cache lookups by result",
		}, []string{"result"}),
		cacheEvictions: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted because the cache exceeded its bound",
		}),
		cacheFlushes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_flushes_total",
			Help:      "Full cache flushes by reason",
		}, []string{"reason"}),
		cacheEntries: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Rendered documents currently cached",
		}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of single document renders",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		aggregateBuild: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_build_duration_seconds",
			Help:      "Duration of index and feed rebuilds",
			Buckets:   prom.DefBuckets,
		}, []string{"aggregate"}),
	}
	reg.MustRegister(pr.cacheLookups, pr.cacheEvictions, pr.cacheFlushes, pr.cacheEntries, pr.renderDuration, pr.aggregateBuild)
	return pr
}

func (p *PrometheusRecorder) IncCacheHit() {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues("hit").Inc()
}

func (p *PrometheusRecorder) IncCacheMiss() {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues("miss").Inc()
}

func (p *PrometheusRecorder) IncCacheEviction() {
	if p == nil {
		return
	}
	p.cacheEvictions.Inc()
}

func (p *PrometheusRecorder) IncCacheFlush(reason FlushReason) {
	if p == nil {
		return
	}
	p.cacheFlushes.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusRecorder) SetCacheEntries(n int) {
	if p == nil {
		return
	}
	p.cacheEntries.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.renderDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveAggregateBuild(kind AggregateLabel, d time.Duration) {
	if p == nil {
		return
	}
	p.aggregateBuild.WithLabelValues(string(kind)).Observe(d.Seconds())
}
