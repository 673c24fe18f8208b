package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg          *prom.Registry
	loadDuration *prom.HistogramVec
	entries      *prom.CounterVec
	skipped      *prom.CounterVec
	queries      *prom.CounterVec
	cache        *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		loadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogcatalog",
			Name:      "catalog_load_duration_seconds",
			Help:      "Duration of a full catalog load for one locale",
			Buckets:   prom.DefBuckets,
		}, []string{"locale"}),
		entries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogcatalog",
			Name:      "catalog_entries_total",
			Help:      "Catalog entries processed by outcome",
		}, []string{"locale", "outcome"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogcatalog",
			Name:      "catalog_skipped_entries_total",
			Help:      "Skipped catalog entries by reason",
		}, []string{"locale", "reason"}),
		queries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogcatalog",
			Name:      "queries_total",
			Help:      "Listing queries served",
		}, []string{"locale", "filtered"}),
		cache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogcatalog",
			Name:      "catalog_cache_requests_total",
			Help:      "Catalog cache lookups by result",
		}, []string{"locale", "result"}),
	}
	reg.MustRegister(pr.loadDuration, pr.entries, pr.skipped, pr.queries, pr.cache)
	return pr
}

// Registry returns the registry the collectors are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveCatalogLoad(locale string, d time.Duration) {
	if p == nil {
		return
	}
	p.loadDuration.WithLabelValues(locale).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddCatalogEntries(locale string, loaded, skipped int) {
	if p == nil {
		return
	}
	p.entries.WithLabelValues(locale, "loaded").Add(float64(loaded))
	p.entries.WithLabelValues(locale, "skipped").Add(float64(skipped))
}

func (p *PrometheusRecorder) IncSkippedEntry(locale, reason string) {
	if p == nil {
		return
	}
	p.skipped.WithLabelValues(locale, reason).Inc()
}

func (p *PrometheusRecorder) IncQuery(locale string, filtered bool) {
	if p == nil {
		return
	}
	p.queries.WithLabelValues(locale, strconv.FormatBool(filtered)).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(locale string, hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cache.WithLabelValues(locale, res).Inc()
}
