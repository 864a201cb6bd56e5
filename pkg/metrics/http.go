package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of HTTP handlers, labelled by route template
	HTTPRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_latency_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by status code",
	}, []string{"method", "route", "code"})

	CatalogReloadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_reload_latency_seconds",
		Help:    "Time spent loading interactions and building a snapshot",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	CatalogReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_reloads_total",
		Help: "Catalog reloads by result",
	}, []string{"result"})

	CatalogProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "Products in the snapshot currently served",
	})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestLatency,
			HTTPRequests,
			CatalogReloadLatency,
			CatalogReloads,
			CatalogProducts,
		)
	})
}

// ObserveReload records the outcome of one catalog reload.
func ObserveReload(seconds float64, products int, err error) {
	CatalogReloadLatency.Observe(seconds)
	if err != nil {
		CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	CatalogReloads.WithLabelValues("ok").Inc()
	CatalogProducts.Set(float64(products))
}
