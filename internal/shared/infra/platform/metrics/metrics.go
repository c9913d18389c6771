package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores del servicio en un registro propio.
type Metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	storeQueries *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	imported     *prometheus.CounterVec
	lastImport   prometheus.Gauge
}

func New(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	m.storeQueries = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_query_duration_seconds",
		Help:      "Document store query latency by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	m.storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_query_errors_total",
		Help:      "Failed document store queries by operation",
	}, []string{"op"})

	m.imported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_records_total",
		Help:      "Records seen by announced imports, by outcome",
	}, []string{"outcome"})
	m.lastImport = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_import_timestamp_seconds",
		Help:      "Unix time of the last announced import",
	})

	m.registry.MustRegister(
		m.httpRequests, m.httpDuration, m.storeQueries, m.storeErrors,
		m.imported, m.lastImport,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry expone el registro, sobre todo para tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler sirve el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware mide cada petición. Usa la ruta registrada, no la URL, para
// acotar la cardinalidad.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveStoreQuery registra la duración y el resultado de una consulta al almacén.
func (m *Metrics) ObserveStoreQuery(op string, elapsed time.Duration, err error) {
	m.storeQueries.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// ObserveImport acumula los recuentos de una importación anunciada.
func (m *Metrics) ObserveImport(inserted, skippedNoCountry, skippedInvalid int) {
	m.imported.WithLabelValues("inserted").Add(float64(inserted))
	m.imported.WithLabelValues("skipped_no_country").Add(float64(skippedNoCountry))
	m.imported.WithLabelValues("skipped_invalid").Add(float64(skippedInvalid))
	m.lastImport.SetToCurrentTime()
}
