package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"helio/pharmacy/internal/inventory"
	"helio/pharmacy/internal/stock"
)

const namespace = "pharmacy"

// HTTPMetrics records request counts and latencies per route pattern.
type HTTPMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a registry holding the HTTP metrics and the Go runtime
// collectors.
func New() *HTTPMetrics {
	m := &HTTPMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Register adds an extra collector to the registry.
func (m *HTTPMetrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests with the matched chi route pattern so ids in
// the path do not explode cardinality.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}
		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

type statsSource interface {
	Stats(ctx context.Context, window time.Duration) (inventory.Stats, error)
}

// InventoryCollector exports stock levels computed at scrape time.
type InventoryCollector struct {
	source statsSource
	window time.Duration
	log    zerolog.Logger

	medicines *prometheus.Desc
	expiring  *prometheus.Desc
	expired   *prometheus.Desc
}

func NewInventoryCollector(source statsSource, window time.Duration, log zerolog.Logger) *InventoryCollector {
	return &InventoryCollector{
		source: source,
		window: window,
		log:    log,
		medicines: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "inventory", "medicines"),
			"Number of medicines per stock status",
			[]string{"status"}, nil,
		),
		expiring: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "inventory", "expiring_soon"),
			"Number of medicines expiring within the alert window",
			nil, nil,
		),
		expired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "inventory", "expired"),
			"Number of medicines past their expiry date",
			nil, nil,
		),
	}
}

func (c *InventoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.medicines
	ch <- c.expiring
	ch <- c.expired
}

func (c *InventoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := c.source.Stats(ctx, c.window)
	if err != nil {
		c.log.Error().Err(err).Msg("collect inventory metrics")
		return
	}
	counts := map[stock.Status]int{
		stock.InStock:    st.InStock,
		stock.LowStock:   st.LowStock,
		stock.OutOfStock: st.OutOfStock,
	}
	for _, s := range stock.Statuses {
		ch <- prometheus.MustNewConstMetric(c.medicines, prometheus.GaugeValue, float64(counts[s]), string(s))
	}
	ch <- prometheus.MustNewConstMetric(c.expiring, prometheus.GaugeValue, float64(st.ExpiringSoon))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.GaugeValue, float64(st.Expired))
}
