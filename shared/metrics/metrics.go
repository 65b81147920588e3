package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transforms      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	originBytes     prometheus.Histogram
	outputBytes     *prometheus.HistogramVec
	activeWorkers   prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resizer_http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resizer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resizer_transforms_total",
			Help: "Pipeline invocations by negotiated format and outcome.",
		}, []string{"format", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resizer_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		originBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resizer_origin_bytes",
			Help:    "Size of images fetched from origins.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		outputBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resizer_output_bytes",
			Help:    "Size of encoded responses.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"format"}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resizer_active_workers",
			Help: "Pipelines currently holding a CPU worker slot.",
		}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.transforms,
		m.stageDuration,
		m.originBytes,
		m.outputBytes,
		m.activeWorkers,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency. Errors are rendered here so the
// recorded status is the one the client sees. Routes are labelled by their
// registered pattern so query strings never reach label values.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// Label values outlive the request; fasthttp reuses the method buffer.
		labels := []string{utils.CopyString(c.Method()), utils.CopyString(c.Route().Path), strconv.Itoa(c.Response().StatusCode())}
		m.requestTotal.WithLabelValues(labels...).Inc()
		m.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

		return nil
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveTransform(format, outcome string) {
	m.transforms.WithLabelValues(format, outcome).Inc()
}

func (m *Metrics) ObserveOriginBytes(n int) {
	m.originBytes.Observe(float64(n))
}

func (m *Metrics) ObserveOutputBytes(format string, n int64) {
	m.outputBytes.WithLabelValues(format).Observe(float64(n))
}

func (m *Metrics) WorkerAcquired() {
	m.activeWorkers.Inc()
}

func (m *Metrics) WorkerReleased() {
	m.activeWorkers.Dec()
}
