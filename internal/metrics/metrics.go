// Package metrics exposes Prometheus collectors for HTTP traffic and
// marketplace operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts domain operations.
type Recorder interface {
	ProductOp(operation string)
	InquiryOp(operation string)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ProductOp(string) {}
func (Nop) InquiryOp(string) {}

// Metrics holds the service collectors.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	products  *prometheus.CounterVec
	inquiries *prometheus.CounterVec
}

// New registers the collectors on reg under the given name prefix.
func New(reg prometheus.Registerer, prefix string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		products: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_products_total",
				Help: "Total number of product operations",
			},
			[]string{"operation"},
		),
		inquiries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_inquiries_total",
				Help: "Total number of inquiry operations",
			},
			[]string{"operation"},
		),
	}
}

// ProductOp increments the product operation counter.
func (m *Metrics) ProductOp(operation string) {
	m.products.WithLabelValues(operation).Inc()
}

// InquiryOp increments the inquiry operation counter.
func (m *Metrics) InquiryOp(operation string) {
	m.inquiries.WithLabelValues(operation).Inc()
}

// Middleware records request count and latency labelled by route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
