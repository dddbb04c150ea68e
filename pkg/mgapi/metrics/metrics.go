package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mergington/activities/pkg/mgdb/stor"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK              = "ok"
	ResultNotFound        = "not_found"
	ResultAlreadySignedUp = "already_signed_up"
	ResultFull            = "full"
	ResultError           = "error"
)

// Metrics owns its registry, New can be called more than once per process.
type Metrics struct {
	Registry        *prometheus.Registry
	Signups         *prometheus.CounterVec
	Unregisters     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mg_signups_total",
				Help: "Signup attempts by result",
			},
			[]string{"result"},
		),
		Unregisters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mg_unregisters_total",
				Help: "Unregister attempts by result",
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mg_http_request_duration_seconds",
				Help:    "HTTP request duration by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	m.Registry.MustRegister(
		m.Signups,
		m.Unregisters,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveSignup(err error) {
	m.Signups.WithLabelValues(resultOf(err)).Inc()
}

func (m *Metrics) ObserveUnregister(err error) {
	m.Unregisters.WithLabelValues(resultOf(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request durations. The route label is the registered
// path pattern, never the raw URL, so activity names don't become labels.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.RequestDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, stor.ErrAlreadySignedUp):
		return ResultAlreadySignedUp
	case errors.Is(err, stor.ErrActivityFull):
		return ResultFull
	case stor.IsNotFound(err):
		return ResultNotFound
	default:
		return ResultError
	}
}
