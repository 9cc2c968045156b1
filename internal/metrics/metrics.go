// Package metrics exposes dashboard activity as prometheus counters.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/homedash/internal/model"
)

const namespace = "homedash"

// Recorder counts alerts, logins and automation failures. It satisfies
// home.Observer. Each Recorder owns its registry so tests can build many.
type Recorder struct {
	registry *prometheus.Registry

	alerts             *prometheus.CounterVec
	logins             *prometheus.CounterVec
	automationFailures prometheus.Counter
	requests           *prometheus.CounterVec
	latency            *prometheus.SummaryVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "raised_total",
			Help:      "Alerts appended to the notification log.",
		}, []string{"category", "severity"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		automationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automations",
			Name:      "failures_total",
			Help:      "Automations rejected by a simulated device failure.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method", "code"}),
		latency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Subsystem:  "http",
			Name:       "request_latency_seconds",
			Help:       "Total duration of requests in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"method"}),
	}
	r.registry.MustRegister(
		r.alerts,
		r.logins,
		r.automationFailures,
		r.requests,
		r.latency,
		prometheus.NewGoCollector(),
	)
	return r
}

func (r *Recorder) AlertRaised(n model.Notification) {
	r.alerts.WithLabelValues(string(n.Category), string(n.Severity)).Inc()
}

func (r *Recorder) LoginFailed()      { r.logins.WithLabelValues("failure").Inc() }
func (r *Recorder) LoginSucceeded()   { r.logins.WithLabelValues("success").Inc() }
func (r *Recorder) AutomationFailed() { r.automationFailures.Inc() }

// Broadcaster is the view of the websocket hub the gauges read.
type Broadcaster interface {
	ClientCount() int
	Dropped() int64
}

// WatchHub exports the hub's connected dashboards and dropped messages.
// Call it once per Recorder.
func (r *Recorder) WatchHub(b Broadcaster) {
	r.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Dashboards currently connected.",
		}, func() float64 { return float64(b.ClientCount()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "dropped_total",
			Help:      "State-change messages skipped because a dashboard was slow.",
		}, func() float64 { return float64(b.Dropped()) }),
	)
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Instrument counts and times every request passing through it.
func (r *Recorder) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, req)
		r.requests.WithLabelValues(req.Method, strconv.Itoa(sw.status)).Inc()
		r.latency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// websocket upgrade needs.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}
