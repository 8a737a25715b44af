package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	namespace   string
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	loginCnt    *prometheus.CounterVec
	notifyCnt   *prometheus.CounterVec
	registerCnt *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	loginCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "logins_total"}, []string{"kind", "result"})
	notifyCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "notifications_total"}, []string{"kind", "result"})
	registerCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "registrations_total"}, []string{"event"})
	r.MustRegister(loginCnt, notifyCnt, registerCnt)

	return &Metrics{
		registry:    r,
		namespace:   ns,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		loginCnt:    loginCnt,
		notifyCnt:   notifyCnt,
		registerCnt: registerCnt,
	}
}

// Login counts a login attempt; kind is "user" or "super_admin"
func (m *Metrics) Login(kind string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.loginCnt.WithLabelValues(kind, result).Inc()
}

// Registration counts a registration workflow event: submitted, approved, rejected
func (m *Metrics) Registration(event string) {
	m.registerCnt.WithLabelValues(event).Inc()
}

func (m *Metrics) NotificationSent(kind string) {
	m.notifyCnt.WithLabelValues(kind, "sent").Inc()
}

func (m *Metrics) NotificationFailed(kind string) {
	m.notifyCnt.WithLabelValues(kind, "failed").Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
