// Package metrics records HTTP and domain metrics in memory and serves them
// in the Prometheus text exposition format.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// DurationBuckets are the request latency boundaries, in seconds.
var DurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// histogram keeps non-cumulative bucket counts; cumulative counts are built
// at export time.
type histogram struct {
	mu      sync.Mutex
	buckets []int64
	count   int64
	sum     float64
}

func newHistogram(n int) *histogram {
	return &histogram{buckets: make([]int64, n)}
}

func (h *histogram) observe(boundaries []float64, v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i, b := range boundaries {
		if v <= b {
			h.buckets[i]++
			return
		}
	}
}

func (h *histogram) snapshot() (cum []int64, count int64, sum float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cum = make([]int64, len(h.buckets))
	var running int64
	for i, c := range h.buckets {
		running += c
		cum[i] = running
	}
	return cum, h.count, h.sum
}

// Counter is a monotonically increasing count split by one label.
type Counter struct {
	name  string
	help  string
	label string

	mu     sync.RWMutex
	values map[string]*int64
}

// Inc adds one to the series for labelValue.
func (c *Counter) Inc(labelValue string) {
	c.mu.RLock()
	p, ok := c.values[labelValue]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if p, ok = c.values[labelValue]; !ok {
			p = new(int64)
			c.values[labelValue] = p
		}
		c.mu.Unlock()
	}
	atomic.AddInt64(p, 1)
}

// Value returns the current count for labelValue.
func (c *Counter) Value(labelValue string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.values[labelValue]; ok {
		return atomic.LoadInt64(p)
	}
	return 0
}

// Registry owns every metric of the process.
type Registry struct {
	namespace string

	active int64

	reqMu    sync.RWMutex
	requests map[string]*histogram

	counterMu sync.Mutex
	counters  []*Counter
}

// NewRegistry creates a registry whose metric names start with namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		requests:  make(map[string]*histogram),
	}
}

// NewCounter registers a counter. name is given without the namespace or the
// _total suffix.
func (r *Registry) NewCounter(name, help, label string) *Counter {
	c := &Counter{
		name:   r.namespace + "_" + name + "_total",
		help:   help,
		label:  label,
		values: make(map[string]*int64),
	}
	r.counterMu.Lock()
	r.counters = append(r.counters, c)
	r.counterMu.Unlock()
	return c
}

// labelsKey joins the request labels into one map key.
func labelsKey(method, route string, status int) string {
	return method + "|" + route + "|" + strconv.Itoa(status)
}

func (r *Registry) requestHistogram(key string) *histogram {
	r.reqMu.RLock()
	h, ok := r.requests[key]
	r.reqMu.RUnlock()
	if ok {
		return h
	}
	r.reqMu.Lock()
	defer r.reqMu.Unlock()
	if h, ok = r.requests[key]; !ok {
		h = newHistogram(len(DurationBuckets))
		r.requests[key] = h
	}
	return h
}

// Middleware records the duration of every request by method, route pattern
// and status, and tracks requests in flight.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&r.active, 1)
			start := time.Now()

			err := next(c)

			atomic.AddInt64(&r.active, -1)
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			r.requestHistogram(labelsKey(c.Request().Method, route, status)).
				observe(DurationBuckets, time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in Prometheus text format. Series are sorted so
// consecutive scrapes are stable.
func (r *Registry) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder
		r.write(&b)
		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
	}
}

func (r *Registry) write(b *strings.Builder) {
	name := r.namespace + "_http_request_duration_seconds"
	fmt.Fprintf(b, "# HELP %s Duration of HTTP requests in seconds.\n", name)
	fmt.Fprintf(b, "# TYPE %s histogram\n", name)

	r.reqMu.RLock()
	keys := make([]string, 0, len(r.requests))
	for k := range r.requests {
		keys = append(keys, k)
	}
	r.reqMu.RUnlock()
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.SplitN(key, "|", 3)
		labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
		writeHistogram(b, name, labels, r.requestHistogram(key))
	}
	b.WriteByte('\n')

	name = r.namespace + "_http_requests_in_flight"
	fmt.Fprintf(b, "# HELP %s Number of HTTP requests being served.\n", name)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %d\n\n", name, atomic.LoadInt64(&r.active))

	r.counterMu.Lock()
	counters := append([]*Counter(nil), r.counters...)
	r.counterMu.Unlock()
	for _, c := range counters {
		writeCounter(b, c)
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum, count, sum := h.snapshot()
	for i, boundary := range DurationBuckets {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, count)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, sum)
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, count)
}

func writeCounter(b *strings.Builder, c *Counter) {
	fmt.Fprintf(b, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(b, "# TYPE %s counter\n", c.name)

	c.mu.RLock()
	values := make([]string, 0, len(c.values))
	for v := range c.values {
		values = append(values, v)
	}
	c.mu.RUnlock()
	sort.Strings(values)

	for _, v := range values {
		fmt.Fprintf(b, "%s{%s=%q} %d\n", c.name, c.label, v, c.Value(v))
	}
	b.WriteByte('\n')
}
