package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHistogram_Buckets(t *testing.T) {
	h := newHistogram(len(DurationBuckets))
	for _, v := range []float64{0.001, 0.02, 0.02, 30} {
		h.observe(DurationBuckets, v)
	}

	cum, count, sum := h.snapshot()
	if count != 4 {
		t.Errorf("expected 4 observations, got %d", count)
	}
	if sum < 30.04 || sum > 30.05 {
		t.Errorf("unexpected sum %g", sum)
	}
	if cum[0] != 1 {
		t.Errorf("expected 1 in the first bucket, got %d", cum[0])
	}
	if cum[2] != 3 {
		t.Errorf("expected 3 at le=0.025, got %d", cum[2])
	}
	if cum[len(cum)-1] != 3 {
		t.Errorf("expected the overflow value only in +Inf, got %d", cum[len(cum)-1])
	}
}

func TestCounter_Inc(t *testing.T) {
	r := NewRegistry("tracker")
	c := r.NewCounter("blood_tests_created", "Blood tests stored.", "test_type")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc("lipid")
		}()
	}
	wg.Wait()
	c.Inc("cbc")

	if got := c.Value("lipid"); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
	if got := c.Value("unknown"); got != 0 {
		t.Errorf("expected 0 for an unseen label, got %d", got)
	}
}

func TestMiddleware_RecordsRouteAndStatus(t *testing.T) {
	r := NewRegistry("tracker")
	e := echo.New()
	e.Use(r.Middleware())
	e.GET("/items/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "nope")
		}
		if c.Param("id") == "boom" {
			return errors.New("boom")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/items/1", "/items/2", "/items/missing", "/items/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		status int
		want   int64
	}{
		{http.StatusOK, 2},
		{http.StatusNotFound, 1},
		{http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		_, count, _ := r.requestHistogram(labelsKey(http.MethodGet, "/items/:id", tt.status)).snapshot()
		if count != tt.want {
			t.Errorf("status %d: expected %d, got %d", tt.status, tt.want, count)
		}
	}
	if r.active != 0 {
		t.Errorf("expected no requests in flight, got %d", r.active)
	}
}

func TestHandler_Exposition(t *testing.T) {
	r := NewRegistry("tracker")
	rejected := r.NewCounter("blood_test_rejections", "Blood test writes rejected by reference validation.", "reason")
	rejected.Inc("Patient")
	rejected.Inc("ExamType")
	rejected.Inc("Patient")

	e := echo.New()
	e.Use(r.Middleware())
	e.GET("/metrics", r.Handler())
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/plain") {
		t.Errorf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	for _, want := range []string{
		"# TYPE tracker_http_request_duration_seconds histogram",
		`tracker_http_request_duration_seconds_count{method="GET",route="/metrics",status_code="200"} 1`,
		`tracker_http_request_duration_seconds_bucket{method="GET",route="/metrics",status_code="200",le="+Inf"} 1`,
		"# TYPE tracker_http_requests_in_flight gauge",
		"tracker_http_requests_in_flight 1",
		"# TYPE tracker_blood_test_rejections_total counter",
		`tracker_blood_test_rejections_total{reason="ExamType"} 1`,
		`tracker_blood_test_rejections_total{reason="Patient"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
	if strings.Index(body, `reason="ExamType"`) > strings.Index(body, `reason="Patient"`) {
		t.Error("expected counter series sorted by label")
	}
}
