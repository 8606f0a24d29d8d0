package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// Transport wraps an http.RoundTripper with request metrics for outbound
// explorer calls. Labels come from the module/action query parameters, not
// the full URL, which keeps cardinality bounded and the apikey out of the
// label set. A nil next uses http.DefaultTransport.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if !enabled {
		return next
	}
	return &roundTripper{next: next}
}

type roundTripper struct {
	next http.RoundTripper
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	q := req.URL.Query()
	module := q.Get("module")
	action := q.Get("action")

	resp, err := rt.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	requestsTotal.WithLabelValues(module, action, status).Inc()
	requestDuration.WithLabelValues(module, action).Observe(time.Since(start).Seconds())

	return resp, err
}
