package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeApproximateRequestSize(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/api/menu", strings.NewReader("{}"))
	r.Header.Set("X-Trace-Id", "abc")

	size := computeApproximateRequestSize(r)
	// path + method + proto + header + host + body
	want := len("/api/menu") + len("POST") + len("HTTP/1.1") +
		len("X-Trace-Id") + len("abc") + len("example.com") + 2
	require.Equal(t, want, size)
}

func TestComputeApproximateRequestSize_UnknownContentLength(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/healthz", nil)
	r.ContentLength = -1
	require.Equal(t, len("/healthz")+len("GET")+len("HTTP/1.1")+len("example.com"), computeApproximateRequestSize(r))
}

func TestMillisecondsSince(t *testing.T) {
	start := time.Now().Add(-250 * time.Millisecond)
	elapsed := MillisecondsSince(start)
	require.GreaterOrEqual(t, elapsed, 250.0)
	require.Less(t, elapsed, 5000.0)
}
