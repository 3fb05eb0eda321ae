package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestClientMetrics() ClientMetrics {
	f := promauto.With(prometheus.NewRegistry())
	return ClientMetrics{
		RetryCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "test_retry_count",
		}, []string{"host"}),
		FailureCount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "test_failures_count",
		}, []string{"host", "status_code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "test_request_duration",
			Buckets: []float64{.5, 1},
		}, []string{"host"}),
		RequestCount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "test_request_count",
		}, []string{"host"}),
	}
}

func newTestClient() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = time.Millisecond
	client.RetryWaitMax = 5 * time.Millisecond
	client.Logger = nil
	client.CheckRetry = HttpRetryHook
	return client.StandardClient()
}

func TestSourcePreflightRetriesAreCounted(t *testing.T) {
	var attempts int
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		if attempts < 2 {
			attempts++
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer svr.Close()
	u, err := url.Parse(svr.URL)
	require.NoError(t, err)

	m := newTestClientMetrics()
	req, err := http.NewRequest(http.MethodHead, svr.URL+"/clip.mp4", nil)
	require.NoError(t, err)

	res, err := MonitorRequest(m, newTestClient(), req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RetryCount.WithLabelValues(u.Host)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestCount.WithLabelValues(u.Host)))
	require.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
	require.Equal(t, 0, testutil.CollectAndCount(m.FailureCount))
}

func TestFailingSourcePreflightIsCountedAsFailure(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer svr.Close()
	u, err := url.Parse(svr.URL)
	require.NoError(t, err)

	m := newTestClientMetrics()
	req, err := http.NewRequest(http.MethodHead, svr.URL, nil)
	require.NoError(t, err)

	_, _ = MonitorRequest(m, newTestClient(), req)

	require.Equal(t, 1.0, testutil.ToFloat64(m.FailureCount.WithLabelValues(u.Host, "502")))
	require.Equal(t, 0, testutil.CollectAndCount(m.RetryCount))
	require.Equal(t, 0, testutil.CollectAndCount(m.RequestDuration))
}

func TestMonitorRequestKeepsCallerContext(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer svr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, svr.URL, nil)
	require.NoError(t, err)

	_, err = MonitorRequest(newTestClientMetrics(), newTestClient(), req)
	require.Error(t, err)
}

func TestRetryHookWithoutMonitoring(t *testing.T) {
	retry, err := HttpRetryHook(context.Background(), &http.Response{StatusCode: http.StatusServiceUnavailable}, nil)
	require.NoError(t, err)
	require.True(t, retry)

	retry, err = HttpRetryHook(context.Background(), &http.Response{StatusCode: http.StatusOK}, nil)
	require.NoError(t, err)
	require.False(t, retry)
}
