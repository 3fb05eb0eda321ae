package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func TestItCallsNextMiddlewareWhenCapacityAvailable(t *testing.T) {
	c := NewCapacityMiddleware(2)
	called := false
	h := c.HasCapacity(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/trim/start:1/clip.mp4", nil), nil)
	require.True(t, called)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, int64(0), c.InFlight())
}

func TestItRejectsRequestsOverCapacity(t *testing.T) {
	c := NewCapacityMiddleware(1)
	entered := make(chan struct{})
	release := make(chan struct{})
	h := c.HasCapacity(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})

	var wg sync.WaitGroup
	first := httptest.NewRecorder()
	wg.Add(1)
	go func() {
		defer wg.Done()
		h(first, httptest.NewRequest(http.MethodGet, "/trim/start:1/a.mp4", nil), nil)
	}()
	<-entered

	second := httptest.NewRecorder()
	h(second, httptest.NewRequest(http.MethodGet, "/trim/start:1/b.mp4", nil), nil)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	close(release)
	wg.Wait()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, int64(0), c.InFlight())
}

func TestLogRequestRecoversPanics(t *testing.T) {
	h := LogRequest()(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h(rr, httptest.NewRequest(http.MethodGet, "/trim/start:1/clip.mp4", nil), nil)
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLogRequestRecordsStatus(t *testing.T) {
	var wrapped *responseWriter
	h := LogRequest()(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		wrapped = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/ok", nil), nil)
	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, http.StatusTeapot, wrapped.status)
}

func TestAllowCORS(t *testing.T) {
	h := AllowCORS()(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {})
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/trim/start:1/clip.mp4", nil), nil)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "X-Query-Hash")

	rr = httptest.NewRecorder()
	PreflightHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/trim/start:1/clip.mp4", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "GET, HEAD, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}
