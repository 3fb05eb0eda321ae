package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/operation"
	"github.com/livepeer/clip-api/pipeline"
	"github.com/livepeer/clip-api/transcode"
	"github.com/stretchr/testify/require"
)

type processorFunc func(ctx context.Context, in pipeline.Request) (pipeline.Result, error)

func (f processorFunc) Process(ctx context.Context, in pipeline.Request) (pipeline.Result, error) {
	return f(ctx, in)
}

func serve(t *testing.T, h *ClipAPIHandlersCollection, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	router.GET("/*path", h.Clip())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func writeArtifact(t *testing.T, name, body string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestClipServesArtifact(t *testing.T) {
	artifact := writeArtifact(t, "1_abc.mp4", "0123456789")
	var got pipeline.Request
	h := &ClipAPIHandlersCollection{Processor: processorFunc(func(_ context.Context, in pipeline.Request) (pipeline.Result, error) {
		got = in
		return pipeline.Result{
			Fingerprint: "abc",
			Operation:   operation.Trim,
			Artifact:    &transcode.Artifact{Path: artifact, ContentType: "video/mp4"},
		}, nil
	})}

	rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/trim/start:5,end:10/clip.mp4", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "video/mp4", rr.Header().Get("Content-Type"))
	require.Equal(t, "abc", rr.Header().Get(QueryHashHeader))
	require.Equal(t, "MISS", rr.Header().Get(CacheHeader))
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	require.Equal(t, "0123456789", rr.Body.String())

	require.Equal(t, "/trim/start:5,end:10/clip.mp4", got.Path)
	require.False(t, got.Diagnostic)
	require.False(t, got.NoCache)
	require.Equal(t, rr.Header().Get("X-Request-Id"), got.RequestID)
}

func TestClipSupportsRangeRequests(t *testing.T) {
	artifact := writeArtifact(t, "1_abc.jpg", "0123456789")
	h := &ClipAPIHandlersCollection{Processor: processorFunc(func(context.Context, pipeline.Request) (pipeline.Result, error) {
		return pipeline.Result{
			Fingerprint: "abc",
			Operation:   operation.Thumbnail,
			CacheHit:    true,
			Artifact:    &transcode.Artifact{Path: artifact},
		}, nil
	})}

	req := httptest.NewRequest(http.MethodGet, "/thumbnail/start:1/clip.mp4", nil)
	req.Header.Set("Range", "bytes=2-4")
	rr := serve(t, h, req)
	require.Equal(t, http.StatusPartialContent, rr.Code)
	require.Equal(t, "234", rr.Body.String())
	require.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	require.Equal(t, "HIT", rr.Header().Get(CacheHeader))
}

func TestClipRedirectsToRemoteArtifact(t *testing.T) {
	h := &ClipAPIHandlersCollection{Processor: processorFunc(func(context.Context, pipeline.Request) (pipeline.Result, error) {
		return pipeline.Result{Fingerprint: "abc", CacheHit: true, RedirectURL: "https://cdn.example.com/abc.mp4"}, nil
	})}

	rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/trim/start:5,end:10/clip.mp4", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	require.Equal(t, "https://cdn.example.com/abc.mp4", rr.Header().Get("Location"))
	require.Equal(t, "HIT", rr.Header().Get(CacheHeader))
}

func TestClipRequestFlags(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		cacheControl   string
		diagnostics    bool
		wantDiagnostic bool
		wantNoCache    bool
	}{
		{name: "diagnostic enabled", url: "/trim/start:1/clip.mp4?diagnostic=true", diagnostics: true, wantDiagnostic: true},
		{name: "diagnostic disabled", url: "/trim/start:1/clip.mp4?diagnostic=true", diagnostics: false},
		{name: "diagnostic false", url: "/trim/start:1/clip.mp4?diagnostic=false", diagnostics: true},
		{name: "no-cache", url: "/trim/start:1/clip.mp4", cacheControl: "no-cache", wantNoCache: true},
		{name: "max-age only", url: "/trim/start:1/clip.mp4", cacheControl: "max-age=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got pipeline.Request
			h := &ClipAPIHandlersCollection{
				DiagnosticsEnabled: tt.diagnostics,
				Processor: processorFunc(func(_ context.Context, in pipeline.Request) (pipeline.Result, error) {
					got = in
					return pipeline.Result{}, errors.NewNotFoundError("nothing here", nil)
				}),
			}
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.cacheControl != "" {
				req.Header.Set("Cache-Control", tt.cacheControl)
			}
			serve(t, h, req)
			require.Equal(t, tt.wantDiagnostic, got.Diagnostic)
			require.Equal(t, tt.wantNoCache, got.NoCache)
		})
	}
}

func TestClipPassesEscapedPath(t *testing.T) {
	var got pipeline.Request
	h := &ClipAPIHandlersCollection{Processor: processorFunc(func(_ context.Context, in pipeline.Request) (pipeline.Result, error) {
		got = in
		return pipeline.Result{}, errors.NewNotFoundError("nothing here", nil)
	})}

	serve(t, h, httptest.NewRequest(http.MethodGet, "/thumbnail/start:50%25/dir%2Fclip.mp4", nil))
	require.Equal(t, "/thumbnail/start:50%25/dir%2Fclip.mp4", got.Path)
}

func TestClipDiagnosticResponse(t *testing.T) {
	h := &ClipAPIHandlersCollection{
		DiagnosticsEnabled: true,
		Processor: processorFunc(func(context.Context, pipeline.Request) (pipeline.Result, error) {
			return pipeline.Result{
				Fingerprint: "abc",
				Operation:   operation.Trim,
				Diagnostic: &pipeline.Diagnostic{
					Params:     "start:5,end:10",
					Operation:  operation.Trim,
					Command:    "ffmpeg -i x out.mp4",
					SourceFile: "clip.mp4",
					Hash:       "abc",
				},
			}, nil
		}),
	}

	rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/trim/start:5,end:10/clip.mp4?diagnostic=true", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "abc", body["hash"])
	require.Equal(t, "trim", body["operation"])
	require.Equal(t, "start:5,end:10", body["params"])
	require.Equal(t, "clip.mp4", body["source_file"])
	require.Equal(t, "ffmpeg -i x out.mp4", body["command"])
	for _, key := range []string{"parameters", "input_args", "output_args", "source_url"} {
		require.Contains(t, body, key)
	}
}

func TestClipErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{errors.NewBadRequestError("unknown parameter \"zzz\"", nil), http.StatusBadRequest, "bad request"},
		{errors.NewNotFoundError("favicon is not served", nil), http.StatusNotFound, "not found"},
		{errors.NewProbeFailureError("error probing", fmt.Errorf("404")), http.StatusBadGateway, "probe failure"},
		{errors.NewTranscodeError([]string{"-i", "x"}, "Invalid data", fmt.Errorf("exit status 1")), http.StatusInternalServerError, "transcode failure"},
		{errors.NewTimeoutError("transcode timed out", nil), http.StatusGatewayTimeout, "timeout"},
		{fmt.Errorf("something else"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			h := &ClipAPIHandlersCollection{Processor: processorFunc(func(context.Context, pipeline.Request) (pipeline.Result, error) {
				return pipeline.Result{}, tt.err
			})}

			rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/trim/start:1/clip.mp4", nil))
			require.Equal(t, tt.status, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.Empty(t, rr.Header().Get(QueryHashHeader))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestClipMissingArtifactFile(t *testing.T) {
	h := &ClipAPIHandlersCollection{Processor: processorFunc(func(context.Context, pipeline.Request) (pipeline.Result, error) {
		return pipeline.Result{Fingerprint: "abc", Artifact: &transcode.Artifact{Path: "/does/not/exist.mp4"}}, nil
	})}

	rr := serve(t, h, httptest.NewRequest(http.MethodGet, "/trim/start:1/clip.mp4", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestOk(t *testing.T) {
	router := httprouter.New()
	router.GET("/ok", (&ClipAPIHandlersCollection{}).Ok())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "OK", rr.Body.String())
}
