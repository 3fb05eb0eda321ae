package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/metrics"
	"github.com/livepeer/clip-api/operation"
	"github.com/livepeer/clip-api/pipeline"
	"github.com/livepeer/clip-api/requests"
	"github.com/pquerna/cachecontrol/cacheobject"
)

const (
	QueryHashHeader = "X-Query-Hash"
	CacheHeader     = "X-Cache"
)

func (d *ClipAPIHandlersCollection) Clip() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		start := time.Now()
		requestID := requests.GetRequestId(req)
		w.Header().Set("X-Request-Id", requestID)

		in := pipeline.Request{
			RequestID:  requestID,
			Path:       req.URL.EscapedPath(),
			Diagnostic: d.DiagnosticsEnabled && isDiagnostic(req),
			NoCache:    hasNoCache(req),
		}
		log.AddContext(requestID, "path", in.Path)

		res, err := d.Processor.Process(req.Context(), in)

		status := http.StatusOK
		if err != nil {
			status = errors.HTTPStatus(err)
			log.LogError(requestID, "clip request failed", err, "status", status)
			errors.WriteHTTPError(w, err)
		} else {
			status = writeResult(w, req, requestID, res)
		}

		op := operationLabel(in.Path, res)
		metrics.Metrics.ClipRequestCount.WithLabelValues(op, strconv.Itoa(status)).Inc()
		metrics.Metrics.ClipRequestDurationSec.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// writeResult assembles the response for a successful pipeline run and returns the status written
func writeResult(w http.ResponseWriter, req *http.Request, requestID string, res pipeline.Result) int {
	w.Header().Set(QueryHashHeader, res.Fingerprint)
	if res.CacheHit {
		w.Header().Set(CacheHeader, "HIT")
	} else {
		w.Header().Set(CacheHeader, "MISS")
	}

	switch {
	case res.Diagnostic != nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(res.Diagnostic); err != nil {
			log.LogError(requestID, "failed to write diagnostic response", err)
		}
		return http.StatusOK
	case res.RedirectURL != "":
		http.Redirect(w, req, res.RedirectURL, http.StatusTemporaryRedirect)
		return http.StatusTemporaryRedirect
	case res.Artifact != nil:
		return serveArtifact(w, req, requestID, res)
	}
	errors.WriteHTTPInternalServerError(w, "pipeline produced no result", nil)
	return http.StatusInternalServerError
}

func serveArtifact(w http.ResponseWriter, req *http.Request, requestID string, res pipeline.Result) int {
	f, err := os.Open(res.Artifact.Path)
	if err != nil {
		log.LogError(requestID, "failed to open artifact", err, "path", res.Artifact.Path)
		errors.WriteHTTPInternalServerError(w, "artifact unavailable", nil)
		return http.StatusInternalServerError
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.LogError(requestID, "failed to stat artifact", err, "path", res.Artifact.Path)
		errors.WriteHTTPInternalServerError(w, "artifact unavailable", nil)
		return http.StatusInternalServerError
	}

	contentType := res.Artifact.ContentType
	if contentType == "" {
		contentType = res.Operation.ContentType()
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, req, filepath.Base(res.Artifact.Path), info.ModTime(), f)
	return http.StatusOK
}

func isDiagnostic(req *http.Request) bool {
	v, err := strconv.ParseBool(req.URL.Query().Get("diagnostic"))
	return err == nil && v
}

func hasNoCache(req *http.Request) bool {
	cc := req.Header.Get("Cache-Control")
	if cc == "" {
		return false
	}
	directives, err := cacheobject.ParseRequestCacheControl(cc)
	if err != nil {
		return false
	}
	return directives.NoCache
}

func operationLabel(path string, res pipeline.Result) string {
	if res.Operation != "" {
		return string(res.Operation)
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if kind, ok := operation.ParseKind(first); ok {
		return string(kind)
	}
	return "unknown"
}
