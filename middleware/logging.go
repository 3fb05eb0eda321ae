package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/requests"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// LogRequest logs one line per request and turns handler panics into a 500
func LogRequest() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			start := time.Now()
			requestID := requests.GetRequestId(r)
			wrapped := wrapResponseWriter(w)

			defer func() {
				if err := recover(); err != nil {
					errors.WriteHTTPInternalServerError(wrapped, "Internal Server Error", nil)
					log.Log(requestID, "panic serving request", "err", err, "trace", string(debug.Stack()))
				}
				log.Log(requestID, "request served",
					"remote", r.RemoteAddr,
					"proto", r.Proto,
					"method", r.Method,
					"uri", log.RedactURL(r.URL.RequestURI()),
					"duration", time.Since(start),
					"status", wrapped.status,
				)
			}()

			next(wrapped, r, ps)
		}
	}
}
