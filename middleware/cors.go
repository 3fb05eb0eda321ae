package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	h.Set("Access-Control-Expose-Headers", "X-Query-Hash, X-Cache, X-Request-Id")
}

func AllowCORS() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			setCORSHeaders(w.Header())
			next(w, r, ps)
		}
	}
}

// PreflightHandler answers CORS preflight requests, for use as httprouter's GlobalOPTIONS
func PreflightHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
	})
}
