package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/handlers"
	"github.com/livepeer/clip-api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func ListenAndServeInternal(ctx context.Context, addr string) error {
	return serve(ctx, "Starting Clip API internal listener", addr, NewClipAPIRouterInternal())
}

func NewClipAPIRouterInternal() *httprouter.Router {
	router := httprouter.New()
	withLogging := middleware.LogRequest()
	clipAPIHandlers := &handlers.ClipAPIHandlersCollection{}

	// Simple endpoint for healthchecks
	router.GET("/ok", withLogging(clipAPIHandlers.Ok()))

	// Prometheus scrape endpoint
	router.Handler("GET", "/metrics", promhttp.Handler())

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteHTTPNotFound(w, "not found", nil)
	})

	return router
}
