package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/config"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/handlers"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/middleware"
)

func ListenAndServe(ctx context.Context, cli config.Cli, processor handlers.ClipProcessor) error {
	router := NewClipAPIRouter(cli, processor)
	return serve(ctx, "Starting Clip API!", cli.HTTPAddress, router)
}

// serve runs a server on addr until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, msg, addr string, handler http.Handler) error {
	server := http.Server{Addr: addr, Handler: handler}

	log.LogNoRequestID(
		msg,
		"version", config.Version,
		"host", addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewClipAPIRouter routes every GET/HEAD path to the clip handler: the path itself is the request
func NewClipAPIRouter(cli config.Cli, processor handlers.ClipProcessor) *httprouter.Router {
	router := httprouter.New()
	withLogging := middleware.LogRequest()
	capacity := middleware.NewCapacityMiddleware(cli.MaxInFlightJobs)
	withCORS := func(h httprouter.Handle) httprouter.Handle { return h }
	if cli.CORSEnabled {
		withCORS = middleware.AllowCORS()
		router.GlobalOPTIONS = middleware.PreflightHandler()
	}

	clipAPIHandlers := &handlers.ClipAPIHandlersCollection{
		Processor:          processor,
		DiagnosticsEnabled: cli.DiagnosticsEnabled,
	}

	clip := withLogging(withCORS(capacity.HasCapacity(clipAPIHandlers.Clip())))
	router.GET("/*path", clip)
	router.HEAD("/*path", clip)
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteHTTPMethodNotAllowed(w, "only GET and HEAD are supported", nil)
	})

	return router
}
