package pprof

import (
	"fmt"
	"net/http"
	"net/http/pprof"
)

// NewHandler serves the runtime profiles on an explicit mux so nothing is exposed on the
// default mux by import side effect
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// ListenAndServe blocks serving profiles on localhost:port. A port of 0 disables the listener.
func ListenAndServe(port int) error {
	if port == 0 {
		return nil
	}
	return fmt.Errorf("pprof listener stopped: %w", http.ListenAndServe(fmt.Sprintf("127.0.0.1:%d", port), NewHandler()))
}
