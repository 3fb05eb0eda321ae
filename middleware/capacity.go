package middleware

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/metrics"
)

// CapacityMiddleware rejects requests once MaxInFlight are already being served, so a burst
// cannot start more engine processes than the host can run
type CapacityMiddleware struct {
	MaxInFlight int64
	inFlight    atomic.Int64
}

func NewCapacityMiddleware(maxInFlight int) *CapacityMiddleware {
	return &CapacityMiddleware{MaxInFlight: int64(maxInFlight)}
}

func (c *CapacityMiddleware) HasCapacity(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Keep a gauge of HTTP requests in flight
		metrics.Metrics.HTTPRequestsInFlight.Inc()
		defer metrics.Metrics.HTTPRequestsInFlight.Dec()

		inFlight := c.inFlight.Add(1)
		defer c.inFlight.Add(-1)

		if inFlight > c.MaxInFlight {
			errors.WriteHTTPTooManyRequests(w, "too many clip requests in progress", fmt.Errorf("%d requests already in flight", c.MaxInFlight))
			return
		}

		next(w, r, ps)
	}
}

func (c *CapacityMiddleware) InFlight() int64 {
	return c.inFlight.Load()
}
