package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/livepeer/clip-api/config"
	"github.com/livepeer/clip-api/errors"
)

//go:generate mockgen -source=./dedup.go -destination=../mocks/cache/dedup.go

// Record is the persisted association fingerprint -> output location
type Record struct {
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the external key-value persistence for dedup records.
// Get reports absence with found=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (rec Record, found bool, err error)
	Put(ctx context.Context, key string, rec Record) error
}

// DedupCache looks up and records fingerprint -> output location mappings
type DedupCache struct {
	store   Store
	clock   config.TimestampGenerator
	timeout time.Duration
}

// NewDedupCache bounds every store call by timeout; 0 leaves calls bounded only by the caller's context
func NewDedupCache(store Store, timeout time.Duration) *DedupCache {
	return &DedupCache{store: store, clock: config.Clock, timeout: timeout}
}

// Lookup returns the recorded location for fingerprint. A miss is not an error;
// store failures and timeouts are returned as CacheUnavailable.
func (c *DedupCache) Lookup(ctx context.Context, fingerprint string) (string, bool, error) {
	var rec Record
	var found bool
	err := c.bounded(ctx, func(ctx context.Context) (err error) {
		rec, found, err = c.store.Get(ctx, fingerprint)
		return err
	})
	if err != nil {
		return "", false, errors.NewCacheUnavailableError("dedup lookup failed", err)
	}
	if !found {
		return "", false, nil
	}
	return rec.Location, true, nil
}

// Record stores location for fingerprint, stamped with the current time.
// Racing writers for the same fingerprint are last-writer-wins.
func (c *DedupCache) Record(ctx context.Context, fingerprint, location string) error {
	rec := Record{
		Location:  location,
		CreatedAt: time.Unix(c.clock.GetTimestampUTC(), 0).UTC(),
	}
	err := c.bounded(ctx, func(ctx context.Context) error {
		return c.store.Put(ctx, fingerprint, rec)
	})
	if err != nil {
		return errors.NewCacheUnavailableError("dedup record failed", err)
	}
	return nil
}

// bounded returns once f finishes or the deadline passes, whichever is first. A store that
// ignores its context keeps running in the background but no longer holds up the request.
func (c *DedupCache) bounded(ctx context.Context, f func(ctx context.Context) error) error {
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f(ctx)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("dedup store did not answer in time: %w", ctx.Err())
	}
}
