package mokeypatching

import (
	"sync"
	"testing"

	"github.com/livepeer/clip-api/config"
)

// This should be global and unique mutex for all tests to use for all vars they need to configure on test start
// If we used multiple mutexes then deadlock is possible, with single mutex test run in sequence
var MonkeypatchingMutex sync.Mutex

// FixClock pins config.Clock to timestamp until the test finishes
func FixClock(t *testing.T, timestamp int64) {
	MonkeypatchingMutex.Lock()
	original := config.Clock
	config.Clock = config.FixedTimestampGenerator{Timestamp: timestamp}
	t.Cleanup(func() {
		config.Clock = original
		MonkeypatchingMutex.Unlock()
	})
}
