package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/metrics"
)

// SourceChecker confirms a resolved source exists before the engine is started, so a missing
// file is reported as not found rather than as an engine failure
type SourceChecker struct {
	client *http.Client
}

func NewSourceChecker() *SourceChecker {
	client := retryablehttp.NewClient()
	client.RetryMax = 2                          // Retry a maximum of this+1 times
	client.RetryWaitMin = 200 * time.Millisecond // Wait at least this long between retries
	client.RetryWaitMax = 1 * time.Second        // Wait at most this long between retries (exponential backoff)
	client.CheckRetry = metrics.HttpRetryHook
	client.Logger = log.NewRetryableHTTPLogger()
	client.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}
	return &SourceChecker{client: client.StandardClient()}
}

func (c *SourceChecker) Check(ctx context.Context, requestID, sourceURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, sourceURL, nil)
	if err != nil {
		return errors.NewBadRequestError("invalid source URL", err)
	}
	res, err := metrics.MonitorRequest(metrics.Metrics.SourcePreflightClient, c.client, req)
	if err != nil {
		log.LogError(requestID, "source preflight failed", err, "source_url", log.RedactURL(sourceURL))
		return errors.NewTranscodeError(nil, "", fmt.Errorf("error fetching source: %w", err))
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusForbidden:
		return errors.NewNotFoundError("source file not found", fmt.Errorf("source returned %s", res.Status))
	case res.StatusCode >= 300:
		return errors.NewTranscodeError(nil, "", fmt.Errorf("bad status code from source: %s", res.Status))
	}
	return nil
}
