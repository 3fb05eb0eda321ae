package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/livepeer/clip-api/cache"
	"github.com/livepeer/clip-api/clients"
	"github.com/livepeer/clip-api/config"
	"github.com/livepeer/clip-api/errors"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/metrics"
	"github.com/livepeer/clip-api/operation"
	"github.com/livepeer/clip-api/transcode"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// SourceChecker confirms a resolved source is reachable before the engine starts
type SourceChecker interface {
	Check(ctx context.Context, requestID, sourceURL string) error
}

type Options struct {
	// Serve the recorded artifact on a dedup hit instead of transcoding again
	ShortCircuit bool
	// Only used to render the equivalent command line in diagnostics
	FFmpegPath      string
	DestinationPath string
}

// Request is one inbound clip request as seen by the pipeline
type Request struct {
	RequestID  string
	Path       string
	Diagnostic bool
	// Client asked us to ignore previously produced artifacts
	NoCache bool
}

// Result is what the response assembler needs. Exactly one of Artifact, RedirectURL and
// Diagnostic is set.
type Result struct {
	Fingerprint string
	Operation   operation.Kind
	CacheHit    bool
	Artifact    *transcode.Artifact
	RedirectURL string
	Diagnostic  *Diagnostic
}

// Diagnostic describes everything that would have been run, without running it
type Diagnostic struct {
	Params     string             `json:"params"`
	Parameters map[string]*string `json:"parameters"`
	Operation  operation.Kind     `json:"operation"`
	InputArgs  ffmpeg.KwArgs      `json:"input_args"`
	OutputArgs ffmpeg.KwArgs      `json:"output_args"`
	Command    string             `json:"command"`
	SourceFile string             `json:"source_file"`
	SourceURL  string             `json:"source_url"`
	Hash       string             `json:"hash"`
}

// Coordinator runs one request through parse, fingerprint, dedup lookup, argument building,
// the engine and dedup record. It holds no per-request state and is safe for concurrent use.
type Coordinator struct {
	opts     Options
	resolver clients.SourceResolver
	checker  SourceChecker
	dedup    *cache.DedupCache
	builder  transcode.ArgBuilder
	engine   transcode.Engine
}

// NewCoordinator wires the pipeline. checker may be nil to skip the source preflight.
func NewCoordinator(opts Options, resolver clients.SourceResolver, checker SourceChecker, dedup *cache.DedupCache, builder transcode.ArgBuilder, engine transcode.Engine) *Coordinator {
	return &Coordinator{
		opts:     opts,
		resolver: resolver,
		checker:  checker,
		dedup:    dedup,
		builder:  builder,
		engine:   engine,
	}
}

func (c *Coordinator) Process(ctx context.Context, in Request) (Result, error) {
	ctx = log.WithLogValues(ctx, "request_id", in.RequestID)
	req, err := operation.Parse(in.Path)
	if err != nil {
		return Result{}, err
	}
	if err := transcode.Validate(req); err != nil {
		return Result{}, err
	}
	fingerprint, err := operation.Fingerprint(req)
	if err != nil {
		return Result{}, fmt.Errorf("error fingerprinting request: %w", err)
	}
	log.AddContext(in.RequestID, "fingerprint", fingerprint, "operation", req.Operation, "source_file", req.SourceFile)

	result := Result{Fingerprint: fingerprint, Operation: req.Operation}

	if !in.Diagnostic {
		if hit, ok := c.lookup(ctx, in, fingerprint); ok {
			hit.Operation = req.Operation
			if hit.Artifact != nil {
				hit.Artifact.ContentType = req.Operation.ContentType()
			}
			return hit, nil
		}
	}

	sourceURL, err := c.resolver.ResolveSourceURL(ctx, req.SourceFile)
	if err != nil {
		if _, classified := errors.KindOf(err); classified {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("error resolving source file: %w", err)
	}

	job, err := c.builder.Build(ctx, in.RequestID, req, fingerprint, sourceURL)
	if err != nil {
		return Result{}, err
	}

	if in.Diagnostic {
		outputPath := transcode.OutputPath(c.opts.DestinationPath, config.Clock.GetTimestampUTC(), job)
		// never hand out a presigned source URL
		shown := job
		shown.SourceURL = log.RedactURL(job.SourceURL)
		result.Diagnostic = &Diagnostic{
			Params:     req.RawParams,
			Parameters: req.Parameters,
			Operation:  req.Operation,
			InputArgs:  job.Input.KwArgs(),
			OutputArgs: job.Output.KwArgs(),
			Command:    shown.CommandLine(c.opts.FFmpegPath, outputPath),
			SourceFile: req.SourceFile,
			SourceURL:  shown.SourceURL,
			Hash:       fingerprint,
		}
		return result, nil
	}

	if c.checker != nil {
		if err := c.checker.Check(ctx, in.RequestID, sourceURL); err != nil {
			return Result{}, err
		}
	}

	artifact, err := recovered(ctx, func() (transcode.Artifact, error) {
		return c.engine.Run(ctx, in.RequestID, job)
	})
	if err != nil {
		return Result{}, err
	}

	// the artifact is already good, a failed record only costs a future transcode
	if err := c.dedup.Record(ctx, fingerprint, artifact.Path); err != nil {
		metrics.Metrics.DedupRecordFailures.Inc()
		log.LogCtxError(ctx, "failed to record dedup entry", err)
	}

	result.Artifact = &artifact
	return result, nil
}

// lookup returns a complete Result when a previous artifact can be served for fingerprint.
// Store failures are logged and treated as a miss.
func (c *Coordinator) lookup(ctx context.Context, in Request, fingerprint string) (Result, bool) {
	location, found, err := c.dedup.Lookup(ctx, fingerprint)
	if err != nil {
		metrics.Metrics.DedupLookupCount.WithLabelValues("error").Inc()
		log.LogCtxError(ctx, "dedup lookup failed, transcoding anyway", err)
		return Result{}, false
	}
	if !found {
		metrics.Metrics.DedupLookupCount.WithLabelValues("miss").Inc()
		return Result{}, false
	}
	metrics.Metrics.DedupLookupCount.WithLabelValues("hit").Inc()

	if !c.opts.ShortCircuit || in.NoCache {
		log.Log(in.RequestID, "dedup hit, transcoding anyway", "location", location, "no_cache", in.NoCache)
		return Result{}, false
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		log.Log(in.RequestID, "dedup hit, redirecting", "location", log.RedactURL(location))
		return Result{Fingerprint: fingerprint, CacheHit: true, RedirectURL: location}, true
	}
	info, err := os.Stat(location)
	if err != nil || info.IsDir() {
		log.Log(in.RequestID, "dedup hit but artifact is gone, transcoding", "location", location)
		return Result{}, false
	}
	log.Log(in.RequestID, "dedup hit, serving previous artifact", "location", location)
	return Result{
		Fingerprint: fingerprint,
		CacheHit:    true,
		Artifact:    &transcode.Artifact{Path: location},
	}, true
}

func recovered[T any](ctx context.Context, f func() (T, error)) (t T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.LogCtx(ctx, "panic in pipeline, recovering", "err", rec)
			err = fmt.Errorf("panic in pipeline: %v", rec)
		}
	}()
	return f()
}
