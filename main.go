package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/livepeer/clip-api/api"
	"github.com/livepeer/clip-api/cache"
	"github.com/livepeer/clip-api/clients"
	"github.com/livepeer/clip-api/config"
	"github.com/livepeer/clip-api/pipeline"
	"github.com/livepeer/clip-api/pprof"
	"github.com/livepeer/clip-api/transcode"
	"github.com/livepeer/clip-api/video"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	err := flag.Set("logtostderr", "true")
	if err != nil {
		glog.Fatal(err)
	}
	vFlag := flag.Lookup("v")
	fs := flag.NewFlagSet("clip-api", flag.ExitOnError)
	cli := config.Cli{}

	version := fs.Bool("version", false, "print application version")

	// listen addresses
	config.AddrFlag(fs, &cli.HTTPAddress, "http-addr", "0.0.0.0:8989", "Address to bind for external-facing clip requests")
	config.AddrFlag(fs, &cli.HTTPInternalAddress, "http-internal-addr", "127.0.0.1:7979", "Address to bind for healthchecks and metrics")
	fs.IntVar(&cli.PprofPort, "pprof-port", 6061, "Pprof listen port, 0 to disable")

	// engine
	fs.StringVar(&cli.FFmpegPath, "ffmpeg-path", config.DefaultFFmpegPath, "Path to the ffmpeg binary")
	fs.StringVar(&cli.FFprobePath, "ffprobe-path", config.DefaultFFprobePath, "Path to the ffprobe binary")
	fs.StringVar(&cli.DestinationPath, "destination-path", config.DefaultDestinationPath, "Local directory that produced clips and thumbnails are written to")
	fs.DurationVar(&cli.ProbeTimeout, "probe-timeout", config.DefaultProbeTimeout, "Upper bound on probing a source to resolve a percentage start")
	fs.DurationVar(&cli.TranscodeTimeout, "transcode-timeout", config.DefaultTranscodeTimeout, "Upper bound on a single ffmpeg invocation")
	fs.IntVar(&cli.SourceFetchRetries, "source-fetch-retries", 0, "Extra ffmpeg attempts when it fails to fetch the source")
	fs.IntVar(&cli.MaxInFlightJobs, "max-inflight-jobs", config.DefaultMaxInFlightJobs, "Maximum number of concurrent clip requests before answering 429")

	// sources
	config.URLVarFlag(fs, &cli.SourceURL, "source-url", config.DefaultSourceURL, "Where source files live. Either an http(s) base URL or s3://[key:secret@]bucket/prefix")
	fs.StringVar(&cli.S3Region, "s3-region", "", "AWS region of the source bucket, required for s3:// source URLs")
	fs.BoolVar(&cli.SourcePreflight, "source-preflight", false, "Check the source exists with a HEAD request before starting ffmpeg")

	// dedup
	fs.StringVar(&cli.DedupStore, "dedup-store", config.DedupStoreMemory, "Dedup record store: 'memory' or a Postgres connection string (host=X port=X user=X password=X dbname=X)")
	fs.DurationVar(&cli.DedupTTL, "dedup-ttl", 0, "Expiry of in-memory dedup records, 0 to keep them forever")
	fs.DurationVar(&cli.DedupTimeout, "dedup-timeout", config.DefaultDedupTimeout, "Upper bound on each dedup store call; a slow store is treated as unavailable")
	fs.BoolVar(&cli.DedupShortCircuit, "dedup-short-circuit", false, "Serve a previously produced artifact on a dedup hit instead of transcoding again")

	// surface
	config.InvertedBoolFlag(fs, &cli.DiagnosticsEnabled, "diagnostics", true, "Allow ?diagnostic=true to return the built ffmpeg arguments instead of running them")
	fs.BoolVar(&cli.CORSEnabled, "cors", false, "Add permissive CORS headers to responses")

	// special parameters
	verbosity := fs.String("v", "", "Log verbosity.  {4|5|6}")
	_ = fs.String("config", "", "config file (optional)")

	err = ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("CLIP_API"),
	)
	if err != nil {
		glog.Fatalf("error parsing cli: %s", err)
	}
	if len(fs.Args()) > 0 {
		glog.Fatalf("unexpected extra arguments on command line: %v", fs.Args())
	}
	err = flag.CommandLine.Parse(nil)
	if err != nil {
		glog.Fatal(err)
	}

	if *version {
		fmt.Printf("clip-api version: %s", config.Version)
		return
	}

	if *verbosity != "" {
		err = vFlag.Value.Set(*verbosity)
		if err != nil {
			glog.Fatal(err)
		}
	}

	if err := cli.Validate(); err != nil {
		glog.Fatalf("invalid configuration: %s", err)
	}

	go func() {
		glog.Info(pprof.ListenAndServe(cli.PprofPort))
	}()

	// Initialize root context; cancelling this prompts all components to shut down cleanly
	group, ctx := errgroup.WithContext(context.Background())

	dedupStore, closeStore, err := newDedupStore(ctx, cli)
	if err != nil {
		glog.Fatalf("error creating dedup store: %s", err)
	}
	defer closeStore()

	resolver, err := clients.NewSourceResolver(cli.SourceURL, cli.S3Region)
	if err != nil {
		glog.Fatalf("error creating source resolver: %s", err)
	}
	var checker pipeline.SourceChecker
	if cli.SourcePreflight {
		checker = clients.NewSourceChecker()
	}

	coordinator := pipeline.NewCoordinator(
		pipeline.Options{
			ShortCircuit:    cli.DedupShortCircuit,
			FFmpegPath:      cli.FFmpegPath,
			DestinationPath: cli.DestinationPath,
		},
		resolver,
		checker,
		cache.NewDedupCache(dedupStore, cli.DedupTimeout),
		transcode.NewArgBuilder(video.NewProbe(cli.FFprobePath, cli.ProbeTimeout)),
		transcode.NewFFmpegRunner(cli.FFmpegPath, cli.DestinationPath, cli.TranscodeTimeout, cli.SourceFetchRetries),
	)

	group.Go(func() error {
		return handleSignals(ctx)
	})

	group.Go(func() error {
		return api.ListenAndServe(ctx, cli, coordinator)
	})

	group.Go(func() error {
		return api.ListenAndServeInternal(ctx, cli.HTTPInternalAddress)
	})

	err = group.Wait()
	glog.Infof("Shutdown complete. Reason for shutdown: %s", err)
}

func newDedupStore(ctx context.Context, cli config.Cli) (cache.Store, func(), error) {
	if !cli.UsePostgresDedupStore() {
		glog.Infof("Using in-memory dedup store, ttl=%s", cli.DedupTTL)
		return cache.NewMemoryStore(cli.DedupTTL), func() {}, nil
	}

	db, err := cache.OpenPostgres(cli.DedupStore)
	if err != nil {
		return nil, nil, err
	}
	store := cache.NewPostgresStore(db)

	// an unreachable database only costs us dedup, so keep starting up
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := store.EnsureSchema(connectCtx); err != nil {
		glog.Errorf("Postgres dedup store unavailable, will retry on first use: %s", err)
	}
	glog.Info("Using Postgres dedup store")
	return store, func() { db.Close() }, nil
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	for {
		select {
		case s := <-c:
			glog.Errorf("caught signal=%v, attempting clean shutdown", s)
			return fmt.Errorf("caught signal=%v", s)
		case <-ctx.Done():
			return nil
		}
	}
}
