package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/livepeer/clip-api/cache"
	"github.com/livepeer/clip-api/clients"
	"github.com/livepeer/clip-api/config"
	"github.com/livepeer/clip-api/pipeline"
	"github.com/livepeer/clip-api/transcode"
	"github.com/livepeer/clip-api/video"
	"github.com/peterbourgon/ff/v3"
)

// Runs a single clip path through the pipeline without starting a server, e.g.
//
//	clip -source-url https://storage.example.com/videos /trim/start:5,end:10/clip.mp4
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		glog.Errorf("clip failed: %s", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("clip", flag.ContinueOnError)
	cli := config.Cli{}

	fs.StringVar(&cli.FFmpegPath, "ffmpeg-path", config.DefaultFFmpegPath, "Path to the ffmpeg binary")
	fs.StringVar(&cli.FFprobePath, "ffprobe-path", config.DefaultFFprobePath, "Path to the ffprobe binary")
	fs.StringVar(&cli.DestinationPath, "destination-path", config.DefaultDestinationPath, "Local directory that the artifact is written to")
	config.URLVarFlag(fs, &cli.SourceURL, "source-url", config.DefaultSourceURL, "Where source files live. Either an http(s) base URL or s3://[key:secret@]bucket/prefix")
	fs.StringVar(&cli.S3Region, "s3-region", "", "AWS region of the source bucket, required for s3:// source URLs")
	fs.DurationVar(&cli.ProbeTimeout, "probe-timeout", config.DefaultProbeTimeout, "Upper bound on probing a source to resolve a percentage start")
	fs.DurationVar(&cli.TranscodeTimeout, "transcode-timeout", config.DefaultTranscodeTimeout, "Upper bound on the ffmpeg invocation")
	fs.IntVar(&cli.SourceFetchRetries, "source-fetch-retries", 0, "Extra ffmpeg attempts when it fails to fetch the source")
	diagnostic := fs.Bool("diagnostic", false, "Print the ffmpeg command that would run instead of running it")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("CLIP_API"))
	if err != nil {
		return fmt.Errorf("error parsing cli: %w", err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one clip path, e.g. /trim/start:5,end:10/clip.mp4, got %d arguments", fs.NArg())
	}

	// Validate also checks server settings that a one-shot run never uses
	cli.MaxInFlightJobs = 1
	if err := cli.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	resolver, err := clients.NewSourceResolver(cli.SourceURL, cli.S3Region)
	if err != nil {
		return err
	}
	coordinator := pipeline.NewCoordinator(
		pipeline.Options{FFmpegPath: cli.FFmpegPath, DestinationPath: cli.DestinationPath},
		resolver,
		nil,
		cache.NewDedupCache(cache.NewMemoryStore(time.Hour), config.DefaultDedupTimeout),
		transcode.NewArgBuilder(video.NewProbe(cli.FFprobePath, cli.ProbeTimeout)),
		transcode.NewFFmpegRunner(cli.FFmpegPath, cli.DestinationPath, cli.TranscodeTimeout, cli.SourceFetchRetries),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := coordinator.Process(ctx, pipeline.Request{
		RequestID:  "clip-cli",
		Path:       fs.Arg(0),
		Diagnostic: *diagnostic,
	})
	if err != nil {
		return err
	}

	if res.Diagnostic != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Diagnostic)
	}
	_, err = fmt.Fprintln(stdout, res.Artifact.Path)
	return err
}
