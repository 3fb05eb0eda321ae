package config

import "time"

var Version string

const (
	DefaultFFmpegPath      = "ffmpeg"
	DefaultFFprobePath     = "ffprobe"
	DefaultDestinationPath = "./outputs"
	DefaultSourceURL       = "http://storage.googleapis.com/test_videos_japan"

	DefaultProbeTimeout     = 60 * time.Second
	DefaultTranscodeTimeout = 10 * time.Minute
	DefaultMaxInFlightJobs  = 8
	DefaultDedupTimeout     = 2 * time.Second

	// DedupStoreMemory selects the in-process dedup store; any other value is a Postgres connection string
	DedupStoreMemory = "memory"
)
