package config

import (
	"flag"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

type Cli struct {
	HTTPAddress         string
	HTTPInternalAddress string
	PprofPort           int

	FFmpegPath      string
	FFprobePath     string
	DestinationPath string

	SourceURL       *url.URL
	S3Region        string
	SourcePreflight bool

	DedupStore        string
	DedupTTL          time.Duration
	DedupTimeout      time.Duration
	DedupShortCircuit bool

	ProbeTimeout       time.Duration
	TranscodeTimeout   time.Duration
	SourceFetchRetries int
	MaxInFlightJobs    int

	DiagnosticsEnabled bool
	CORSEnabled        bool
}

// UsePostgresDedupStore reports whether dedup records live in Postgres rather than in-process
func (cli *Cli) UsePostgresDedupStore() bool {
	return cli.DedupStore != "" && cli.DedupStore != DedupStoreMemory
}

func (cli *Cli) Validate() error {
	if cli.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg-path must be set")
	}
	if cli.DestinationPath == "" {
		return fmt.Errorf("destination-path must be set")
	}
	if cli.SourceURL == nil || cli.SourceURL.Scheme == "" {
		return fmt.Errorf("source-url must be an absolute URL")
	}
	switch cli.SourceURL.Scheme {
	case "http", "https":
	case "s3":
		if cli.SourceURL.Host == "" {
			return fmt.Errorf("source-url %q is missing a bucket name", cli.SourceURL)
		}
		if cli.S3Region == "" {
			return fmt.Errorf("s3-region must be set when source-url is an s3:// bucket")
		}
	default:
		return fmt.Errorf("unsupported source-url scheme %q", cli.SourceURL.Scheme)
	}
	if cli.SourceFetchRetries < 0 {
		return fmt.Errorf("source-fetch-retries must not be negative")
	}
	if cli.DedupTimeout < 0 {
		return fmt.Errorf("dedup-timeout must not be negative")
	}
	if cli.MaxInFlightJobs <= 0 {
		return fmt.Errorf("max-inflight-jobs must be positive")
	}
	return nil
}

type invertedBool struct {
	dest *bool
}

func (b invertedBool) String() string {
	if b.dest == nil {
		return "false"
	}
	return strconv.FormatBool(!*b.dest)
}

func (b invertedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.dest = !v
	return nil
}

func (b invertedBool) IsBoolFlag() bool { return true }

// handles -foo=false or -no-foo to disable a flag that defaults to true
func InvertedBoolFlag(fs *flag.FlagSet, dest *bool, name string, value bool, usage string) {
	fs.BoolVar(dest, name, value, usage)
	fs.Var(invertedBool{dest: dest}, fmt.Sprintf("no-%s", name), fmt.Sprintf("negates -%s", name))
}

// AddrFlag validates that the value is a host:port pair
func AddrFlag(fs *flag.FlagSet, dest *string, name, value, usage string) {
	*dest = value
	fs.Func(name, usage, func(s string) error {
		_, _, err := net.SplitHostPort(s)
		if err != nil {
			return err
		}
		*dest = s
		return nil
	})
}

func parseURL(s string, dest **url.URL) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if _, err = url.ParseQuery(u.RawQuery); err != nil {
		return err
	}
	*dest = u
	return nil
}

func URLVarFlag(fs *flag.FlagSet, dest **url.URL, name, value, usage string) {
	if err := parseURL(value, dest); err != nil {
		panic(err)
	}
	fs.Func(name, usage, func(s string) error {
		return parseURL(s, dest)
	})
}
