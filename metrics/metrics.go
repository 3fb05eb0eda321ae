package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ClientMetrics struct {
	RetryCount      *prometheus.GaugeVec
	FailureCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestCount    *prometheus.CounterVec
}

type ClipAPIMetrics struct {
	ClipRequestCount       *prometheus.CounterVec
	ClipRequestDurationSec *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	JobsInFlight           prometheus.Gauge

	DedupLookupCount    *prometheus.CounterVec
	DedupRecordFailures prometheus.Counter

	ProbeDurationSec     *prometheus.HistogramVec
	TranscodeDurationSec *prometheus.HistogramVec
	TranscodeRetryCount  prometheus.Counter

	SourcePreflightClient ClientMetrics
}

var durationBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

func NewMetrics() *ClipAPIMetrics {
	m := &ClipAPIMetrics{
		ClipRequestCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_requests_total",
			Help: "The total number of clip and thumbnail requests, by operation and response status",
		}, []string{"operation", "status"}),
		ClipRequestDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clip_request_duration_seconds",
			Help:    "Time taken to serve clip and thumbnail requests",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "A count of the http requests in flight",
		}),
		JobsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "transcode_jobs_in_flight",
			Help: "A count of the engine invocations currently running",
		}),

		DedupLookupCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dedup_lookups_total",
			Help: "Dedup store lookups broken up by result (hit, miss, error)",
		}, []string{"result"}),
		DedupRecordFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dedup_record_failures_total",
			Help: "The number of dedup records that could not be written",
		}),

		ProbeDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "probe_duration_seconds",
			Help:    "Time taken to probe a source file",
			Buckets: durationBuckets,
		}, []string{"success"}),
		TranscodeDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transcode_duration_seconds",
			Help:    "Time taken by the transcoding engine, by operation and success",
			Buckets: durationBuckets,
		}, []string{"operation", "success"}),
		TranscodeRetryCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcode_retries_total",
			Help: "The number of engine invocations retried after a source fetch failure",
		}),

		SourcePreflightClient: ClientMetrics{
			RetryCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "source_preflight_retry_count",
				Help: "The number of retries of a successful source preflight request",
			}, []string{"host"}),
			FailureCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "source_preflight_failure_count",
				Help: "The total number of failed source preflight requests",
			}, []string{"host", "status_code"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "source_preflight_request_duration",
				Help:    "Time taken to send source preflight requests",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"host"}),
			RequestCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "source_preflight_request_count",
				Help: "The total number of source preflight requests",
			}, []string{"host"}),
		},
	}

	return m
}

var Metrics = NewMetrics()
