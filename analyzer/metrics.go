package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semlix_files_parsed_total",
		Help: "Source files parsed successfully.",
	})

	parseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semlix_parse_failures_total",
		Help: "Source files that failed to parse.",
	})

	modulesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semlix_modules_extracted_total",
		Help: "Module definitions decoded into fact records.",
	})

	triplesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semlix_triples_emitted_total",
		Help: "Triples produced by the builders, after dedup.",
	})

	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "semlix_analyze_duration_seconds",
		Help:    "Per-file pipeline latency.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)
