// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Package metrics exposes Prometheus instrumentation for the filtering
// engine: run throughput, per-item outcomes, and cache effectiveness.
// Hosts embedding the engine scrape these through their own /metrics
// endpoint; the engine itself serves nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Filtering run metrics.

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_runs_total",
			Help: "Total number of filtering runs",
		},
		[]string{"outcome"}, // "ok", "cancelled", "error"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartlists_run_duration_seconds",
			Help:    "Duration of filtering runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	ItemsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_items_evaluated_total",
			Help: "Total number of candidate items evaluated",
		},
	)

	ItemsMatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_items_matched_total",
			Help: "Total number of items retained by rule evaluation",
		},
	)

	ItemsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_items_failed_total",
			Help: "Total number of items excluded due to per-item evaluation failures",
		},
	)

	TypePrefilterDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_type_prefilter_dropped_total",
			Help: "Total number of items dropped by the media-type pre-filter",
		},
	)

	ExtractionWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_extraction_warnings_total",
			Help: "Total number of field extractions that fell back to a neutral default",
		},
	)

	// Rule compilation metrics.

	RuleCompilations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_rule_compilations_total",
			Help: "Total number of rule compilations",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	// Cache metrics.

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "refresh", "predicate"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)
)
