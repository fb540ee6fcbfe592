// Package metrics holds the prometheus collectors shared by the conversation
// engine. They are registered on the default registry and served by
// promhttp from the debug host.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Turns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raphael_turns_total",
			Help: "Conversational turns by outcome",
		},
		[]string{"outcome"},
	)

	Utterances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raphael_utterances_total",
			Help: "Captured utterances by provenance",
		},
		[]string{"provenance"},
	)

	PhaseChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raphael_phase_changes_total",
			Help: "Phase changes seen by the state observer",
		},
		[]string{"phase"},
	)

	AnalysisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raphael_analysis_latency_seconds",
			Help:    "Time spent waiting on the analysis call",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 5, 7.5},
		},
	)

	SpeechFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raphael_speech_failures_total",
			Help: "Synthesis attempts that ended in an error",
		},
	)
)
