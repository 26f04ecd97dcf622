package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AchievementsClassified counts achievements produced per type across
	// all pipeline runs.
	AchievementsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "achievements_classified_total",
		Help: "Achievements produced by the classifier, by type.",
	}, []string{"type"})

	// PipelineRuns counts classification pipeline executions by outcome.
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Classification pipeline runs, by status.",
	}, []string{"status"})

	// ContentGenerated counts generated content pieces by format.
	ContentGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_generated_total",
		Help: "Generated content pieces, by format.",
	}, []string{"format"})
)
