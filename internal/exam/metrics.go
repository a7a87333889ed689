package exam

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mymath",
		Name:      "exam_attempts_started_total",
		Help:      "Runs opened at position 1.",
	}, []string{"mode"})

	resultsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mymath",
		Name:      "exam_results_finalized_total",
		Help:      "Advances past the last position. Each repeated final advance counts again.",
	}, []string{"mode"})

	answersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mymath",
		Name:      "exam_answers_recorded_total",
		Help:      "Answers written. A resubmission that leaves an earlier answer in place is not counted.",
	}, []string{"mode", "correct"})

	finalScores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mymath",
		Name:      "exam_final_score",
		Help:      "Score of each finalized result.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"mode"})
)
