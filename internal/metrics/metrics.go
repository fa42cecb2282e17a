package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission triggers.
const (
	TriggerManual  = "manual"
	TriggerTimeout = "timeout"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interview",
		Name:      "sessions_started_total",
		Help:      "Interview sessions started",
	})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interview",
		Name:      "sessions_completed_total",
		Help:      "Interview sessions completed",
	})

	answersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interview",
		Name:      "answers_submitted_total",
		Help:      "Answers recorded, by trigger",
	}, []string{"trigger"})

	scoringFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interview",
		Name:      "scoring_failures_total",
		Help:      "Scorer calls that failed or returned an out-of-range score",
	})

	finalScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "interview",
		Name:      "final_score",
		Help:      "Final interview scores",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})

	snapshotSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interview",
		Name:      "snapshot_save_failures_total",
		Help:      "Failed attempts to persist the interview state",
	})
)

func SessionStarted() { sessionsStarted.Inc() }

func SessionCompleted(finalScore int) {
	sessionsCompleted.Inc()
	finalScores.Observe(float64(finalScore))
}

func AnswerSubmitted(trigger string) { answersSubmitted.WithLabelValues(trigger).Inc() }

func ScoringFailed() { scoringFailures.Inc() }

func SnapshotSaveFailed() { snapshotSaveFailures.Inc() }
