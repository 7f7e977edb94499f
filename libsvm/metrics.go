package libsvm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Solver and cache instrumentation, recorded once per solve
var (
	SolverIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libsvm_solver_iterations_total",
			Help: "Total number of SMO iterations",
		},
		[]string{"svm_type"},
	)

	SolverUnconverged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libsvm_solver_unconverged_total",
			Help: "Number of solves that reached the iteration cap",
		},
		[]string{"svm_type"},
	)

	TrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "libsvm_train_duration_seconds",
			Help:    "Duration of Train calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"svm_type"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libsvm_cache_requests_total",
			Help: "Kernel column requests served by the cache",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "libsvm_cache_evictions_total",
			Help: "Kernel columns evicted from the cache",
		},
	)
)

func recordSolve(svmType *SvmType, si *SolutionInfo, stats cacheStats) {
	SolverIterations.WithLabelValues(svmType.name).Add(float64(si.Iterations))
	if !si.Converged {
		SolverUnconverged.WithLabelValues(svmType.name).Inc()
	}
	CacheRequests.WithLabelValues("hit").Add(float64(stats.hits))
	CacheRequests.WithLabelValues("miss").Add(float64(stats.misses))
	CacheEvictions.Add(float64(stats.evictions))
}

func recordTrain(svmType *SvmType, start time.Time) {
	TrainDuration.WithLabelValues(svmType.name).Observe(time.Since(start).Seconds())
}
