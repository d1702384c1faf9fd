package exec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// These mirror the teacher's sql.MemoryManager-style budget instrumentation,
// surfaced through Prometheus instead of an internal counter: execution
// duration and result size are the two numbers an operator needs to size
// the row cap and diagnose slow flows.
var (
	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "semaflow",
		Subsystem: "exec",
		Name:      "execution_duration_seconds",
		Help:      "Time spent running a rendered query against a backend and streaming its rows.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"flow", "dialect"})

	rowsReturned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "semaflow",
		Subsystem: "exec",
		Name:      "rows_returned",
		Help:      "Number of rows returned by a successful execution.",
		Buckets:   []float64{0, 1, 10, 100, 1000, 10000},
	}, []string{"flow", "dialect"})
)
