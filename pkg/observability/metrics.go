package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jscr_parse_seconds",
		Help:    "Time spent lexing and parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jscr_execution_seconds",
		Help:    "Time spent evaluating a whole program.",
		Buckets: prometheus.DefBuckets,
	})

	StatementsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jscr_statements_evaluated_total",
		Help: "Total number of top-level statements evaluated.",
	})

	FunctionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jscr_function_calls_total",
		Help: "Total number of function calls, by callee kind.",
	}, []string{"kind"})

	RuntimeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jscr_runtime_errors_total",
		Help: "Total number of executions aborted by a runtime error.",
	})

	CancelledExecutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jscr_cancelled_executions_total",
		Help: "Total number of executions stopped by cancellation between statements.",
	})

	ModulesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jscr_modules_loaded_total",
		Help: "Total number of imported modules parsed and evaluated.",
	})
)
