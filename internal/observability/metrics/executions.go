// Package metrics provides helpers for emitting standardised execution
// lifecycle metrics.
package metrics

import (
	"time"

	"github.com/conveyorhq/conveyor/internal/observability/statsd"
)

// ExecutionMetric captures details about one execution reaching a terminal
// state.
type ExecutionMetric struct {
	SubjectKind string
	Status      string
	Duration    time.Duration
}

// EmitExecutionLifecycle emits a transition counter and, when available, a
// duration timing for one finished execution.
func EmitExecutionLifecycle(sink statsd.Sink, in ExecutionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"subject_kind": in.SubjectKind,
		"status":       in.Status,
	}

	sink.Count("execution.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("execution.duration", in.Duration, map[string]string{
			"subject_kind": in.SubjectKind,
			"status":       in.Status,
		})
	}
}
