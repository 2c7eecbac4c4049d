package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeProgress(t *testing.T) {
	tests := []struct {
		name    string
		status  ExecutionStatus
		current int
		total   int
		want    int
	}{
		{name: "zero of three", status: ExecutionStatusRunning, current: 0, total: 3, want: 0},
		{name: "one of three rounds to 33", status: ExecutionStatusRunning, current: 1, total: 3, want: 33},
		{name: "two of three rounds to 67", status: ExecutionStatusRunning, current: 2, total: 3, want: 67},
		{name: "one of seven rounds to 14", status: ExecutionStatusRunning, current: 1, total: 7, want: 14},
		{name: "half rounds up", status: ExecutionStatusRunning, current: 1, total: 2, want: 50},
		{name: "five of eight", status: ExecutionStatusRunning, current: 5, total: 8, want: 63},
		{name: "zero total not completed", status: ExecutionStatusRunning, current: 0, total: 0, want: 0},
		{name: "zero total completed", status: ExecutionStatusCompleted, current: 0, total: 0, want: 100},
		{name: "completed forced to 100", status: ExecutionStatusCompleted, current: 2, total: 3, want: 100},
		{name: "failed keeps partial progress", status: ExecutionStatusFailed, current: 1, total: 4, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Execution{Status: tt.status, CurrentTaskIndex: tt.current, TotalTasks: tt.total}
			e.RecomputeProgress()
			assert.Equal(t, tt.want, e.ProgressPercentage)
		})
	}
}

func TestExecutionStatusTerminal(t *testing.T) {
	assert.False(t, ExecutionStatusPending.Terminal())
	assert.False(t, ExecutionStatusRunning.Terminal())
	assert.True(t, ExecutionStatusCompleted.Terminal())
	assert.True(t, ExecutionStatusFailed.Terminal())
	assert.True(t, ExecutionStatusCancelled.Terminal())
}

func TestExecutionStatusValid(t *testing.T) {
	assert.True(t, ExecutionStatusRunning.Valid())
	assert.False(t, ExecutionStatus("bogus").Valid())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	started := time.Now()
	message := "boom"
	parent := "p1"
	e := &Execution{
		ID:           "e1",
		SubjectKind:  SubjectKindJob,
		ParentID:     &parent,
		Status:       ExecutionStatusFailed,
		StartedAt:    &started,
		ErrorMessage: &message,
	}

	snap := e.Snapshot()
	require.NotNil(t, snap)

	*snap.ErrorMessage = "changed"
	*snap.ParentID = "changed"
	*snap.StartedAt = started.Add(time.Hour)
	snap.Status = ExecutionStatusRunning

	assert.Equal(t, "boom", *e.ErrorMessage)
	assert.Equal(t, "p1", *e.ParentID)
	assert.Equal(t, started, *e.StartedAt)
	assert.Equal(t, ExecutionStatusFailed, e.Status)
}

func TestSnapshotNil(t *testing.T) {
	var e *Execution
	assert.Nil(t, e.Snapshot())
}
