package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

func newJob(id string, order int) *Job {
	return &Job{ID: id, Name: "job " + id, ExecutionOrder: order, Active: true}
}

func TestGroupAddJob(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}

	require.NoError(t, group.AddJob(newJob("j1", 1)))
	require.NoError(t, group.AddJob(newJob("j2", 2)))
	assert.Len(t, group.Jobs(), 2)

	err := group.AddJob(newJob("j1", 3))
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateID(err))
}

func TestGroupAddJobSetsParentReference(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}
	job := newJob("j1", 1)
	require.NoError(t, group.AddJob(job))
	assert.Equal(t, "g1", job.GroupID)
}

func TestGroupRemoveJob(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}
	require.NoError(t, group.AddJob(newJob("j1", 1)))

	assert.True(t, group.RemoveJob("j1"))
	assert.False(t, group.RemoveJob("j1"))
	assert.Empty(t, group.Jobs())
}

func TestGroupActiveJobsOrdering(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}
	inactive := newJob("skip", 1)
	inactive.Active = false
	require.NoError(t, group.AddJob(newJob("b", 2)))
	require.NoError(t, group.AddJob(inactive))
	require.NoError(t, group.AddJob(newJob("a", 1)))

	got := group.ActiveJobs()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestGroupJSONRoundTripPreservesDefinition(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}
	job := newJob("j1", 1)
	task := newTask("t1", 1)
	task.Config = json.RawMessage(`{"path":"/tmp/out","make_dirs":true}`)
	require.NoError(t, job.AddTask(task))
	require.NoError(t, job.AddTask(newTask("t2", 2)))
	require.NoError(t, group.AddJob(job))
	require.NoError(t, group.AddJob(newJob("j2", 2)))

	raw, err := json.Marshal(group)
	require.NoError(t, err)

	var got JobGroup
	require.NoError(t, json.Unmarshal(raw, &got))

	// A read must reproduce job ordering and configuration payloads exactly.
	require.Len(t, got.Jobs(), 2)
	assert.Equal(t, "j1", got.Jobs()[0].ID)
	assert.Equal(t, "j2", got.Jobs()[1].ID)
	require.Len(t, got.Jobs()[0].Tasks(), 2)
	assert.Equal(t, json.RawMessage(`{"path":"/tmp/out","make_dirs":true}`), got.Jobs()[0].Tasks()[0].Config)

	again, err := json.Marshal(&got)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestGroupUnmarshalRejectsUnknownFields(t *testing.T) {
	var group JobGroup
	err := json.Unmarshal([]byte(`{"id":"g1","name":"group","active":true,"bogus":true}`), &group)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	// Unknown fields inside nested jobs are rejected too.
	nested := `{"id":"g1","name":"group","active":true,"jobs":[
		{"id":"j1","name":"a","active":true,"surprise":1,"tasks":[]}]}`
	err = json.Unmarshal([]byte(nested), &group)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")
}

func TestGroupValidateDuplicateJobIDs(t *testing.T) {
	group := &JobGroup{ID: "g1", Name: "group", Active: true}
	require.NoError(t, group.AddJob(newJob("j1", 1)))

	// Bypass AddJob to simulate a decoded definition carrying duplicates.
	var decoded JobGroup
	raw := `{"id":"g1","name":"group","active":true,"jobs":[
		{"id":"j1","name":"a","active":true,"tasks":[]},
		{"id":"j1","name":"b","active":true,"tasks":[]}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	err := decoded.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateID(err))
}
