package testutil

import (
	"encoding/json"

	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// TaskBuilder provides a fluent interface for building Task objects for testing.
type TaskBuilder struct {
	task *model.Task
}

// NewTask creates a new TaskBuilder with sensible defaults.
func NewTask(id string) *TaskBuilder {
	return &TaskBuilder{
		task: &model.Task{
			ID:     id,
			Name:   "task " + id,
			Type:   model.TaskTypeGeneral,
			Active: true,
		},
	}
}

// WithType sets the task type.
func (b *TaskBuilder) WithType(taskType model.TaskType) *TaskBuilder {
	b.task.Type = taskType
	return b
}

// WithOrder sets the execution order.
func (b *TaskBuilder) WithOrder(order int) *TaskBuilder {
	b.task.ExecutionOrder = order
	return b
}

// WithConfig sets the configuration payload from a string.
func (b *TaskBuilder) WithConfig(config string) *TaskBuilder {
	b.task.Config = json.RawMessage(config)
	return b
}

// WithRequires sets the required stage input keys.
func (b *TaskBuilder) WithRequires(keys ...string) *TaskBuilder {
	b.task.Requires = keys
	return b
}

// WithOutputKey sets the stage output alias.
func (b *TaskBuilder) WithOutputKey(key string) *TaskBuilder {
	b.task.OutputKey = key
	return b
}

// WithMaxRetries sets the total attempt budget.
func (b *TaskBuilder) WithMaxRetries(n int) *TaskBuilder {
	b.task.MaxRetries = n
	return b
}

// Inactive marks the task inactive.
func (b *TaskBuilder) Inactive() *TaskBuilder {
	b.task.Active = false
	return b
}

// Build returns the constructed task.
func (b *TaskBuilder) Build() *model.Task {
	return b.task
}

// BuildJob constructs a job with the given id containing the supplied tasks
// in order. It panics on duplicate task ids, which is a test setup bug.
func BuildJob(id string, tasks ...*model.Task) *model.Job {
	job := &model.Job{ID: id, Name: "job " + id, Active: true}
	for _, task := range tasks {
		if err := job.AddTask(task); err != nil {
			panic(err)
		}
	}
	return job
}

// BuildGroup constructs a group with the given id containing the supplied
// jobs in order.
func BuildGroup(id string, jobs ...*model.Job) *model.JobGroup {
	group := &model.JobGroup{ID: id, Name: "group " + id, Active: true}
	for _, job := range jobs {
		if err := group.AddJob(job); err != nil {
			panic(err)
		}
	}
	return group
}
