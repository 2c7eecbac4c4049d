package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
	"github.com/conveyorhq/conveyor/internal/mocks"
	"github.com/conveyorhq/conveyor/internal/testutil"
)

func newGroupService(t *testing.T) (*GroupService, *mocks.MockGroupRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockGroupRepository(ctrl)
	svc, err := NewGroupService(GroupServiceOptions{Repo: repo})
	require.NoError(t, err)
	return svc, repo
}

func TestGroupServiceCreateAssignsIDs(t *testing.T) {
	svc, repo := newGroupService(t)

	group := &model.JobGroup{Name: "nightly", Active: true}
	job := &model.Job{Name: "report", Active: true}
	require.NoError(t, job.AddTask(&model.Task{Name: "fetch", Type: model.TaskTypeGeneral, Active: true}))
	require.NoError(t, group.AddJob(job))

	var stored *model.JobGroup
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g *model.JobGroup) (*model.JobGroup, error) {
			stored = g
			return g, nil
		})

	created, err := svc.Create(context.Background(), group)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Same(t, stored, created)

	assert.NotEmpty(t, created.ID)
	require.Len(t, created.Jobs(), 1)
	assert.NotEmpty(t, created.Jobs()[0].ID)
	assert.Equal(t, created.ID, created.Jobs()[0].GroupID)
	require.Len(t, created.Jobs()[0].Tasks(), 1)
	assert.NotEmpty(t, created.Jobs()[0].Tasks()[0].ID)
	assert.Equal(t, model.DefaultMaxRetries, created.Jobs()[0].Tasks()[0].MaxRetries,
		"normalization applies defaults before storage")
}

func TestGroupServiceCreateKeepsExistingIDs(t *testing.T) {
	svc, repo := newGroupService(t)

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1",
		testutil.NewTask("t1").Build()))

	repo.EXPECT().Create(gomock.Any(), group).Return(group, nil)

	created, err := svc.Create(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, "g1", created.ID)
	assert.Equal(t, "j1", created.Jobs()[0].ID)
}

func TestGroupServiceCreateRejectsInvalid(t *testing.T) {
	svc, _ := newGroupService(t)

	// Name missing; the repository must never see the group.
	_, err := svc.Create(context.Background(), &model.JobGroup{Active: true})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(context.Background(), nil)
	require.Error(t, err)
}

func TestGroupServiceUpdate(t *testing.T) {
	svc, repo := newGroupService(t)

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1"))
	repo.EXPECT().Update(gomock.Any(), group).Return(group, nil)

	updated, err := svc.Update(context.Background(), group)
	require.NoError(t, err)
	assert.Same(t, group, updated)

	_, err = svc.Update(context.Background(), &model.JobGroup{ID: "g2", Active: true})
	require.Error(t, err, "an invalid update never reaches the repository")
}

func TestGroupServiceDelete(t *testing.T) {
	svc, repo := newGroupService(t)

	repo.EXPECT().Delete(gomock.Any(), "g1").Return(true, nil)
	deleted, err := svc.Delete(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	repo.EXPECT().Delete(gomock.Any(), "missing").Return(false, nil)
	deleted, err = svc.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGroupServiceGetJob(t *testing.T) {
	svc, repo := newGroupService(t)

	want := testutil.BuildJob("j1")
	repo.EXPECT().GetJob(gomock.Any(), "j1").Return(want, nil)

	job, err := svc.GetJob(context.Background(), "j1")
	require.NoError(t, err)
	assert.Same(t, want, job)

	repo.EXPECT().GetJob(gomock.Any(), "missing").
		Return(nil, apperrors.NotFoundf("job %s not found", "missing"))
	_, err = svc.GetJob(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGroupServiceListPassesThrough(t *testing.T) {
	svc, repo := newGroupService(t)

	repo.EXPECT().List(gomock.Any(), 10, 20).Return(nil, errors.New("db down"))
	_, err := svc.List(context.Background(), 10, 20)
	require.Error(t, err)
}

func TestNewGroupServiceRequiresRepo(t *testing.T) {
	_, err := NewGroupService(GroupServiceOptions{})
	require.Error(t, err)
}
