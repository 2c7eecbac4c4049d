package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
	"github.com/conveyorhq/conveyor/internal/testutil"
)

func TestSubmitJob(t *testing.T) {
	f := newRouterFixture(t)

	job := testutil.BuildJob("j1", testutil.NewTask("t1").Build())
	f.groups.EXPECT().GetJob(gomock.Any(), "j1").Return(job, nil)

	rec := f.do(t, http.MethodPost, "/api/jobs/j1/executions", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["execution_id"])
}

func TestSubmitJobUnknown(t *testing.T) {
	f := newRouterFixture(t)

	f.groups.EXPECT().GetJob(gomock.Any(), "missing").
		Return(nil, apperrors.NotFoundf("job %s not found", "missing"))

	rec := f.do(t, http.MethodPost, "/api/jobs/missing/executions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitGroup(t *testing.T) {
	f := newRouterFixture(t)

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1", testutil.NewTask("t1").Build()))
	f.groups.EXPECT().GetByID(gomock.Any(), "g1").Return(group, nil)

	rec := f.do(t, http.MethodPost, "/api/groups/g1/executions", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "execution_id")
}

func TestSubmitGroupInvalidDefinition(t *testing.T) {
	f := newRouterFixture(t)

	// A stored definition that no longer validates is a client-visible 400.
	f.groups.EXPECT().GetByID(gomock.Any(), "g1").Return(&model.JobGroup{ID: "g1"}, nil)

	rec := f.do(t, http.MethodPost, "/api/groups/g1/executions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecutionStatusRoundTrip(t *testing.T) {
	f := newRouterFixture(t)

	job := testutil.BuildJob("j1", testutil.NewTask("t1").Build())
	f.groups.EXPECT().GetJob(gomock.Any(), "j1").Return(job, nil)

	rec := f.do(t, http.MethodPost, "/api/jobs/j1/executions", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitted map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	rec = f.do(t, http.MethodGet, "/api/executions/"+submitted["execution_id"], "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.Execution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "j1", snap.SubjectID)
}

func TestExecutionStatusNotFound(t *testing.T) {
	f := newRouterFixture(t)

	f.execs.EXPECT().GetByID(gomock.Any(), "missing").
		Return(nil, apperrors.NotFoundf("execution %s not found", "missing"))

	rec := f.do(t, http.MethodGet, "/api/executions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelExecutionUnknown(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/executions/unknown/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestListExecutionsFilters(t *testing.T) {
	f := newRouterFixture(t)

	f.execs.EXPECT().List(gomock.Any(), core.ExecutionListOptions{
		SubjectID: "j1",
		Status:    model.ExecutionStatusFailed,
		Limit:     5,
		Offset:    10,
	}).Return(nil, nil)

	rec := f.do(t, http.MethodGet, "/api/executions?subject_id=j1&status=failed&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
