package httpx

import (
	"errors"
	"net/http"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/service"
)

// ExecutionHandlers provides HTTP handlers for run submission, cancellation,
// and status queries.
type ExecutionHandlers struct {
	Svc *service.ExecutionService
}

// SubmitJob handles HTTP requests to start a run of a stored job. The
// response carries the execution id; the run proceeds in the background.
func (h *ExecutionHandlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	executionID, err := h.Svc.SubmitJob(r.Context(), jobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"execution_id": executionID})
}

// SubmitGroup handles HTTP requests to start a run of a stored group.
func (h *ExecutionHandlers) SubmitGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	if groupID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	executionID, err := h.Svc.SubmitGroup(r.Context(), groupID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"execution_id": executionID})
}

// Cancel handles HTTP requests to cancel a live run. Unknown or finished
// executions report ok=false.
func (h *ExecutionHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("execution id is required")})
		return
	}

	cancelled := h.Svc.Cancel(r.Context(), id)
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": cancelled})
}

// Status handles HTTP requests for the latest snapshot of an execution.
func (h *ExecutionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("execution id is required")})
		return
	}

	execution, err := h.Svc.Status(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, execution)
}

// List handles HTTP requests to list persisted execution records.
func (h *ExecutionHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts := core.ExecutionListOptions{
		SubjectID: r.URL.Query().Get("subject_id"),
		Status:    model.ExecutionStatus(r.URL.Query().Get("status")),
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	executions, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if executions == nil {
		executions = []*model.Execution{}
	}
	WriteJSON(w, http.StatusOK, executions)
}
