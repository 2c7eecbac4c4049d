package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// SnapshotFanout fans execution snapshots out to the database repository and
// the optional snapshot cache. Partial failures are joined so the engine can
// log them; the engine never fails a run over a sink error.
type SnapshotFanout struct {
	Repo   core.ExecutionSink
	Cache  core.SnapshotCache
	Logger *slog.Logger
}

var _ core.ExecutionSink = (*SnapshotFanout)(nil)

// Save implements core.ExecutionSink.
func (f *SnapshotFanout) Save(ctx context.Context, execution *model.Execution) error {
	var errs []error
	if f.Repo != nil {
		if err := f.Repo.Save(ctx, execution); err != nil {
			errs = append(errs, err)
		}
	}
	if f.Cache != nil {
		if err := f.Cache.Put(ctx, execution); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
