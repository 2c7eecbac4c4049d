package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// GeneralConfig is the optional configuration payload for general tasks.
type GeneralConfig struct {
	// Output, when set, is injected into the stage context as this task's
	// output. Useful for seeding literal values into a pipeline.
	Output string `json:"output,omitempty"`
	// SleepMs pauses the task for the given duration, honouring cancellation.
	// Useful for drills and manual-step placeholders with a dwell time.
	SleepMs int `json:"sleep_ms,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// GeneralConnector serves the extensible general category: placeholder and
// manual steps. Without configuration it is a no-op success.
type GeneralConnector struct{}

var _ core.Connector = (*GeneralConnector)(nil)

// NewGeneralConnector constructs a GeneralConnector.
func NewGeneralConnector() *GeneralConnector {
	return &GeneralConnector{}
}

// Kind implements core.Connector.
func (c *GeneralConnector) Kind() model.TaskType { return model.TaskTypeGeneral }

// RequiresConfig implements core.Connector.
func (c *GeneralConnector) RequiresConfig() bool { return false }

// Run implements core.Connector.
func (c *GeneralConnector) Run(ctx context.Context, req core.WorkRequest) (*core.WorkResult, error) {
	if len(req.Config) == 0 {
		return &core.WorkResult{Detail: "no-op"}, nil
	}

	var cfg GeneralConfig
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode general config: %w", err)
	}

	if cfg.SleepMs > 0 {
		timer := time.NewTimer(time.Duration(cfg.SleepMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	result := &core.WorkResult{Detail: cfg.Detail}
	if cfg.Output != "" {
		result.Output = []byte(cfg.Output)
	}
	return result, nil
}
