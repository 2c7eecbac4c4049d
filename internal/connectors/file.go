package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// CreateFileConfig is the configuration payload for create_file tasks.
// Content comes either from a prior stage output (SourceKey) or from the
// literal Content field.
type CreateFileConfig struct {
	Path      string `json:"path"`
	SourceKey string `json:"source_key,omitempty"`
	Content   string `json:"content,omitempty"`
	MakeDirs  bool   `json:"make_dirs,omitempty"`
}

// CreateFileConnector writes content to a local file. Its output is the
// written path, so downstream tasks can reference the file.
type CreateFileConnector struct{}

var _ core.Connector = (*CreateFileConnector)(nil)

// NewCreateFileConnector constructs a CreateFileConnector.
func NewCreateFileConnector() *CreateFileConnector {
	return &CreateFileConnector{}
}

// Kind implements core.Connector.
func (c *CreateFileConnector) Kind() model.TaskType { return model.TaskTypeCreateFile }

// RequiresConfig implements core.Connector.
func (c *CreateFileConnector) RequiresConfig() bool { return true }

// Run implements core.Connector.
func (c *CreateFileConnector) Run(ctx context.Context, req core.WorkRequest) (*core.WorkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg CreateFileConfig
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode create_file config: %w", err)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("create_file config: path is required")
	}

	content, err := resolveContent(req.Stage, cfg.SourceKey, []byte(cfg.Content))
	if err != nil {
		return nil, err
	}

	if cfg.MakeDirs {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create parent directories: %w", err)
		}
	}

	if err := os.WriteFile(cfg.Path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", cfg.Path, err)
	}

	return &core.WorkResult{
		Output: []byte(cfg.Path),
		Detail: fmt.Sprintf("wrote %d byte(s) to %s", len(content), cfg.Path),
	}, nil
}

// resolveContent prefers a stage output under sourceKey over literal content.
func resolveContent(stage *model.StageContext, sourceKey string, literal []byte) ([]byte, error) {
	if sourceKey == "" {
		return literal, nil
	}
	if stage == nil {
		return nil, fmt.Errorf("stage input %q is not available", sourceKey)
	}
	content, ok := stage.Get(sourceKey)
	if !ok {
		return nil, fmt.Errorf("stage input %q is not available", sourceKey)
	}
	return content, nil
}
