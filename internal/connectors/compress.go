package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// CompressConfig is the configuration payload for compress_file tasks. The
// input bytes come from a prior stage output; Path optionally also writes the
// compressed bytes to disk.
type CompressConfig struct {
	SourceKey string `json:"source_key"`
	Path      string `json:"path,omitempty"`
	// Level is the gzip compression level; zero uses the default.
	Level int `json:"level,omitempty"`
}

// CompressConnector gzips a prior stage output. Its output is the compressed
// bytes, available to downstream upload tasks.
type CompressConnector struct{}

var _ core.Connector = (*CompressConnector)(nil)

// NewCompressConnector constructs a CompressConnector.
func NewCompressConnector() *CompressConnector {
	return &CompressConnector{}
}

// Kind implements core.Connector.
func (c *CompressConnector) Kind() model.TaskType { return model.TaskTypeCompressFile }

// RequiresConfig implements core.Connector.
func (c *CompressConnector) RequiresConfig() bool { return true }

// Run implements core.Connector.
func (c *CompressConnector) Run(ctx context.Context, req core.WorkRequest) (*core.WorkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg CompressConfig
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode compress_file config: %w", err)
	}
	if strings.TrimSpace(cfg.SourceKey) == "" {
		return nil, errors.New("compress_file config: source_key is required")
	}

	input, err := resolveContent(req.Stage, cfg.SourceKey, nil)
	if err != nil {
		return nil, err
	}

	compressed, err := gzipBytes(input, cfg.Level)
	if err != nil {
		return nil, err
	}

	if cfg.Path != "" {
		if err := os.WriteFile(cfg.Path, compressed, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", cfg.Path, err)
		}
	}

	return &core.WorkResult{
		Output: compressed,
		Detail: fmt.Sprintf("compressed %d byte(s) to %d", len(input), len(compressed)),
	}, nil
}

func gzipBytes(input []byte, level int) ([]byte, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip level %d: %w", level, err)
	}
	if _, err := writer.Write(input); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}
