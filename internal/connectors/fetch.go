package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jmespath-community/go-jmespath"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// maxFetchResponseBytes caps how much of an upstream response is stored in
// the stage context.
const maxFetchResponseBytes = 8 * 1024 * 1024

// FetchConfig is the configuration payload for fetch_api_data tasks.
type FetchConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
	// OkStatus is the expected response status. Zero accepts any 2xx.
	OkStatus int `json:"ok_status,omitempty"`
	// Extract is an optional JMESPath expression applied to JSON responses;
	// the matched value becomes the task output instead of the raw body.
	Extract string `json:"extract,omitempty"`
}

// FetchConnector fetches data from an HTTP API. It is the network-bound task
// category, so its retry backoff uses the longer network base delay.
type FetchConnector struct {
	client *http.Client
}

var _ core.Connector = (*FetchConnector)(nil)

// NewFetchConnector constructs a FetchConnector using the given HTTP client.
func NewFetchConnector(client *http.Client) *FetchConnector {
	return &FetchConnector{client: client}
}

// Kind implements core.Connector.
func (c *FetchConnector) Kind() model.TaskType { return model.TaskTypeFetchAPIData }

// RequiresConfig implements core.Connector.
func (c *FetchConnector) RequiresConfig() bool { return true }

// Run implements core.Connector.
func (c *FetchConnector) Run(ctx context.Context, req core.WorkRequest) (*core.WorkResult, error) {
	var cfg FetchConfig
	if err := json.Unmarshal(req.Config, &cfg); err != nil {
		return nil, fmt.Errorf("decode fetch config: %w", err)
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("fetch config: url is required")
	}

	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cfg.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if !statusOK(resp.StatusCode, cfg.OkStatus) {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", cfg.URL, resp.StatusCode)
	}

	output := data
	if cfg.Extract != "" {
		output, err = extractJSON(cfg.Extract, data)
		if err != nil {
			return nil, err
		}
	}

	return &core.WorkResult{
		Output: output,
		Detail: fmt.Sprintf("fetched %d byte(s) from %s", len(data), cfg.URL),
	}, nil
}

func statusOK(got, want int) bool {
	if want != 0 {
		return got == want
	}
	return got >= 200 && got < 300
}

// extractJSON applies a JMESPath expression to a JSON document and returns
// the matched value re-encoded as JSON.
func extractJSON(expression string, document []byte) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(document, &decoded); err != nil {
		return nil, fmt.Errorf("extract %q: response is not JSON: %w", expression, err)
	}
	matched, err := jmespath.Search(expression, decoded)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", expression, err)
	}
	if matched == nil {
		return nil, fmt.Errorf("extract %q: no value matched", expression)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(matched); err != nil {
		return nil, fmt.Errorf("encode extracted value: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
