// Package ollama is a thin HTTP client for a locally hosted Ollama
// server. Only the endpoints the app needs are covered: generate, tags,
// and pull.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
)

type Config struct {
	BaseURL string
	// Timeout bounds one generation call. Local models can be slow, so
	// the default is generous.
	Timeout time.Duration
	// PullTimeout bounds a model download.
	PullTimeout time.Duration
}

// ConfigFromEnv reads OLLAMA_BASE_URL, OLLAMA_TIMEOUT_SECONDS and
// OLLAMA_PULL_TIMEOUT_SECONDS.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:     envutil.String("OLLAMA_BASE_URL", "http://localhost:11434"),
		Timeout:     envutil.Seconds("OLLAMA_TIMEOUT_SECONDS", 120*time.Second),
		PullTimeout: envutil.Seconds("OLLAMA_PULL_TIMEOUT_SECONDS", 600*time.Second),
	}
}

type Client struct {
	baseURL     string
	timeout     time.Duration
	pullTimeout time.Duration
	httpClient  *http.Client
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ollama: base_url required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	pullTimeout := cfg.PullTimeout
	if pullTimeout <= 0 {
		pullTimeout = 600 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		timeout:     timeout,
		pullTimeout: pullTimeout,
		httpClient:  &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ollama: upstream status %d: %s", e.StatusCode, e.Body)
}

type GenerateRequest struct {
	Model       string
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

type generatePayload struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs one non-streaming completion and returns the raw model
// text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", errors.New("ollama: model required")
	}

	opts := map[string]any{}
	if req.Temperature > 0 {
		opts["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	payload := generatePayload{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  false,
		Options: opts,
	}

	var resp generateResponse
	if err := c.doJSON(ctx, c.timeout, http.MethodPost, "/api/generate", payload, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ListModels returns the models the server has available locally.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var resp tagsResponse
	if err := c.doJSON(ctx, 10*time.Second, http.MethodGet, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// Pull downloads a model from the Ollama registry. The server streams
// progress lines; they are drained and discarded.
func (c *Client) Pull(ctx context.Context, modelName string) error {
	if strings.TrimSpace(modelName) == "" {
		return errors.New("ollama: model name required")
	}
	body, err := json.Marshal(map[string]string{"name": modelName})
	if err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, c.pullTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Healthy reports whether the server answers at all.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.ListModels(ctx)
	return err == nil
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
