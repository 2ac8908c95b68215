// Package mock is an in-memory stand-in for the Ollama server, used by
// service tests and by MOCK_OLLAMA=true dev runs.
package mock

import (
	"context"
	"sync"

	"github.com/yungbote/vizboard-backend/internal/platform/ollama"
)

// DefaultResponse is a minimal valid charts envelope.
const DefaultResponse = `{"explanation":"Mock visualization.","charts":[{"type":"bar","title":"Mock Chart","data":{"labels":["A","B","C"],"datasets":[{"label":"Values","data":[1,2,3]}]},"options":{}}]}`

type Engine struct {
	mu sync.Mutex

	// Response is returned by Generate; Err, when set, wins.
	Response string
	Err      error
	Models   []ollama.ModelInfo

	// Prompts records every prompt Generate received.
	Prompts []string
	Pulled  []string
}

func New() *Engine {
	return &Engine{
		Response: DefaultResponse,
		Models:   []ollama.ModelInfo{{Name: "llama3.2"}},
	}
}

func (e *Engine) Generate(ctx context.Context, req ollama.GenerateRequest) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Prompts = append(e.Prompts, req.Prompt)
	if e.Err != nil {
		return "", e.Err
	}
	return e.Response, nil
}

func (e *Engine) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}
	return append([]ollama.ModelInfo(nil), e.Models...), nil
}

func (e *Engine) Pull(ctx context.Context, modelName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Pulled = append(e.Pulled, modelName)
	return nil
}

func (e *Engine) Healthy(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Err == nil
}
