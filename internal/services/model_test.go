package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/data/repos/testutil"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/platform/ollama"
	"github.com/yungbote/vizboard-backend/internal/platform/ollama/mock"
)

func newModelService(t *testing.T) (*ModelService, *mock.Engine) {
	t.Helper()
	log := testutil.Logger(t)
	engine := mock.New()
	return NewModelService(repos.NewModelConfigRepo(testutil.DB(t), log), engine, log), engine
}

func TestDetectRegistersAndActivates(t *testing.T) {
	svc, engine := newModelService(t)
	engine.Models = []ollama.ModelInfo{{Name: "llama3.2"}, {Name: "mistral"}}
	ctx := context.Background()

	list, err := svc.Detect(ctx)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("models = %d", len(list))
	}

	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.ModelName != "llama3.2" {
		t.Fatalf("active = %q", active.ModelName)
	}

	// A second detect keeps the choice and creates no duplicates.
	list, err = svc.Detect(ctx)
	if err != nil {
		t.Fatalf("detect again: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("models after re-detect = %d", len(list))
	}
}

func TestDetectServerDown(t *testing.T) {
	svc, engine := newModelService(t)
	engine.Err = errors.New("connection refused")
	if _, err := svc.Detect(context.Background()); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestSetActiveRegistersUnknownModel(t *testing.T) {
	svc, _ := newModelService(t)
	ctx := context.Background()

	row, err := svc.SetActive(ctx, "gemma2")
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if !row.IsActive || row.ModelName != "gemma2" {
		t.Fatalf("row = %+v", row)
	}
}

func TestPullRegistersModel(t *testing.T) {
	svc, engine := newModelService(t)
	ctx := context.Background()

	row, err := svc.Pull(ctx, "phi3")
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if row.ModelName != "phi3" {
		t.Fatalf("row = %+v", row)
	}
	if len(engine.Pulled) != 1 || engine.Pulled[0] != "phi3" {
		t.Fatalf("pulled = %v", engine.Pulled)
	}
}
