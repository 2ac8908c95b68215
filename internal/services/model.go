package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
	"github.com/yungbote/vizboard-backend/internal/platform/ollama"
)

// ModelEngine is what the registry needs from the Ollama client.
type ModelEngine interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	Pull(ctx context.Context, modelName string) error
	Healthy(ctx context.Context) bool
}

// ModelService keeps the model_config table in sync with the Ollama
// server and tracks which model is active for generation.
type ModelService struct {
	models repos.ModelConfigRepo
	engine ModelEngine
	log    *logger.Logger
}

func NewModelService(models repos.ModelConfigRepo, engine ModelEngine, log *logger.Logger) *ModelService {
	return &ModelService{
		models: models,
		engine: engine,
		log:    log.With("service", "ModelService"),
	}
}

// Detect lists the server's local models, registers any new ones, and
// auto-activates the first when nothing is active yet.
func (s *ModelService) Detect(ctx context.Context) ([]*domain.ModelConfig, error) {
	infos, err := s.engine.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	for _, info := range infos {
		if _, err := s.models.UpsertByName(dbc, &domain.ModelConfig{
			ModelName:   info.Name,
			DisplayName: info.Name,
		}); err != nil {
			return nil, err
		}
	}

	if _, err := s.models.Active(dbc); errors.Is(err, apperrors.ErrNotFound) && len(infos) > 0 {
		first, err := s.models.GetByName(dbc, infos[0].Name)
		if err == nil {
			if err := s.models.SetActive(dbc, first.ID); err != nil {
				return nil, err
			}
			s.log.Info("auto-activated model", "model", first.ModelName)
		}
	}

	return s.models.List(dbc)
}

func (s *ModelService) List(ctx context.Context) ([]*domain.ModelConfig, error) {
	return s.models.List(dbctx.Context{Ctx: ctx})
}

func (s *ModelService) Active(ctx context.Context) (*domain.ModelConfig, error) {
	return s.models.Active(dbctx.Context{Ctx: ctx})
}

// SetActive activates the named model, registering it first when it is
// not in the table yet.
func (s *ModelService) SetActive(ctx context.Context, modelName string) (*domain.ModelConfig, error) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.models.GetByName(dbc, modelName)
	if errors.Is(err, apperrors.ErrNotFound) {
		row, err = s.models.UpsertByName(dbc, &domain.ModelConfig{
			ModelName:   modelName,
			DisplayName: modelName,
		})
	}
	if err != nil {
		return nil, err
	}
	if err := s.models.SetActive(dbc, row.ID); err != nil {
		return nil, err
	}
	return s.models.GetByName(dbc, modelName)
}

// Pull downloads the model via Ollama and registers it.
func (s *ModelService) Pull(ctx context.Context, modelName string) (*domain.ModelConfig, error) {
	if err := s.engine.Pull(ctx, modelName); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	return s.models.UpsertByName(dbctx.Context{Ctx: ctx}, &domain.ModelConfig{
		ModelName:   modelName,
		DisplayName: modelName,
	})
}

func (s *ModelService) Healthy(ctx context.Context) bool {
	return s.engine.Healthy(ctx)
}
