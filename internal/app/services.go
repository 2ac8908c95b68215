package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/charts"
	"github.com/yungbote/vizboard-backend/internal/jobs"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
	"github.com/yungbote/vizboard-backend/internal/platform/cache"
	"github.com/yungbote/vizboard-backend/internal/platform/ollama"
	ollamamock "github.com/yungbote/vizboard-backend/internal/platform/ollama/mock"
	"github.com/yungbote/vizboard-backend/internal/services"
)

// engine is what both the chat pipeline and model management need from
// the Ollama client. The mock satisfies it too.
type engine interface {
	services.GenerateEngine
	services.ModelEngine
}

type Services struct {
	Summarizer *services.SummarizerService
	File       *services.FileService
	Model      *services.ModelService
	Chat       *services.ChatService
	Worker     *jobs.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, summaryCache *cache.SummaryCache) (Services, error) {
	log.Info("Wiring services...")

	var eng engine
	if cfg.MockOllama {
		log.Warn("MOCK_OLLAMA is set, using the canned generation engine")
		eng = ollamamock.New()
	} else {
		client, err := ollama.New(ollama.ConfigFromEnv())
		if err != nil {
			return Services{}, fmt.Errorf("init ollama client: %w", err)
		}
		eng = client
	}

	chartsCfg := charts.DefaultConfig()
	if cfg.ChartRulesPath != "" {
		loaded, err := charts.LoadConfig(cfg.ChartRulesPath)
		if err != nil {
			return Services{}, fmt.Errorf("load chart rules: %w", err)
		}
		chartsCfg = loaded
	}

	summarizer := services.NewSummarizerService(log)
	fileService := services.NewFileService(reposet.DataFile, summarizer, summaryCache, log)
	modelService := services.NewModelService(reposet.ModelConfig, eng, log)
	chatService := services.NewChatService(
		db,
		reposet.Conversation,
		reposet.Message,
		reposet.Visualization,
		reposet.Job,
		fileService,
		reposet.ModelConfig,
		eng,
		chartsCfg,
		log,
	)
	worker := jobs.NewWorker(reposet.Job, chatService, log)

	return Services{
		Summarizer: summarizer,
		File:       fileService,
		Model:      modelService,
		Chat:       chatService,
		Worker:     worker,
	}, nil
}
