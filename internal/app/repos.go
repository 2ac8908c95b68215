package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type Repos struct {
	ModelConfig   repos.ModelConfigRepo
	DataFile      repos.DataFileRepo
	Conversation  repos.ConversationRepo
	Message       repos.MessageRepo
	Visualization repos.VisualizationRepo
	Job           repos.JobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ModelConfig:   repos.NewModelConfigRepo(db, log),
		DataFile:      repos.NewDataFileRepo(db, log),
		Conversation:  repos.NewConversationRepo(db, log),
		Message:       repos.NewMessageRepo(db, log),
		Visualization: repos.NewVisualizationRepo(db, log),
		Job:           repos.NewJobRepo(db, log),
	}
}
