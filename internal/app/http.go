package app

import (
	vizhttp "github.com/yungbote/vizboard-backend/internal/http"
	httpH "github.com/yungbote/vizboard-backend/internal/http/handlers"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	File         *httpH.FileHandler
	Chat         *httpH.ChatHandler
	Conversation *httpH.ConversationHandler
	Job          *httpH.JobHandler
	Model        *httpH.ModelHandler
}

func wireHandlers(serviceset Services) Handlers {
	return Handlers{
		Health:       httpH.NewHealthHandler(serviceset.Model),
		File:         httpH.NewFileHandler(serviceset.File),
		Chat:         httpH.NewChatHandler(serviceset.Chat),
		Conversation: httpH.NewConversationHandler(serviceset.Chat),
		Job:          httpH.NewJobHandler(serviceset.Chat),
		Model:        httpH.NewModelHandler(serviceset.Model),
	}
}

func wireServer(log *logger.Logger, handlerset Handlers) *vizhttp.Server {
	return vizhttp.NewServer(vizhttp.RouterConfig{
		Log:                 log,
		HealthHandler:       handlerset.Health,
		FileHandler:         handlerset.File,
		ChatHandler:         handlerset.Chat,
		ConversationHandler: handlerset.Conversation,
		JobHandler:          handlerset.Job,
		ModelHandler:        handlerset.Model,
	})
}
