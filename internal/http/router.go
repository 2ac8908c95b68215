package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/vizboard-backend/internal/http/handlers"
	httpMW "github.com/yungbote/vizboard-backend/internal/http/middleware"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler       *httpH.HealthHandler
	FileHandler         *httpH.FileHandler
	ChatHandler         *httpH.ChatHandler
	ConversationHandler *httpH.ConversationHandler
	JobHandler          *httpH.JobHandler
	ModelHandler        *httpH.ModelHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("vizboard"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Data files
		if cfg.FileHandler != nil {
			api.POST("/files/upload", cfg.FileHandler.Upload)
			api.GET("/files", cfg.FileHandler.List)
			api.GET("/files/:id", cfg.FileHandler.Get)
			api.DELETE("/files/:id", cfg.FileHandler.Delete)
		}

		// Chat
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
		}

		// Conversations
		if cfg.ConversationHandler != nil {
			api.GET("/conversations", cfg.ConversationHandler.List)
			api.GET("/conversations/:id", cfg.ConversationHandler.History)
		}

		// Jobs
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}

		// Models
		if cfg.ModelHandler != nil {
			api.GET("/models", cfg.ModelHandler.List)
			api.POST("/models/detect", cfg.ModelHandler.Detect)
			api.POST("/models/active", cfg.ModelHandler.SetActive)
			api.POST("/models/pull", cfg.ModelHandler.Pull)
		}
	}

	return r
}
