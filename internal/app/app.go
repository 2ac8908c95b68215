package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/data/db"
	vizhttp "github.com/yungbote/vizboard-backend/internal/http"
	"github.com/yungbote/vizboard-backend/internal/observability"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
	"github.com/yungbote/vizboard-backend/internal/platform/cache"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *vizhttp.Server
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	dbService    *db.Service
	summaryCache *cache.SummaryCache
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "vizboard",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})

	dbService, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	summaryCache, err := cache.NewSummaryCache(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init summary cache: %w", err)
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, summaryCache)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(serviceset)
	server := wireServer(log, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Router:       server.Engine,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		dbService:    dbService,
		summaryCache: summaryCache,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background job worker. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Worker != nil {
		a.Services.Worker.Start(ctx)
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(a.Cfg.Address)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.Server.Shutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("http shutdown failed", "error", err)
		}
		cancel()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Services.Worker != nil {
			a.Services.Worker.Wait()
		}
	}
	if a.summaryCache != nil {
		a.summaryCache.Close()
	}
	if a.dbService != nil {
		a.dbService.Close()
	}
	if a.otelShutdown != nil {
		a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
