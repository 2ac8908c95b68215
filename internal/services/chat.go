package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/charts"
	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
	"github.com/yungbote/vizboard-backend/internal/platform/ollama"
)

// GenerateEngine is what chat needs from the Ollama client.
type GenerateEngine interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (string, error)
}

const jsonSystemPrompt = "You are a data visualization expert. You must respond ONLY with valid JSON. " +
	"Never include markdown code blocks, explanations, or any text outside the JSON structure."

// modelCompleter adapts the active model row plus the engine to the
// chart pipeline's Completer seam.
type modelCompleter struct {
	engine GenerateEngine
	model  *domain.ModelConfig
}

func (m modelCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := m.model.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	return m.engine.Generate(ctx, ollama.GenerateRequest{
		Model:       m.model.ModelName,
		Prompt:      prompt,
		System:      jsonSystemPrompt,
		Temperature: temperature,
		MaxTokens:   m.model.MaxTokens,
	})
}

type ChatRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	// FileIDs grounds the conversation in specific uploads; FileID is
	// the single-file shorthand. With neither set, a new conversation
	// takes every file in the caller's session.
	FileIDs []uuid.UUID `json:"file_ids,omitempty"`
	FileID  *uuid.UUID  `json:"file_id,omitempty"`
	Message string      `json:"message"`
}

func (r ChatRequest) fileIDs() []uuid.UUID {
	ids := r.FileIDs
	if r.FileID != nil {
		ids = append(ids, *r.FileID)
	}
	return ids
}

type ChatResponse struct {
	ConversationID uuid.UUID             `json:"conversation_id"`
	MessageID      uuid.UUID             `json:"message_id"`
	Job            *domain.GenerationJob `json:"job"`
}

// JobResult is the payload stored on a completed job and returned to
// polling clients.
type JobResult struct {
	Explanation string                    `json:"explanation,omitempty"`
	Charts      []charts.ChartConfig      `json:"charts"`
	Dropped     []charts.DroppedCandidate `json:"dropped,omitempty"`
}

// ChatService accepts chat turns and runs chart generation jobs. By
// default a turn only enqueues a pending job for the worker pool;
// CHAT_SYNC=true runs generation inline, which keeps dev setups and
// tests free of background timing.
type ChatService struct {
	db       *gorm.DB
	convs    repos.ConversationRepo
	msgs     repos.MessageRepo
	vizzes   repos.VisualizationRepo
	jobs     repos.JobRepo
	files    *FileService
	models   repos.ModelConfigRepo
	engine   GenerateEngine
	charts   charts.Config
	syncMode bool
	log      *logger.Logger
}

func NewChatService(
	db *gorm.DB,
	convs repos.ConversationRepo,
	msgs repos.MessageRepo,
	vizzes repos.VisualizationRepo,
	jobs repos.JobRepo,
	files *FileService,
	models repos.ModelConfigRepo,
	engine GenerateEngine,
	chartsCfg charts.Config,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		db:       db,
		convs:    convs,
		msgs:     msgs,
		vizzes:   vizzes,
		jobs:     jobs,
		files:    files,
		models:   models,
		engine:   engine,
		charts:   chartsCfg,
		syncMode: envutil.Bool("CHAT_SYNC", false),
		log:      log.With("service", "ChatService"),
	}
}

// HandleChat records the user turn and enqueues (or, in sync mode,
// runs) the generation job.
func (s *ChatService) HandleChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message required", apperrors.ErrInvalidArgument)
	}

	dbc := dbctx.Context{Ctx: ctx}
	conv, err := s.resolveConversation(dbc, req, message)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.MessageRoleUser,
		Content:        message,
	}
	if _, err := s.msgs.Create(dbc, []*domain.Message{userMsg}); err != nil {
		return nil, err
	}

	job := &domain.GenerationJob{
		ConversationID: conv.ID,
		MessageID:      &userMsg.ID,
		Status:         domain.JobStatusPending,
	}
	if _, err := s.jobs.Create(dbc, []*domain.GenerationJob{job}); err != nil {
		return nil, err
	}

	if s.syncMode {
		if err := s.RunJob(ctx, job); err != nil {
			s.log.Error("inline generation failed", "job_id", job.ID, "error", err)
		}
		job, err = s.jobs.GetByID(dbc, job.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ChatResponse{
		ConversationID: conv.ID,
		MessageID:      userMsg.ID,
		Job:            job,
	}, nil
}

func (s *ChatService) resolveConversation(dbc dbctx.Context, req ChatRequest, message string) (*domain.Conversation, error) {
	if req.ConversationID != nil {
		conv, err := s.convs.GetByID(dbc, *req.ConversationID)
		if err != nil {
			return nil, err
		}
		if len(conv.FileIDs()) == 0 && len(req.fileIDs()) > 0 {
			encoded, err := domain.EncodeFileIDs(req.fileIDs())
			if err != nil {
				return nil, err
			}
			if err := s.convs.UpdateFields(dbc, conv.ID, map[string]interface{}{
				"data_file_ids": encoded,
			}); err != nil {
				return nil, err
			}
			conv.DataFileIDs = encoded
		}
		return conv, nil
	}

	ids := req.fileIDs()
	if len(ids) == 0 && ctxutil.GetSessionID(dbc.Ctx) != "" {
		// Default to everything the session has uploaded.
		rows, err := s.files.List(dbc.Ctx, 0)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
	}
	encoded, err := domain.EncodeFileIDs(ids)
	if err != nil {
		return nil, err
	}

	conv := &domain.Conversation{
		SessionID:   ctxutil.GetSessionID(dbc.Ctx),
		Title:       titleFrom(message),
		DataFileIDs: encoded,
	}
	rows, err := s.convs.Create(dbc, []*domain.Conversation{conv})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

func titleFrom(message string) string {
	const max = 80
	if len(message) <= max {
		return message
	}
	cut := max
	for cut > 0 && message[cut]&0xC0 == 0x80 {
		cut--
	}
	return message[:cut]
}

// RunJob executes one claimed generation job end to end and records the
// outcome on the job row. Pipeline failures are job failures, not
// errors: the job carries the taxonomy code for the client.
func (s *ChatService) RunJob(ctx context.Context, job *domain.GenerationJob) error {
	dbc := dbctx.Context{Ctx: ctx}

	conv, err := s.convs.GetByID(dbc, job.ConversationID)
	if err != nil {
		return s.failJob(dbc, job, "internal", err.Error())
	}

	instruction := ""
	if job.MessageID != nil {
		msg, err := s.msgs.GetByID(dbc, *job.MessageID)
		if err != nil {
			return s.failJob(dbc, job, "internal", err.Error())
		}
		instruction = msg.Content
	}

	summary := "{}"
	if ids := conv.FileIDs(); len(ids) > 0 {
		summary, err = s.files.CombinedSummaryJSON(ctx, ids)
		if err != nil {
			return s.failJob(dbc, job, "internal", fmt.Sprintf("load data summary: %v", err))
		}
	}

	model, err := s.models.Active(dbc)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.failJob(dbc, job, string(charts.FailModelUnavailable), "no active model configured")
	}
	if err != nil {
		return s.failJob(dbc, job, "internal", err.Error())
	}

	pipeline := charts.NewPipeline(modelCompleter{engine: s.engine, model: model}, s.charts, s.log)
	result, err := pipeline.Generate(ctx, summary, instruction)
	if err != nil {
		var failure *charts.Failure
		if errors.As(err, &failure) {
			return s.failJob(dbc, job, string(failure.Code), failure.Error())
		}
		return s.failJob(dbc, job, "internal", err.Error())
	}

	return s.completeJob(ctx, conv, job, result)
}

// completeJob persists the assistant message, its visualizations, and
// the job result in one transaction.
func (s *ChatService) completeJob(ctx context.Context, conv *domain.Conversation, job *domain.GenerationJob, result *charts.Result) error {
	payload, err := json.Marshal(JobResult{
		Explanation: result.Explanation,
		Charts:      result.Charts,
		Dropped:     result.Dropped,
	})
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		content := result.Explanation
		if content == "" {
			content = fmt.Sprintf("Generated %d visualization(s).", len(result.Charts))
		}
		var meta datatypes.JSON
		if len(result.Dropped) > 0 {
			raw, err := json.Marshal(map[string]any{"dropped": result.Dropped})
			if err != nil {
				return err
			}
			meta = datatypes.JSON(raw)
		}
		assistant := &domain.Message{
			ConversationID: conv.ID,
			Role:           domain.MessageRoleAssistant,
			Content:        content,
			Metadata:       meta,
		}
		if _, err := s.msgs.Create(dbc, []*domain.Message{assistant}); err != nil {
			return err
		}

		rows := make([]*domain.Visualization, 0, len(result.Charts))
		for _, chart := range result.Charts {
			cfgJSON, err := json.Marshal(chart)
			if err != nil {
				return err
			}
			rows = append(rows, &domain.Visualization{
				ConversationID: conv.ID,
				MessageID:      &assistant.ID,
				ChartType:      string(chart.Type),
				Title:          chart.Title,
				Config:         datatypes.JSON(cfgJSON),
			})
		}
		if _, err := s.vizzes.Create(dbc, rows); err != nil {
			return err
		}

		if err := s.convs.UpdateFields(dbc, conv.ID, map[string]interface{}{}); err != nil {
			return err
		}
		return s.jobs.MarkCompleted(dbc, job.ID, datatypes.JSON(payload))
	})
}

// failJob records the failure on the job row and leaves an assistant
// message in the thread so the history UI shows what went wrong.
func (s *ChatService) failJob(dbc dbctx.Context, job *domain.GenerationJob, code, message string) error {
	s.log.Warn("generation job failed", "job_id", job.ID, "code", code, "reason", message)

	meta, _ := json.Marshal(map[string]string{"error_code": code})
	assistant := &domain.Message{
		ConversationID: job.ConversationID,
		Role:           domain.MessageRoleAssistant,
		Content:        fmt.Sprintf("Sorry, I could not generate a visualization: %s", message),
		Metadata:       datatypes.JSON(meta),
	}
	if _, err := s.msgs.Create(dbc, []*domain.Message{assistant}); err != nil {
		s.log.Error("failed to record error message", "job_id", job.ID, "error", err)
	}
	return s.jobs.MarkFailed(dbc, job.ID, code, message)
}

// Job returns a job row for polling clients.
func (s *ChatService) Job(ctx context.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	return s.jobs.GetByID(dbctx.Context{Ctx: ctx}, id)
}

// Conversations lists recent conversations, scoped to the request's
// session id when one is present.
func (s *ChatService) Conversations(ctx context.Context, limit int) ([]*domain.Conversation, error) {
	return s.convs.List(dbctx.Context{Ctx: ctx}, ctxutil.GetSessionID(ctx), limit)
}

// History returns a conversation's messages with their visualizations.
type ConversationHistory struct {
	Conversation *domain.Conversation    `json:"conversation"`
	Messages     []*domain.Message       `json:"messages"`
	Charts       []*domain.Visualization `json:"charts"`
}

func (s *ChatService) History(ctx context.Context, conversationID uuid.UUID) (*ConversationHistory, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conv, err := s.convs.GetByID(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.msgs.ListByConversation(dbc, conversationID, 0)
	if err != nil {
		return nil, err
	}
	vizzes, err := s.vizzes.ListByConversation(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationHistory{Conversation: conv, Messages: msgs, Charts: vizzes}, nil
}
