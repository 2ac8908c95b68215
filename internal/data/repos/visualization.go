package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type VisualizationRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Visualization) ([]*domain.Visualization, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.Visualization, error)
	ListByMessage(dbc dbctx.Context, messageID uuid.UUID) ([]*domain.Visualization, error)
}

type visualizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVisualizationRepo(db *gorm.DB, log *logger.Logger) VisualizationRepo {
	return &visualizationRepo{db: db, log: log.With("repo", "VisualizationRepo")}
}

func (r *visualizationRepo) Create(dbc dbctx.Context, rows []*domain.Visualization) ([]*domain.Visualization, error) {
	if len(rows) == 0 {
		return []*domain.Visualization{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *visualizationRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID) ([]*domain.Visualization, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Visualization
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Visualization{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *visualizationRepo) ListByMessage(dbc dbctx.Context, messageID uuid.UUID) ([]*domain.Visualization, error) {
	if messageID == uuid.Nil {
		return nil, fmt.Errorf("missing message_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Visualization
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Visualization{}).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
