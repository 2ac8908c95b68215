package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type ModelConfigRepo interface {
	Create(dbc dbctx.Context, rows []*domain.ModelConfig) ([]*domain.ModelConfig, error)
	GetByName(dbc dbctx.Context, modelName string) (*domain.ModelConfig, error)
	List(dbc dbctx.Context) ([]*domain.ModelConfig, error)
	Active(dbc dbctx.Context) (*domain.ModelConfig, error)
	SetActive(dbc dbctx.Context, id uuid.UUID) error
	UpsertByName(dbc dbctx.Context, row *domain.ModelConfig) (*domain.ModelConfig, error)
}

type modelConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelConfigRepo(db *gorm.DB, log *logger.Logger) ModelConfigRepo {
	return &modelConfigRepo{db: db, log: log.With("repo", "ModelConfigRepo")}
}

func (r *modelConfigRepo) Create(dbc dbctx.Context, rows []*domain.ModelConfig) ([]*domain.ModelConfig, error) {
	if len(rows) == 0 {
		return []*domain.ModelConfig{}, nil
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

func (r *modelConfigRepo) GetByName(dbc dbctx.Context, modelName string) (*domain.ModelConfig, error) {
	if modelName == "" {
		return nil, fmt.Errorf("missing model_name")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.ModelConfig
	err := txx.WithContext(dbc.Ctx).
		Where("model_name = ?", modelName).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *modelConfigRepo) List(dbc dbctx.Context) ([]*domain.ModelConfig, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.ModelConfig
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.ModelConfig{}).
		Order("model_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *modelConfigRepo) Active(dbc dbctx.Context) (*domain.ModelConfig, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.ModelConfig
	err := txx.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetActive makes id the only active model. Both updates run in one
// transaction even when the caller passed none.
func (r *modelConfigRepo) SetActive(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	run := func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.WithContext(dbc.Ctx).
			Model(&domain.ModelConfig{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}
		res := tx.WithContext(dbc.Ctx).
			Model(&domain.ModelConfig{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"is_active": true, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	}
	if dbc.Tx != nil {
		return run(dbc.Tx)
	}
	return r.db.Transaction(run)
}

// UpsertByName inserts the row or refreshes display metadata when the
// model is already registered.
func (r *modelConfigRepo) UpsertByName(dbc dbctx.Context, row *domain.ModelConfig) (*domain.ModelConfig, error) {
	if row == nil || row.ModelName == "" {
		return nil, fmt.Errorf("missing model_name")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	existing, err := r.GetByName(dbctx.Context{Ctx: dbc.Ctx, Tx: txx}, row.ModelName)
	if errors.Is(err, apperrors.ErrNotFound) {
		if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if row.DisplayName != "" {
		updates["display_name"] = row.DisplayName
	}
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.ModelConfig{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByName(dbctx.Context{Ctx: dbc.Ctx, Tx: txx}, row.ModelName)
}
