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

type DataFileRepo interface {
	Create(dbc dbctx.Context, rows []*domain.DataFile) ([]*domain.DataFile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.DataFile, error)
	List(dbc dbctx.Context, sessionID string, limit int) ([]*domain.DataFile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type dataFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDataFileRepo(db *gorm.DB, log *logger.Logger) DataFileRepo {
	return &dataFileRepo{db: db, log: log.With("repo", "DataFileRepo")}
}

func (r *dataFileRepo) Create(dbc dbctx.Context, rows []*domain.DataFile) ([]*domain.DataFile, error) {
	if len(rows) == 0 {
		return []*domain.DataFile{}, nil
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

func (r *dataFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.DataFile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.DataFile
	err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *dataFileRepo) List(dbc dbctx.Context, sessionID string, limit int) ([]*domain.DataFile, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).Model(&domain.DataFile{})
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	var out []*domain.DataFile
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dataFileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.DataFile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *dataFileRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&domain.DataFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
