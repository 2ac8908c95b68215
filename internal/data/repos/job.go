package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type JobRepo interface {
	Create(dbc dbctx.Context, rows []*domain.GenerationJob) ([]*domain.GenerationJob, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.GenerationJob, error)
	ClaimNextPending(dbc dbctx.Context) (*domain.GenerationJob, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, result datatypes.JSON) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, code, message string) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, log *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: log.With("repo", "JobRepo")}
}

func (r *jobRepo) Create(dbc dbctx.Context, rows []*domain.GenerationJob) ([]*domain.GenerationJob, error) {
	if len(rows) == 0 {
		return []*domain.GenerationJob{}, nil
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

func (r *jobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.GenerationJob, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.GenerationJob
	err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimNextPending flips the oldest pending job to processing. The claim
// is optimistic: the UPDATE re-checks the status, so two workers racing
// for the same row leave exactly one winner. Works on sqlite too, which
// has no SELECT FOR UPDATE. Returns ErrNotFound when the queue is
// empty.
func (r *jobRepo) ClaimNextPending(dbc dbctx.Context) (*domain.GenerationJob, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}

	for attempt := 0; attempt < 3; attempt++ {
		var candidate domain.GenerationJob
		err := txx.WithContext(dbc.Ctx).
			Where("status = ?", domain.JobStatusPending).
			Order("created_at ASC").
			Take(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		res := txx.WithContext(dbc.Ctx).
			Model(&domain.GenerationJob{}).
			Where("id = ? AND status = ?", candidate.ID, domain.JobStatusPending).
			Updates(map[string]interface{}{
				"status":     domain.JobStatusProcessing,
				"attempts":   gorm.Expr("attempts + 1"),
				"progress":   10,
				"started_at": now,
				"updated_at": now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race; try the next pending row.
			continue
		}
		return r.GetByID(dbc, candidate.ID)
	}
	return nil, apperrors.ErrNotFound
}

func (r *jobRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, result datatypes.JSON) error {
	now := time.Now().UTC()
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"status":      domain.JobStatusCompleted,
		"progress":    100,
		"result":      result,
		"finished_at": now,
	})
}

func (r *jobRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, code, message string) error {
	now := time.Now().UTC()
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"status":        domain.JobStatusFailed,
		"error_code":    code,
		"error_message": message,
		"finished_at":   now,
	})
}

func (r *jobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&domain.GenerationJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}
