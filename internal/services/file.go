package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
	"github.com/yungbote/vizboard-backend/internal/platform/cache"
)

// FileService stores uploads on disk, summarizes them once at upload
// time, and keeps the summary in the row (and the optional Redis cache)
// for the chat path.
type FileService struct {
	files      repos.DataFileRepo
	summarizer *SummarizerService
	cache      *cache.SummaryCache
	uploadDir  string
	maxBytes   int64
	log        *logger.Logger
}

func NewFileService(
	files repos.DataFileRepo,
	summarizer *SummarizerService,
	summaryCache *cache.SummaryCache,
	log *logger.Logger,
) *FileService {
	return &FileService{
		files:      files,
		summarizer: summarizer,
		cache:      summaryCache,
		uploadDir:  envutil.String("UPLOAD_DIR", "uploads"),
		maxBytes:   int64(envutil.Int("MAX_UPLOAD_BYTES", 10<<20)),
		log:        log.With("service", "FileService"),
	}
}

// fileTypeFor maps an upload's extension to a supported type. The
// second result reports whether the type has a structural summarizer;
// xlsx and pdf are accepted but only their metadata is recorded.
func fileTypeFor(fileName string) (string, bool, bool) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv", true, true
	case ".json":
		return "json", true, true
	case ".yaml", ".yml":
		return "yaml", true, true
	case ".xlsx":
		return "xlsx", true, false
	case ".pdf":
		return "pdf", true, false
	default:
		return "", false, false
	}
}

// Upload persists the file, parses and summarizes it, and returns the
// stored row. Unsupported extensions and oversized bodies map to
// ErrInvalidArgument.
func (s *FileService) Upload(ctx context.Context, fileName string, body io.Reader) (*domain.DataFile, error) {
	fileType, ok, summarizable := fileTypeFor(fileName)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type for %q (csv, json, yaml, xlsx, pdf)", apperrors.ErrInvalidArgument, fileName)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	storagePath := filepath.Join(s.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fileName)))

	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(body, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storagePath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(storagePath)
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrInvalidArgument, s.maxBytes)
	}

	var summary map[string]any
	if summarizable {
		summary, err = s.summarizer.SummarizeFile(storagePath, fileType)
		if err != nil {
			_ = os.Remove(storagePath)
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
		}
	} else {
		summary = map[string]any{
			"type":       "binary",
			"file_type":  fileType,
			"size_bytes": written,
		}
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		_ = os.Remove(storagePath)
		return nil, err
	}

	row := &domain.DataFile{
		SessionID:   ctxutil.GetSessionID(ctx),
		FileName:    filepath.Base(fileName),
		FileType:    fileType,
		SizeBytes:   written,
		StoragePath: storagePath,
		Summary:     datatypes.JSON(summaryJSON),
	}
	rows, err := s.files.Create(dbctx.Context{Ctx: ctx}, []*domain.DataFile{row})
	if err != nil {
		_ = os.Remove(storagePath)
		return nil, err
	}

	s.cache.Set(ctx, rows[0].ID.String(), string(summaryJSON))
	s.log.Info("file uploaded", "file_id", rows[0].ID, "type", fileType, "bytes", written)
	return rows[0], nil
}

func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*domain.DataFile, error) {
	return s.files.GetByID(dbctx.Context{Ctx: ctx}, id)
}

// List returns the caller's files, scoped to the request's session id
// when one is present.
func (s *FileService) List(ctx context.Context, limit int) ([]*domain.DataFile, error) {
	return s.files.List(dbctx.Context{Ctx: ctx}, ctxutil.GetSessionID(ctx), limit)
}

func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.files.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(dbctx.Context{Ctx: ctx}, id); err != nil {
		return err
	}
	if row.StoragePath != "" {
		_ = os.Remove(row.StoragePath)
	}
	s.cache.Invalidate(ctx, id.String())
	return nil
}

// CombinedSummaryJSON assembles one summary document covering several
// files, keyed by file name. A single file keeps the cached per-file
// path; rows whose summary is missing are re-parsed concurrently.
func (s *FileService) CombinedSummaryJSON(ctx context.Context, ids []uuid.UUID) (string, error) {
	if len(ids) == 1 {
		return s.SummaryJSON(ctx, ids[0])
	}

	combined := make(map[string]any, len(ids))
	missing := map[string]string{}     // storage path -> file type
	nameByPath := map[string]string{}  // storage path -> file name
	for _, id := range ids {
		row, err := s.files.GetByID(dbctx.Context{Ctx: ctx}, id)
		if err != nil {
			return "", err
		}
		if len(row.Summary) > 0 {
			combined[row.FileName] = json.RawMessage(row.Summary)
			continue
		}
		missing[row.StoragePath] = row.FileType
		nameByPath[row.StoragePath] = row.FileName
	}

	if len(missing) > 0 {
		summaries, err := s.summarizer.SummarizeFiles(ctx, missing)
		if err != nil {
			return "", err
		}
		for path, summary := range summaries {
			combined[nameByPath[path]] = summary
		}
	}

	raw, err := json.Marshal(combined)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SummaryJSON returns the file's summary, preferring the cache.
func (s *FileService) SummaryJSON(ctx context.Context, id uuid.UUID) (string, error) {
	if cached := s.cache.Get(ctx, id.String()); cached != "" {
		return cached, nil
	}
	row, err := s.files.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return "", err
	}
	if len(row.Summary) == 0 {
		summary, err := s.summarizer.SummarizeFile(row.StoragePath, row.FileType)
		if err != nil {
			return "", err
		}
		raw, err := json.Marshal(summary)
		if err != nil {
			return "", err
		}
		if err := s.files.UpdateFields(dbctx.Context{Ctx: ctx}, id, map[string]interface{}{
			"summary": datatypes.JSON(raw),
		}); err != nil {
			s.log.Warn("failed to backfill summary", "file_id", id, "error", err)
		}
		s.cache.Set(ctx, id.String(), string(raw))
		return string(raw), nil
	}
	s.cache.Set(ctx, id.String(), string(row.Summary))
	return string(row.Summary), nil
}
