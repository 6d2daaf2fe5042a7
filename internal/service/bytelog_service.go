package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bytezen/bytezen-api/internal/models"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/storage"
)

type byteLogRepository interface {
	List(ctx context.Context, filter models.ByteLogFilter) ([]models.ByteLog, int, error)
	FindByID(ctx context.Context, id string) (*models.ByteLog, error)
	FindBySlug(ctx context.Context, slug string) (*models.ByteLog, error)
	Create(ctx context.Context, log *models.ByteLog) error
	Update(ctx context.Context, log *models.ByteLog) error
	Delete(ctx context.Context, id string) error
}

// ByteLogRequest holds payload for creating or updating posts.
type ByteLogRequest struct {
	Slug       string `json:"slug" validate:"required,lowercase"`
	Title      string `json:"title" validate:"required"`
	Summary    string `json:"summary"`
	Body       string `json:"body" validate:"required"`
	AuthorName string `json:"author_name" validate:"required"`
	Published  bool   `json:"published"`
}

// ByteLogService manages blog posts and their cover images. Covers live on
// local storage and are served through short-lived signed URLs.
type ByteLogService struct {
	repo      byteLogRepository
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewByteLogService constructs the bytelog service.
func NewByteLogService(repo byteLogRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *ByteLogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ByteLogService{repo: repo, storage: store, signer: signer, validator: validate, logger: logger}
}

// List returns posts and pagination metadata with cover URLs resolved.
func (s *ByteLogService) List(ctx context.Context, filter models.ByteLogFilter) ([]models.ByteLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bytelogs")
	}
	for i := range logs {
		s.resolveCoverURL(&logs[i])
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return logs, pagination, nil
}

// Get returns one post by ID.
func (s *ByteLogService) Get(ctx context.Context, id string) (*models.ByteLog, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bytelog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bytelog")
	}
	s.resolveCoverURL(log)
	return log, nil
}

// GetBySlug returns one post by its URL slug.
func (s *ByteLogService) GetBySlug(ctx context.Context, slug string) (*models.ByteLog, error) {
	log, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bytelog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bytelog")
	}
	s.resolveCoverURL(log)
	return log, nil
}

// Create drafts a new post.
func (s *ByteLogService) Create(ctx context.Context, req ByteLogRequest) (*models.ByteLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bytelog payload")
	}
	if existing, err := s.repo.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slug already used")
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate slug")
	}
	log := &models.ByteLog{
		Slug:       req.Slug,
		Title:      req.Title,
		Summary:    req.Summary,
		Body:       req.Body,
		AuthorName: req.AuthorName,
		Published:  req.Published,
	}
	if req.Published {
		now := time.Now().UTC()
		log.PublishedAt = &now
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bytelog")
	}
	return log, nil
}

// Update modifies an existing post. Flipping published on for the first time
// stamps the publish date.
func (s *ByteLogService) Update(ctx context.Context, id string, req ByteLogRequest) (*models.ByteLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bytelog payload")
	}
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bytelog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bytelog")
	}
	log.Slug = req.Slug
	log.Title = req.Title
	log.Summary = req.Summary
	log.Body = req.Body
	log.AuthorName = req.AuthorName
	if req.Published && !log.Published {
		now := time.Now().UTC()
		log.PublishedAt = &now
	}
	log.Published = req.Published
	if err := s.repo.Update(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bytelog")
	}
	s.resolveCoverURL(log)
	return log, nil
}

// Delete removes a post and its stored cover image.
func (s *ByteLogService) Delete(ctx context.Context, id string) error {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "bytelog not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bytelog")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete bytelog")
	}
	if log.CoverPath != nil && s.storage != nil {
		if err := s.storage.Delete(*log.CoverPath); err != nil {
			s.logger.Warn("failed to delete cover file", zap.String("bytelog_id", id), zap.Error(err))
		}
	}
	return nil
}

// UploadCover stores the uploaded image and attaches it to the post.
func (s *ByteLogService) UploadCover(ctx context.Context, id, originalName string, data []byte) (*models.ByteLog, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bytelog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bytelog")
	}
	if s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "upload storage is not configured")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported cover format %q", ext))
	}

	relPath := filepath.Join("bytelogs", id, uuid.NewString()+ext)
	if _, err := s.storage.Save(relPath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store cover image")
	}

	old := log.CoverPath
	log.CoverPath = &relPath
	if err := s.repo.Update(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach cover image")
	}
	if old != nil && *old != relPath {
		if err := s.storage.Delete(*old); err != nil {
			s.logger.Warn("failed to delete previous cover", zap.String("bytelog_id", id), zap.Error(err))
		}
	}
	s.resolveCoverURL(log)
	return log, nil
}

// ResolveCoverToken validates a signed cover token and opens the file.
func (s *ByteLogService) ResolveCoverToken(token string) (string, error) {
	if s.signer == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "signer is not configured")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid cover token")
	}
	if s.storage == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "upload storage is not configured")
	}
	return s.storage.Path(relPath), nil
}

func (s *ByteLogService) resolveCoverURL(log *models.ByteLog) {
	if log == nil || log.CoverPath == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(log.ID, *log.CoverPath)
	if err != nil {
		s.logger.Warn("failed to sign cover url", zap.String("bytelog_id", log.ID), zap.Error(err))
		return
	}
	log.CoverURL = "/api/v1/bytelogs/covers/" + token
}
