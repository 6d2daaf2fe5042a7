package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// ByteLogRepository persists ByteLog posts.
type ByteLogRepository struct {
	db *sqlx.DB
}

// NewByteLogRepository constructs the repository.
func NewByteLogRepository(db *sqlx.DB) *ByteLogRepository {
	return &ByteLogRepository{db: db}
}

// List returns bytelogs filtered by the provided criteria.
func (r *ByteLogRepository) List(ctx context.Context, filter models.ByteLogFilter) ([]models.ByteLog, int, error) {
	base := "FROM bytelogs b"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("b.published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(b.title) LIKE $%d OR LOWER(b.summary) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT b.id, b.slug, b.title, b.summary, b.body, b.author_name, b.cover_path, b.published, b.published_at, b.created_at, b.updated_at
        %s ORDER BY b.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var logs []models.ByteLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bytelogs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bytelogs: %w", err)
	}
	return logs, total, nil
}

// FindByID fetches a bytelog by ID.
func (r *ByteLogRepository) FindByID(ctx context.Context, id string) (*models.ByteLog, error) {
	var log models.ByteLog
	query := `SELECT id, slug, title, summary, body, author_name, cover_path, published, published_at, created_at, updated_at FROM bytelogs WHERE id = $1`
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// FindBySlug fetches a bytelog by its URL slug.
func (r *ByteLogRepository) FindBySlug(ctx context.Context, slug string) (*models.ByteLog, error) {
	var log models.ByteLog
	query := `SELECT id, slug, title, summary, body, author_name, cover_path, published, published_at, created_at, updated_at FROM bytelogs WHERE slug = $1`
	if err := r.db.GetContext(ctx, &log, query, slug); err != nil {
		return nil, err
	}
	return &log, nil
}

// Create inserts a new bytelog.
func (r *ByteLogRepository) Create(ctx context.Context, log *models.ByteLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	query := `INSERT INTO bytelogs (id, slug, title, summary, body, author_name, cover_path, published, published_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, log.ID, log.Slug, log.Title, log.Summary, log.Body, log.AuthorName, log.CoverPath, log.Published, log.PublishedAt, log.CreatedAt, log.UpdatedAt); err != nil {
		return fmt.Errorf("create bytelog: %w", err)
	}
	return nil
}

// Update persists mutable bytelog fields.
func (r *ByteLogRepository) Update(ctx context.Context, log *models.ByteLog) error {
	log.UpdatedAt = time.Now().UTC()
	query := `UPDATE bytelogs SET slug = $2, title = $3, summary = $4, body = $5, author_name = $6, cover_path = $7, published = $8, published_at = $9, updated_at = $10 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, log.ID, log.Slug, log.Title, log.Summary, log.Body, log.AuthorName, log.CoverPath, log.Published, log.PublishedAt, log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bytelog: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("bytelog %s not found", log.ID)
	}
	return nil
}

// Delete removes a bytelog.
func (r *ByteLogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bytelogs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete bytelog: %w", err)
	}
	return nil
}
