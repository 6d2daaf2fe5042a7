package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// CouncilRepository persists the student council roster.
type CouncilRepository struct {
	db *sqlx.DB
}

// NewCouncilRepository constructs the repository.
func NewCouncilRepository(db *sqlx.DB) *CouncilRepository {
	return &CouncilRepository{db: db}
}

// List returns council members in display order.
func (r *CouncilRepository) List(ctx context.Context, activeOnly bool) ([]models.CouncilMember, error) {
	query := `SELECT id, name, role, photo_url, linkedin, github, position, active, created_at, updated_at FROM council_members`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY position ASC, name ASC`
	var members []models.CouncilMember
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("list council members: %w", err)
	}
	return members, nil
}

// FindByID fetches a council member by ID.
func (r *CouncilRepository) FindByID(ctx context.Context, id string) (*models.CouncilMember, error) {
	var member models.CouncilMember
	query := `SELECT id, name, role, photo_url, linkedin, github, position, active, created_at, updated_at FROM council_members WHERE id = $1`
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a new council member.
func (r *CouncilRepository) Create(ctx context.Context, member *models.CouncilMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	query := `INSERT INTO council_members (id, name, role, photo_url, linkedin, github, position, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, member.ID, member.Name, member.Role, member.PhotoURL, member.LinkedIn, member.GitHub, member.Position, member.Active, member.CreatedAt, member.UpdatedAt); err != nil {
		return fmt.Errorf("create council member: %w", err)
	}
	return nil
}

// Update persists mutable council member fields.
func (r *CouncilRepository) Update(ctx context.Context, member *models.CouncilMember) error {
	member.UpdatedAt = time.Now().UTC()
	query := `UPDATE council_members SET name = $2, role = $3, photo_url = $4, linkedin = $5, github = $6, position = $7, active = $8, updated_at = $9 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, member.ID, member.Name, member.Role, member.PhotoURL, member.LinkedIn, member.GitHub, member.Position, member.Active, member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update council member: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("council member %s not found", member.ID)
	}
	return nil
}

// Delete removes a council member.
func (r *CouncilRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM council_members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete council member: %w", err)
	}
	return nil
}
