package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// PartnerRepository persists partner organisations.
type PartnerRepository struct {
	db *sqlx.DB
}

// NewPartnerRepository constructs the repository.
func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// List returns partners, optionally restricted to active ones.
func (r *PartnerRepository) List(ctx context.Context, activeOnly bool) ([]models.Partner, error) {
	query := `SELECT id, name, website, logo_url, active, created_at, updated_at FROM partners`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query); err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return partners, nil
}

// FindByID fetches a partner by ID.
func (r *PartnerRepository) FindByID(ctx context.Context, id string) (*models.Partner, error) {
	var partner models.Partner
	query := `SELECT id, name, website, logo_url, active, created_at, updated_at FROM partners WHERE id = $1`
	if err := r.db.GetContext(ctx, &partner, query, id); err != nil {
		return nil, err
	}
	return &partner, nil
}

// Create inserts a new partner.
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.ID == "" {
		partner.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	partner.CreatedAt = now
	partner.UpdatedAt = now
	query := `INSERT INTO partners (id, name, website, logo_url, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, partner.ID, partner.Name, partner.Website, partner.LogoURL, partner.Active, partner.CreatedAt, partner.UpdatedAt); err != nil {
		return fmt.Errorf("create partner: %w", err)
	}
	return nil
}

// Update persists mutable partner fields.
func (r *PartnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	partner.UpdatedAt = time.Now().UTC()
	query := `UPDATE partners SET name = $2, website = $3, logo_url = $4, active = $5, updated_at = $6 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, partner.ID, partner.Name, partner.Website, partner.LogoURL, partner.Active, partner.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("partner %s not found", partner.ID)
	}
	return nil
}

// Delete removes a partner.
func (r *PartnerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	return nil
}
