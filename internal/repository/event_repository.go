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

// EventRepository persists community events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events filtered by the provided criteria.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events ev"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("ev.published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.Upcoming {
		conditions = append(conditions, "ev.starts_at >= NOW()")
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

	query := fmt.Sprintf(`SELECT ev.id, ev.title, ev.description, ev.location, ev.starts_at, ev.ends_at, ev.published, ev.created_at, ev.updated_at
        %s ORDER BY ev.starts_at ASC LIMIT %d OFFSET %d`, base, size, offset)

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID fetches an event by ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	query := `SELECT id, title, description, location, starts_at, ends_at, published, created_at, updated_at FROM events WHERE id = $1`
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	query := `INSERT INTO events (id, title, description, location, starts_at, ends_at, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt, event.Published, event.CreatedAt, event.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update persists mutable event fields.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE events SET title = $2, description = $3, location = $4, starts_at = $5, ends_at = $6, published = $7, updated_at = $8 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt, event.Published, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("event %s not found", event.ID)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
