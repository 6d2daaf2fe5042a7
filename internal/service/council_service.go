package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bytezen/bytezen-api/internal/models"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

type councilRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.CouncilMember, error)
	FindByID(ctx context.Context, id string) (*models.CouncilMember, error)
	Create(ctx context.Context, member *models.CouncilMember) error
	Update(ctx context.Context, member *models.CouncilMember) error
	Delete(ctx context.Context, id string) error
}

// CouncilMemberRequest holds payload for creating or updating roster entries.
type CouncilMemberRequest struct {
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	GitHub   string `json:"github" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
	Active   bool   `json:"active"`
}

// CouncilService manages the student council roster.
type CouncilService struct {
	repo      councilRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCouncilService constructs the council service.
func NewCouncilService(repo councilRepository, validate *validator.Validate, logger *zap.Logger) *CouncilService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouncilService{repo: repo, validator: validate, logger: logger}
}

// List returns council members in display order.
func (s *CouncilService) List(ctx context.Context, activeOnly bool) ([]models.CouncilMember, error) {
	members, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list council members")
	}
	return members, nil
}

// Create adds a member to the roster.
func (s *CouncilService) Create(ctx context.Context, req CouncilMemberRequest) (*models.CouncilMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid council member payload")
	}
	member := &models.CouncilMember{
		Name:     req.Name,
		Role:     req.Role,
		PhotoURL: req.PhotoURL,
		LinkedIn: req.LinkedIn,
		GitHub:   req.GitHub,
		Position: req.Position,
		Active:   req.Active,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create council member")
	}
	return member, nil
}

// Update modifies a roster entry.
func (s *CouncilService) Update(ctx context.Context, id string, req CouncilMemberRequest) (*models.CouncilMember, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid council member payload")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "council member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load council member")
	}
	member.Name = req.Name
	member.Role = req.Role
	member.PhotoURL = req.PhotoURL
	member.LinkedIn = req.LinkedIn
	member.GitHub = req.GitHub
	member.Position = req.Position
	member.Active = req.Active
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update council member")
	}
	return member, nil
}

// Delete removes a roster entry.
func (s *CouncilService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "council member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load council member")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete council member")
	}
	return nil
}
