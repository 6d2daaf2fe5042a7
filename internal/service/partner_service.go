package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bytezen/bytezen-api/internal/models"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

type partnerRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Partner, error)
	FindByID(ctx context.Context, id string) (*models.Partner, error)
	Create(ctx context.Context, partner *models.Partner) error
	Update(ctx context.Context, partner *models.Partner) error
	Delete(ctx context.Context, id string) error
}

// PartnerRequest holds payload for creating or updating partners.
type PartnerRequest struct {
	Name    string `json:"name" validate:"required"`
	Website string `json:"website" validate:"omitempty,url"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
	Active  bool   `json:"active"`
}

// PartnerService handles the partner roster shown on the public site.
type PartnerService struct {
	repo      partnerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPartnerService constructs the partner service.
func NewPartnerService(repo partnerRepository, validate *validator.Validate, logger *zap.Logger) *PartnerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerService{repo: repo, validator: validate, logger: logger}
}

// List returns partners, optionally only active ones.
func (s *PartnerService) List(ctx context.Context, activeOnly bool) ([]models.Partner, error) {
	partners, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list partners")
	}
	return partners, nil
}

// Create registers a partner organisation.
func (s *PartnerService) Create(ctx context.Context, req PartnerRequest) (*models.Partner, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid partner payload")
	}
	partner := &models.Partner{
		Name:    req.Name,
		Website: req.Website,
		LogoURL: req.LogoURL,
		Active:  req.Active,
	}
	if err := s.repo.Create(ctx, partner); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create partner")
	}
	return partner, nil
}

// Update modifies an existing partner.
func (s *PartnerService) Update(ctx context.Context, id string, req PartnerRequest) (*models.Partner, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid partner payload")
	}
	partner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	partner.Name = req.Name
	partner.Website = req.Website
	partner.LogoURL = req.LogoURL
	partner.Active = req.Active
	if err := s.repo.Update(ctx, partner); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update partner")
	}
	return partner, nil
}

// Delete removes a partner.
func (s *PartnerService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete partner")
	}
	return nil
}
