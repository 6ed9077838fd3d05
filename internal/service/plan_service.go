package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type planRepository interface {
	List(ctx context.Context) ([]models.Plan, error)
	FindByID(ctx context.Context, id int64) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id int64) error
}

// PlanRequest describes plan creation and update input.
type PlanRequest struct {
	Title    string          `json:"title" validate:"required"`
	Duration int             `json:"duration" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

// PlanService manages plan offerings.
type PlanService struct {
	repo      planRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService constructs PlanService.
func NewPlanService(repo planRepository, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, validator: validate, logger: logger}
}

// List returns every plan.
func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return plans, nil
}

// Create registers a new plan.
func (s *PlanService) Create(ctx context.Context, req PlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if !req.Price.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "")
	}

	plan := &models.Plan{Title: req.Title, Duration: req.Duration, Price: req.Price}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	return plan, nil
}

// Update modifies an existing plan. Existing enrollments keep their
// captured price and duration; only future writes read the new values.
func (s *PlanService) Update(ctx context.Context, id int64, req PlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if !req.Price.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "")
	}

	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	plan.Title = req.Title
	plan.Duration = req.Duration
	plan.Price = req.Price

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan")
	}
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrPlanNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	return nil
}
