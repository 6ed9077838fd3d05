package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/billing"
	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notify"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

const enrollmentListCacheKey = "enrollments:index"

type enrollmentRepository interface {
	List(ctx context.Context) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id int64) error
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type planReader interface {
	FindByID(ctx context.Context, id int64) (*models.Plan, error)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string)
}

// StoreEnrollmentRequest describes enrollment creation input.
type StoreEnrollmentRequest struct {
	StudentID int64       `json:"student_id" validate:"required,gt=0"`
	PlanID    int64       `json:"plan_id" validate:"required,gt=0"`
	StartDate models.Date `json:"start_date"`
}

// UpdateEnrollmentRequest describes a partial enrollment update. A field
// left nil keeps the current value.
type UpdateEnrollmentRequest struct {
	StudentID *int64       `json:"student_id" validate:"omitempty,gt=0"`
	PlanID    *int64       `json:"plan_id" validate:"omitempty,gt=0"`
	StartDate *models.Date `json:"start_date"`
}

// EnrollmentService orchestrates the enrollment lifecycle: the
// student/plan existence chain guarding every mutation, derivation of
// end date and total price, persistence and the created notification.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	plans     planReader
	cache     listCache
	cacheTTL  time.Duration
	notifier  notify.Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. cache may be nil to
// disable listing cache.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, plans planReader, cache listCache, cacheTTL time.Duration, notifier notify.Notifier, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		plans:     plans,
		cache:     cache,
		cacheTTL:  cacheTTL,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
	}
}

// Store enrolls a student into a plan. The plan's monthly price and
// duration are captured at enrollment time; end date and total price are
// derived from them, never accepted from the caller.
func (s *EnrollmentService) Store(ctx context.Context, req StoreEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if req.StartDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	endDate, total := billing.Derive(req.StartDate.Time, plan.Price, plan.Duration)
	enrollment := &models.Enrollment{
		StudentID:  req.StudentID,
		PlanID:     req.PlanID,
		StartDate:  billing.StartOfDay(req.StartDate.Time),
		EndDate:    endDate,
		Price:      total,
		Duration:   plan.Duration,
		PriceMonth: plan.Price,
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidateListing(ctx)

	// Best-effort: a mail outage never rolls back the enrollment.
	if err := s.notifier.Notify(ctx, notify.KindEnrollmentCreated, notify.EnrollmentCreated{
		StudentName:  student.Name,
		StudentEmail: student.Email,
		PlanTitle:    plan.Title,
		TotalPrice:   enrollment.Price,
		EndDate:      enrollment.EndDate,
	}); err != nil {
		s.logger.Warn("enrollment notification failed", zap.Int64("enrollment_id", enrollment.ID), zap.Error(err))
	}

	return enrollment, nil
}

// List returns every enrollment with student and plan projections. Full
// scan by design; listing is cached when a cache is configured.
func (s *EnrollmentService) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	if s.cache != nil {
		var cached []models.EnrollmentDetail
		err := s.cache.Get(ctx, enrollmentListCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("enrollment cache read failed", zap.Error(err))
		}
	}

	enrollments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, enrollmentListCacheKey, enrollments, s.cacheTTL); err != nil {
			s.logger.Warn("enrollment cache write failed", zap.Error(err))
		}
	}
	return enrollments, nil
}

// Update applies a partial enrollment update. Duration and monthly price
// are always refreshed from the effective plan, so end date and price
// stay consistent even when only the start date changes. Fields not
// supplied keep their current values.
func (s *EnrollmentService) Update(ctx context.Context, id int64, req UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrEnrollmentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if req.StudentID != nil {
		if *req.StudentID != enrollment.StudentID {
			if _, err := s.students.FindByID(ctx, *req.StudentID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.ErrStudentNotFound
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
			}
		}
		enrollment.StudentID = *req.StudentID
	}

	planID := enrollment.PlanID
	if req.PlanID != nil {
		planID = *req.PlanID
	}
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	enrollment.PlanID = planID

	if req.StartDate != nil && !req.StartDate.IsZero() {
		enrollment.StartDate = billing.StartOfDay(req.StartDate.Time)
	}

	enrollment.Duration = plan.Duration
	enrollment.PriceMonth = plan.Price
	enrollment.EndDate, enrollment.Price = billing.Derive(enrollment.StartDate, plan.Price, plan.Duration)

	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	s.invalidateListing(ctx)
	return enrollment, nil
}

// Delete hard-deletes an enrollment. A missing id is reported inside the
// returned payload rather than as an error; the legacy web client treats
// the endpoint as always succeeding.
func (s *EnrollmentService) Delete(ctx context.Context, id int64) (*models.EnrollmentDeletion, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.EnrollmentDeletion{Deleted: false, Error: appErrors.ErrEnrollmentNotFound.Message}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}

	s.invalidateListing(ctx)
	return &models.EnrollmentDeletion{Deleted: true}, nil
}

func (s *EnrollmentService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, enrollmentListCacheKey)
	}
}
