package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notify"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type helpOrderRepository interface {
	Create(ctx context.Context, order *models.HelpOrder) error
	FindOpenByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error)
	FindByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error)
	Answer(ctx context.Context, id primitive.ObjectID, answer string, answeredAt time.Time) (*models.HelpOrder, error)
}

// AnswerHelpOrderRequest carries the staff answer text.
type AnswerHelpOrderRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// CreateHelpOrderRequest carries a student question.
type CreateHelpOrderRequest struct {
	Question string `json:"question" validate:"required"`
}

// HelpOrderService orchestrates the help order (student Q&A) workflow.
type HelpOrderService struct {
	repo      helpOrderRepository
	students  studentReader
	notifier  notify.Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHelpOrderService constructs HelpOrderService.
func NewHelpOrderService(repo helpOrderRepository, students studentReader, notifier notify.Notifier, validate *validator.Validate, logger *zap.Logger) *HelpOrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &HelpOrderService{repo: repo, students: students, notifier: notifier, validator: validate, logger: logger}
}

// Answer records the staff answer on a help order. The answer and its
// timestamp are set atomically in a single document update; answering an
// already-answered ticket overwrites both fields.
func (s *HelpOrderService) Answer(ctx context.Context, id string, req AnswerHelpOrderRequest) (*models.HelpOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.ErrHelpOrderNotFound
	}

	order, err := s.repo.Answer(ctx, orderID, req.Answer, time.Now().UTC())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrHelpOrderNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to answer help order")
	}

	// Referential integrity is expected to hold: a help order always
	// points at an existing student, so a miss here is internal, not a
	// caller mistake.
	student, err := s.students.FindByID(ctx, order.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load help order student")
	}

	if err := s.notifier.Notify(ctx, notify.KindHelpOrderAnswered, notify.HelpOrderAnswered{
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Question:     order.Question,
		Answer:       req.Answer,
	}); err != nil {
		s.logger.Warn("help order notification failed", zap.String("help_order_id", id), zap.Error(err))
	}

	return order, nil
}

// ListOpen returns a student's unanswered help orders, newest first.
func (s *HelpOrderService) ListOpen(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	orders, err := s.repo.FindOpenByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list help orders")
	}
	return orders, nil
}

// ListByStudent returns every help order of a student, newest first.
func (s *HelpOrderService) ListByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	orders, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list help orders")
	}
	return orders, nil
}

// CreateQuestion opens a new help order for a student.
func (s *HelpOrderService) CreateQuestion(ctx context.Context, studentID int64, req CreateHelpOrderRequest) (*models.HelpOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	order := &models.HelpOrder{StudentID: studentID, Question: req.Question}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create help order")
	}
	return order, nil
}
