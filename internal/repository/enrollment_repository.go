package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/billing"
	"github.com/gympoint/gympoint-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// derive re-applies the end date / price computation when the transient
// duration and monthly price are set. Writes never trust derived fields
// from the caller; a partial update without both inputs leaves them
// untouched.
func derive(e *models.Enrollment) {
	if e.Duration > 0 && e.PriceMonth.IsPositive() {
		e.EndDate, e.Price = billing.Derive(e.StartDate, e.PriceMonth, e.Duration)
	}
}

// List returns every enrollment joined with its student and plan
// projections, newest first. Full scan; the expected cardinality of a
// single gym keeps this acceptable.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.plan_id, e.start_date, e.end_date, e.price, e.created_at, e.updated_at,
        s.name AS student_name, s.email AS student_email, p.title AS plan_title, p.duration AS plan_duration
        FROM enrollments e
        LEFT JOIN students s ON s.id = e.student_id
        LEFT JOIN plans p ON p.id = e.plan_id
        ORDER BY e.start_date DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID. Returns sql.ErrNoRows when
// absent.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, plan_id, start_date, end_date, price, created_at, updated_at
        FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment, re-deriving end_date and price
// before commit.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	derive(enrollment)
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (student_id, plan_id, start_date, end_date, price, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &enrollment.ID, query,
		enrollment.StudentID, enrollment.PlanID, enrollment.StartDate, enrollment.EndDate,
		enrollment.Price, enrollment.CreatedAt, enrollment.UpdatedAt); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update rewrites an enrollment row, applying the same derivation
// backstop as Create.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	derive(enrollment)
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET student_id = $2, plan_id = $3, start_date = $4, end_date = $5, price = $6, updated_at = $7
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentID, enrollment.PlanID, enrollment.StartDate,
		enrollment.EndDate, enrollment.Price, enrollment.UpdatedAt); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// Delete hard-deletes an enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}
