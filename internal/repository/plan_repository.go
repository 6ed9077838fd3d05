package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// PlanRepository manages persistence for plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs a PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns every plan ordered by duration.
func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	const query = `SELECT id, title, duration, price, created_at, updated_at FROM plans ORDER BY duration ASC`
	var plans []models.Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// FindByID fetches a plan by ID. Returns sql.ErrNoRows when absent.
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	const query = `SELECT id, title, duration, price, created_at, updated_at FROM plans WHERE id = $1`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	const query = `INSERT INTO plans (title, duration, price, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &plan.ID, query,
		plan.Title, plan.Duration, plan.Price, plan.CreatedAt, plan.UpdatedAt); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// Update modifies an existing plan.
func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE plans SET title = $2, duration = $3, price = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.Title, plan.Duration, plan.Price, plan.UpdatedAt); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Delete removes a plan.
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
