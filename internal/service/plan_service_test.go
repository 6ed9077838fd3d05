package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockPlanRepo struct {
	plans     map[int64]*models.Plan
	deletedID int64
}

func (m *mockPlanRepo) List(ctx context.Context) ([]models.Plan, error) {
	var all []models.Plan
	for _, plan := range m.plans {
		all = append(all, *plan)
	}
	return all, nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *plan
	return &copied, nil
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	plan.ID = int64(len(m.plans) + 1)
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanRepo) Update(ctx context.Context, plan *models.Plan) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanRepo) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	delete(m.plans, id)
	return nil
}

func TestPlanServiceCreate(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]*models.Plan{}}
	svc := NewPlanService(repo, nil, nil)

	plan, err := svc.Create(context.Background(), PlanRequest{Title: "Gold", Duration: 3, Price: money("109.90")})
	require.NoError(t, err)
	assert.NotZero(t, plan.ID)
	assert.True(t, money("109.90").Equal(plan.Price))
}

func TestPlanServiceCreateRejectsNonPositivePrice(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]*models.Plan{}}
	svc := NewPlanService(repo, nil, nil)

	_, err := svc.Create(context.Background(), PlanRequest{Title: "Free", Duration: 1, Price: money("-1")})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.plans)
}

func TestPlanServiceUpdateMissing(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]*models.Plan{}}
	svc := NewPlanService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 404, PlanRequest{Title: "Gold", Duration: 3, Price: money("109.90")})
	assert.ErrorIs(t, err, appErrors.ErrPlanNotFound)
}

func TestPlanServiceUpdate(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]*models.Plan{
		5: {ID: 5, Title: "Start", Duration: 1, Price: money("129")},
	}}
	svc := NewPlanService(repo, nil, nil)

	plan, err := svc.Update(context.Background(), 5, PlanRequest{Title: "Start", Duration: 3, Price: money("109.90")})
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Duration)
	assert.True(t, money("109.90").Equal(plan.Price))
}

func TestPlanServiceDelete(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]*models.Plan{
		5: {ID: 5, Title: "Start", Duration: 1, Price: money("129")},
	}}
	svc := NewPlanService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.Equal(t, int64(5), repo.deletedID)

	err := svc.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, appErrors.ErrPlanNotFound)
}
