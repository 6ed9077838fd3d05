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

type mockStudentRepo struct {
	students map[int64]*models.Student
	emails   map[string]int64
	created  *models.Student
	updated  *models.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: map[int64]*models.Student{}, emails: map[string]int64{}}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var all []models.Student
	for _, student := range m.students {
		all = append(all, *student)
	}
	return all, len(all), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	id, ok := m.emails[email]
	return ok && id != excludeID, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = int64(len(m.students) + 1)
	m.students[student.ID] = student
	m.emails[student.Email] = student.ID
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	m.updated = student
	return nil
}

func validStudentRequest() StudentRequest {
	return StudentRequest{Name: "Diego", Email: "diego@gympoint.com", Age: 28, Weight: 80.5, Height: 1.78}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.NotZero(t, student.ID)
	assert.Equal(t, "diego@gympoint.com", student.Email)
}

func TestStudentServiceCreateDuplicatedEmail(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validStudentRequest())
	assert.ErrorIs(t, err, appErrors.ErrDuplicatedEmail)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	req := validStudentRequest()
	req.Email = "not-an-email"
	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestStudentServiceUpdateKeepingOwnEmail(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	req := validStudentRequest()
	req.Weight = 82
	updated, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 82.0, updated.Weight)
}

func TestStudentServiceUpdateMissing(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 404, validStudentRequest())
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}

func TestStudentServiceFindMissing(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Find(context.Background(), 404)
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}

func TestStudentServiceListPaginationDefaults(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
