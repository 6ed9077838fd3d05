package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/service"
	"github.com/gympoint/gympoint-api/pkg/response"
)

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type fakeEnrollmentRepo struct {
	byID    map[int64]*models.Enrollment
	details []models.EnrollmentDetail
	created *models.Enrollment
	deleted []int64
}

func (f *fakeEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return f.details, nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = 1
	f.created = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	f.byID[enrollment.ID] = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStudentReader struct {
	students map[int64]*models.Student
}

func (f *fakeStudentReader) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type fakePlanReader struct {
	plans map[int64]*models.Plan
}

func (f *fakePlanReader) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return plan, nil
}

func buildEnrollmentRouter(repo *fakeEnrollmentRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	students := &fakeStudentReader{students: map[int64]*models.Student{
		1: {ID: 1, Name: "Diego", Email: "diego@gympoint.com"},
	}}
	plans := &fakePlanReader{plans: map[int64]*models.Plan{
		5: {ID: 5, Title: "Start", Duration: 2, Price: decimal.RequireFromString("100")},
	}}
	svc := service.NewEnrollmentService(repo, students, plans, nil, 0, nil, nil, nil)
	h := NewEnrollmentHandler(svc)

	router := gin.New()
	router.GET("/enrollments", h.List)
	router.POST("/enrollments", h.Create)
	router.PUT("/enrollments/:id", h.Update)
	router.DELETE("/enrollments/:id", h.Delete)
	router.GET("/enrollments/export", h.Export)
	return router
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	repo := &fakeEnrollmentRepo{byID: map[int64]*models.Enrollment{}}
	router := buildEnrollmentRouter(repo)

	body := `{"student_id":1,"plan_id":5,"start_date":"2024-01-10"}`
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var enrollment models.Enrollment
	require.NoError(t, json.Unmarshal(payload, &enrollment))
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), enrollment.EndDate.UTC())
	assert.True(t, decimal.RequireFromString("200").Equal(enrollment.Price))
}

func TestEnrollmentHandlerCreateUnknownStudent(t *testing.T) {
	repo := &fakeEnrollmentRepo{byID: map[int64]*models.Enrollment{}}
	router := buildEnrollmentRouter(repo)

	body := `{"student_id":99,"plan_id":5,"start_date":"2024-01-10"}`
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Student not exists")
}

func TestEnrollmentHandlerCreateInvalidPayload(t *testing.T) {
	repo := &fakeEnrollmentRepo{byID: map[int64]*models.Enrollment{}}
	router := buildEnrollmentRouter(repo)

	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(`{"student_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEnrollmentHandlerList(t *testing.T) {
	repo := &fakeEnrollmentRepo{
		byID: map[int64]*models.Enrollment{},
		details: []models.EnrollmentDetail{
			{Enrollment: models.Enrollment{ID: 7}, StudentName: "Diego", PlanTitle: "Start"},
		},
	}
	router := buildEnrollmentRouter(repo)

	req, _ := http.NewRequest(http.MethodGet, "/enrollments", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"student_name":"Diego"`)
}

func TestEnrollmentHandlerDeleteMissingReturnsSoftPayload(t *testing.T) {
	repo := &fakeEnrollmentRepo{byID: map[int64]*models.Enrollment{}}
	router := buildEnrollmentRouter(repo)

	req, _ := http.NewRequest(http.MethodDelete, "/enrollments/404", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"deleted":false`)
	assert.Contains(t, resp.Body.String(), "Enrollment not exists")
	assert.Empty(t, repo.deleted)
}

func TestEnrollmentHandlerDelete(t *testing.T) {
	repo := &fakeEnrollmentRepo{byID: map[int64]*models.Enrollment{
		7: {ID: 7, StudentID: 1, PlanID: 5},
	}}
	router := buildEnrollmentRouter(repo)

	req, _ := http.NewRequest(http.MethodDelete, "/enrollments/7", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"deleted":true`)
	assert.Equal(t, []int64{7}, repo.deleted)
}

func TestEnrollmentHandlerExportCSV(t *testing.T) {
	repo := &fakeEnrollmentRepo{
		byID: map[int64]*models.Enrollment{},
		details: []models.EnrollmentDetail{
			{
				Enrollment: models.Enrollment{
					ID:        7,
					StartDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
					Price:     decimal.RequireFromString("200"),
				},
				StudentName: "Diego",
				PlanTitle:   "Start",
			},
		},
	}
	router := buildEnrollmentRouter(repo)

	req, _ := http.NewRequest(http.MethodGet, "/enrollments/export?format=csv", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Body.String(), "Diego")
	assert.Contains(t, resp.Body.String(), "200.00")
}
