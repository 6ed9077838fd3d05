package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
)

func newEnrollmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "plan_id", "start_date", "end_date", "price", "created_at", "updated_at", "student_name", "student_email", "plan_title", "plan_duration"}).
		AddRow(1, 1, 5, now, now.AddDate(0, 2, 0), "200", now, now, "Diego", "diego@gympoint.com", "Start", 2)
	mock.ExpectQuery("SELECT e.id, e.student_id").WillReturnRows(rows)

	enrollments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Diego", enrollments[0].StudentName)
	assert.True(t, decimal.RequireFromString("200").Equal(enrollments[0].Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDerivesBeforeInsert(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(int64(1), int64(5), start, wantEnd, "200", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	enrollment := &models.Enrollment{
		StudentID:  1,
		PlanID:     5,
		StartDate:  start,
		Duration:   2,
		PriceMonth: decimal.RequireFromString("100"),
	}
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)

	assert.Equal(t, int64(7), enrollment.ID)
	assert.Equal(t, wantEnd, enrollment.EndDate)
	assert.True(t, decimal.RequireFromString("200").Equal(enrollment.Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateWithoutTransientInputsKeepsFields(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(int64(1), int64(5), start, end, "500", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	enrollment := &models.Enrollment{
		StudentID: 1,
		PlanID:    5,
		StartDate: start,
		EndDate:   end,
		Price:     decimal.RequireFromString("500"),
	}
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	assert.Equal(t, end, enrollment.EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateReappliesDerivation(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE enrollments SET").
		WithArgs(int64(7), int64(1), int64(6), start, wantEnd, "150", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{
		ID:         7,
		StudentID:  1,
		PlanID:     6,
		StartDate:  start,
		Duration:   1,
		PriceMonth: decimal.RequireFromString("150"),
	}
	err := repo.Update(context.Background(), enrollment)
	require.NoError(t, err)
	assert.Equal(t, wantEnd, enrollment.EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
