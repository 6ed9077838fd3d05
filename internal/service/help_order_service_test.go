package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notify"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockHelpOrderRepo struct {
	orders      map[primitive.ObjectID]*models.HelpOrder
	created     *models.HelpOrder
	answerCalls int
}

func (m *mockHelpOrderRepo) Create(ctx context.Context, order *models.HelpOrder) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	m.created = order
	return nil
}

func (m *mockHelpOrderRepo) FindOpenByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	var open []models.HelpOrder
	for _, order := range m.orders {
		if order.StudentID == studentID && order.Answer == nil {
			open = append(open, *order)
		}
	}
	return open, nil
}

func (m *mockHelpOrderRepo) FindByStudent(ctx context.Context, studentID int64) ([]models.HelpOrder, error) {
	var all []models.HelpOrder
	for _, order := range m.orders {
		if order.StudentID == studentID {
			all = append(all, *order)
		}
	}
	return all, nil
}

func (m *mockHelpOrderRepo) Answer(ctx context.Context, id primitive.ObjectID, answer string, answeredAt time.Time) (*models.HelpOrder, error) {
	m.answerCalls++
	order, ok := m.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	order.Answer = &answer
	order.AnswerAt = &answeredAt
	order.UpdatedAt = answeredAt
	copied := *order
	return &copied, nil
}

func newHelpOrderFixture() (*mockHelpOrderRepo, *mockStudentReader) {
	repo := &mockHelpOrderRepo{orders: map[primitive.ObjectID]*models.HelpOrder{}}
	students := &mockStudentReader{students: map[int64]*models.Student{
		1: {ID: 1, Name: "Diego", Email: "diego@gympoint.com"},
	}}
	return repo, students
}

func seedOrder(repo *mockHelpOrderRepo, studentID int64, question string) primitive.ObjectID {
	id := primitive.NewObjectID()
	repo.orders[id] = &models.HelpOrder{
		ID:        id,
		StudentID: studentID,
		Question:  question,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return id
}

func TestHelpOrderServiceAnswerSetsAnswerAndTimestamp(t *testing.T) {
	repo, students := newHelpOrderFixture()
	id := seedOrder(repo, 1, "Is creatine safe?")
	notifier := &recordingNotifier{}
	svc := NewHelpOrderService(repo, students, notifier, nil, nil)

	order, err := svc.Answer(context.Background(), id.Hex(), AnswerHelpOrderRequest{Answer: "Yes, within the usual dosage."})
	require.NoError(t, err)

	require.NotNil(t, order.Answer)
	assert.Equal(t, "Yes, within the usual dosage.", *order.Answer)
	require.NotNil(t, order.AnswerAt)
	assert.WithinDuration(t, time.Now().UTC(), *order.AnswerAt, time.Minute)

	require.Len(t, notifier.kinds, 1)
	assert.Equal(t, notify.KindHelpOrderAnswered, notifier.kinds[0])
	payload, ok := notifier.payloads[0].(notify.HelpOrderAnswered)
	require.True(t, ok)
	assert.Equal(t, "Is creatine safe?", payload.Question)
	assert.Equal(t, "diego@gympoint.com", payload.StudentEmail)
}

func TestHelpOrderServiceReAnswerOverwrites(t *testing.T) {
	repo, students := newHelpOrderFixture()
	id := seedOrder(repo, 1, "Opening hours?")
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.Answer(context.Background(), id.Hex(), AnswerHelpOrderRequest{Answer: "6am to 10pm."})
	require.NoError(t, err)
	first := *repo.orders[id].AnswerAt

	order, err := svc.Answer(context.Background(), id.Hex(), AnswerHelpOrderRequest{Answer: "6am to 11pm on weekdays."})
	require.NoError(t, err)
	assert.Equal(t, "6am to 11pm on weekdays.", *order.Answer)
	assert.False(t, order.AnswerAt.Before(first))
	assert.Equal(t, 2, repo.answerCalls)
}

func TestHelpOrderServiceAnswerRequiresText(t *testing.T) {
	repo, students := newHelpOrderFixture()
	id := seedOrder(repo, 1, "Question")
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.Answer(context.Background(), id.Hex(), AnswerHelpOrderRequest{})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Zero(t, repo.answerCalls)
}

func TestHelpOrderServiceAnswerInvalidID(t *testing.T) {
	repo, students := newHelpOrderFixture()
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.Answer(context.Background(), "not-a-hex-id", AnswerHelpOrderRequest{Answer: "hello"})
	assert.ErrorIs(t, err, appErrors.ErrHelpOrderNotFound)
	assert.Zero(t, repo.answerCalls)
}

func TestHelpOrderServiceAnswerUnknownID(t *testing.T) {
	repo, students := newHelpOrderFixture()
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.Answer(context.Background(), primitive.NewObjectID().Hex(), AnswerHelpOrderRequest{Answer: "hello"})
	assert.ErrorIs(t, err, appErrors.ErrHelpOrderNotFound)
}

func TestHelpOrderServiceListOpenExcludesAnswered(t *testing.T) {
	repo, students := newHelpOrderFixture()
	open := seedOrder(repo, 1, "Open question")
	answered := seedOrder(repo, 1, "Answered question")
	text := "done"
	now := time.Now().UTC()
	repo.orders[answered].Answer = &text
	repo.orders[answered].AnswerAt = &now
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	orders, err := svc.ListOpen(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open, orders[0].ID)
}

func TestHelpOrderServiceListOpenUnknownStudent(t *testing.T) {
	repo, students := newHelpOrderFixture()
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.ListOpen(context.Background(), 99)
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
}

func TestHelpOrderServiceCreateQuestion(t *testing.T) {
	repo, students := newHelpOrderFixture()
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	order, err := svc.CreateQuestion(context.Background(), 1, CreateHelpOrderRequest{Question: "Do you have yoga classes?"})
	require.NoError(t, err)
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, int64(1), order.StudentID)
	assert.Nil(t, order.Answer)
	require.NotNil(t, repo.created)
}

func TestHelpOrderServiceCreateQuestionUnknownStudent(t *testing.T) {
	repo, students := newHelpOrderFixture()
	svc := NewHelpOrderService(repo, students, nil, nil, nil)

	_, err := svc.CreateQuestion(context.Background(), 99, CreateHelpOrderRequest{Question: "Anyone there?"})
	assert.ErrorIs(t, err, appErrors.ErrStudentNotFound)
	assert.Nil(t, repo.created)
}
