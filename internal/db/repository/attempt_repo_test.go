package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/exam"
)

type mockAttemptStore struct {
	mock.Mock
}

func (m *mockAttemptStore) CreateAttempt(ctx context.Context, arg queries.CreateAttemptParams) (queries.ExamAttempt, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.ExamAttempt), args.Error(1)
}

func (m *mockAttemptStore) GetAttempt(ctx context.Context, attemptID int64) (queries.ExamAttempt, error) {
	args := m.Called(ctx, attemptID)
	return args.Get(0).(queries.ExamAttempt), args.Error(1)
}

func (m *mockAttemptStore) UpdateAttemptScore(ctx context.Context, arg queries.UpdateAttemptScoreParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockAttemptStore) ListAttemptsByUserExam(ctx context.Context, arg queries.ListAttemptsByUserExamParams) ([]queries.ExamAttempt, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.ExamAttempt), args.Error(1)
}

func TestAttemptRepository_Open(t *testing.T) {
	store := new(mockAttemptStore)
	repo := NewAttemptRepository(store)

	user := uuidFromByte(7)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.On("CreateAttempt", mock.Anything, queries.CreateAttemptParams{UserID: toPgUUID(user), ExamID: 3}).
		Return(queries.ExamAttempt{AttemptID: 41, UserID: toPgUUID(user), ExamID: 3, AttemptNo: 2, CreatedAt: tsAt(created)}, nil)

	got, err := repo.Open(context.Background(), user, 3)

	require.NoError(t, err)
	assert.Equal(t, exam.Attempt{ID: 41, UserID: user, ExamID: 3, Number: 2, CreatedAt: created}, got)
	store.AssertExpectations(t)
}

func TestAttemptRepository_GetMissing(t *testing.T) {
	store := new(mockAttemptStore)
	repo := NewAttemptRepository(store)

	store.On("GetAttempt", mock.Anything, int64(9)).Return(queries.ExamAttempt{}, pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)

	assert.ErrorIs(t, err, exam.ErrAttemptNotFound)
}

func TestAttemptRepository_GetError(t *testing.T) {
	store := new(mockAttemptStore)
	repo := NewAttemptRepository(store)

	boom := errors.New("connection reset")
	store.On("GetAttempt", mock.Anything, int64(9)).Return(queries.ExamAttempt{}, boom)

	_, err := repo.Get(context.Background(), 9)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, exam.ErrAttemptNotFound)
}

func TestAttemptRepository_SetScore(t *testing.T) {
	store := new(mockAttemptStore)
	repo := NewAttemptRepository(store)

	store.On("UpdateAttemptScore", mock.Anything, queries.UpdateAttemptScoreParams{AttemptID: 41, Score: 80}).Return(nil)

	assert.NoError(t, repo.SetScore(context.Background(), 41, 80))
	store.AssertExpectations(t)
}

func TestAttemptRepository_List(t *testing.T) {
	store := new(mockAttemptStore)
	repo := NewAttemptRepository(store)

	user := uuidFromByte(7)
	store.On("ListAttemptsByUserExam", mock.Anything, queries.ListAttemptsByUserExamParams{UserID: toPgUUID(user), ExamID: 3}).
		Return([]queries.ExamAttempt{
			{AttemptID: 2, UserID: toPgUUID(user), ExamID: 3, AttemptNo: 2, Score: 90},
			{AttemptID: 1, UserID: toPgUUID(user), ExamID: 3, AttemptNo: 1, Score: 70},
		}, nil)

	got, err := repo.List(context.Background(), user, 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, 90, got[0].Score)
	assert.Equal(t, user, got[1].UserID)
}
