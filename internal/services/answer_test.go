package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

type mockAnswerRepo struct {
	answers map[int64]types.Answer
	nextID  int64
	votes   map[int64]map[int64]int
}

func newMockAnswerRepo() *mockAnswerRepo {
	return &mockAnswerRepo{
		answers: make(map[int64]types.Answer),
		votes:   make(map[int64]map[int64]int),
	}
}

func (m *mockAnswerRepo) ListByQuestion(_ context.Context, _ int64, _ types.AnswerSort) ([]types.Answer, error) {
	return []types.Answer{}, nil
}

func (m *mockAnswerRepo) Create(_ context.Context, questionID, authorID int64, content string) (types.Answer, error) {
	m.nextID++
	a := types.Answer{ID: m.nextID, QuestionID: questionID, AuthorID: authorID, Content: content}
	m.answers[a.ID] = a
	return a, nil
}

func (m *mockAnswerRepo) SetVote(_ context.Context, answerID, userID int64, value int) (int, error) {
	if _, ok := m.answers[answerID]; !ok {
		return 0, store.ErrNotFound
	}
	if m.votes[answerID] == nil {
		m.votes[answerID] = make(map[int64]int)
	}
	prev := m.votes[answerID][userID]
	m.votes[answerID][userID] = value
	return prev, nil
}

func (m *mockAnswerRepo) Author(_ context.Context, answerID int64) (int64, error) {
	a, ok := m.answers[answerID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return a.AuthorID, nil
}

func (m *mockAnswerRepo) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Answer, bool, error) {
	return []types.Answer{}, false, nil
}

func TestAnswerServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMockAnswerRepo()
	svc := NewAnswerService(repo, nil)

	t.Run("valid answer", func(t *testing.T) {
		a, err := svc.Create(ctx, 1, 2, "  Use errgroup.WithContext for coordinated cancellation.  ")
		assert.NoError(t, err)
		assert.Equal(t, "Use errgroup.WithContext for coordinated cancellation.", a.Content)
		assert.Equal(t, int64(1), a.QuestionID)
	})

	t.Run("content too short", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, 2, "see docs")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "content", verr.Field)
	})
}

func TestAnswerServiceVote(t *testing.T) {
	ctx := context.Background()
	repo := newMockAnswerRepo()
	svc := NewAnswerService(repo, nil)

	created, err := svc.Create(ctx, 1, 2, "A perfectly reasonable answer body.")
	assert.NoError(t, err)

	t.Run("invalid value", func(t *testing.T) {
		var verr *ValidationError
		assert.ErrorAs(t, svc.Vote(ctx, 3, created.ID, 2), &verr)
	})

	t.Run("vote and retract", func(t *testing.T) {
		assert.NoError(t, svc.Vote(ctx, 3, created.ID, -1))
		assert.Equal(t, -1, repo.votes[created.ID][3])
		assert.NoError(t, svc.Vote(ctx, 3, created.ID, 0))
		assert.Equal(t, 0, repo.votes[created.ID][3])
	})

	t.Run("missing answer", func(t *testing.T) {
		assert.ErrorIs(t, svc.Vote(ctx, 3, 999, 1), store.ErrNotFound)
	})
}
