package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

type mockQuestionRepo struct {
	questions map[int64]types.Question
	nextID    int64

	createdTags []string
	votes       map[int64]map[int64]int
	hotLimit    int
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{
		questions: make(map[int64]types.Question),
		votes:     make(map[int64]map[int64]int),
	}
}

func (m *mockQuestionRepo) List(_ context.Context, _ store.QuestionQuery) ([]types.Question, bool, error) {
	return []types.Question{}, false, nil
}

func (m *mockQuestionRepo) Get(_ context.Context, id int64) (types.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	return q, nil
}

func (m *mockQuestionRepo) Create(_ context.Context, authorID int64, title, content string, tagNames []string) (types.Question, error) {
	m.nextID++
	m.createdTags = tagNames
	q := types.Question{ID: m.nextID, AuthorID: authorID, Title: title, Content: content}
	m.questions[q.ID] = q
	return q, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, id int64, title, content string) (types.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	q.Title = title
	q.Content = content
	m.questions[id] = q
	return q, nil
}

func (m *mockQuestionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.questions[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *mockQuestionRepo) IncrementViews(_ context.Context, id int64) error {
	if _, ok := m.questions[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (m *mockQuestionRepo) SetVote(_ context.Context, questionID, userID int64, value int) (int, error) {
	if _, ok := m.questions[questionID]; !ok {
		return 0, store.ErrNotFound
	}
	if m.votes[questionID] == nil {
		m.votes[questionID] = make(map[int64]int)
	}
	prev := m.votes[questionID][userID]
	m.votes[questionID][userID] = value
	return prev, nil
}

func (m *mockQuestionRepo) Author(_ context.Context, id int64) (int64, error) {
	q, ok := m.questions[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	return q.AuthorID, nil
}

func (m *mockQuestionRepo) ListHot(_ context.Context, limit int) ([]types.QuestionSummary, error) {
	m.hotLimit = limit
	return []types.QuestionSummary{}, nil
}

const validContent = "This content is long enough to pass validation."

func TestQuestionServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid input", func(t *testing.T) {
		repo := newMockQuestionRepo()
		svc := NewQuestionService(repo, nil)

		q, err := svc.Create(ctx, 1, "  How do I parse JSON in Go?  ", validContent, []string{" go ", "json"})
		assert.NoError(t, err)
		assert.Equal(t, "How do I parse JSON in Go?", q.Title)
		assert.Equal(t, []string{"go", "json"}, repo.createdTags)
	})

	t.Run("title too short", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "Why?", validContent, []string{"go"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("title too long", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, strings.Repeat("a", 131), validContent, []string{"go"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("content too short", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "A valid question title", "too short", []string{"go"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "content", verr.Field)
	})

	t.Run("no tags", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "A valid question title", validContent, nil)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "tags", verr.Field)
	})

	t.Run("too many tags", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "A valid question title", validContent,
			[]string{"go", "json", "http", "sql"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("duplicate tags differ only in case", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "A valid question title", validContent, []string{"Go", "go"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("tag name too long", func(t *testing.T) {
		svc := NewQuestionService(newMockQuestionRepo(), nil)
		_, err := svc.Create(ctx, 1, "A valid question title", validContent,
			[]string{strings.Repeat("x", 16)})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestQuestionServiceUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newMockQuestionRepo()
	svc := NewQuestionService(repo, nil)

	created, err := svc.Create(ctx, 1, "A valid question title", validContent, []string{"go"})
	assert.NoError(t, err)

	t.Run("author can edit", func(t *testing.T) {
		updated, err := svc.Update(ctx, 1, created.ID, "An updated question title", validContent)
		assert.NoError(t, err)
		assert.Equal(t, "An updated question title", updated.Title)
	})

	t.Run("others cannot edit", func(t *testing.T) {
		_, err := svc.Update(ctx, 2, created.ID, "An updated question title", validContent)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing question", func(t *testing.T) {
		_, err := svc.Update(ctx, 1, 999, "An updated question title", validContent)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestQuestionServiceDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMockQuestionRepo()
	svc := NewQuestionService(repo, nil)

	created, err := svc.Create(ctx, 1, "A valid question title", validContent, []string{"go"})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 2, created.ID), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, created.ID), store.ErrNotFound)
}

func TestQuestionServiceVote(t *testing.T) {
	ctx := context.Background()
	repo := newMockQuestionRepo()
	svc := NewQuestionService(repo, nil)

	created, err := svc.Create(ctx, 1, "A valid question title", validContent, []string{"go"})
	assert.NoError(t, err)

	t.Run("invalid value", func(t *testing.T) {
		var verr *ValidationError
		assert.ErrorAs(t, svc.Vote(ctx, 2, created.ID, 5), &verr)
	})

	t.Run("up, switch, retract", func(t *testing.T) {
		assert.NoError(t, svc.Vote(ctx, 2, created.ID, 1))
		assert.Equal(t, 1, repo.votes[created.ID][2])
		assert.NoError(t, svc.Vote(ctx, 2, created.ID, -1))
		assert.Equal(t, -1, repo.votes[created.ID][2])
		assert.NoError(t, svc.Vote(ctx, 2, created.ID, 0))
		assert.Equal(t, 0, repo.votes[created.ID][2])
	})

	t.Run("missing question", func(t *testing.T) {
		assert.ErrorIs(t, svc.Vote(ctx, 2, 999, 1), store.ErrNotFound)
	})
}

func TestQuestionServiceHot(t *testing.T) {
	ctx := context.Background()
	repo := newMockQuestionRepo()
	svc := NewQuestionService(repo, nil)

	_, err := svc.Hot(ctx, 0)
	assert.NoError(t, err)
	assert.Equal(t, hotQuestionsDefault, repo.hotLimit)

	_, err = svc.Hot(ctx, 500)
	assert.NoError(t, err)
	assert.Equal(t, hotQuestionsMax, repo.hotLimit)
}
