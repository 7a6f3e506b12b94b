package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

type fakeQuestionRepo struct {
	questions map[int64]types.Question
	nextID    int64
	lastQuery store.QuestionQuery
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[int64]types.Question)}
}

func (f *fakeQuestionRepo) List(_ context.Context, query store.QuestionQuery) ([]types.Question, bool, error) {
	f.lastQuery = query
	items := make([]types.Question, 0, len(f.questions))
	for _, q := range f.questions {
		items = append(items, q)
	}
	return items, false, nil
}

func (f *fakeQuestionRepo) Get(_ context.Context, id int64) (types.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	return q, nil
}

func (f *fakeQuestionRepo) Create(_ context.Context, authorID int64, title, content string, _ []string) (types.Question, error) {
	f.nextID++
	q := types.Question{ID: f.nextID, AuthorID: authorID, Title: title, Content: content}
	f.questions[q.ID] = q
	return q, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, id int64, title, content string) (types.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	q.Title = title
	q.Content = content
	f.questions[id] = q
	return q, nil
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.questions[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionRepo) IncrementViews(_ context.Context, id int64) error {
	if _, ok := f.questions[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (f *fakeQuestionRepo) SetVote(_ context.Context, questionID, _ int64, _ int) (int, error) {
	if _, ok := f.questions[questionID]; !ok {
		return 0, store.ErrNotFound
	}
	return 0, nil
}

func (f *fakeQuestionRepo) Author(_ context.Context, id int64) (int64, error) {
	q, ok := f.questions[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	return q.AuthorID, nil
}

func (f *fakeQuestionRepo) ListHot(_ context.Context, _ int) ([]types.QuestionSummary, error) {
	return []types.QuestionSummary{}, nil
}

type fakeAnswerRepo struct{}

func (fakeAnswerRepo) ListByQuestion(_ context.Context, _ int64, _ types.AnswerSort) ([]types.Answer, error) {
	return []types.Answer{}, nil
}

func (fakeAnswerRepo) Create(_ context.Context, questionID, authorID int64, content string) (types.Answer, error) {
	return types.Answer{ID: 1, QuestionID: questionID, AuthorID: authorID, Content: content}, nil
}

func (fakeAnswerRepo) SetVote(_ context.Context, _, _ int64, _ int) (int, error) { return 0, nil }
func (fakeAnswerRepo) Author(_ context.Context, _ int64) (int64, error)          { return 1, nil }

func (fakeAnswerRepo) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Answer, bool, error) {
	return []types.Answer{}, false, nil
}

const testJWTSecret = "unit-test-secret"

func newQuestionTestRouter(repo *fakeQuestionRepo) http.Handler {
	questionService := services.NewQuestionService(repo, nil)
	answerService := services.NewAnswerService(fakeAnswerRepo{}, nil)

	router := chi.NewRouter()
	router.Route("/questions", func(r chi.Router) {
		QuestionRouter(r, questionService, answerService, RequireAuth(testJWTSecret))
	})
	return router
}

func authToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := issueToken(userID, []byte(testJWTSecret), time.Minute)
	assert.NoError(t, err)
	return token
}

func doRequest(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const validQuestionBody = `{"title":"How do I test HTTP handlers?","content":"I want to exercise my chi routes without a live server.","tags":["go","testing"]}`

func TestQuestionEndpoints(t *testing.T) {
	t.Run("unknown sort rejected", func(t *testing.T) {
		rr := doRequest(newQuestionTestRouter(newFakeQuestionRepo()), http.MethodGet, "/questions?sort=bogus", "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed page degrades to first page", func(t *testing.T) {
		rr := doRequest(newQuestionTestRouter(newFakeQuestionRepo()), http.MethodGet, "/questions?page=banana", "", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("limit param sets page size", func(t *testing.T) {
		repo := newFakeQuestionRepo()
		rr := doRequest(newQuestionTestRouter(repo), http.MethodGet, "/questions?page=2&limit=5", "", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, repo.lastQuery.Page.Page)
		assert.Equal(t, 5, repo.lastQuery.Page.PageSize)
	})

	t.Run("create requires auth", func(t *testing.T) {
		rr := doRequest(newQuestionTestRouter(newFakeQuestionRepo()), http.MethodPost, "/questions", "", validQuestionBody)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("create with invalid title", func(t *testing.T) {
		router := newQuestionTestRouter(newFakeQuestionRepo())
		body := `{"title":"Hi","content":"This body is certainly long enough.","tags":["go"]}`
		rr := doRequest(router, http.MethodPost, "/questions", authToken(t, 1), body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("create succeeds", func(t *testing.T) {
		repo := newFakeQuestionRepo()
		rr := doRequest(newQuestionTestRouter(repo), http.MethodPost, "/questions", authToken(t, 1), validQuestionBody)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Len(t, repo.questions, 1)
	})

	t.Run("get missing question", func(t *testing.T) {
		rr := doRequest(newQuestionTestRouter(newFakeQuestionRepo()), http.MethodGet, "/questions/42", "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rr := doRequest(newQuestionTestRouter(newFakeQuestionRepo()), http.MethodGet, "/questions/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update by non-author is forbidden", func(t *testing.T) {
		repo := newFakeQuestionRepo()
		router := newQuestionTestRouter(repo)
		rr := doRequest(router, http.MethodPost, "/questions", authToken(t, 1), validQuestionBody)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = doRequest(router, http.MethodPut, "/questions/1", authToken(t, 2), validQuestionBody)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("vote rejects out of range values", func(t *testing.T) {
		repo := newFakeQuestionRepo()
		router := newQuestionTestRouter(repo)
		rr := doRequest(router, http.MethodPost, "/questions", authToken(t, 1), validQuestionBody)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = doRequest(router, http.MethodPost, "/questions/1/vote", authToken(t, 2), `{"value":3}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("answer creation validates content", func(t *testing.T) {
		repo := newFakeQuestionRepo()
		router := newQuestionTestRouter(repo)
		rr := doRequest(router, http.MethodPost, "/questions", authToken(t, 1), validQuestionBody)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = doRequest(router, http.MethodPost, "/questions/1/answers", authToken(t, 2), `{"content":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = doRequest(router, http.MethodPost, "/questions/1/answers", authToken(t, 2),
			`{"content":"A body that comfortably clears the minimum length."}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}
