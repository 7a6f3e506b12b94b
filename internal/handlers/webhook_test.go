package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/internal/services"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

type fakeUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]types.User)}
}

func (f *fakeUserRepo) List(_ context.Context, _ store.UserQuery) ([]types.User, bool, error) {
	return []types.User{}, false, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpsertByExternalID(ctx context.Context, user types.User) (types.User, error) {
	for id, existing := range f.users {
		if existing.ExternalID == user.ExternalID {
			user.ID = id
			f.users[id] = user
			return user, nil
		}
	}
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) DeleteByExternalID(_ context.Context, externalID string) error {
	for id, u := range f.users {
		if u.ExternalID == externalID {
			delete(f.users, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUserRepo) SetPicture(_ context.Context, id int64, picture string) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Picture = picture
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) SaveQuestion(_ context.Context, _, _ int64) error   { return nil }
func (f *fakeUserRepo) UnsaveQuestion(_ context.Context, _, _ int64) error { return nil }

func (f *fakeUserRepo) ListSaved(_ context.Context, _ int64, _ store.SavedQuery) ([]types.Question, bool, error) {
	return []types.Question{}, false, nil
}

type emptyQuestionStats struct{}

func (emptyQuestionStats) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Question, bool, error) {
	return []types.Question{}, false, nil
}
func (emptyQuestionStats) CountByAuthor(_ context.Context, _ int64) (int64, error)     { return 0, nil }
func (emptyQuestionStats) SumUpvotesByAuthor(_ context.Context, _ int64) (int64, error) { return 0, nil }
func (emptyQuestionStats) SumViewsByAuthor(_ context.Context, _ int64) (int64, error)  { return 0, nil }

type emptyAnswerStats struct{}

func (emptyAnswerStats) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Answer, bool, error) {
	return []types.Answer{}, false, nil
}
func (emptyAnswerStats) CountByAuthor(_ context.Context, _ int64) (int64, error)      { return 0, nil }
func (emptyAnswerStats) SumUpvotesByAuthor(_ context.Context, _ int64) (int64, error) { return 0, nil }

const testWebhookSecret = "hook-secret"

func newWebhookTestRouter(repo *fakeUserRepo) http.Handler {
	userService := services.NewUserService(repo, emptyQuestionStats{}, emptyAnswerStats{}, nil, config.DefaultBadgeConfig())
	router := chi.NewRouter()
	router.Route("/webhooks", func(r chi.Router) {
		WebhookRouter(r, userService, testWebhookSecret)
	})
	return router
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, router http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestIdentityWebhook(t *testing.T) {
	body := []byte(`{"type":"user.created","data":{"external_id":"idp_42","name":"Pat","username":"pat","email":"pat@example.com"}}`)

	t.Run("missing signature", func(t *testing.T) {
		rr := postWebhook(t, newWebhookTestRouter(newFakeUserRepo()), body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		rr := postWebhook(t, newWebhookTestRouter(newFakeUserRepo()), body, signBody("other-secret", body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("tampered body", func(t *testing.T) {
		tampered := bytes.Replace(body, []byte("pat"), []byte("eve"), 1)
		rr := postWebhook(t, newWebhookTestRouter(newFakeUserRepo()), tampered, signBody(testWebhookSecret, body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user created", func(t *testing.T) {
		repo := newFakeUserRepo()
		rr := postWebhook(t, newWebhookTestRouter(repo), body, signBody(testWebhookSecret, body))
		assert.Equal(t, http.StatusOK, rr.Code)

		user, err := repo.GetByUsername(context.Background(), "pat")
		assert.NoError(t, err)
		assert.Equal(t, "idp_42", user.ExternalID)
	})

	t.Run("user deleted", func(t *testing.T) {
		repo := newFakeUserRepo()
		_, err := repo.Create(context.Background(), types.User{ExternalID: "idp_42", Username: "pat"})
		assert.NoError(t, err)

		deleteBody := []byte(`{"type":"user.deleted","data":{"external_id":"idp_42"}}`)
		rr := postWebhook(t, newWebhookTestRouter(repo), deleteBody, signBody(testWebhookSecret, deleteBody))
		assert.Equal(t, http.StatusNoContent, rr.Code)

		_, err = repo.GetByUsername(context.Background(), "pat")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown event type", func(t *testing.T) {
		unknown := []byte(`{"type":"user.banned","data":{"external_id":"idp_42"}}`)
		rr := postWebhook(t, newWebhookTestRouter(newFakeUserRepo()), unknown, signBody(testWebhookSecret, unknown))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
