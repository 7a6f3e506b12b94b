package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

type mockUserRepo struct {
	users  map[int64]types.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]types.User)}
}

func (m *mockUserRepo) List(_ context.Context, _ store.UserQuery) ([]types.User, bool, error) {
	return []types.User{}, false, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (types.User, error) {
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) UpsertByExternalID(_ context.Context, user types.User) (types.User, error) {
	for id, existing := range m.users {
		if existing.ExternalID == user.ExternalID {
			user.ID = id
			m.users[id] = user
			return user, nil
		}
	}
	return m.Create(context.Background(), user)
}

func (m *mockUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := m.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) DeleteByExternalID(_ context.Context, externalID string) error {
	for id, u := range m.users {
		if u.ExternalID == externalID {
			delete(m.users, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockUserRepo) SetPicture(_ context.Context, id int64, picture string) error {
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Picture = picture
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) SaveQuestion(_ context.Context, _, _ int64) error   { return nil }
func (m *mockUserRepo) UnsaveQuestion(_ context.Context, _, _ int64) error { return nil }

func (m *mockUserRepo) ListSaved(_ context.Context, _ int64, _ store.SavedQuery) ([]types.Question, bool, error) {
	return []types.Question{}, false, nil
}

type stubStats struct {
	questionCount   int64
	answerCount     int64
	questionUpvotes int64
	answerUpvotes   int64
	totalViews      int64
}

func (s stubStats) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Question, bool, error) {
	return []types.Question{}, false, nil
}

func (s stubStats) CountByAuthor(_ context.Context, _ int64) (int64, error) {
	return s.questionCount, nil
}

func (s stubStats) SumUpvotesByAuthor(_ context.Context, _ int64) (int64, error) {
	return s.questionUpvotes, nil
}

func (s stubStats) SumViewsByAuthor(_ context.Context, _ int64) (int64, error) {
	return s.totalViews, nil
}

type stubAnswerStats struct {
	stubStats
}

func (s stubAnswerStats) ListByAuthor(_ context.Context, _ int64, _ store.Pagination) ([]types.Answer, bool, error) {
	return []types.Answer{}, false, nil
}

func (s stubAnswerStats) CountByAuthor(_ context.Context, _ int64) (int64, error) {
	return s.answerCount, nil
}

func (s stubAnswerStats) SumUpvotesByAuthor(_ context.Context, _ int64) (int64, error) {
	return s.answerUpvotes, nil
}

func newTestUserService(repo *mockUserRepo, stats stubStats) *UserService {
	return NewUserService(repo, stats, stubAnswerStats{stats}, nil, config.DefaultBadgeConfig())
}

func TestUserServiceProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("new user has empty totals", func(t *testing.T) {
		repo := newMockUserRepo()
		_, err := repo.Create(ctx, types.User{Username: "fresh", Email: "fresh@example.com"})
		assert.NoError(t, err)

		svc := newTestUserService(repo, stubStats{})
		profile, err := svc.Profile(ctx, "fresh")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), profile.QuestionCount)
		assert.Equal(t, int64(0), profile.AnswerCount)
		assert.Equal(t, types.BadgeCounts{}, profile.Badges)
	})

	t.Run("activity earns badges", func(t *testing.T) {
		repo := newMockUserRepo()
		_, err := repo.Create(ctx, types.User{Username: "veteran", Email: "veteran@example.com"})
		assert.NoError(t, err)

		svc := newTestUserService(repo, stubStats{
			questionCount:   100,
			answerCount:     12,
			questionUpvotes: 55,
			answerUpvotes:   3,
			totalViews:      2000,
		})
		profile, err := svc.Profile(ctx, "veteran")
		assert.NoError(t, err)
		assert.Equal(t, int64(100), profile.QuestionCount)
		assert.Equal(t, int64(12), profile.AnswerCount)
		assert.Equal(t, types.BadgeCounts{Gold: 1, Silver: 2, Bronze: 4}, profile.Badges)
	})

	t.Run("unknown username", func(t *testing.T) {
		svc := newTestUserService(newMockUserRepo(), stubStats{})
		_, err := svc.Profile(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepo()
	created, err := repo.Create(ctx, types.User{Username: "alex", Email: "alex@example.com", Name: "Alex"})
	assert.NoError(t, err)

	svc := newTestUserService(repo, stubStats{})

	t.Run("valid update", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, created.ID, "Alex Chen", "Backend engineer.", "https://alex.dev", "Berlin")
		assert.NoError(t, err)
		assert.Equal(t, "Alex Chen", updated.Name)
		assert.Equal(t, "https://alex.dev", updated.Portfolio)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, created.ID, "  ", "", "", "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
	})

	t.Run("bad portfolio scheme", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, created.ID, "Alex", "", "ftp://alex.dev", "")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "portfolio", verr.Field)
	})
}

func TestUserServiceIdentitySync(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepo()
	svc := newTestUserService(repo, stubStats{})

	t.Run("create then refresh", func(t *testing.T) {
		created, err := svc.UpsertFromIdentity(ctx, types.User{
			ExternalID: "idp_123",
			Username:   "sam",
			Email:      "sam@example.com",
		})
		assert.NoError(t, err)
		assert.Equal(t, "sam", created.Name)

		refreshed, err := svc.UpsertFromIdentity(ctx, types.User{
			ExternalID: "idp_123",
			Username:   "sam",
			Email:      "sam@example.com",
			Name:       "Sam Jones",
		})
		assert.NoError(t, err)
		assert.Equal(t, created.ID, refreshed.ID)
		assert.Equal(t, "Sam Jones", refreshed.Name)
	})

	t.Run("missing external id", func(t *testing.T) {
		_, err := svc.UpsertFromIdentity(ctx, types.User{Username: "x", Email: "x@example.com"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("delete", func(t *testing.T) {
		assert.NoError(t, svc.DeleteFromIdentity(ctx, "idp_123"))
		assert.ErrorIs(t, svc.DeleteFromIdentity(ctx, "idp_123"), store.ErrNotFound)
	})

	t.Run("avatar without storage backend", func(t *testing.T) {
		_, err := svc.SetAvatar(ctx, 1, "a.png", nil, 10, "image/png")
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})
}
