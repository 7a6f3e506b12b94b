package services

import (
	"context"

	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context, page store.Pagination) ([]types.Tag, bool, error)
	Get(ctx context.Context, id int64) (types.Tag, error)
	QuestionsForTag(ctx context.Context, tagID int64) ([]types.Question, error)
	Follow(ctx context.Context, tagID, userID int64) error
	Unfollow(ctx context.Context, tagID, userID int64) error
}

// TagService encapsulates tag use-cases.
type TagService struct {
	repo TagRepository
}

func NewTagService(repo TagRepository) *TagService {
	return &TagService{repo: repo}
}

func (s *TagService) List(ctx context.Context, page store.Pagination) ([]types.Tag, bool, error) {
	return s.repo.List(ctx, page)
}

func (s *TagService) Get(ctx context.Context, id int64) (types.Tag, error) {
	return s.repo.Get(ctx, id)
}

func (s *TagService) Questions(ctx context.Context, tagID int64) ([]types.Question, error) {
	return s.repo.QuestionsForTag(ctx, tagID)
}

func (s *TagService) Follow(ctx context.Context, tagID, userID int64) error {
	return s.repo.Follow(ctx, tagID, userID)
}

func (s *TagService) Unfollow(ctx context.Context, tagID, userID int64) error {
	return s.repo.Unfollow(ctx, tagID, userID)
}
