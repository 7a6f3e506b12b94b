package services

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/devflow-qa/apiserver/config"
	"github.com/devflow-qa/apiserver/internal/storage"
	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

const (
	userNameMaxLen = 50
	userBioMaxLen  = 500

	avatarKeyPrefix = "avatars/"
	avatarMaxBytes  = 5 << 20
)

// ErrStorageDisabled is returned by avatar operations when no object
// storage backend is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context, query store.UserQuery) ([]types.User, bool, error)
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpsertByExternalID(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int64) error
	DeleteByExternalID(ctx context.Context, externalID string) error
	SetPicture(ctx context.Context, id int64, picture string) error
	SaveQuestion(ctx context.Context, userID, questionID int64) error
	UnsaveQuestion(ctx context.Context, userID, questionID int64) error
	ListSaved(ctx context.Context, userID int64, query store.SavedQuery) ([]types.Question, bool, error)
}

// QuestionStats exposes the per-author question aggregates the
// profile view is built from.
type QuestionStats interface {
	ListByAuthor(ctx context.Context, authorID int64, page store.Pagination) ([]types.Question, bool, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
	SumUpvotesByAuthor(ctx context.Context, authorID int64) (int64, error)
	SumViewsByAuthor(ctx context.Context, authorID int64) (int64, error)
}

// AnswerStats exposes the per-author answer aggregates the profile
// view is built from.
type AnswerStats interface {
	ListByAuthor(ctx context.Context, authorID int64, page store.Pagination) ([]types.Answer, bool, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
	SumUpvotesByAuthor(ctx context.Context, authorID int64) (int64, error)
}

// UserService encapsulates user use-cases: directory listing, profile
// aggregation, saved questions and avatar management.
type UserService struct {
	repo      UserRepository
	questions QuestionStats
	answers   AnswerStats
	avatars   *storage.Storage
	badges    config.BadgeConfig
}

func NewUserService(repo UserRepository, questions QuestionStats, answers AnswerStats, avatars *storage.Storage, badges config.BadgeConfig) *UserService {
	return &UserService{
		repo:      repo,
		questions: questions,
		answers:   answers,
		avatars:   avatars,
		badges:    badges,
	}
}

func (s *UserService) List(ctx context.Context, query store.UserQuery) ([]types.User, bool, error) {
	return s.repo.List(ctx, query)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// UpdateProfile replaces the editable profile fields of the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, bio, portfolio, location string) (types.User, error) {
	name = strings.TrimSpace(name)
	bio = strings.TrimSpace(bio)
	portfolio = strings.TrimSpace(portfolio)
	location = strings.TrimSpace(location)

	if name == "" {
		return types.User{}, invalidf("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > userNameMaxLen {
		return types.User{}, invalidf("name", "must be at most %d characters", userNameMaxLen)
	}
	if utf8.RuneCountInString(bio) > userBioMaxLen {
		return types.User{}, invalidf("bio", "must be at most %d characters", userBioMaxLen)
	}
	if portfolio != "" {
		u, err := url.Parse(portfolio)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return types.User{}, invalidf("portfolio", "must be an http or https URL")
		}
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	user.Name = name
	user.Bio = bio
	user.Portfolio = portfolio
	user.Location = location
	return s.repo.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Profile aggregates a user's contribution totals and scores them
// into badge counts.
func (s *UserService) Profile(ctx context.Context, username string) (types.Profile, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return types.Profile{}, err
	}

	questionCount, err := s.questions.CountByAuthor(ctx, user.ID)
	if err != nil {
		return types.Profile{}, err
	}
	answerCount, err := s.answers.CountByAuthor(ctx, user.ID)
	if err != nil {
		return types.Profile{}, err
	}
	questionUpvotes, err := s.questions.SumUpvotesByAuthor(ctx, user.ID)
	if err != nil {
		return types.Profile{}, err
	}
	answerUpvotes, err := s.answers.SumUpvotesByAuthor(ctx, user.ID)
	if err != nil {
		return types.Profile{}, err
	}
	totalViews, err := s.questions.SumViewsByAuthor(ctx, user.ID)
	if err != nil {
		return types.Profile{}, err
	}

	badges := AssignBadges([]types.BadgeCriterion{
		{Kind: types.BadgeQuestionCount, Count: questionCount},
		{Kind: types.BadgeAnswerCount, Count: answerCount},
		{Kind: types.BadgeQuestionUpvotes, Count: questionUpvotes},
		{Kind: types.BadgeAnswerUpvotes, Count: answerUpvotes},
		{Kind: types.BadgeTotalViews, Count: totalViews},
	}, s.badges)

	return types.Profile{
		User:          user,
		QuestionCount: questionCount,
		AnswerCount:   answerCount,
		Badges:        badges,
	}, nil
}

// Questions pages through the questions the user has posted, newest
// first.
func (s *UserService) Questions(ctx context.Context, userID int64, page store.Pagination) ([]types.Question, bool, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, false, err
	}
	return s.questions.ListByAuthor(ctx, userID, page)
}

// Answers pages through the answers the user has posted, newest
// first.
func (s *UserService) Answers(ctx context.Context, userID int64, page store.Pagination) ([]types.Answer, bool, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, false, err
	}
	return s.answers.ListByAuthor(ctx, userID, page)
}

func (s *UserService) SaveQuestion(ctx context.Context, userID, questionID int64) error {
	return s.repo.SaveQuestion(ctx, userID, questionID)
}

func (s *UserService) UnsaveQuestion(ctx context.Context, userID, questionID int64) error {
	return s.repo.UnsaveQuestion(ctx, userID, questionID)
}

func (s *UserService) ListSaved(ctx context.Context, userID int64, query store.SavedQuery) ([]types.Question, bool, error) {
	return s.repo.ListSaved(ctx, userID, query)
}

// SetAvatar uploads a new avatar object and points the account at it.
// The previous stored avatar, if any, is removed best effort.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if s.avatars == nil {
		return "", ErrStorageDisabled
	}
	if size <= 0 || size > avatarMaxBytes {
		return "", invalidf("avatar", "must be between 1 byte and %d bytes", avatarMaxBytes)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key := avatarKeyPrefix + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.avatars.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	if err := s.repo.SetPicture(ctx, userID, key); err != nil {
		return "", err
	}

	if strings.HasPrefix(user.Picture, avatarKeyPrefix) && user.Picture != key {
		_ = s.avatars.Delete(ctx, user.Picture)
	}
	return key, nil
}

// Avatar opens the stored avatar object for the given key.
func (s *UserService) Avatar(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.avatars == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(key, avatarKeyPrefix) {
		return nil, store.ErrNotFound
	}
	return s.avatars.Get(ctx, key)
}

// UpsertFromIdentity creates or refreshes the account mirroring an
// identity-provider user. The provider's identifier keys the upsert.
func (s *UserService) UpsertFromIdentity(ctx context.Context, user types.User) (types.User, error) {
	user.ExternalID = strings.TrimSpace(user.ExternalID)
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.ExternalID == "" {
		return types.User{}, invalidf("external_id", "must not be empty")
	}
	if user.Username == "" || user.Email == "" {
		return types.User{}, invalidf("username", "username and email are required")
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Username
	}
	return s.repo.UpsertByExternalID(ctx, user)
}

// DeleteFromIdentity removes the account mirroring an
// identity-provider user.
func (s *UserService) DeleteFromIdentity(ctx context.Context, externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return invalidf("external_id", "must not be empty")
	}
	return s.repo.DeleteByExternalID(ctx, externalID)
}
