package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

const (
	questionTitleMinLen   = 5
	questionTitleMaxLen   = 130
	questionContentMinLen = 20
	questionTagsMax       = 3
	questionTagMaxLen     = 15

	hotQuestionsDefault = 5
	hotQuestionsMax     = 20
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	List(ctx context.Context, query store.QuestionQuery) ([]types.Question, bool, error)
	Get(ctx context.Context, id int64) (types.Question, error)
	Create(ctx context.Context, authorID int64, title, content string, tagNames []string) (types.Question, error)
	Update(ctx context.Context, id int64, title, content string) (types.Question, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	SetVote(ctx context.Context, questionID, userID int64, value int) (int, error)
	Author(ctx context.Context, id int64) (int64, error)
	ListHot(ctx context.Context, limit int) ([]types.QuestionSummary, error)
}

// QuestionService encapsulates question use-cases.
type QuestionService struct {
	repo   QuestionRepository
	events *EventPublisher
}

func NewQuestionService(repo QuestionRepository, events *EventPublisher) *QuestionService {
	return &QuestionService{repo: repo, events: events}
}

func (s *QuestionService) List(ctx context.Context, query store.QuestionQuery) ([]types.Question, bool, error) {
	return s.repo.List(ctx, query)
}

func (s *QuestionService) Get(ctx context.Context, id int64) (types.Question, error) {
	return s.repo.Get(ctx, id)
}

func (s *QuestionService) Create(ctx context.Context, authorID int64, title, content string, tagNames []string) (types.Question, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	tags, err := normalizeTagNames(tagNames)
	if err != nil {
		return types.Question{}, err
	}
	if err := validateQuestionBody(title, content); err != nil {
		return types.Question{}, err
	}

	question, err := s.repo.Create(ctx, authorID, title, content, tags)
	if err != nil {
		return types.Question{}, err
	}

	s.events.QuestionCreated(ctx, QuestionCreatedEvent{
		QuestionID: question.ID,
		AuthorID:   question.AuthorID,
		Title:      question.Title,
		Tags:       tags,
		CreatedAt:  question.CreatedAt,
	})
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, userID, id int64, title, content string) (types.Question, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if err := validateQuestionBody(title, content); err != nil {
		return types.Question{}, err
	}
	if err := s.requireAuthor(ctx, id, userID); err != nil {
		return types.Question{}, err
	}
	return s.repo.Update(ctx, id, title, content)
}

func (s *QuestionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.requireAuthor(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *QuestionService) IncrementViews(ctx context.Context, id int64) error {
	return s.repo.IncrementViews(ctx, id)
}

// Vote records userID's vote on a question. value is 1 for an
// up-vote, -1 for a down-vote and 0 to retract. Voting the same way
// twice is idempotent; switching direction replaces the prior vote.
func (s *QuestionService) Vote(ctx context.Context, userID, questionID int64, value int) error {
	if err := validateVoteValue(value); err != nil {
		return err
	}
	authorID, err := s.repo.Author(ctx, questionID)
	if err != nil {
		return err
	}
	prev, err := s.repo.SetVote(ctx, questionID, userID, value)
	if err != nil {
		return err
	}
	if prev != value {
		s.events.VoteCast(ctx, VoteCastEvent{
			Target:    VoteTargetQuestion,
			TargetID:  questionID,
			AuthorID:  authorID,
			VoterID:   userID,
			PrevValue: prev,
			NewValue:  value,
		})
	}
	return nil
}

func (s *QuestionService) Hot(ctx context.Context, limit int) ([]types.QuestionSummary, error) {
	if limit <= 0 {
		limit = hotQuestionsDefault
	}
	if limit > hotQuestionsMax {
		limit = hotQuestionsMax
	}
	return s.repo.ListHot(ctx, limit)
}

func (s *QuestionService) requireAuthor(ctx context.Context, questionID, userID int64) error {
	authorID, err := s.repo.Author(ctx, questionID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return ErrForbidden
	}
	return nil
}

func validateQuestionBody(title, content string) error {
	if n := utf8.RuneCountInString(title); n < questionTitleMinLen {
		return invalidf("title", "must be at least %d characters", questionTitleMinLen)
	} else if n > questionTitleMaxLen {
		return invalidf("title", "must be at most %d characters", questionTitleMaxLen)
	}
	if utf8.RuneCountInString(content) < questionContentMinLen {
		return invalidf("content", "must be at least %d characters", questionContentMinLen)
	}
	return nil
}

// normalizeTagNames trims tags and rejects empty, oversized or
// case-insensitively duplicated names.
func normalizeTagNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, invalidf("tags", "at least one tag is required")
	}
	if len(names) > questionTagsMax {
		return nil, invalidf("tags", "at most %d tags are allowed", questionTagsMax)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidf("tags", "tag names must not be empty")
		}
		if utf8.RuneCountInString(name) > questionTagMaxLen {
			return nil, invalidf("tags", "tag names must be at most %d characters", questionTagMaxLen)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, invalidf("tags", "duplicate tag %q", name)
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func validateVoteValue(value int) error {
	if value != -1 && value != 0 && value != 1 {
		return invalidf("value", "must be -1, 0 or 1")
	}
	return nil
}
