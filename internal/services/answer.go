package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/devflow-qa/apiserver/internal/store"
	"github.com/devflow-qa/apiserver/types"
)

const answerContentMinLen = 20

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	ListByQuestion(ctx context.Context, questionID int64, sort types.AnswerSort) ([]types.Answer, error)
	Create(ctx context.Context, questionID, authorID int64, content string) (types.Answer, error)
	SetVote(ctx context.Context, answerID, userID int64, value int) (int, error)
	Author(ctx context.Context, answerID int64) (int64, error)
	ListByAuthor(ctx context.Context, authorID int64, page store.Pagination) ([]types.Answer, bool, error)
}

// AnswerService encapsulates answer use-cases.
type AnswerService struct {
	repo   AnswerRepository
	events *EventPublisher
}

func NewAnswerService(repo AnswerRepository, events *EventPublisher) *AnswerService {
	return &AnswerService{repo: repo, events: events}
}

func (s *AnswerService) ListByQuestion(ctx context.Context, questionID int64, sort types.AnswerSort) ([]types.Answer, error) {
	return s.repo.ListByQuestion(ctx, questionID, sort)
}

func (s *AnswerService) Create(ctx context.Context, questionID, authorID int64, content string) (types.Answer, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < answerContentMinLen {
		return types.Answer{}, invalidf("content", "must be at least %d characters", answerContentMinLen)
	}

	answer, err := s.repo.Create(ctx, questionID, authorID, content)
	if err != nil {
		return types.Answer{}, err
	}

	s.events.AnswerCreated(ctx, AnswerCreatedEvent{
		AnswerID:   answer.ID,
		QuestionID: answer.QuestionID,
		AuthorID:   answer.AuthorID,
		CreatedAt:  answer.CreatedAt,
	})
	return answer, nil
}

// Vote records userID's vote on an answer, mirroring question voting.
func (s *AnswerService) Vote(ctx context.Context, userID, answerID int64, value int) error {
	if err := validateVoteValue(value); err != nil {
		return err
	}
	authorID, err := s.repo.Author(ctx, answerID)
	if err != nil {
		return err
	}
	prev, err := s.repo.SetVote(ctx, answerID, userID, value)
	if err != nil {
		return err
	}
	if prev != value {
		s.events.VoteCast(ctx, VoteCastEvent{
			Target:    VoteTargetAnswer,
			TargetID:  answerID,
			AuthorID:  authorID,
			VoterID:   userID,
			PrevValue: prev,
			NewValue:  value,
		})
	}
	return nil
}

func (s *AnswerService) ListByAuthor(ctx context.Context, authorID int64, page store.Pagination) ([]types.Answer, bool, error) {
	return s.repo.ListByAuthor(ctx, authorID, page)
}
