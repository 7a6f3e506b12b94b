package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/devflow-qa/apiserver/internal/mq"
)

// Event channels published by the forum.
const (
	ChannelQuestionCreated = "question.created"
	ChannelAnswerCreated   = "answer.created"
	ChannelVoteCast        = "vote.cast"
)

// QuestionCreatedEvent announces a newly posted question.
type QuestionCreatedEvent struct {
	QuestionID int64     `json:"question_id"`
	AuthorID   int64     `json:"author_id"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnswerCreatedEvent announces a newly posted answer.
type AnswerCreatedEvent struct {
	AnswerID   int64     `json:"answer_id"`
	QuestionID int64     `json:"question_id"`
	AuthorID   int64     `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoteTarget names the entity a vote landed on.
type VoteTarget string

const (
	VoteTargetQuestion VoteTarget = "question"
	VoteTargetAnswer   VoteTarget = "answer"
)

// VoteCastEvent carries everything the reputation worker needs to
// derive a delta: the prior and new vote values plus who voted and
// who authored the target.
type VoteCastEvent struct {
	Target    VoteTarget `json:"target"`
	TargetID  int64      `json:"target_id"`
	AuthorID  int64      `json:"author_id"`
	VoterID   int64      `json:"voter_id"`
	PrevValue int        `json:"prev_value"`
	NewValue  int        `json:"new_value"`
}

// EventPublisher publishes forum events to the configured broker.
// Publishing is best effort: a broker failure is logged and never
// fails the request that produced the event. A nil publisher drops
// everything, which is how deployments without a broker run.
type EventPublisher struct {
	bus *mq.MQ
}

func NewEventPublisher(bus *mq.MQ) *EventPublisher {
	if bus == nil {
		return nil
	}
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) QuestionCreated(ctx context.Context, event QuestionCreatedEvent) {
	p.publish(ctx, ChannelQuestionCreated, event)
}

func (p *EventPublisher) AnswerCreated(ctx context.Context, event AnswerCreatedEvent) {
	p.publish(ctx, ChannelAnswerCreated, event)
}

func (p *EventPublisher) VoteCast(ctx context.Context, event VoteCastEvent) {
	p.publish(ctx, ChannelVoteCast, event)
}

func (p *EventPublisher) publish(ctx context.Context, channel string, payload any) {
	if p == nil || p.bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("mq: encode %s event: %v", channel, err)
		return
	}
	if _, err := p.bus.Publish(ctx, channel, data, nil); err != nil {
		log.Printf("mq: publish %s event: %v", channel, err)
	}
}
