package worker

import (
	"context"
	"encoding/json"
	"log"

	"github.com/devflow-qa/apiserver/internal/mq"
	"github.com/devflow-qa/apiserver/internal/services"
)

const (
	upvoteAuthorDelta   = 10
	downvoteAuthorDelta = -2
	downvoteVoterDelta  = -1
)

// ReputationStore applies reputation deltas to accounts. Both deltas
// of one vote event must land together or not at all.
type ReputationStore interface {
	ApplyReputationDeltas(ctx context.Context, authorID int64, authorDelta int, voterID int64, voterDelta int) error
}

// ReputationWorker consumes vote events and keeps user reputation in
// step with them. Authors gain on up-votes and lose a little on
// down-votes; casting a down-vote costs the voter a point.
type ReputationWorker struct {
	bus   *mq.MQ
	users ReputationStore
}

func NewReputationWorker(bus *mq.MQ, users ReputationStore) *ReputationWorker {
	return &ReputationWorker{bus: bus, users: users}
}

// Run consumes vote events until ctx is cancelled.
func (w *ReputationWorker) Run(ctx context.Context) error {
	return w.bus.Subscribe(ctx, services.ChannelVoteCast, w.handleVote)
}

func (w *ReputationWorker) handleVote(ctx context.Context, msg mq.Message) error {
	var event services.VoteCastEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// Undecodable payloads would loop forever on redelivery.
		log.Printf("worker: drop malformed vote event %s: %v", msg.ID, err)
		return nil
	}

	authorDelta := authorReputation(event.NewValue) - authorReputation(event.PrevValue)
	voterDelta := voterReputation(event.NewValue) - voterReputation(event.PrevValue)

	// Votes on your own posts never move reputation.
	if event.VoterID == event.AuthorID {
		return nil
	}

	if authorDelta == 0 && voterDelta == 0 {
		return nil
	}
	return w.users.ApplyReputationDeltas(ctx, event.AuthorID, authorDelta, event.VoterID, voterDelta)
}

// authorReputation is the standing contribution a single vote of the
// given value makes to the target author's reputation. Deltas are
// computed as differences so switched or retracted votes reverse
// cleanly.
func authorReputation(value int) int {
	switch value {
	case 1:
		return upvoteAuthorDelta
	case -1:
		return downvoteAuthorDelta
	default:
		return 0
	}
}

func voterReputation(value int) int {
	if value == -1 {
		return downvoteVoterDelta
	}
	return 0
}
