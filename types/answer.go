package types

import "time"

// Answer represents an answer to a question.
type Answer struct {
	// ID is the unique identifier of the answer.
	ID int64 `json:"id" db:"id"`

	// QuestionID references the question this answer belongs to.
	QuestionID int64 `json:"question_id" db:"question_id"`

	// Question is the populated id/title projection of the parent
	// question, filled for profile answer listings.
	Question *QuestionSummary `json:"question,omitempty"`

	// AuthorID references the user who wrote the answer.
	AuthorID int64 `json:"author_id" db:"author_id"`

	// Author is the populated author projection.
	Author *UserRef `json:"author,omitempty"`

	// Content is the answer body, at least 20 characters long.
	Content string `json:"content" db:"content"`

	// UpVoters and DownVoters are the populated voter projections.
	UpVoters   []UserRef `json:"up_voters,omitempty"`
	DownVoters []UserRef `json:"down_voters,omitempty"`

	// CreatedAt is the timestamp at which the answer was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
