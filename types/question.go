package types

import "time"

// Question represents a question posted to the forum, together with the
// relations expanded for presentation: the populating layer fills
// Author, Tags, UpVoters, DownVoters and Answers depending on how much
// fan-out the calling view needs.
type Question struct {
	// ID is the unique identifier of the question.
	ID int64 `json:"id" db:"id"`

	// AuthorID references the user who posted the question.
	AuthorID int64 `json:"author_id" db:"author_id"`

	// Author is the populated author projection. Nil when the caller
	// requested an unpopulated row.
	Author *UserRef `json:"author,omitempty"`

	// Title is the question headline. Valid titles are 5 to 130
	// characters long.
	Title string `json:"title" db:"title"`

	// Content is the question body in rich-text markup, at least 20
	// characters long.
	Content string `json:"content" db:"content"`

	// Tags are the populated tag projections, between 1 and 3 per
	// question, in the order the author supplied them.
	Tags []TagRef `json:"tags,omitempty"`

	// UpVoters and DownVoters are the populated voter projections. A
	// user appears in at most one of the two sets.
	UpVoters   []UserRef `json:"up_voters,omitempty"`
	DownVoters []UserRef `json:"down_voters,omitempty"`

	// Answers holds the populated answers when the calling view asked
	// for them.
	Answers []Answer `json:"answers,omitempty"`

	// AnswerCount is the number of answers, available even when
	// Answers itself is not populated.
	AnswerCount int `json:"answer_count" db:"answer_count"`

	// Views counts how many times the question page was opened.
	Views int64 `json:"views" db:"views"`

	// CreatedAt is the timestamp at which the question was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// QuestionSummary is the id/title projection returned by the hot
// questions view and embedded in profile answer listings.
type QuestionSummary struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}
