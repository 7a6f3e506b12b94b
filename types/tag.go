package types

import "time"

// Tag represents a topic label attached to questions. Tag names are
// unique case-insensitively; the stored name keeps the exact casing of
// whoever created the tag first.
type Tag struct {
	// ID is the unique identifier of the tag.
	ID int64 `json:"id" db:"id"`

	// Name is the tag name, 1 to 15 characters.
	Name string `json:"name" db:"name"`

	// Description is an optional explanation of what the tag covers.
	Description string `json:"description,omitempty" db:"description"`

	// QuestionCount is the number of questions carrying this tag.
	QuestionCount int `json:"question_count" db:"question_count"`

	// FollowerCount is the number of users following this tag.
	FollowerCount int `json:"follower_count" db:"follower_count"`

	// CreatedAt is the timestamp at which the tag was first created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TagRef is the id/name projection embedded in populated questions.
type TagRef struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
