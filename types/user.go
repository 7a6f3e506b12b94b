package types

import "time"

// User represents an account in the forum.
// Accounts are provisioned either through local registration or through
// the identity-provider webhook; in the latter case ExternalID carries
// the provider-issued identifier.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// ExternalID is the identifier issued by the external identity
	// provider, empty for locally registered accounts.
	ExternalID string `json:"external_id,omitempty" db:"external_id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Username is the unique handle chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Unique across the system.
	Email string `json:"email" db:"email"`

	// Picture is the avatar reference: an object-storage key or an
	// absolute URL supplied by the identity provider.
	Picture string `json:"picture,omitempty" db:"picture"`

	// Bio is a free-form self description.
	Bio string `json:"bio,omitempty" db:"bio"`

	// Portfolio is a link to the user's personal site.
	Portfolio string `json:"portfolio,omitempty" db:"portfolio"`

	// Location is a free-form location string.
	Location string `json:"location,omitempty" db:"location"`

	// Reputation is the accumulated reputation score. Starts at 0 and
	// is adjusted by the vote-event worker.
	Reputation int `json:"reputation" db:"reputation"`

	// PasswordHash stores the hashed representation of the user's
	// password for locally registered accounts.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// JoinedAt is the timestamp when the account was created.
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRef is the projected subset of a user embedded in populated
// responses (question authors, voters, answer authors).
type UserRef struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// ExternalID is the identity-provider identifier, if any.
	ExternalID string `json:"external_id,omitempty" db:"external_id"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Picture is the avatar reference.
	Picture string `json:"picture,omitempty" db:"picture"`
}

// Profile is a user together with their contribution totals and the
// badges those totals earn.
type Profile struct {
	// User is the account the profile describes.
	User User `json:"user"`

	// QuestionCount is the number of questions the user has posted.
	QuestionCount int64 `json:"question_count"`

	// AnswerCount is the number of answers the user has posted.
	AnswerCount int64 `json:"answer_count"`

	// Badges are the tier counts earned from the contribution totals.
	Badges BadgeCounts `json:"badges"`
}

// Ref projects the user to its embedded representation.
func (u User) Ref() UserRef {
	return UserRef{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Picture:    u.Picture,
	}
}
