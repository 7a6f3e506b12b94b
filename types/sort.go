package types

import "fmt"

// Sort keys are closed enumerations: each token maps to a statically
// known field and direction in the store layer, and unknown tokens are
// rejected at parse time instead of silently falling back to a default.
// An empty token selects the default for its entity.

// QuestionSort orders question listings.
type QuestionSort string

const (
	// QuestionSortNewest orders by creation time, newest first. Default.
	QuestionSortNewest QuestionSort = "newest"

	// QuestionSortUnanswered restricts the listing to questions with
	// zero answers; ordering stays at the default.
	QuestionSortUnanswered QuestionSort = "unanswered"

	// QuestionSortFrequent orders by view count, highest first.
	QuestionSortFrequent QuestionSort = "frequent"

	// QuestionSortRecommended orders by up-vote count, highest first.
	QuestionSortRecommended QuestionSort = "recommended"
)

func ParseQuestionSort(token string) (QuestionSort, error) {
	switch token {
	case "":
		return QuestionSortNewest, nil
	case string(QuestionSortNewest), string(QuestionSortUnanswered),
		string(QuestionSortFrequent), string(QuestionSortRecommended):
		return QuestionSort(token), nil
	}
	return "", fmt.Errorf("unknown question sort %q", token)
}

// UserSort orders user listings.
type UserSort string

const (
	// UserSortNewUsers orders by join time, newest first. Default.
	UserSortNewUsers UserSort = "new_users"

	// UserSortOldUsers orders by join time, oldest first.
	UserSortOldUsers UserSort = "old_users"

	// UserSortTopContributors orders by reputation, highest first.
	UserSortTopContributors UserSort = "top_contributors"
)

func ParseUserSort(token string) (UserSort, error) {
	switch token {
	case "":
		return UserSortNewUsers, nil
	case string(UserSortNewUsers), string(UserSortOldUsers),
		string(UserSortTopContributors):
		return UserSort(token), nil
	}
	return "", fmt.Errorf("unknown user sort %q", token)
}

// SavedSort orders a user's saved-question listing.
type SavedSort string

const (
	// SavedSortMostRecent orders by creation time, newest first. Default.
	SavedSortMostRecent SavedSort = "most_recent"

	// SavedSortOldest orders by creation time, oldest first.
	SavedSortOldest SavedSort = "oldest"

	// SavedSortMostViewed orders by view count, highest first.
	SavedSortMostViewed SavedSort = "most_viewed"

	// SavedSortHighestUpvotes orders by up-vote count, highest first.
	SavedSortHighestUpvotes SavedSort = "highest_upvotes"

	// SavedSortLowestUpvotes orders by up-vote count, lowest first.
	SavedSortLowestUpvotes SavedSort = "lowest_upvotes"
)

func ParseSavedSort(token string) (SavedSort, error) {
	switch token {
	case "":
		return SavedSortMostRecent, nil
	case string(SavedSortMostRecent), string(SavedSortOldest),
		string(SavedSortMostViewed), string(SavedSortHighestUpvotes),
		string(SavedSortLowestUpvotes):
		return SavedSort(token), nil
	}
	return "", fmt.Errorf("unknown saved-question sort %q", token)
}

// AnswerSort orders the answers under a question.
type AnswerSort string

const (
	// AnswerSortHighestUpvotes orders by up-vote count, highest first.
	// Default.
	AnswerSortHighestUpvotes AnswerSort = "highestUpvotes"

	// AnswerSortLowestUpvotes orders by up-vote count, lowest first.
	AnswerSortLowestUpvotes AnswerSort = "lowestUpvotes"

	// AnswerSortRecent orders by creation time, newest first.
	AnswerSortRecent AnswerSort = "recent"

	// AnswerSortOld orders by creation time, oldest first.
	AnswerSortOld AnswerSort = "old"
)

func ParseAnswerSort(token string) (AnswerSort, error) {
	switch token {
	case "":
		return AnswerSortHighestUpvotes, nil
	case string(AnswerSortHighestUpvotes), string(AnswerSortLowestUpvotes),
		string(AnswerSortRecent), string(AnswerSortOld):
		return AnswerSort(token), nil
	}
	return "", fmt.Errorf("unknown answer sort %q", token)
}
