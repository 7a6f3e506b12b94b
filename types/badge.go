package types

// BadgeCriteriaKind identifies the activity a badge criterion measures.
type BadgeCriteriaKind string

const (
	BadgeQuestionCount   BadgeCriteriaKind = "QUESTION_COUNT"
	BadgeAnswerCount     BadgeCriteriaKind = "ANSWER_COUNT"
	BadgeQuestionUpvotes BadgeCriteriaKind = "QUESTION_UPVOTES"
	BadgeAnswerUpvotes   BadgeCriteriaKind = "ANSWER_UPVOTES"
	BadgeTotalViews      BadgeCriteriaKind = "TOTAL_VIEWS"
)

// BadgeCriterion pairs a criterion kind with the raw count accumulated
// by a user.
type BadgeCriterion struct {
	Kind  BadgeCriteriaKind `json:"kind"`
	Count int64             `json:"count"`
}

// BadgeCounts is the number of criteria that reached each tier.
type BadgeCounts struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}
