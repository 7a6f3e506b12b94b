package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuestionSort(t *testing.T) {
	sort, err := ParseQuestionSort("")
	assert.NoError(t, err)
	assert.Equal(t, QuestionSortNewest, sort)

	for _, token := range []string{"newest", "unanswered", "frequent", "recommended"} {
		sort, err := ParseQuestionSort(token)
		assert.NoError(t, err)
		assert.Equal(t, QuestionSort(token), sort)
	}

	_, err = ParseQuestionSort("most_voted")
	assert.Error(t, err)
}

func TestParseUserSort(t *testing.T) {
	sort, err := ParseUserSort("")
	assert.NoError(t, err)
	assert.Equal(t, UserSortNewUsers, sort)

	_, err = ParseUserSort("NEW_USERS")
	assert.Error(t, err)
}

func TestParseSavedSort(t *testing.T) {
	sort, err := ParseSavedSort("")
	assert.NoError(t, err)
	assert.Equal(t, SavedSortMostRecent, sort)

	sort, err = ParseSavedSort("lowest_upvotes")
	assert.NoError(t, err)
	assert.Equal(t, SavedSortLowestUpvotes, sort)

	_, err = ParseSavedSort("recent")
	assert.Error(t, err)
}

func TestParseAnswerSort(t *testing.T) {
	sort, err := ParseAnswerSort("")
	assert.NoError(t, err)
	assert.Equal(t, AnswerSortHighestUpvotes, sort)

	sort, err = ParseAnswerSort("old")
	assert.NoError(t, err)
	assert.Equal(t, AnswerSortOld, sort)

	_, err = ParseAnswerSort("highest_upvotes")
	assert.Error(t, err)
}
