package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionSearchCondsMatchLiterally(t *testing.T) {
	conds, args := questionSearchConds("100%", 3)
	assert.Equal(t, []string{"(q.title ILIKE '%' || $3 || '%' OR q.content ILIKE '%' || $3 || '%')"}, conds)
	assert.Equal(t, []any{`100\%`}, args)

	_, args = questionSearchConds(`snake_case\path`, 1)
	assert.Equal(t, []any{`snake\_case\\path`}, args)

	conds, args = questionSearchConds("   ", 1)
	assert.Nil(t, conds)
	assert.Nil(t, args)
}

func TestUserSearchCondsMatchLiterally(t *testing.T) {
	_, args := userSearchConds("90_percent")
	assert.Equal(t, []any{`90\_percent`}, args)

	conds, args := userSearchConds("")
	assert.Nil(t, conds)
	assert.Nil(t, args)
}
