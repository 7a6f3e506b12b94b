package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoercePage(t *testing.T) {
	assert.Equal(t, 1, CoercePage(""))
	assert.Equal(t, 1, CoercePage("abc"))
	assert.Equal(t, 1, CoercePage("0"))
	assert.Equal(t, 1, CoercePage("-3"))
	assert.Equal(t, 1, CoercePage(" 1 "))
	assert.Equal(t, 7, CoercePage("7"))
}

func TestPaginationWindow(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := Pagination{}
		assert.Equal(t, 0, p.Offset())
		assert.Equal(t, DefaultPageSize, p.Limit())
	})

	t.Run("later page", func(t *testing.T) {
		p := Pagination{Page: 3, PageSize: 20}
		assert.Equal(t, 40, p.Offset())
		assert.Equal(t, 20, p.Limit())
	})

	t.Run("size is capped", func(t *testing.T) {
		p := Pagination{Page: 1, PageSize: MaxPageSize + 1}
		assert.Equal(t, MaxPageSize, p.Limit())
	})

	t.Run("negative values degrade to defaults", func(t *testing.T) {
		p := Pagination{Page: -1, PageSize: -5}
		assert.Equal(t, 0, p.Offset())
		assert.Equal(t, DefaultPageSize, p.Limit())
	})
}

func TestHasNextByCount(t *testing.T) {
	assert.True(t, hasNextByCount(25, 0, 10))
	assert.True(t, hasNextByCount(25, 10, 10))
	assert.False(t, hasNextByCount(25, 20, 5))
	assert.False(t, hasNextByCount(0, 0, 0))
	assert.False(t, hasNextByCount(10, 0, 10))
}

func TestTrimOverfetch(t *testing.T) {
	t.Run("extra row signals another page", func(t *testing.T) {
		rows, hasNext := trimOverfetch([]int{1, 2, 3, 4}, 3)
		assert.Equal(t, []int{1, 2, 3}, rows)
		assert.True(t, hasNext)
	})

	t.Run("exact fill is the last page", func(t *testing.T) {
		rows, hasNext := trimOverfetch([]int{1, 2, 3}, 3)
		assert.Equal(t, []int{1, 2, 3}, rows)
		assert.False(t, hasNext)
	})

	t.Run("empty", func(t *testing.T) {
		rows, hasNext := trimOverfetch([]int{}, 3)
		assert.Empty(t, rows)
		assert.False(t, hasNext)
	})
}
