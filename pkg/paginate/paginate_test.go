package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginatePartition(t *testing.T) {
	// Every page except possibly the last is full, and concatenating
	// the pages in order reproduces the input.
	for _, pageSize := range []int{1, 2, 4, 5, 7} {
		for n := 0; n <= 23; n++ {
			items := make([]int, n)
			for i := range items {
				items[i] = i
			}

			first := Paginate(items, pageSize, 1)
			wantPages := (n + pageSize - 1) / pageSize
			if wantPages < 1 {
				wantPages = 1
			}
			require.Equal(t, wantPages, first.TotalPages, "n=%d pageSize=%d", n, pageSize)

			joined := []int{}
			for p := 1; p <= first.TotalPages; p++ {
				page := Paginate(items, pageSize, p)
				if p < first.TotalPages && n > 0 {
					assert.Len(t, page.Items, pageSize)
				}
				joined = append(joined, page.Items...)
			}
			assert.Equal(t, items, joined, "n=%d pageSize=%d", n, pageSize)
		}
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	page := Paginate([]string{}, 4, 1)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestPaginateBeyondEnd(t *testing.T) {
	items := []int{1, 2, 3}
	page := Paginate(items, 2, 5)

	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.TotalPages)
	// Affordances follow the requested page number, not a clamped one.
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestPaginateAffordances(t *testing.T) {
	items := make([]int, 9)

	first := Paginate(items, 4, 1)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	middle := Paginate(items, 4, 2)
	assert.True(t, middle.HasPrev)
	assert.True(t, middle.HasNext)

	last := Paginate(items, 4, 3)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
	assert.Len(t, last.Items, 1)
}
