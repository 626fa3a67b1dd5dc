package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	testCases := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"2", 2},
		{" 3 ", 3},
		{"-4", -4},
		{"1.5", 1},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParsePage(tc.raw), "raw=%q", tc.raw)
	}
}

func TestNew_PageSizes(t *testing.T) {
	// page k holds min(P, T - P*(k-1)) items for 1 <= k <= ceil(T/P)
	for _, total := range []int{1, 9, 10, 11, 15, 20, 37} {
		for _, perPage := range []int{1, 3, 10} {
			numPages := (total + perPage - 1) / perPage
			sum := 0
			for k := 1; k <= numPages; k++ {
				p := New(total, perPage, k)
				want := perPage
				if rest := total - perPage*(k-1); rest < want {
					want = rest
				}
				require.Equal(t, k, p.Number)
				assert.Equal(t, numPages, p.NumPages)
				assert.Equal(t, want, p.Len(), "total=%d perPage=%d page=%d", total, perPage, k)
				sum += p.Len()
			}
			assert.Equal(t, total, sum)
		}
	}
}

func TestNew_ClampsOutOfRange(t *testing.T) {
	below := New(15, 10, 0)
	assert.Equal(t, 1, below.Number)
	assert.False(t, below.HasPrevious)
	assert.True(t, below.HasNext)
	assert.Equal(t, 2, below.NextNumber)

	negative := New(15, 10, -7)
	assert.Equal(t, 1, negative.Number)

	above := New(15, 10, 99)
	assert.Equal(t, 2, above.Number)
	assert.Equal(t, 5, above.Len())
	assert.False(t, above.HasNext)
	assert.Equal(t, 1, above.PreviousNumber)
}

func TestNew_EmptyListing(t *testing.T) {
	p := New(0, 10, 3)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 0, p.StartIndex)
	assert.Equal(t, 0, p.EndIndex)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
}

func TestPaginate_FifteenItemsTenPerPage(t *testing.T) {
	// newest first: 15, 14, ..., 1
	items := make([]int, 15)
	for i := range items {
		items[i] = 15 - i
	}

	first, p1 := Paginate(items, 10, ParsePage(""))
	assert.Equal(t, []int{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}, first)
	assert.Equal(t, 1, p1.StartIndex)
	assert.Equal(t, 10, p1.EndIndex)

	second, p2 := Paginate(items, 10, ParsePage("2"))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, second)
	assert.Equal(t, 11, p2.StartIndex)
	assert.Equal(t, 15, p2.EndIndex)

	clamped, _ := Paginate(items, 10, ParsePage("last"))
	assert.Equal(t, first, clamped)
}

func TestPaginate_Empty(t *testing.T) {
	var items []string
	page, meta := Paginate(items, 10, 2)
	assert.Empty(t, page)
	assert.Equal(t, 1, meta.Number)
}
