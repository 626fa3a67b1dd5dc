package pagination

import (
	"strconv"
	"strings"
)

// Page mô tả một trang của listing đã sắp xếp.
// Number luôn nằm trong [1, NumPages]; listing rỗng là 1 trang rỗng.
type Page struct {
	Number   int `json:"number"`
	NumPages int `json:"num_pages"`
	Total    int `json:"total"`
	PerPage  int `json:"per_page"`

	HasNext        bool `json:"has_next"`
	HasPrevious    bool `json:"has_previous"`
	NextNumber     int  `json:"next_page_number,omitempty"`
	PreviousNumber int  `json:"previous_page_number,omitempty"`

	// 1-based index của item đầu/cuối trong trang (0 nếu trang rỗng)
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// ParsePage đọc ?page=; thiếu hoặc không phải số -> 1.
// Giá trị ngoài range được clamp bởi New.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// New tính metadata cho trang requested trên total items.
func New(total, perPage, requested int) Page {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		Total:       total,
		PerPage:     perPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = number - 1
	}

	if total > 0 {
		p.StartIndex = p.Offset() + 1
		p.EndIndex = p.Offset() + p.Len()
	}
	return p
}

// Offset là số items bỏ qua trước trang này (SQL OFFSET)
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit là page size (SQL LIMIT)
func (p Page) Limit() int {
	return p.PerPage
}

// Len là số items thực tế trong trang: min(PerPage, Total - Offset)
func (p Page) Len() int {
	remaining := p.Total - p.Offset()
	if remaining < 0 {
		return 0
	}
	if remaining > p.PerPage {
		return p.PerPage
	}
	return remaining
}

// Paginate slice một sequence đã sắp xếp trong memory.
func Paginate[T any](items []T, perPage, requested int) ([]T, Page) {
	p := New(len(items), perPage, requested)
	start := p.Offset()
	end := start + p.Len()
	return items[start:end], p
}
