package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPageSize is the fixed client-side page size.
const DefaultPageSize = 10

// Paginator tracks the current page. Page is always within [1, TotalPages()].
type Paginator struct {
	page     int
	pageSize int
	total    int
}

func NewPaginator(pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginator{page: 1, pageSize: pageSize}
}

func (p Paginator) Page() int     { return p.page }
func (p Paginator) PageSize() int { return p.pageSize }
func (p Paginator) Total() int    { return p.total }

// TotalPages is at least 1, so an empty list still has a page to show.
func (p Paginator) TotalPages() int {
	if p.total <= 0 {
		return 1
	}
	return (p.total + p.pageSize - 1) / p.pageSize
}

// SetTotal updates the item count and clamps the page.
func (p *Paginator) SetTotal(n int) {
	p.total = n
	p.page = p.clamp(p.page)
}

// Reset returns to the first page.
func (p *Paginator) Reset() {
	p.page = 1
}

// GoTo moves to page n. Out-of-range targets are a no-op and report false.
func (p *Paginator) GoTo(n int) bool {
	if n < 1 || n > p.TotalPages() || n == p.page {
		return false
	}
	p.page = n
	return true
}

func (p *Paginator) Next() bool { return p.GoTo(p.page + 1) }
func (p *Paginator) Prev() bool { return p.GoTo(p.page - 1) }

func (p Paginator) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if last := p.TotalPages(); n > last {
		return last
	}
	return n
}

// Bounds returns the half-open slice range of the current page.
func (p Paginator) Bounds() (start, end int) {
	start = (p.page - 1) * p.pageSize
	if start > p.total {
		start = p.total
	}
	end = start + p.pageSize
	if end > p.total {
		end = p.total
	}
	return start, end
}

// Slice returns the current page of items.
func Slice[T any](p Paginator, items []T) []T {
	start, end := p.Bounds()
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}
	return items[start:end]
}

var (
	pageActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	pageInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// View renders "‹ 1 [2] 3 ›" with the arrows dimmed at the boundaries.
func (p Paginator) View() string {
	var parts []string

	prev := "‹"
	if p.page == 1 {
		parts = append(parts, pageInactiveStyle.Render(prev))
	} else {
		parts = append(parts, prev)
	}

	for i := 1; i <= p.TotalPages(); i++ {
		if i == p.page {
			parts = append(parts, pageActiveStyle.Render(fmt.Sprintf("[%d]", i)))
		} else {
			parts = append(parts, pageInactiveStyle.Render(fmt.Sprintf("%d", i)))
		}
	}

	next := "›"
	if p.page == p.TotalPages() {
		parts = append(parts, pageInactiveStyle.Render(next))
	} else {
		parts = append(parts, next)
	}

	return strings.Join(parts, " ")
}
