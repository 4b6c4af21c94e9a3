// Package paginate slices result lists into fixed-size pages and tracks the
// page cursor.
package paginate

// PageSize is the number of items shown per page.
const PageSize = 24

// TotalPages is ceil(n/size), but never less than one.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Slice returns page (1-based) of items. Out-of-range pages are clamped.
func Slice[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = PageSize
	}
	page = clamp(page, TotalPages(len(items), size))
	start := (page - 1) * size
	if start >= len(items) {
		return items[:0:0]
	}
	end := min(start+size, len(items))
	return items[start:end:end]
}

func clamp(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Op is a page cursor transition.
type Op string

const (
	OpFirst  Op = "first"
	OpPrev   Op = "prev"
	OpNext   Op = "next"
	OpLast   Op = "last"
	OpSelect Op = "select"
)

func (o Op) Valid() bool {
	switch o {
	case OpFirst, OpPrev, OpNext, OpLast, OpSelect:
		return true
	}
	return false
}

// Pager is the page cursor. The zero value is not usable; use NewPager.
type Pager struct {
	page  int
	total int
}

func NewPager(totalItems, size int) *Pager {
	return &Pager{page: 1, total: TotalPages(totalItems, size)}
}

func (p *Pager) Page() int       { return p.page }
func (p *Pager) TotalPages() int { return p.total }

// Select moves to page n, clamped to [1, TotalPages].
func (p *Pager) Select(n int) int {
	p.page = clamp(n, p.total)
	return p.page
}

func (p *Pager) First() int { return p.Select(1) }
func (p *Pager) Prev() int  { return p.Select(p.page - 1) }
func (p *Pager) Next() int  { return p.Select(p.page + 1) }
func (p *Pager) Last() int  { return p.Select(p.total) }

// Apply runs op; n is only read by OpSelect. Unknown ops leave the cursor.
func (p *Pager) Apply(op Op, n int) int {
	switch op {
	case OpFirst:
		return p.First()
	case OpPrev:
		return p.Prev()
	case OpNext:
		return p.Next()
	case OpLast:
		return p.Last()
	case OpSelect:
		return p.Select(n)
	}
	return p.page
}

// Clamp updates the page count for a result list of totalItems and pulls the
// cursor down if it now points past the last page.
func (p *Pager) Clamp(totalItems, size int) int {
	p.total = TotalPages(totalItems, size)
	return p.Select(p.page)
}

// Reset moves the cursor back to the first page.
func (p *Pager) Reset() { p.page = 1 }
