package store

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultRowsPerPage is the page size used when none is configured.
const DefaultRowsPerPage = 7

// PageSizes lists the selectable page sizes.
var PageSizes = []int{5, 7, 10}

var (
	// ErrPageSize is returned for a page size outside PageSizes.
	ErrPageSize = errors.New("unsupported page size")
	// ErrDerivedPages is returned when a caller tries to set a total page
	// count that disagrees with the total user count and page size.
	ErrDerivedPages = errors.New("total pages is derived from total users and page size")
)

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// TotalPages returns ceil(total / rows), 0 when there is nothing to page.
func TotalPages(total, rows int) int {
	if total <= 0 || rows <= 0 {
		return 0
	}
	return (total + rows - 1) / rows
}

// PaginationState is the persisted pagination tuple.
type PaginationState struct {
	CurrentPage int `json:"currentPage"`
	RowsPerPage int `json:"rowsPerPage"`
	TotalUsers  int `json:"totalUsers"`
	TotalPages  int `json:"totalPages"`
}

// Window returns the half-open bounds of the current page within a list of
// length n. Both are 0 when there are no pages.
func (s PaginationState) Window(n int) (start, end int) {
	if s.TotalPages == 0 || n <= 0 || s.RowsPerPage <= 0 {
		return 0, 0
	}
	start = (s.CurrentPage - 1) * s.RowsPerPage
	if start > n {
		start = n
	}
	end = start + s.RowsPerPage
	if end > n {
		end = n
	}
	return start, end
}

// Page returns the slice of items visible on the current page.
func Page[T any](items []T, s PaginationState) []T {
	start, end := s.Window(len(items))
	return items[start:end]
}

// Pagination derives the page count from the user count and page size, and
// keeps the current page inside [1, max(TotalPages, 1)].
type Pagination struct {
	mu          sync.RWMutex
	state       PaginationState
	defaultRows int
	persist     persistence
}

// NewPagination returns the initial state. defaultRows falls back to
// DefaultRowsPerPage when it is not a valid page size.
func NewPagination(defaultRows int, opts ...Option) *Pagination {
	if !ValidPageSize(defaultRows) {
		defaultRows = DefaultRowsPerPage
	}
	p := &Pagination{defaultRows: defaultRows, persist: newPersistence(KeyPagination, opts)}
	p.state = p.initial()
	return p
}

func (p *Pagination) initial() PaginationState {
	return PaginationState{CurrentPage: 1, RowsPerPage: p.defaultRows}
}

// Hydrate loads the persisted tuple and re-derives it so a stale or
// hand-edited snapshot cannot break the invariants.
func (p *Pagination) Hydrate() error {
	var snap PaginationState
	ok, err := p.persist.load(&snap)
	if err != nil || !ok {
		return err
	}
	if !ValidPageSize(snap.RowsPerPage) {
		snap.RowsPerPage = p.defaultRows
	}
	if snap.TotalUsers < 0 {
		snap.TotalUsers = 0
	}
	snap.TotalPages = TotalPages(snap.TotalUsers, snap.RowsPerPage)
	snap.CurrentPage = clampPage(snap.CurrentPage, snap.TotalPages)

	p.mu.Lock()
	p.state = snap
	p.mu.Unlock()
	return nil
}

// State returns the current tuple.
func (p *Pagination) State() PaginationState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func clampPage(page, totalPages int) int {
	hi := totalPages
	if hi < 1 {
		hi = 1
	}
	switch {
	case page < 1:
		return 1
	case page > hi:
		return hi
	}
	return page
}

func (p *Pagination) write(fn func(s *PaginationState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
	p.persist.save(p.state)
}

// SetCurrentPage moves to page n, clamped to the valid range.
func (p *Pagination) SetCurrentPage(n int) {
	p.write(func(s *PaginationState) {
		s.CurrentPage = clampPage(n, s.TotalPages)
	})
}

// NextPage advances one page if there is one.
func (p *Pagination) NextPage() {
	p.write(func(s *PaginationState) {
		s.CurrentPage = clampPage(s.CurrentPage+1, s.TotalPages)
	})
}

// PrevPage goes back one page if there is one.
func (p *Pagination) PrevPage() {
	p.write(func(s *PaginationState) {
		s.CurrentPage = clampPage(s.CurrentPage-1, s.TotalPages)
	})
}

// SetRowsPerPage changes the page size and returns to the first page.
func (p *Pagination) SetRowsPerPage(n int) error {
	if !ValidPageSize(n) {
		return fmt.Errorf("%w: %d (choose one of %v)", ErrPageSize, n, PageSizes)
	}
	p.write(func(s *PaginationState) {
		s.RowsPerPage = n
		s.TotalPages = TotalPages(s.TotalUsers, n)
		s.CurrentPage = 1
	})
	return nil
}

// SetTotalUsers records the number of items and re-derives the page count.
// The current page is pulled back when it now lies past the last page.
func (p *Pagination) SetTotalUsers(n int) {
	if n < 0 {
		n = 0
	}
	p.write(func(s *PaginationState) {
		s.TotalUsers = n
		s.TotalPages = TotalPages(n, s.RowsPerPage)
		s.CurrentPage = clampPage(s.CurrentPage, s.TotalPages)
	})
}

// SetTotalPages accepts only the value SetTotalUsers and SetRowsPerPage
// already derived; anything else is rejected with ErrDerivedPages.
func (p *Pagination) SetTotalPages(n int) error {
	s := p.State()
	if want := TotalPages(s.TotalUsers, s.RowsPerPage); n != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDerivedPages, n, want)
	}
	return nil
}

// ResetPagination restores the initial tuple.
func (p *Pagination) ResetPagination() {
	p.write(func(s *PaginationState) {
		*s = p.initial()
	})
}
