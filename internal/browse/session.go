// Package browse runs browsing sessions: one fetched catalog, one facet state
// and one page cursor per session.
package browse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"mangashelf/internal/catalog"
	"mangashelf/internal/facet"
	"mangashelf/internal/metrics"
	"mangashelf/internal/normalize"
	"mangashelf/internal/paginate"
	"mangashelf/internal/ranker"
	"mangashelf/pkg/models"
)

var (
	// ErrSessionFailed is returned when loading a session whose fetch already
	// failed. A failed session cannot recover; open a new one.
	ErrSessionFailed = errors.New("session failed")
	ErrInvalidPageOp = errors.New("invalid page operation")
	ErrInvalidRange  = errors.New("invalid range input")
)

type Options struct {
	Locale     string
	PageSize   int
	Normalizer *normalize.Normalizer
	// UserLists maps item ids to the library lists the viewer filed them under.
	UserLists map[string][]string
}

// Session is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	started  bool
	status   Status
	errMsg   string
	items    []models.Item
	tags     []string
	state    facet.State
	pager    *paginate.Pager
	draft    *facet.RangeDraft
	ranker   *ranker.Ranker
	locale   string
	pageSize int
	norm     *normalize.Normalizer
	lists    map[string][]string

	revision uint64
	cached   *ranked
	seq      uint64
}

type ranked struct {
	revision uint64
	items    []models.Item
}

func NewSession(id string, opts Options) *Session {
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = paginate.PageSize
	}
	if opts.Normalizer == nil {
		opts.Normalizer = normalize.New("")
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		status:    StatusLoading,
		items:     []models.Item{},
		state:     facet.Initial(),
		pager:     paginate.NewPager(0, opts.PageSize),
		draft:     facet.NewRangeDraft(),
		ranker:    ranker.New(opts.Locale),
		locale:    opts.Locale,
		pageSize:  opts.PageSize,
		norm:      opts.Normalizer,
		lists:     opts.UserLists,
	}
}

// Load fetches the catalog once. Later calls on a ready or loading session
// are no-ops; on a failed session they return ErrSessionFailed. A fetch error
// leaves the session failed with an empty catalog and is also returned.
func (s *Session) Load(ctx context.Context, src catalog.Source) error {
	s.mu.Lock()
	switch {
	case s.status == StatusFailed:
		s.mu.Unlock()
		return ErrSessionFailed
	case s.started:
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	records, err := catalog.Fetch(ctx, src)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if err != nil {
		s.status = StatusFailed
		s.errMsg = fmt.Sprintf("could not load the catalog: %v", err)
		s.items = []models.Item{}
		s.touch()
		return err
	}

	items := s.norm.NormalizeAll(records)
	if len(s.lists) > 0 {
		for i, it := range items {
			if lists, ok := s.lists[it.ID]; ok {
				items[i] = it.WithUserLists(lists)
			}
		}
	}
	s.items = items
	s.tags = catalog.TagVocabulary(items, s.locale)
	s.status = StatusReady
	s.touch()
	return nil
}

// touch invalidates the memoized result list and re-clamps the cursor.
func (s *Session) touch() {
	s.revision++
	s.pager.Clamp(len(s.results()), s.pageSize)
}

// results is the filtered and ranked list for the current state, memoized on
// the revision counter. Callers hold s.mu.
func (s *Session) results() []models.Item {
	if s.cached != nil && s.cached.revision == s.revision {
		return s.cached.items
	}
	out := Recompute(s.items, s.state, s.ranker)
	s.cached = &ranked{revision: s.revision, items: out}
	return out
}

// Recompute filters items by st and ranks the result. It has no side effects.
func Recompute(items []models.Item, st facet.State, rk *ranker.Ranker) []models.Item {
	return rk.Sort(facet.Filter(items, st), st.SortKey)
}

// Dispatch validates and applies a facet action. The page cursor returns to
// the first page.
func (s *Session) Dispatch(a facet.Action) (View, error) {
	if err := a.Validate(); err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(a)
	metrics.RecordAction(string(a.Type))
	return s.viewLocked(), nil
}

func (s *Session) apply(a facet.Action) {
	s.seq++
	s.state = facet.Apply(s.state, a)
	if a.Type == facet.TypeReset {
		s.draft.Sync(s.state)
	}
	s.pager.Reset()
	s.touch()
}

// Page moves the page cursor.
func (s *Session) Page(op paginate.Op, n int) (View, error) {
	if !op.Valid() {
		return View{}, fmt.Errorf("%w: %q", ErrInvalidPageOp, op)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pager.Apply(op, n)
	return s.viewLocked(), nil
}

// RangeInput feeds typed text into a range bound. committed reports whether
// the text changed the state; partial input is held until it parses.
func (s *Session) RangeInput(field facet.RangeField, side facet.Side, text string) (v View, committed bool, err error) {
	if !facet.IsRangeField(string(field)) || (side != facet.SideMin && side != facet.SideMax) {
		return View{}, false, fmt.Errorf("%w: %s/%s", ErrInvalidRange, field, side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.draft.Input(field, side, text)
	if ok {
		s.apply(a)
		metrics.RecordAction(string(a.Type))
	}
	return s.viewLocked(), ok, nil
}

// Results returns every matching item in rank order, not just the current
// page. The slice is a copy.
func (s *Session) Results() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results())
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	all := s.results()
	page := s.pager.Clamp(len(all), s.pageSize)
	return View{
		Items:      paginate.Slice(all, page, s.pageSize),
		Total:      len(all),
		TotalPages: s.pager.TotalPages(),
		Page:       page,
		Status:     s.status,
		Error:      s.errMsg,
		Seq:        s.seq,
	}
}

func (s *Session) Facets() Facets {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.tags
	if tags == nil {
		tags = catalog.TagVocabulary(nil, s.locale)
	}
	rangeText := make(map[facet.RangeField]map[facet.Side]string)
	for _, f := range []facet.RangeField{facet.ReleaseYearField, facet.ChapterCountField, facet.RatingField} {
		rangeText[f] = map[facet.Side]string{
			facet.SideMin: s.draft.Text(f, facet.SideMin),
			facet.SideMax: s.draft.Text(f, facet.SideMax),
		}
	}
	return Facets{
		Categories:          models.Categories,
		Tags:                tags,
		Kinds:               models.Kinds,
		AgeRatings:          models.AgeRatings,
		TitleStatuses:       models.TitleStatuses,
		TranslationStatuses: models.TranslationStatuses,
		ReleaseFormats:      models.ReleaseFormats,
		UserLists:           models.UserLists,
		SortKeys:            ranker.Keys,
		RangeText:           rangeText,
		State:               s.state,
	}
}

func (s *Session) State() facet.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
