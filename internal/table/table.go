// Package table filters, sorts and paginates in-memory rows and turns the
// current page into a render-ready view model. All operations are total.
package table

import (
	"html/template"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults applied by New.
const (
	DefaultPageSize          = 10
	DefaultSearchPlaceholder = "Search..."
	EmptyText                = "No data found"
	Placeholder              = "-"
	maxPageButtons           = 5
)

// Row exposes field values by key. Unknown keys return nil.
type Row interface {
	Field(key string) any
}

// Direction of an active sort.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the active sort column.
type Sort struct {
	Key       string
	Direction Direction
}

// State is the user controlled part of a table: page, search term and sort.
type State struct {
	Page   int
	Search string
	Sort   *Sort
}

// Renderer produces the cell markup for a row.
type Renderer[T Row] interface {
	Render(row T) template.HTML
}

// RenderFunc adapts a function to Renderer.
type RenderFunc[T Row] func(T) template.HTML

// Render calls f(row).
func (f RenderFunc[T]) Render(row T) template.HTML { return f(row) }

// Comparer orders two rows for sorting.
type Comparer[T Row] interface {
	Compare(a, b T) int
}

// CompareFunc adapts a function to Comparer.
type CompareFunc[T Row] func(a, b T) int

// Compare calls f(a, b).
func (f CompareFunc[T]) Compare(a, b T) int { return f(a, b) }

// Column describes one displayed column.
type Column[T Row] struct {
	Key      string
	Header   string
	Sortable bool
	// Render replaces the raw value when set.
	Render Renderer[T]
	// Compare overrides native ordering on Field(Key) when sorting.
	Compare Comparer[T]
}

// Option configures a Table.
type Option[T Row] func(*Table[T])

// WithSearchKey enables search on the given field.
func WithSearchKey[T Row](key string) Option[T] {
	return func(t *Table[T]) { t.searchKey = key }
}

// WithSearchPlaceholder overrides the search box hint.
func WithSearchPlaceholder[T Row](text string) Option[T] {
	return func(t *Table[T]) {
		if text != "" {
			t.placeholder = text
		}
	}
}

// WithPageSize sets rows per page. Non-positive sizes keep the default.
func WithPageSize[T Row](size int) Option[T] {
	return func(t *Table[T]) {
		if size > 0 {
			t.pageSize = size
		}
	}
}

// WithActions adds a trailing actions cell to every row.
func WithActions[T Row](render func(T) template.HTML) Option[T] {
	return func(t *Table[T]) { t.actions = render }
}

// WithState restores page, search and sort, typically from the query string.
func WithState[T Row](state State) Option[T] {
	return func(t *Table[T]) { t.initial = &state }
}

// Table is the engine instance for one dataset.
type Table[T Row] struct {
	data        []T
	columns     []Column[T]
	searchKey   string
	placeholder string
	pageSize    int
	actions     func(T) template.HTML
	initial     *State

	page   int
	search string
	sort   *Sort
	lower  cases.Caser
}

// New builds a table over data. data is not modified.
func New[T Row](data []T, columns []Column[T], opts ...Option[T]) *Table[T] {
	t := &Table[T]{
		data:        data,
		columns:     columns,
		placeholder: DefaultSearchPlaceholder,
		pageSize:    DefaultPageSize,
		page:        1,
		lower:       cases.Lower(language.Und),
	}
	for _, opt := range opts {
		opt(t)
	}
	if st := t.initial; st != nil {
		t.search = st.Search
		if st.Sort != nil && t.sortable(st.Sort.Key) {
			dir := st.Sort.Direction
			if dir != Desc {
				dir = Asc
			}
			t.sort = &Sort{Key: st.Sort.Key, Direction: dir}
		}
		t.page = st.Page
		t.initial = nil
	}
	t.page = t.clamp(t.page)
	return t
}

// State returns the current control state.
func (t *Table[T]) State() State {
	st := State{Page: t.CurrentPage(), Search: t.search}
	if t.sort != nil {
		s := *t.sort
		st.Sort = &s
	}
	return st
}

// SetSearch replaces the search term. A changed term returns to page 1.
func (t *Table[T]) SetSearch(term string) {
	if term == t.search {
		return
	}
	t.search = term
	t.page = 1
}

// SetSort activates key ascending, or toggles direction when key is already active.
// Unknown and unsortable keys are ignored. The page is kept.
func (t *Table[T]) SetSort(key string) {
	if !t.sortable(key) {
		return
	}
	if t.sort != nil && t.sort.Key == key {
		if t.sort.Direction == Asc {
			t.sort.Direction = Desc
		} else {
			t.sort.Direction = Asc
		}
		return
	}
	t.sort = &Sort{Key: key, Direction: Asc}
}

// SetPage moves to page, clamped into range.
func (t *Table[T]) SetPage(page int) {
	t.page = t.clamp(page)
}

// CurrentPage is the effective page after clamping against the filtered size.
func (t *Table[T]) CurrentPage() int {
	return t.clamp(t.page)
}

// PageSize returns rows per page.
func (t *Table[T]) PageSize() int { return t.pageSize }

// Filtered returns the searched and sorted rows.
func (t *Table[T]) Filtered() []T {
	rows := t.filter()
	if t.sort != nil {
		cmp := t.comparator(*t.sort)
		rows = slices.Clone(rows)
		slices.SortStableFunc(rows, cmp)
	}
	return rows
}

// TotalPages is ceil(filtered/pageSize); 0 when nothing matches.
func (t *Table[T]) TotalPages() int {
	return totalPages(len(t.filter()), t.pageSize)
}

// Page returns the rows of the effective page.
func (t *Table[T]) Page() []T {
	rows := t.Filtered()
	start, end := bounds(t.clampFor(t.page, len(rows)), t.pageSize, len(rows))
	return rows[start:end]
}

func (t *Table[T]) filter() []T {
	if t.search == "" || t.searchKey == "" {
		return t.data
	}
	needle := t.lower.String(t.search)
	out := make([]T, 0, len(t.data))
	for _, row := range t.data {
		value := row.Field(t.searchKey)
		if value == nil {
			continue
		}
		text := Stringify(value)
		if text == "" {
			continue
		}
		if strings.Contains(t.lower.String(text), needle) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) comparator(s Sort) func(a, b T) int {
	var base func(a, b T) int
	if col, ok := t.column(s.Key); ok && col.Compare != nil {
		base = col.Compare.Compare
	} else {
		base = func(a, b T) int { return Compare(a.Field(s.Key), b.Field(s.Key)) }
	}
	if s.Direction == Desc {
		return func(a, b T) int { return -base(a, b) }
	}
	return base
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, col := range t.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) sortable(key string) bool {
	col, ok := t.column(key)
	return ok && col.Sortable
}

func (t *Table[T]) clamp(page int) int {
	return t.clampFor(page, len(t.filter()))
}

func (t *Table[T]) clampFor(page, n int) int {
	pages := max(totalPages(n, t.pageSize), 1)
	return max(1, min(page, pages))
}

func totalPages(n, size int) int {
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / float64(size)))
}

func bounds(page, size, n int) (int, int) {
	start := min((page-1)*size, n)
	end := min(start+size, n)
	return start, end
}
