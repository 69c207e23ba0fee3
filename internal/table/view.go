package table

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
)

// Query parameter names.
const (
	ParamPage   = "page"
	ParamSearch = "q"
	ParamSort   = "sort"
	ParamDir    = "dir"
)

// Header is one column heading.
type Header struct {
	Key       string
	Label     string
	Sortable  bool
	Active    bool
	Direction Direction
	// Href applies the sort toggle for this column.
	Href string
}

// Indicator is the arrow shown next to the active sort column.
func (h Header) Indicator() string {
	if !h.Active {
		return ""
	}
	if h.Direction == Desc {
		return "↓"
	}
	return "↑"
}

// BodyRow is one rendered record.
type BodyRow struct {
	ID      string
	Cells   []template.HTML
	Actions template.HTML
}

// PageLink is a numbered pagination button.
type PageLink struct {
	Number int
	Href   string
	Active bool
}

// Pager is present only when there is more than one page.
type Pager struct {
	Start, End, Total int
	Previous          string
	Next              string
	PrevDisabled      bool
	NextDisabled      bool
	Pages             []PageLink
}

// Summary renders "Showing X to Y of Z entries".
func (p Pager) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", p.Start, p.End, p.Total)
}

// View is the render-ready snapshot of a table.
type View struct {
	Searchable        bool
	Search            string
	SearchPlaceholder string
	// Hidden carries the sort through the search form.
	Hidden     map[string]string
	Headers    []Header
	Rows       []BodyRow
	HasActions bool
	Empty      bool
	EmptyText  string
	Colspan    int
	Pager      *Pager
}

// View renders the effective page.
func (t *Table[T]) View() View {
	page := t.CurrentPage()
	state := t.State()

	v := View{
		Searchable:        t.searchKey != "",
		Search:            t.search,
		SearchPlaceholder: t.placeholder,
		Hidden:            map[string]string{},
		HasActions:        t.actions != nil,
		EmptyText:         EmptyText,
		Colspan:           len(t.columns),
	}
	if v.HasActions {
		v.Colspan++
	}
	if t.sort != nil {
		v.Hidden[ParamSort] = t.sort.Key
		v.Hidden[ParamDir] = string(t.sort.Direction)
	}

	for _, col := range t.columns {
		h := Header{Key: col.Key, Label: col.Header, Sortable: col.Sortable}
		if t.sort != nil && t.sort.Key == col.Key {
			h.Active = true
			h.Direction = t.sort.Direction
		}
		if col.Sortable {
			h.Href = "?" + toggled(state, col.Key).Query().Encode()
		}
		v.Headers = append(v.Headers, h)
	}

	rows := t.Page()
	v.Empty = len(rows) == 0
	for _, row := range rows {
		br := BodyRow{ID: Stringify(row.Field("id")), Cells: make([]template.HTML, 0, len(t.columns))}
		for _, col := range t.columns {
			br.Cells = append(br.Cells, renderCell(row, col))
		}
		if t.actions != nil {
			br.Actions = t.actions(row)
		}
		v.Rows = append(v.Rows, br)
	}

	filtered := len(t.filter())
	pages := totalPages(filtered, t.pageSize)
	if pages > 1 {
		start, end := bounds(page, t.pageSize, filtered)
		p := &Pager{
			Start:        start + 1,
			End:          end,
			Total:        filtered,
			PrevDisabled: page == 1,
			NextDisabled: page == pages,
			Previous:     "?" + withPage(state, max(page-1, 1)).Query().Encode(),
			Next:         "?" + withPage(state, min(page+1, pages)).Query().Encode(),
		}
		for _, n := range PageWindow(page, pages) {
			p.Pages = append(p.Pages, PageLink{
				Number: n,
				Active: n == page,
				Href:   "?" + withPage(state, n).Query().Encode(),
			})
		}
		v.Pager = p
	}
	return v
}

// PageWindow picks up to five page numbers around current.
func PageWindow(current, total int) []int {
	count := min(maxPageButtons, total)
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		var n int
		switch {
		case total <= maxPageButtons:
			n = i + 1
		case current <= 3:
			n = i + 1
		case current >= total-2:
			n = total - 4 + i
		default:
			n = current - 2 + i
		}
		out = append(out, n)
	}
	return out
}

func renderCell[T Row](row T, col Column[T]) template.HTML {
	if col.Render != nil {
		return col.Render.Render(row)
	}
	text := Stringify(row.Field(col.Key))
	if text == "" {
		return Placeholder
	}
	return template.HTML(template.HTMLEscapeString(text))
}

func toggled(st State, key string) State {
	next := st
	if st.Sort != nil && st.Sort.Key == key {
		dir := Desc
		if st.Sort.Direction == Desc {
			dir = Asc
		}
		next.Sort = &Sort{Key: key, Direction: dir}
		return next
	}
	next.Sort = &Sort{Key: key, Direction: Asc}
	return next
}

func withPage(st State, page int) State {
	next := st
	next.Page = page
	return next
}

// StateFromQuery reads page, q, sort and dir. Bad values fall back to defaults.
func StateFromQuery(q url.Values) State {
	st := State{Page: 1, Search: q.Get(ParamSearch)}
	if page, err := strconv.Atoi(q.Get(ParamPage)); err == nil {
		st.Page = page
	}
	if key := q.Get(ParamSort); key != "" {
		dir := Asc
		if q.Get(ParamDir) == string(Desc) {
			dir = Desc
		}
		st.Sort = &Sort{Key: key, Direction: dir}
	}
	return st
}

// Query encodes the state, omitting defaults.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if s.Sort != nil && s.Sort.Key != "" {
		q.Set(ParamSort, s.Sort.Key)
		q.Set(ParamDir, string(s.Sort.Direction))
	}
	return q
}
