package table

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID     string
	Name   string
	Age    any
	Email  string
	Skills []string
}

func (p person) Field(key string) any {
	switch key {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "age":
		return p.Age
	case "email":
		if p.Email == "" {
			return nil
		}
		return p.Email
	case "skills":
		return p.Skills
	}
	return nil
}

var peopleColumns = []Column[person]{
	{Key: "name", Header: "Name", Sortable: true},
	{Key: "age", Header: "Age", Sortable: true},
	{Key: "email", Header: "Email"},
	{Key: "skills", Header: "Skills"},
}

func people(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{ID: fmt.Sprintf("p-%d", i+1), Name: fmt.Sprintf("Person %02d", i+1), Age: 20 + i, Email: fmt.Sprintf("p%d@example.com", i+1)}
	}
	return out
}

func names(rows []person) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	data := []person{
		{ID: "1", Name: "Alice Johnson"},
		{ID: "2", Name: "Bob Stone"},
		{ID: "3", Name: "ALICIA Keys"},
		{ID: "4", Name: ""},
	}
	tbl := New(data, peopleColumns, WithSearchKey[person]("name"))
	tbl.SetSearch("ali")
	assert.Equal(t, []string{"Alice Johnson", "ALICIA Keys"}, names(tbl.Filtered()))

	tbl.SetSearch("")
	assert.Len(t, tbl.Filtered(), 4)
}

func TestSearchExcludesMissingValues(t *testing.T) {
	data := []person{
		{ID: "1", Name: "A", Email: "a@example.com"},
		{ID: "2", Name: "B"},
		{ID: "3", Name: "C", Email: "c@corp.io"},
	}
	tbl := New(data, peopleColumns, WithSearchKey[person]("email"))
	tbl.SetSearch("@")
	assert.Equal(t, []string{"A", "C"}, names(tbl.Filtered()))
}

func TestSearchMatchesNumbersAndZero(t *testing.T) {
	data := []person{{ID: "1", Name: "A", Age: 0}, {ID: "2", Name: "B", Age: 105}, {ID: "3", Name: "C", Age: 4.5}}
	tbl := New(data, peopleColumns, WithSearchKey[person]("age"))
	tbl.SetSearch("0")
	assert.Equal(t, []string{"A", "B"}, names(tbl.Filtered()))
	tbl.SetSearch("4.5")
	assert.Equal(t, []string{"C"}, names(tbl.Filtered()))
}

func TestSearchWithoutSearchKeyKeepsAll(t *testing.T) {
	tbl := New(people(3), peopleColumns)
	tbl.SetSearch("zzz")
	assert.Len(t, tbl.Filtered(), 3)
	assert.False(t, tbl.View().Searchable)
}

func TestSearchResetsPage(t *testing.T) {
	tbl := New(people(30), peopleColumns, WithSearchKey[person]("name"))
	tbl.SetPage(3)
	require.Equal(t, 3, tbl.CurrentPage())

	tbl.SetSearch("Person")
	assert.Equal(t, 1, tbl.CurrentPage())

	tbl.SetPage(2)
	tbl.SetSearch("Person")
	assert.Equal(t, 2, tbl.CurrentPage(), "unchanged term keeps page")
}

func TestSortToggleAndStability(t *testing.T) {
	data := []person{
		{ID: "1", Name: "b", Age: 30},
		{ID: "2", Name: "a", Age: 30},
		{ID: "3", Name: "c", Age: 25},
		{ID: "4", Name: "d", Age: 30},
	}
	tbl := New(data, peopleColumns)

	tbl.SetSort("age")
	assert.Equal(t, []string{"c", "b", "a", "d"}, names(tbl.Filtered()))

	tbl.SetSort("age")
	assert.Equal(t, Desc, tbl.State().Sort.Direction)
	assert.Equal(t, []string{"b", "a", "d", "c"}, names(tbl.Filtered()), "ties keep input order when descending")

	tbl.SetSort("name")
	assert.Equal(t, Sort{Key: "name", Direction: Asc}, *tbl.State().Sort)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(tbl.Filtered()))

	assert.Equal(t, []string{"b", "a", "c", "d"}, names(data), "input is not reordered")
}

func TestSortUnsortableIsNoop(t *testing.T) {
	tbl := New(people(3), peopleColumns)
	tbl.SetSort("email")
	assert.Nil(t, tbl.State().Sort)
	tbl.SetSort("missing")
	assert.Nil(t, tbl.State().Sort)
}

func TestSortKeepsPage(t *testing.T) {
	tbl := New(people(25), peopleColumns)
	tbl.SetPage(2)
	tbl.SetSort("name")
	assert.Equal(t, 2, tbl.CurrentPage())
}

func TestSortMixedAndNaNValuesAreTies(t *testing.T) {
	data := []person{
		{ID: "1", Name: "x", Age: "old"},
		{ID: "2", Name: "y", Age: 3},
		{ID: "3", Name: "z", Age: math.NaN()},
		{ID: "4", Name: "w", Age: nil},
		{ID: "5", Name: "v", Age: 1},
	}
	tbl := New(data, peopleColumns)
	assert.NotPanics(t, func() { tbl.SetSort("age") })
	rows := tbl.Filtered()
	assert.Len(t, rows, 5)
}

func TestSortColumnCompareOverride(t *testing.T) {
	cols := []Column[person]{{Key: "name", Header: "Name", Sortable: true, Compare: CompareFunc[person](func(a, b person) int {
		return len(a.Name) - len(b.Name)
	})}}
	tbl := New([]person{{Name: "ccc"}, {Name: "a"}, {Name: "bb"}}, cols)
	tbl.SetSort("name")
	assert.Equal(t, []string{"a", "bb", "ccc"}, names(tbl.Filtered()))
}

func TestPaginationAndClamp(t *testing.T) {
	tbl := New(people(23), peopleColumns)
	assert.Equal(t, 3, tbl.TotalPages())
	assert.Len(t, tbl.Page(), 10)

	tbl.SetPage(3)
	assert.Equal(t, []string{"Person 21", "Person 22", "Person 23"}, names(tbl.Page()))

	tbl.SetPage(0)
	assert.Equal(t, 1, tbl.CurrentPage())
	tbl.SetPage(3 + 5)
	assert.Equal(t, 3, tbl.CurrentPage())
	tbl.SetPage(-4)
	assert.Equal(t, 1, tbl.CurrentPage())
}

func TestPaginationEmptyData(t *testing.T) {
	tbl := New([]person{}, peopleColumns, WithActions(func(person) template.HTML { return "x" }))
	assert.Equal(t, 0, tbl.TotalPages())
	tbl.SetPage(7)
	assert.Equal(t, 1, tbl.CurrentPage())
	assert.Empty(t, tbl.Page())

	v := tbl.View()
	assert.True(t, v.Empty)
	assert.Equal(t, "No data found", v.EmptyText)
	assert.Equal(t, 5, v.Colspan)
	assert.Nil(t, v.Pager)
}

func TestPageSizeOption(t *testing.T) {
	tbl := New(people(7), peopleColumns, WithPageSize[person](3))
	assert.Equal(t, 3, tbl.TotalPages())
	tbl = New(people(7), peopleColumns, WithPageSize[person](0))
	assert.Equal(t, DefaultPageSize, tbl.PageSize())
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{2, 4, []int{1, 2, 3, 4}},
		{1, 5, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{4, 10, []int{2, 3, 4, 5, 6}},
		{7, 10, []int{5, 6, 7, 8, 9}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_of_%d", tc.current, tc.total), func(t *testing.T) {
			assert.Equal(t, tc.want, PageWindow(tc.current, tc.total))
		})
	}
}

func TestViewPager(t *testing.T) {
	tbl := New(people(23), peopleColumns, WithSearchKey[person]("name"))
	tbl.SetPage(3)
	v := tbl.View()
	require.NotNil(t, v.Pager)

	assert.Equal(t, "Showing 21 to 23 of 23 entries", v.Pager.Summary())
	assert.False(t, v.Pager.PrevDisabled)
	assert.True(t, v.Pager.NextDisabled)
	assert.Equal(t, "?page=2", v.Pager.Previous)
	require.Len(t, v.Pager.Pages, 3)
	assert.True(t, v.Pager.Pages[2].Active)
	assert.Equal(t, "?", v.Pager.Pages[0].Href)

	tbl.SetPage(1)
	v = tbl.View()
	assert.Equal(t, "Showing 1 to 10 of 23 entries", v.Pager.Summary())
	assert.True(t, v.Pager.PrevDisabled)
}

func TestViewSinglePageHasNoPager(t *testing.T) {
	v := New(people(10), peopleColumns).View()
	assert.Nil(t, v.Pager)
	assert.Len(t, v.Rows, 10)
}

func TestViewCells(t *testing.T) {
	cols := append([]Column[person]{}, peopleColumns...)
	cols[0].Render = RenderFunc[person](func(p person) template.HTML {
		return template.HTML("<b>" + template.HTMLEscapeString(p.Name) + "</b>")
	})
	data := []person{{ID: "1", Name: "<Ann>", Age: 4.2, Skills: []string{"go", "sql"}}, {ID: "2", Name: "Ben", Email: "x<y@z.io"}}

	v := New(data, cols, WithActions(func(p person) template.HTML { return template.HTML("edit " + p.ID) })).View()
	require.Len(t, v.Rows, 2)

	assert.Equal(t, "1", v.Rows[0].ID)
	assert.Equal(t, template.HTML("<b>&lt;Ann&gt;</b>"), v.Rows[0].Cells[0])
	assert.Equal(t, template.HTML("4.2"), v.Rows[0].Cells[1])
	assert.Equal(t, template.HTML("-"), v.Rows[0].Cells[2])
	assert.Equal(t, template.HTML("go,sql"), v.Rows[0].Cells[3])
	assert.Equal(t, template.HTML("edit 1"), v.Rows[0].Actions)

	assert.Equal(t, template.HTML("-"), v.Rows[1].Cells[1])
	assert.Equal(t, template.HTML("x&lt;y@z.io"), v.Rows[1].Cells[2])
	assert.Equal(t, template.HTML("-"), v.Rows[1].Cells[3])
	assert.Equal(t, 5, v.Colspan)
}

func TestViewHeaders(t *testing.T) {
	tbl := New(people(3), peopleColumns, WithSearchKey[person]("name"))
	tbl.SetSearch("Person")
	tbl.SetSort("age")
	v := tbl.View()

	require.Len(t, v.Headers, 4)
	age := v.Headers[1]
	assert.True(t, age.Active)
	assert.Equal(t, "↑", age.Indicator())
	assert.Equal(t, "?dir=desc&q=Person&sort=age", age.Href)

	name := v.Headers[0]
	assert.False(t, name.Active)
	assert.Equal(t, "", name.Indicator())
	assert.Equal(t, "?dir=asc&q=Person&sort=name", name.Href)

	assert.Empty(t, v.Headers[2].Href)
	assert.Equal(t, map[string]string{"sort": "age", "dir": "asc"}, v.Hidden)
	assert.Equal(t, "Search...", v.SearchPlaceholder)
}

func TestStateQueryRoundTrip(t *testing.T) {
	q, err := url.ParseQuery("page=3&q=Ann&sort=name&dir=desc")
	require.NoError(t, err)
	st := StateFromQuery(q)
	assert.Equal(t, State{Page: 3, Search: "Ann", Sort: &Sort{Key: "name", Direction: Desc}}, st)
	assert.Equal(t, q, st.Query())

	st = StateFromQuery(url.Values{"page": {"abc"}, "dir": {"sideways"}, "sort": {"age"}})
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, Asc, st.Sort.Direction)
}

func TestWithStateDropsUnsortableSort(t *testing.T) {
	tbl := New(people(30), peopleColumns, WithState[person](State{Page: 9, Search: "", Sort: &Sort{Key: "email", Direction: Desc}}))
	assert.Nil(t, tbl.State().Sort)
	assert.Equal(t, 3, tbl.CurrentPage())

	tbl = New(people(30), peopleColumns, WithState[person](State{Page: 2, Sort: &Sort{Key: "name", Direction: "bogus"}}))
	assert.Equal(t, Asc, tbl.State().Sort.Direction)
	assert.Equal(t, 2, tbl.CurrentPage())
}

func TestCompareUsesUTF16CodeUnits(t *testing.T) {
	fullwidth, emoji := "\uFF5E", "\U0001F600"
	assert.Equal(t, 1, Compare(fullwidth, emoji), "surrogate pairs sort below U+E000..U+FFFF")
	assert.Equal(t, -1, Compare(emoji, fullwidth))
	assert.Equal(t, -1, Compare("\U0001F600", "\U0001F601"))
	assert.Equal(t, -1, Compare("z", emoji))

	rows := []person{{ID: "1", Name: fullwidth}, {ID: "2", Name: emoji}, {ID: "3", Name: "a"}}
	tbl := New(rows, peopleColumns)
	tbl.SetSort("name")
	assert.Equal(t, []string{"a", emoji, fullwidth}, names(tbl.Filtered()))
}

func TestStringifyAndCompare(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "4500", Stringify(4500.0))
	assert.Equal(t, "12", Stringify(int64(12)))
	assert.Equal(t, "a,b", Stringify([]any{"a", "b"}))

	assert.Equal(t, -1, Compare(1, 2.5))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare("B", "a"), "code unit order puts upper case first")
	assert.Equal(t, -1, Compare("ab", "abc"))
	assert.Equal(t, 0, Compare("héllo", "héllo"))
	assert.Equal(t, 0, Compare("1", 1))
	assert.Equal(t, 0, Compare(nil, 1))
	assert.Equal(t, 0, Compare(math.NaN(), 1))
}
