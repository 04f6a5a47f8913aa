package chrono

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/metadata"
	"git.home.luguber.info/inful/daybook/internal/store"
)

func listing(id string) store.Listing {
	d, ok := store.PostDate(id)
	if !ok {
		panic("not a post id: " + id)
	}
	return store.Listing{ID: id, Date: d}
}

// dayOf builds n posts on one day, with Date metadata an hour apart.
func dayOf(date string, n int) ([]store.Listing, map[string]string) {
	t, _ := time.Parse("2006-01-02", date)
	var out []store.Listing
	dates := map[string]string{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%d/%d/%d/post-%d", t.Year(), int(t.Month()), t.Day(), i)
		out = append(out, listing(id))
		dates[id] = t.Add(time.Duration(i) * time.Hour).Format("2006-01-02 15:04")
	}
	return out, dates
}

func loaderFor(dates map[string]string) Loader {
	return func(_ context.Context, id string) (cache.Entry, error) {
		v, ok := dates[id]
		if !ok {
			return cache.Entry{}, errors.NotFoundError("missing").Build()
		}
		return cache.Entry{ID: id, Metadata: metadata.Map{"Date": v}}, nil
	}
}

func buildFixture(t *testing.T, perDay map[string]int) Index {
	t.Helper()
	var docs []store.Listing
	dates := map[string]string{}
	for day, n := range perDay {
		l, d := dayOf(day, n)
		docs = append(docs, l...)
		for k, v := range d {
			dates[k] = v
		}
	}
	idx, err := Build(context.Background(), docs, loaderFor(dates), WithConcurrency(3))
	require.NoError(t, err)
	return idx
}

func TestBuild_GroupsAndSorts(t *testing.T) {
	idx := buildFixture(t, map[string]int{"2014-03-17": 3, "2014-03-18": 1, "2013-12-31": 2})

	require.Len(t, idx, 3)
	assert.Equal(t, 18, idx[0].Date.Day())
	assert.Equal(t, 17, idx[1].Date.Day())
	assert.Equal(t, 2013, idx[2].Date.Year())

	day := idx[1].Articles
	require.Len(t, day, 3)
	assert.Equal(t, "2014/3/17/post-2", day[0].ID, "latest first")
	assert.Equal(t, "2014/3/17/post-0", day[2].ID)

	articles, days := idx.Count()
	assert.Equal(t, 6, articles)
	assert.Equal(t, 3, days)
	assert.Len(t, idx.Year(2014), 2)
	assert.Len(t, idx.Month(2013, time.December), 1)
	assert.Len(t, idx.Articles(), 6)
}

func TestBuild_SkipsRedirectsAndVanished(t *testing.T) {
	docs := []store.Listing{
		listing("2014/3/17/a"),
		{ID: "2014/3/17/moved", Date: time.Date(2014, 3, 17, 0, 0, 0, 0, time.UTC), Redirect: true},
		listing("2014/3/17/gone"),
	}
	var calls atomic.Int32
	load := func(ctx context.Context, id string) (cache.Entry, error) {
		calls.Add(1)
		return loaderFor(map[string]string{"2014/3/17/a": "2014-03-17"})(ctx, id)
	}
	idx, err := Build(context.Background(), docs, load)
	require.NoError(t, err)
	require.Len(t, idx, 1)
	assert.Len(t, idx[0].Articles, 1)
	assert.Equal(t, int32(2), calls.Load(), "redirect markers are never loaded")
}

func TestBuild_PropagatesRenderFailure(t *testing.T) {
	load := func(context.Context, string) (cache.Entry, error) {
		return cache.Entry{}, errors.RenderError("boom").Build()
	}
	_, err := Build(context.Background(), []store.Listing{listing("2014/3/17/a")}, load)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))
}

func TestPaginate_DaysNeverSplit(t *testing.T) {
	idx := buildFixture(t, map[string]int{"2014-03-19": 5, "2014-03-18": 4, "2014-03-17": 3})

	pages := Paginate(idx, 5)
	require.Len(t, pages, 2)
	assert.Equal(t, 5, pages[0].Articles())
	assert.Equal(t, 7, pages[1].Articles())
	assert.Equal(t, 2, pages[1].Number)
}

func TestPaginate_SumsAndBoundaries(t *testing.T) {
	idx := buildFixture(t, map[string]int{
		"2015-01-01": 1, "2015-01-02": 2, "2015-01-03": 7, "2015-01-04": 1,
		"2015-01-05": 1, "2015-01-06": 3, "2015-01-07": 1,
	})
	total, _ := idx.Count()

	pages := Paginate(idx, 5)
	sum := 0
	seen := map[time.Time]bool{}
	for _, p := range pages {
		sum += p.Articles()
		for _, d := range p.Days {
			assert.False(t, seen[d.Date], "day %s appears on two pages", d.Date)
			seen[d.Date] = true
		}
	}
	assert.Equal(t, total, sum)
	for _, p := range pages[:len(pages)-1] {
		assert.GreaterOrEqual(t, p.Articles(), 5)
	}
	assert.Empty(t, Paginate(nil, 5))
}

func TestResolvePage(t *testing.T) {
	tests := []struct {
		name         string
		requested    int
		total        int
		wantPage     int
		wantRedirect string
	}{
		{"in range", 2, 3, 2, ""},
		{"past the end", 5, 2, 2, "/?p=2"},
		{"zero", 0, 3, 3, "/?p=3"},
		{"single page overflow", 4, 1, 1, "/"},
		{"empty index", 1, 0, 1, ""},
		{"empty index overflow", 2, 0, 1, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, redirect := ResolvePage(tt.requested, tt.total)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantRedirect, redirect)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, ok := ParseTimestamp("2014-03-17 3:30 PM", ny)
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, 3, 17, 15, 30, 0, 0, ny), got)

	got, ok = ParseTimestamp("2014-03-17T15:30:00Z", ny)
	require.True(t, ok)
	assert.Equal(t, time.UTC.String(), got.Location().String())

	_, ok = ParseTimestamp("next tuesday", ny)
	assert.False(t, ok)
}

func TestTimestamp_FallsBackToPathDate(t *testing.T) {
	e := cache.Entry{ID: "2014/3/17/a", Metadata: metadata.Map{"Date": "garbage"}}
	assert.Equal(t, time.Date(2014, 3, 17, 0, 0, 0, 0, time.UTC), Timestamp(e, time.UTC))
	assert.Equal(t, "/2014/3/17/", DayLink(time.Date(2014, 3, 17, 0, 0, 0, 0, time.UTC)))
}
