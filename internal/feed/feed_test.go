package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/metadata"
)

func fixtureIndex(days, perDay int) chrono.Index {
	var idx chrono.Index
	for d := days; d >= 1; d-- {
		day := chrono.Day{Date: time.Date(2014, 3, d, 0, 0, 0, 0, time.UTC)}
		for i := perDay - 1; i >= 0; i-- {
			id := fmt.Sprintf("2014/3/%d/p%d", d, i)
			day.Articles = append(day.Articles, cache.Entry{
				ID:            id,
				UnwrappedBody: fmt.Sprintf(`<p>body %s</p><script>alert(1)</script>`, id),
				Metadata: metadata.Map{
					"Title":     "Post " + id,
					"Date":      fmt.Sprintf("2014-03-%02d %d:00", d, 10+i),
					"permalink": "/" + id,
				},
			})
		}
		idx = append(idx, day)
	}
	return idx
}

func TestBuild_CapsAndOrders(t *testing.T) {
	out, err := Build(fixtureIndex(4, 3), Options{
		Title:    "Site",
		SiteURL:  "https://example.com",
		FeedURL:  "https://example.com/rss",
		Language: "en",
		TTL:      60,
		Now:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var doc rss
	require.NoError(t, xml.Unmarshal(out, &doc))
	require.Len(t, doc.Channel.Items, DefaultMaxItems)
	assert.Equal(t, "Site", doc.Channel.Title)
	assert.Equal(t, "60", doc.Channel.TTL)

	first := doc.Channel.Items[0]
	assert.Equal(t, "Post 2014/3/4/p2", first.Title)
	assert.Equal(t, "https://example.com/2014/3/4/p2", first.Link)
	assert.Equal(t, "Tue, 04 Mar 2014 12:00:00 +0000", first.PubDate)
	for _, it := range doc.Channel.Items {
		assert.NotContains(t, it.Description, "script")
		assert.Contains(t, it.Description, "<p>body ")
	}
}

func TestBuild_MaxItems(t *testing.T) {
	out, err := Build(fixtureIndex(2, 2), Options{MaxItems: 3})
	require.NoError(t, err)
	var doc rss
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Len(t, doc.Channel.Items, 3)
}

func TestSanitize(t *testing.T) {
	base, err := url.Parse("https://example.com/")
	require.NoError(t, err)

	in := `<p>See <a href="/2014/3/17/a">this</a> and <img src="img/x.png"/>` +
		`<a href="#fn:1">1</a><a href="https://other.org/">o</a></p>` +
		`<div><script type="text/javascript">var x = "</p>";</script>kept</div>`
	out, err := Sanitize(in, base)
	require.NoError(t, err)

	assert.Contains(t, out, `href="https://example.com/2014/3/17/a"`)
	assert.Contains(t, out, `src="https://example.com/img/x.png"`)
	assert.Contains(t, out, `href="#fn:1"`)
	assert.Contains(t, out, `href="https://other.org/"`)
	assert.Contains(t, out, "<div>kept</div>")
	assert.NotContains(t, out, "script")
}
