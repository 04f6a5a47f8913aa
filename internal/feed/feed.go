// Package feed renders the RSS 2.0 feed of the most recent posts.
package feed

import (
	"encoding/xml"
	"net/url"
	"strconv"
	"time"

	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

const DefaultMaxItems = 10

// Options describes the channel.
type Options struct {
	Title       string
	Description string
	FeedURL     string
	SiteURL     string
	Author      string
	WebMaster   string
	Copyright   string
	ImageURL    string
	Language    string
	TTL         int // minutes
	MaxItems    int
	Location    *time.Location
	Now         time.Time
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr"`
	Channel channel  `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type image struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type channel struct {
	Title          string    `xml:"title"`
	Link           string    `xml:"link"`
	Description    string    `xml:"description"`
	AtomLink       *atomLink `xml:"atom:link,omitempty"`
	Language       string    `xml:"language,omitempty"`
	Copyright      string    `xml:"copyright,omitempty"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	WebMaster      string    `xml:"webMaster,omitempty"`
	PubDate        string    `xml:"pubDate,omitempty"`
	LastBuildDate  string    `xml:"lastBuildDate,omitempty"`
	Generator      string    `xml:"generator,omitempty"`
	TTL            string    `xml:"ttl,omitempty"`
	Image          *image    `xml:"image,omitempty"`
	Items          []item    `xml:"item"`
}

type guid struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        guid   `xml:"guid"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	Description string `xml:"description"`
}

// Build renders the newest MaxItems articles of index, flattened across
// days, as an RSS document.
func Build(index chrono.Index, opts Options) ([]byte, error) {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var base *url.URL
	if opts.SiteURL != "" {
		u, err := url.Parse(opts.SiteURL + "/")
		if err != nil {
			return nil, errors.ValidationError("invalid feed site URL").
				WithCause(err).WithContext("url", opts.SiteURL).Build()
		}
		base = u
	}

	ch := channel{
		Title:          opts.Title,
		Link:           opts.SiteURL,
		Description:    opts.Description,
		Language:       opts.Language,
		Copyright:      opts.Copyright,
		ManagingEditor: opts.Author,
		WebMaster:      opts.WebMaster,
		PubDate:        opts.Now.In(opts.Location).Format(time.RFC1123Z),
		LastBuildDate:  opts.Now.In(opts.Location).Format(time.RFC1123Z),
		Generator:      "daybook",
	}
	if opts.FeedURL != "" {
		ch.AtomLink = &atomLink{Href: opts.FeedURL, Rel: "self", Type: "application/rss+xml"}
	}
	if opts.TTL > 0 {
		ch.TTL = strconv.Itoa(opts.TTL)
	}
	if opts.ImageURL != "" {
		ch.Image = &image{URL: opts.ImageURL, Title: opts.Title, Link: opts.SiteURL}
	}

	for _, a := range index.Articles() {
		if len(ch.Items) == opts.MaxItems {
			break
		}
		desc, err := Sanitize(a.UnwrappedBody, base)
		if err != nil {
			return nil, errors.RenderError("failed to sanitize feed item").
				WithCause(err).WithContext("document_id", a.ID).Build()
		}
		permalink := a.Metadata.Get("permalink")
		if permalink == "" {
			permalink = "/" + a.ID
		}
		link := opts.SiteURL + permalink
		ch.Items = append(ch.Items, item{
			Title:       a.Metadata.Get("Title"),
			Link:        link,
			GUID:        guid{Value: link, IsPermaLink: true},
			Author:      a.Metadata.Get("Author"),
			PubDate:     chrono.Timestamp(a, opts.Location).Format(time.RFC1123Z),
			Description: desc,
		})
	}

	out, err := xml.MarshalIndent(rss{Version: "2.0", Atom: "http://www.w3.org/2005/Atom", Channel: ch}, "", "  ")
	if err != nil {
		return nil, errors.RenderError("failed to encode feed").WithCause(err).Build()
	}
	return append([]byte(xml.Header), out...), nil
}
