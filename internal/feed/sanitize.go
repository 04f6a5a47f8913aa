package feed

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkAttrs lists the attributes resolved against the site URL.
var linkAttrs = map[string]bool{"href": true, "src": true}

// Sanitize prepares a post body for feed readers: script elements are
// removed and relative href/src values are made absolute against base.
// A nil base leaves links untouched.
func Sanitize(fragment string, base *url.URL) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, n := range nodes {
		if isScript(n) {
			continue
		}
		clean(n, base)
		if err := html.Render(&out, n); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func isScript(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Script
}

func clean(n *html.Node, base *url.URL) {
	if n.Type == html.ElementNode && base != nil {
		for i, a := range n.Attr {
			if linkAttrs[a.Key] {
				n.Attr[i].Val = absolute(a.Val, base)
			}
		}
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isScript(c) {
			n.RemoveChild(c)
		} else {
			clean(c, base)
		}
		c = next
	}
}

func absolute(ref string, base *url.URL) string {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}
