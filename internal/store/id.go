package store

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	SourceExt   = ".md"
	RedirectExt = ".redirect"
)

// postPattern matches identifiers following the YYYY/M/D/slug convention.
var postPattern = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})/([\w-]+)$`)

// NormalizeID maps any path-like reference to a document onto its canonical
// identifier. Leading "./" and "/" are removed, then the first matching root
// prefix, then a trailing source or redirect extension.
//
//	NormalizeID("./posts/2014/3/17/a.md", "posts") == "2014/3/17/a"
func NormalizeID(p string, roots ...string) string {
	id := strings.ReplaceAll(p, "\\", "/")
	id = strings.TrimLeft(strings.TrimPrefix(id, "./"), "/")
	for _, root := range roots {
		root = strings.Trim(strings.TrimPrefix(strings.ReplaceAll(root, "\\", "/"), "./"), "/")
		if root == "" {
			continue
		}
		if trimmed, ok := strings.CutPrefix(id, root+"/"); ok {
			id = trimmed
			break
		}
	}
	id = strings.TrimSuffix(id, SourceExt)
	id = strings.TrimSuffix(id, RedirectExt)
	return strings.TrimPrefix(path.Clean("/"+id), "/")
}

// IsPost reports whether id follows the dated post convention.
func IsPost(id string) bool {
	return postPattern.MatchString(id)
}

// PostDate returns the calendar day encoded in a post identifier as midnight
// UTC. The second result is false for ids that are not posts.
func PostDate(id string) (time.Time, bool) {
	m := postPattern.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

// Slug returns the final path element of an identifier.
func Slug(id string) string {
	return path.Base(id)
}
