// Package metadata parses per-document key/value lines and merges them with
// site-wide defaults.
package metadata

import (
	"log/slog"
	"maps"
	"sort"
	"strings"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
)

// Map holds one document's metadata.
type Map map[string]string

// Parse turns marker-prefixed lines into a Map. The first occurrence of marker
// is removed from each line, and the rest is split on its first '='. Lines
// without '=' or without a key are skipped and logged at debug level; a nil
// logger skips silently. An empty value is kept.
func Parse(lines []string, marker string, logger *slog.Logger) Map {
	m := make(Map, len(lines))
	for _, line := range lines {
		if marker != "" {
			line = strings.Replace(line, marker, "", 1)
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			if logger != nil && strings.TrimSpace(line) != "" {
				err := errors.MalformedMetadataError("metadata line has no key=value pair").Build()
				logger.Debug("Skipping metadata line", logfields.Error(err), slog.String("line", line))
			}
			continue
		}
		m[key] = strings.TrimSpace(value)
	}
	return m
}

// Merge returns a new Map holding every default overlaid with every document
// key. Collisions are logged at debug level and the document value is kept,
// even when it is empty.
func Merge(doc, defaults Map, logger *slog.Logger) Map {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(Map, len(doc)+len(defaults))
	maps.Copy(out, defaults)
	for _, k := range doc.Keys() {
		v := doc[k]
		if prev, ok := defaults[k]; ok && prev != v {
			logger.Debug("Overriding site default", logfields.Key(k),
				slog.String("default", prev), slog.String("value", v))
		}
		out[k] = v
	}
	return out
}

// SplitSource separates marker lines from the body of a raw document. Every
// line starting with marker is metadata; the remaining lines, joined with
// "\n", form the body.
func SplitSource(text, marker string) ([]string, string) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var meta []string
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if marker != "" && strings.HasPrefix(line, marker) {
			meta = append(meta, line)
			continue
		}
		body = append(body, line)
	}
	return meta, strings.Join(body, "\n")
}

// Clone returns an independent copy.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Get returns the value for key, or "" when absent.
func (m Map) Get(key string) string { return m[key] }

// Bool reports whether key holds a yes-like value ("yes", "true", "1").
func (m Map) Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(m[key])) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
