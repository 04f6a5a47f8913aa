package store

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/metadata"
)

// Listing is one discovered document.
type Listing struct {
	ID       string
	Date     time.Time // calendar day from the path, midnight UTC
	Redirect bool
}

// Redirect is the parsed content of a .redirect file.
type Redirect struct {
	Status   int
	Location string
}

// FS is a read-only document store rooted at a directory.
type FS struct {
	root string
}

// NewFS returns a store reading documents beneath root.
func NewFS(root string) *FS {
	return &FS{root: filepath.Clean(root)}
}

// Root returns the directory the store reads from.
func (f *FS) Root() string { return f.root }

// NormalizeID resolves p against this store's root prefix.
func (f *FS) NormalizeID(p string) string {
	return NormalizeID(p, filepath.ToSlash(f.root), "posts")
}

func (f *FS) path(id, ext string) string {
	return filepath.Join(f.root, filepath.FromSlash(id)+ext)
}

// ReadSource returns the raw markdown source of a document.
func (f *FS) ReadSource(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path(id, SourceExt))
	if err != nil {
		return "", f.readError(err, id, SourceExt)
	}
	return string(data), nil
}

// ReadMetadataLines returns the marker-prefixed lines of a document's source.
func (f *FS) ReadMetadataLines(ctx context.Context, id, marker string) ([]string, error) {
	src, err := f.ReadSource(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, _ := metadata.SplitSource(src, marker)
	return lines, nil
}

// ReadBody returns a document's markdown without its metadata lines.
func (f *FS) ReadBody(ctx context.Context, id, marker string) (string, error) {
	src, err := f.ReadSource(ctx, id)
	if err != nil {
		return "", err
	}
	_, body := metadata.SplitSource(src, marker)
	return body, nil
}

// HasSource reports whether a markdown source exists for id.
func (f *FS) HasSource(id string) bool {
	info, err := os.Stat(f.path(id, SourceExt))
	return err == nil && !info.IsDir()
}

// ReadRedirect parses the redirect marker for a document. A marker with fewer
// than two lines or a non-numeric status is reported as not found.
func (f *FS) ReadRedirect(ctx context.Context, id string) (Redirect, error) {
	if err := ctx.Err(); err != nil {
		return Redirect{}, err
	}
	data, err := os.ReadFile(f.path(id, RedirectExt))
	if err != nil {
		return Redirect{}, f.readError(err, id, RedirectExt)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Redirect{}, errors.NotFoundError("redirect marker is incomplete").
			WithContext("document_id", id).Build()
	}
	status, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	location := strings.TrimSpace(lines[1])
	if err != nil || status < 300 || status > 399 || location == "" {
		return Redirect{}, errors.NotFoundError("redirect marker is malformed").
			WithCause(err).WithContext("document_id", id).Build()
	}
	return Redirect{Status: status, Location: location}, nil
}

// List walks the archive and returns every dated post and redirect marker
// beneath prefix ("" for the whole archive, or e.g. "2014/3").
func (f *FS) List(ctx context.Context, prefix string) ([]Listing, error) {
	start := f.root
	if prefix != "" {
		start = filepath.Join(f.root, filepath.FromSlash(NormalizeID(prefix)))
	}
	if _, err := os.Stat(start); err != nil {
		return nil, f.readError(err, prefix, "")
	}

	var out []Listing
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != SourceExt && ext != RedirectExt {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		id := NormalizeID(filepath.ToSlash(rel))
		date, ok := PostDate(id)
		if !ok {
			return nil
		}
		out = append(out, Listing{ID: id, Date: date, Redirect: ext == RedirectExt})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.FileSystemError("failed to walk posts").
			WithCause(err).WithContext("path", start).Build()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return !out[i].Redirect
	})
	return out, nil
}

// ListDay returns the documents published on one calendar day.
func (f *FS) ListDay(ctx context.Context, year, month, day int) ([]Listing, error) {
	return f.List(ctx, strconv.Itoa(year)+"/"+strconv.Itoa(month)+"/"+strconv.Itoa(day))
}

func (f *FS) readError(err error, id, ext string) error {
	if os.IsNotExist(err) {
		return errors.NotFoundError("document not found").
			WithCause(err).WithContext("document_id", id).WithContext("ext", ext).Build()
	}
	return errors.FileSystemError("failed to read document").
		WithCause(err).WithContext("document_id", id).Build()
}
