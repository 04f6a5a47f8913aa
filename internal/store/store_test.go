package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"posts/2014/3/17/a.md", "2014/3/17/a"},
		{"./posts/2014/3/17/a", "2014/3/17/a"},
		{"/2014/3/17/a", "2014/3/17/a"},
		{"2014/3/17/a.redirect", "2014/3/17/a"},
		{"about.md", "about"},
		{"/posts/../../etc/passwd", "etc/passwd"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeID(tt.in, "posts"))
		})
	}
}

func TestFS_NormalizeIDUsesRoot(t *testing.T) {
	f := NewFS("./content")
	assert.Equal(t, "2020/1/2/x", f.NormalizeID("content/2020/1/2/x.md"))
	assert.Equal(t, "2020/1/2/x", f.NormalizeID("posts/2020/1/2/x.md"))
}

func TestPostDate(t *testing.T) {
	d, ok := PostDate("2014/3/17/birthday")
	require.True(t, ok)
	assert.Equal(t, time.Date(2014, time.March, 17, 0, 0, 0, 0, time.UTC), d)

	_, ok = PostDate("about")
	assert.False(t, ok)
	_, ok = PostDate("2014/13/1/x")
	assert.False(t, ok)
	assert.True(t, IsPost("2014/3/17/a-b_c"))
	assert.Equal(t, "a-b_c", Slug("2014/3/17/a-b_c"))
}

func TestFS_ReadSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2014/3/17/a.md", "@@ Title=A\nbody")
	f := NewFS(root)

	src, err := f.ReadSource(context.Background(), "2014/3/17/a")
	require.NoError(t, err)
	assert.Equal(t, "@@ Title=A\nbody", src)
	assert.True(t, f.HasSource("2014/3/17/a"))

	_, err = f.ReadSource(context.Background(), "2014/3/17/missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFS_ReadRedirect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2015/1/1/moved.redirect", "301\nhttps://example.com/new\n")
	writeFile(t, root, "2015/1/1/broken.redirect", "301")
	f := NewFS(root)

	r, err := f.ReadRedirect(context.Background(), "2015/1/1/moved")
	require.NoError(t, err)
	assert.Equal(t, Redirect{Status: 301, Location: "https://example.com/new"}, r)

	_, err = f.ReadRedirect(context.Background(), "2015/1/1/broken")
	assert.True(t, errors.IsNotFound(err))
}

func TestFS_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2014/3/17/a.md", "a")
	writeFile(t, root, "2014/3/17/b.md", "b")
	writeFile(t, root, "2014/3/18/c.redirect", "302\n/x")
	writeFile(t, root, "2015/1/1/d.md", "d")
	writeFile(t, root, "about.md", "page")
	writeFile(t, root, "2014/3/17/notes.txt", "ignored")
	f := NewFS(root)

	all, err := f.List(context.Background(), "")
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, l := range all {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"2014/3/17/a", "2014/3/17/b", "2014/3/18/c", "2015/1/1/d"}, ids)
	assert.True(t, all[2].Redirect)

	day, err := f.ListDay(context.Background(), 2014, 3, 17)
	require.NoError(t, err)
	assert.Len(t, day, 2)

	_, err = f.List(context.Background(), "1999")
	assert.True(t, errors.IsNotFound(err))
}

func TestFS_ReadMetadataLinesAndBody(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2014/3/17/hello.md", "@@ Title=Hello\n@@ Date=2014-03-17\nFirst line.\n\nSecond.")
	fs := NewFS(root)
	ctx := context.Background()

	lines, err := fs.ReadMetadataLines(ctx, "2014/3/17/hello", "@@")
	require.NoError(t, err)
	assert.Equal(t, []string{"@@ Title=Hello", "@@ Date=2014-03-17"}, lines)

	body, err := fs.ReadBody(ctx, "2014/3/17/hello", "@@")
	require.NoError(t, err)
	assert.Equal(t, "First line.\n\nSecond.", body)

	_, err = fs.ReadBody(ctx, "2014/3/17/missing", "@@")
	assert.True(t, errors.IsNotFound(err))
}
