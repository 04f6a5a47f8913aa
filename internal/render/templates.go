package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metadata"
)

// Template file names looked up in the templates directory.
const (
	DefaultTagsFile = "defaultTags.html"
	HeaderFile      = "header.html"
	FooterFile      = "footer.html"
	PostHeaderFile  = "postHeader.html"
	PostFooterFile  = "postFooter.html"
	ListFooterFile  = "listFooter.html"
)

//go:embed templates_defaults/*.html
var embeddedTemplates embed.FS

// Templates is the site chrome shared by every rendered page.
type Templates struct {
	Defaults   metadata.Map // site-wide metadata from defaultTags.html
	Header     string       // raw site header, placeholders intact
	Footer     string
	PostHeader *template.Template
	PostFooter *template.Template
	ListFooter *template.Template
}

// LoadTemplates reads the site chrome from dir. Files that are missing fall
// back to the embedded defaults.
func LoadTemplates(dir, marker string, funcs Funcs, logger *slog.Logger) (*Templates, error) {
	if logger == nil {
		logger = slog.Default()
	}
	read := func(name string) (string, error) {
		p := filepath.Join(dir, name)
		// #nosec G304 - p is one of the fixed template names under the configured directory
		b, err := os.ReadFile(p)
		if err == nil {
			logger.Debug("Loaded template override", logfields.File(name), logfields.Path(p))
			return string(b), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.FileSystemError("failed to read template").
				WithCause(err).WithContext("path", p).Build()
		}
		b, err = embeddedTemplates.ReadFile("templates_defaults/" + name)
		if err != nil {
			return "", errors.InternalError("embedded default template missing").
				WithCause(err).WithContext("file", name).Build()
		}
		return string(b), nil
	}

	tags, err := read(DefaultTagsFile)
	if err != nil {
		return nil, err
	}
	t := &Templates{Defaults: metadata.Parse(strings.Split(tags, "\n"), marker, logger.With(logfields.File(DefaultTagsFile)))}
	if t.Header, err = read(HeaderFile); err != nil {
		return nil, err
	}
	if t.Footer, err = read(FooterFile); err != nil {
		return nil, err
	}

	compile := func(name string, fm template.FuncMap) (*template.Template, error) {
		src, err := read(name)
		if err != nil {
			return nil, err
		}
		tpl, err := template.New(name).Funcs(fm).Option("missingkey=zero").Parse(src)
		if err != nil {
			return nil, errors.RenderError(fmt.Sprintf("failed to parse %s", name)).
				WithCause(err).WithContext("file", name).Build()
		}
		return tpl, nil
	}
	if t.PostHeader, err = compile(PostHeaderFile, funcs.PostHeader()); err != nil {
		return nil, err
	}
	if t.PostFooter, err = compile(PostFooterFile, funcs.Short()); err != nil {
		return nil, err
	}
	if t.ListFooter, err = compile(ListFooterFile, funcs.Short()); err != nil {
		return nil, err
	}
	return t, nil
}
