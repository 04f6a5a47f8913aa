package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/daybook/internal/chrono"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Page int  `short:"p" help:"Page number" default:"1"`
	HTML bool `help:"Print the rendered page instead of a summary"`
}

func (c *IndexCmd) Run(g *Global, root *CLI) error {
	svc, err := newSite(root)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if c.HTML {
		page, err := svc.IndexPage(ctx, c.Page)
		if err != nil {
			return err
		}
		if page.Redirect != "" {
			return errors.NotFoundError("page out of range").
				WithContext("page", c.Page).WithContext("redirect", page.Redirect).Build()
		}
		_, err = fmt.Fprintln(g.out(), page.HTML)
		return err
	}

	idx, err := svc.Index(ctx)
	if err != nil {
		return err
	}
	pages := chrono.Paginate(idx, svc.PostsPerPage())
	n, redirect := chrono.ResolvePage(c.Page, len(pages))
	if redirect != "" {
		return errors.NotFoundError("page out of range").
			WithContext("page", c.Page).WithContext("pages", len(pages)).Build()
	}
	out := g.out()
	fmt.Fprintf(out, "Page %d of %d\n", n, max(len(pages), 1))
	if len(pages) == 0 {
		return nil
	}
	for _, day := range pages[n-1].Days {
		fmt.Fprintln(out, day.Date.Format("2006-01-02"))
		for _, a := range day.Articles {
			fmt.Fprintf(out, "  %s  %s\n", a.Metadata.Get("permalink"), a.Metadata.Get("Title"))
		}
	}
	return nil
}
