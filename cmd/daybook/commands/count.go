package commands

import (
	"context"
	"fmt"
)

// CountCmd implements the 'count' command.
type CountCmd struct{}

func (c *CountCmd) Run(g *Global, root *CLI) error {
	svc, err := newSite(root)
	if err != nil {
		return err
	}
	articles, days, err := svc.Count(context.Background())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.out(), "%d articles, across %d days that have at least one post.\n", articles, days)
	return err
}
