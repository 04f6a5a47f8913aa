package commands

import "context"

// FeedCmd implements the 'feed' command.
type FeedCmd struct{}

func (c *FeedCmd) Run(g *Global, root *CLI) error {
	svc, err := newSite(root)
	if err != nil {
		return err
	}
	body, err := svc.Feed(context.Background())
	if err != nil {
		return err
	}
	_, err = g.out().Write(body)
	return err
}
