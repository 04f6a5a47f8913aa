package commands

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	ID       string `arg:"" help:"Document identifier or path, e.g. 2014/3/17/hello or posts/about.md"`
	Metadata bool   `help:"Print the merged metadata as YAML instead of HTML"`
}

func (c *RenderCmd) Run(g *Global, root *CLI) error {
	svc, err := newSite(root)
	if err != nil {
		return err
	}
	doc, err := svc.Document(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if c.Metadata {
		out, err := yaml.Marshal(map[string]string(doc.Metadata))
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = g.out().Write(out)
		return err
	}
	_, err = fmt.Fprintln(g.out(), doc.HTML)
	return err
}
