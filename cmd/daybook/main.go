// Command daybook serves and renders a file-per-post markdown blog.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/daybook/cmd/daybook/commands"
	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
	"git.home.luguber.info/inful/daybook/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("daybook"),
		kong.Description("Render and serve a dated markdown archive."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	global := &commands.Global{Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		adapter.Log(err)
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		os.Exit(adapter.ExitCodeFor(err))
	}
}
