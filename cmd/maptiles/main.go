// Command maptiles extracts map textures from a game asset archive and
// publishes them as tile pyramids for the companion map renderer.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&extractCmd{}, "")
	subcommands.Register(&packCmd{}, "")
	subcommands.Register(&inspectCmd{}, "")
	subcommands.Register(&detectCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
