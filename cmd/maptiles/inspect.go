package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/google/subcommands"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/pyramid"
	"github.com/questline/maptiles/texture"
)

type inspectCmd struct {
	root     string
	tier     string
	manifest string
}

func (c *inspectCmd) Name() string { return "inspect" }
func (c *inspectCmd) Synopsis() string {
	return "print texture container or pyramid manifest details"
}
func (c *inspectCmd) Usage() string {
	return "maptiles inspect -root <dir> [-tier <name>] <asset-id>\n" +
		"maptiles inspect -manifest <path>\n"
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.root, "root", "", "Archive root")
	f.StringVar(&c.tier, "tier", "high", "Detail tier (low, medium, high)")
	f.StringVar(&c.manifest, "manifest", "", "Finalized manifest.json to print instead")
}

func (c *inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.manifest != "" {
		return c.printManifest()
	}
	if c.root == "" || f.NArg() != 1 {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}
	return c.printTexture(f.Arg(0))
}

func (c *inspectCmd) printManifest() subcommands.ExitStatus {
	m, err := pyramid.ReadManifest(c.manifest)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("asset:     %s\n", m.AssetID)
	fmt.Printf("origin:    %dx%d\n", m.OriginWidth, m.OriginHeight)
	fmt.Printf("tile size: %d\n", m.TileSize)
	for _, l := range m.ZoomLevels {
		fmt.Printf("zoom %d: %dx%d tiles, scale %g\n", l.Zoom, l.GridWidth, l.GridHeight, l.ScaleFactor)
	}
	return subcommands.ExitSuccess
}

func (c *inspectCmd) printTexture(arg string) subcommands.ExitStatus {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		log.Printf("invalid asset id %q", arg)
		return subcommands.ExitUsageError
	}
	tier, err := archive.ParseTier(c.tier)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	a, err := archive.Open(c.root)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	key := archive.AssetKey{ID: uint32(id), Tier: tier}
	blob, err := a.ResolveBytes(key)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	h, err := texture.DecodeConfig(blob)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("asset:      %s\n", key)
	fmt.Printf("generation: %d\n", h.Generation)
	fmt.Printf("family:     %s\n", h.Family)
	if h.Variant != texture.VariantNone {
		fmt.Printf("variant:    %s\n", h.Variant)
	}
	fmt.Printf("size:       %dx%d\n", h.Width, h.Height)
	fmt.Printf("mips:       %d\n", h.MipCount)
	fmt.Printf("stored:     %d bytes\n", len(blob))
	return subcommands.ExitSuccess
}
