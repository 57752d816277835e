package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/texture"
)

type packCmd struct {
	root     string
	tier     string
	compress bool
}

func (c *packCmd) Name() string { return "pack" }
func (c *packCmd) Synopsis() string {
	return "pack texture container files into an archive root"
}
func (c *packCmd) Usage() string {
	return "maptiles pack -root <dir> [-tier <name>] <id>.mtex ...\n" +
		"Each input file name must be the numeric asset id.\n"
}

func (c *packCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.root, "root", "", "Archive root to create or extend")
	f.StringVar(&c.tier, "tier", "high", "Detail tier to store under (low, medium, high, any)")
	f.BoolVar(&c.compress, "compress", true, "Store blobs zstd-compressed when smaller")
}

func (c *packCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.root == "" || f.NArg() == 0 {
		log.Println(strings.TrimRight(c.Usage(), "\n"))
		return subcommands.ExitUsageError
	}
	tier, err := parsePackTier(c.tier)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	b, err := archive.NewBuilder(c.root)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	bar := progressbar.NewOptions(f.NArg(), progressbar.OptionShowCount())
	for _, path := range f.Args() {
		if err := packOne(b, tier, path, c.compress); err != nil {
			log.Printf("%s: %v", path, err)
			return subcommands.ExitFailure
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	if err := b.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("packed %d assets into %s\n", f.NArg(), c.root)
	return subcommands.ExitSuccess
}

func packOne(b *archive.Builder, tier archive.Tier, path string, compress bool) error {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id, err := strconv.ParseUint(stem, 10, 32)
	if err != nil {
		return fmt.Errorf("file name %q is not a numeric asset id", stem)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Reject files that would fail extraction later.
	h, err := texture.DecodeConfig(blob)
	if err != nil {
		return fmt.Errorf("not a valid texture container: %w", err)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("container declares empty image")
	}

	return b.Put(uint32(id), tier, 0, blob, compress)
}

// parsePackTier accepts the resolvable tiers plus "any" for entries
// that should serve every tier.
func parsePackTier(s string) (archive.Tier, error) {
	if strings.EqualFold(s, "any") {
		return archive.TierAny, nil
	}
	return archive.ParseTier(s)
}
