package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"github.com/questline/maptiles/archive"
	"github.com/questline/maptiles/config"
	"github.com/questline/maptiles/pipeline"
)

type extractCmd struct {
	configPath string
	root       string
	out        string
	tileSize   uint
	format     string
	quality    int
	workers    int
	tier       string
	verbose    bool
}

func (c *extractCmd) Name() string     { return "extract" }
func (c *extractCmd) Synopsis() string { return "extract map textures into tile pyramids" }
func (c *extractCmd) Usage() string {
	return "maptiles extract [-root <dir>] [-out <dir>] [asset-id ...]\n"
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML config file")
	f.StringVar(&c.root, "root", "", "Archive root (default: auto-detect)")
	f.StringVar(&c.out, "out", "", "Output directory")
	f.UintVar(&c.tileSize, "tile-size", 0, "Tile edge length in pixels")
	f.StringVar(&c.format, "format", "", "Tile format (png, jpg)")
	f.IntVar(&c.quality, "quality", 0, "JPEG quality")
	f.IntVar(&c.workers, "workers", 0, "Concurrent assets (0 = all CPUs)")
	f.StringVar(&c.tier, "tier", "", "Detail tier (low, medium, high)")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
}

// effectiveConfig layers flag values over the config file over the
// defaults.
func (c *extractCmd) effectiveConfig() (config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if c.root != "" {
		cfg.ArchiveRoot = c.root
	}
	if c.out != "" {
		cfg.OutputDir = c.out
	}
	if c.tileSize != 0 {
		cfg.TileSize = uint32(c.tileSize)
	}
	if c.format != "" {
		cfg.TileFormat = c.format
	}
	if c.quality != 0 {
		cfg.JPEGQuality = c.quality
	}
	if c.workers != 0 {
		cfg.Workers = c.workers
	}
	if c.tier != "" {
		cfg.DefaultTier = c.tier
	}
	return cfg, cfg.Validate()
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, err := c.effectiveConfig()
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	root := cfg.ArchiveRoot
	if root == "" {
		detected, ok := archive.DetectRoot()
		if !ok {
			log.Println("no archive root found; pass -root or set MAPTILES_ARCHIVE")
			return subcommands.ExitFailure
		}
		root = detected
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	a, err := archive.Open(root, archive.WithLogger(logger))
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	tier, err := cfg.Tier()
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}
	var keys []archive.AssetKey
	if f.NArg() == 0 {
		for _, id := range a.AssetIDs() {
			keys = append(keys, archive.AssetKey{ID: id, Tier: tier})
		}
	} else {
		for _, arg := range f.Args() {
			id, err := strconv.ParseUint(arg, 10, 32)
			if err != nil {
				log.Printf("invalid asset id %q", arg)
				return subcommands.ExitUsageError
			}
			keys = append(keys, archive.AssetKey{ID: uint32(id), Tier: tier})
		}
	}
	if len(keys) == 0 {
		log.Println("archive holds no assets")
		return subcommands.ExitFailure
	}

	codec, err := cfg.Codec()
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	bar := progressbar.NewOptions(len(keys), progressbar.OptionShowCount())
	results, err := pipeline.Run(ctx, pipeline.Options{
		Archive:     a,
		OutputDir:   cfg.OutputDir,
		TileSize:    cfg.TileSize,
		Codec:       codec,
		Concurrency: cfg.Workers,
		MaxPixels:   cfg.MaxPixels,
		OnResult:    func(pipeline.Result) { _ = bar.Add(1) },
		Logger:      logger,
	}, keys)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("%s: %s stage failed: %v", res.Key, res.Stage, res.Err)
		}
	}
	fmt.Printf("extracted %d/%d assets into %s\n", len(results)-failed, len(results), cfg.OutputDir)
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
