// Package cli implements the mosaic command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/buildinfo"
	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/pipeline"
	"github.com/matzehuels/mosaic/pkg/sim"
)

// appName names the binary and the cache directory.
const appName = "mosaic"

// Levels accepted by New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries what every command shares: the logger.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel changes the level of the shared logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the command tree. --verbose switches to debug logging and
// routes simulation, pipeline and cache events through the logger.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Mosaic lays out a catalog as a relevance-weighted Voronoi mosaic",
		Long: `Mosaic arranges a catalog of items as a living mosaic: every item owns a
cell of the screen, and cells grow or shrink with how well the item matches
the current query.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				hooks.TickEvery = 50
				hooks.Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		c.runCommand(),
		c.watchCommand(),
		c.scoreCommand(),
		c.configCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// newRunner returns a runner over the user cache, or over a NullCache when
// noCache is set. Keys are scoped by build
// version so a new release never reads frames simulated by an older one.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, cacheKeyer(), c.Logger), nil
}

func cacheKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// newCache falls back to a NullCache when no cache directory can be found.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir is $XDG_CACHE_HOME/mosaic, or ~/.cache/mosaic.
func cacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadConfig returns the defaults, or the file at path overlaid on them.
func loadConfig(path string) (sim.Config, error) {
	if path == "" {
		return sim.DefaultConfig(), nil
	}
	cfg, err := sim.LoadConfigFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// loadCatalog reads a TOML or JSON catalog file.
func loadCatalog(path string) (catalog.Catalog, error) {
	items, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return items, nil
}

// parseFormats splits a comma list, dropping blanks. Empty means SVG only.
func parseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}
