package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/buildinfo"
	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/config"
	"github.com/matzehuels/burrow/pkg/history"
	"github.com/matzehuels/burrow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Burrow finds the cheapest way to sort amphipods into their rooms",
		Long: `Burrow solves amphipod burrow puzzles: given a hallway and a row of rooms
holding amphipods of several classes, it finds the least total energy needed
to move every amphipod into its own room.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the file named by --config, or the default location when
// the flag is unset. A missing default file yields the built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	cfg, path, err := config.LoadDefault()
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, err
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Runs are recorded only
// when a MongoDB history store is configured, since an in-memory store would
// not outlive the process.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var store history.Store
	if cfg.History.MongoURI != "" {
		store, err = newHistoryStore(ctx, cfg)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	r := pipeline.NewRunner(ch, nil, store, c.Logger)
	r.SolutionTTL = cfg.Cache.TTL
	return r, nil
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.Prefix,
		})
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newHistoryStore connects to the configured MongoDB history store.
func newHistoryStore(ctx context.Context, cfg config.Config) (*history.MongoStore, error) {
	return history.NewMongoStore(ctx, history.MongoOptions{
		URI:      cfg.History.MongoURI,
		Database: cfg.History.Database,
	})
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.TrimSpace(f)
	}
	return formats
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
