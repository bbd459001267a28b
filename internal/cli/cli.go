package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/internal/config"
	"github.com/matzehuels/blockpress/pkg/adapter"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/blocks"
	"github.com/matzehuels/blockpress/pkg/buildinfo"
	"github.com/matzehuels/blockpress/pkg/cache"
	"github.com/matzehuels/blockpress/pkg/hooks"
	"github.com/matzehuels/blockpress/pkg/pipeline"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// appName is the application name used for directories and display.
const appName = "blockpress"

// annotationNoConfig marks commands that run without loading the config
// file.
const annotationNoConfig = "blockpress/no-config"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Config is loaded before any subcommand runs.
	Config *config.Config

	// errOut receives progress spinners; it is the log writer.
	errOut     io.Writer
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		errOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockpress renders block documents to email and web HTML",
		Long: `Blockpress renders documents built from typed content blocks into
email-safe HTML or web pages. Page output can be finalized server-side by
the trusted pass, which expands deferred block placeholders.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if cmd.Annotations[annotationNoConfig] != "" {
				return nil
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blockpress/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.finalizeCommand())
	root.AddCommand(c.blocksCommand())
	root.AddCommand(c.newCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRegistry returns a registry holding the built-in block types.
func (c *CLI) newRegistry() (*registry.Registry, error) {
	reg := registry.New(hooks.New(c.Logger), c.Logger)
	if err := blocks.RegisterAll(reg); err != nil {
		return nil, fmt.Errorf("register blocks: %w", err)
	}
	if base := c.Config.Render.AssetBase; base != "" {
		reg.Bus().AddFilter(hooks.AssetURL, assetBaseFilter(base))
	}
	return reg, nil
}

// assetBaseFilter rewrites root-relative asset sources onto base.
// Protocol-relative and absolute sources pass through.
func assetBaseFilter(base string) hooks.Filter {
	base = strings.TrimRight(base, "/")
	return func(value any, _ ...any) (any, error) {
		src, ok := value.(string)
		if !ok || !strings.HasPrefix(src, "/") || strings.HasPrefix(src, "//") {
			return value, nil
		}
		return base + src, nil
	}
}

// newRunner creates a pipeline runner for CLI use. Configured per-context
// settings become the adapters' defaults.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	reg, err := c.newRegistry()
	if err != nil {
		return nil, err
	}
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	runner := pipeline.NewRunner(reg, backend, keyer, c.Logger)
	for _, name := range runner.Adapters.Contexts() {
		if s := c.Config.SettingsFor(name); len(s) > 0 {
			runner.Adapters.Add(c.contextAdapter(reg, name, s))
		}
	}
	runner.RenderTTL = c.Config.Cache.TTL
	return runner, nil
}

// contextAdapter builds the adapter for ctx with configured settings
// layered over the built-in defaults.
func (c *CLI) contextAdapter(reg *registry.Registry, ctx string, s block.Settings) adapter.Adapter {
	opts := []adapter.Option{adapter.WithLogger(c.Logger), adapter.WithBus(reg.Bus()), adapter.WithDefaults(s)}
	if ctx == registry.ContextPage {
		return adapter.NewWeb(reg, opts...)
	}
	return adapter.NewEmail(reg, opts...)
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return rc, nil
	default:
		if cfg.Dir == "" {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(cfg.Dir)
	}
}
