package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"relgraph/internal/config"
	"relgraph/internal/graph"
	"relgraph/internal/hub"
	"relgraph/internal/logger"
	"relgraph/internal/schema"
	"relgraph/internal/store"
)

var (
	cfgFile    string
	schemaPath string
	debugMode  bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "relgraph",
	Short: "Inspect and replay relationship graphs",
	Long: `relgraph resolves relationship schemas and replays push and mutation
scripts against an in-memory relationship graph.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search "+config.EnvConfigPath+" and standard locations)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "schema YAML file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "panic on invariant violations")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newReplayCmd())
}

// app is the wiring shared by subcommands
type app struct {
	cfg        *config.Config
	schemaPath string
	log        *slog.Logger
	schema     *schema.Registry
	graphs     *graph.Registry
	store      *store.Store
}

func loadConfig() (*config.Config, string, error) {
	if cfgFile != "" {
		return config.LoadFromPath(cfgFile)
	}
	return config.Load()
}

func newApp(stderr io.Writer) (*app, error) {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if debugMode {
		cfg.Debug = true
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if cfgPath != "" {
		log.Debug("config loaded", "path", cfgPath)
	}

	path := schemaPath
	if path == "" {
		path = cfg.ResolveSchemaPath(cfgPath)
	}
	if path == "" {
		return nil, fmt.Errorf("no schema: pass --schema or set schema.path in the config")
	}
	reg, err := schema.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	log.Debug("schema loaded", "path", path, "types", len(reg.Types()))

	graphs := graph.NewRegistry(graph.Options{Logger: log, Debug: cfg.Debug})
	s := store.New(reg, graphs,
		store.WithLogger(log),
		store.WithHub(hub.New(log)),
	)
	return &app{cfg: cfg, schemaPath: path, log: log, schema: reg, graphs: graphs, store: s}, nil
}

func (a *app) close() {
	a.store.Destroy()
}
