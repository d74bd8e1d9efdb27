package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/steviee/cdl/internal/cli/build"
	"github.com/steviee/cdl/internal/cli/config"
	"github.com/steviee/cdl/internal/cli/download"
	"github.com/steviee/cdl/internal/curseforge"
	"github.com/steviee/cdl/internal/gitbuild"
	"github.com/steviee/cdl/internal/mods"
	"github.com/steviee/cdl/internal/state"
	"github.com/steviee/cdl/internal/tui"
)

// EnvPrefix prefixes the environment variables that override settings,
// e.g. CDL_GAME_VERSION.
const EnvPrefix = "CDL"

var (
	// Global flags
	cfgFile string
	jsonOut bool
	quiet   bool
	verbose bool

	// Search flags
	github    bool
	selection string

	// Resolved in PersistentPreRunE
	configPath string
	settings   *viper.Viper

	// Global logger
	logger *slog.Logger
)

// settingFlags maps the root flags to the config keys they override.
var settingFlags = map[string]string{
	"game-version": "game_version",
	"mod-loader":   "mod_loader",
	"sort":         "sort_type",
	"amount":       "amount",
	"dir":          "download_dir",
}

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cdl [flags] <query...>",
		Short: "Search and download Minecraft mods from CurseForge",
		Long: `cdl searches CurseForge for Minecraft mods and downloads the ones you
pick together with all of their required dependencies.

The search is narrowed by game version and mod loader. Results are listed
with an index; answer the prompt with indices and ranges such as "1-3 5".
Each file is downloaded once per run and files that already exist in the
download directory are skipped.

With --github the query is a git repository URL instead. The repository is
cloned, built with its Gradle wrapper on the branch you choose, and the
jars you pick are copied into the download directory.

Defaults come from the config file and can be overridden with CDL_*
environment variables (CDL_GAME_VERSION, CDL_MOD_LOADER, ...) and flags.`,
		Example: `  # Search Forge mods for the configured game version
  cdl jei

  # Search Fabric mods for 1.16.5, sorted by downloads
  cdl -l fabric -v 1.16.5 -s downloads sodium

  # Download the first three results without prompting
  cdl --select 1-3 -d ./mods journeymap

  # Build a mod from source
  cdl -g github.com/user/some-mod`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger based on flags
			if err := initLogger(cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			// Initialize config
			if err := initConfig(); err != nil {
				logger.Error("failed to initialize config", "error", err)
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return run(cmd, args)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cdl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	// Mark json and quiet as mutually exclusive
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Search flags; unset ones fall back to the environment and the config file
	flags := rootCmd.Flags()
	flags.StringP("mod-loader", "l", "", "mod loader: forge, fabric or both")
	flags.StringP("game-version", "v", "", "Minecraft version (e.g., 1.16.4)")
	flags.StringP("sort", "s", "", "sort by: downloads, popularity, name, updated, created")
	flags.IntP("amount", "a", 0, fmt.Sprintf("number of results to list (%d-%d)", state.MinAmount, state.MaxAmount))
	flags.StringP("dir", "d", "", "directory to download into")
	flags.BoolVarP(&github, "github", "g", false, "treat the query as a git repository URL and build it")
	flags.StringVar(&selection, "select", "", `select results without prompting (e.g., "1-3 5")`)

	rootCmd.MarkFlagsMutuallyExclusive("github", "select")

	// Add version command
	rootCmd.AddCommand(NewVersionCommand(version, commit, date, builtBy))
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	return config.NewCommand(func() config.Env {
		return config.Env{Path: configPath, JSON: jsonOut}
	})
}

// run dispatches to the download or the build flow.
func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	prompter := tui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	if github {
		if jsonOut {
			return errors.New("--json is not supported with --github")
		}
		if len(args) != 1 {
			return fmt.Errorf("--github takes a single repository URL, got %d arguments", len(args))
		}

		runner := &build.Runner{
			Builder:  gitbuild.New(cfg.RepoCacheDir),
			Prompter: prompter,
			Out:      cmd.OutOrStdout(),
			Err:      cmd.ErrOrStderr(),
		}
		return runner.Run(ctx, args[0], cfg.DownloadDir)
	}

	client := curseforge.NewClient(&curseforge.Config{
		BaseURL: settings.GetString("api_url"),
	})

	runner := &download.Runner{
		Searcher:  client,
		Installer: mods.NewInstaller(mods.NewResolver(client), mods.NewFetcher(nil), afero.NewOsFs(), cfg.DownloadDir),
		Prompter:  prompter,
		Out:       cmd.OutOrStdout(),
	}

	return runner.Run(ctx, download.Options{
		Query:       strings.Join(args, " "),
		GameVersion: cfg.GameVersion,
		Loader:      cfg.ModLoader,
		Sort:        cfg.SortType,
		Amount:      cfg.Amount,
		Selection:   selection,
		JSON:        jsonOut,
	})
}

// initLogger initializes the global logger based on flags
func initLogger(out io.Writer) error {
	var level slog.Level
	var handler slog.Handler

	// Determine log level
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	if jsonOut {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = log.NewWithOptions(out, log.Options{
			Level:           log.Level(level),
			ReportTimestamp: verbose,
		})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// initConfig resolves the config file path and prepares the environment
// overlay. The file itself is read by the command that needs it.
func initConfig() error {
	if cfgFile != "" {
		// Use config file from the flag
		configPath = cfgFile
	} else {
		path, err := state.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		configPath = path
	}

	// Read in environment variables that match
	settings = viper.New()
	settings.SetEnvPrefix(EnvPrefix)
	settings.AutomaticEnv()

	logger.Debug("using config file", "path", configPath)

	return nil
}

// loadSettings merges the config file, CDL_* environment variables and the
// search flags, in increasing order of precedence.
func loadSettings(cmd *cobra.Command) (*state.Config, error) {
	fileCfg, err := state.LoadConfigFrom(cmd.Context(), configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	for _, key := range state.ConfigKeys {
		value, _ := fileCfg.Get(key)
		settings.SetDefault(key, value)
	}

	// Visit only walks flags set on the command line.
	var bindErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := settingFlags[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := settings.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	cfg := &state.Config{}
	for _, key := range state.ConfigKeys {
		if err := cfg.Set(key, settings.GetString(key)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	if err := state.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	logger.Debug("resolved settings",
		"game_version", cfg.GameVersion,
		"mod_loader", cfg.ModLoader.Key(),
		"sort_type", cfg.SortType.Key(),
		"amount", cfg.Amount,
		"download_dir", cfg.DownloadDir)

	return cfg, nil
}

// ErrorOutput is the JSON envelope for a failed command.
type ErrorOutput struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// PrintError reports a command failure: a JSON envelope on stdout with
// --json, otherwise "An error occurred: {err}" on stderr.
func PrintError(stdout, stderr io.Writer, err error) {
	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ErrorOutput{Status: "error", Error: err.Error()})
		return
	}
	_, _ = fmt.Fprintf(stderr, "An error occurred: %v\n", err)
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOut
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
