package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steviee/cdl/internal/state"
	"gopkg.in/yaml.v3"
)

// Env carries the global flag state the config commands depend on. It is
// read when a subcommand runs, after flags are parsed.
type Env struct {
	Path string
	JSON bool
}

// Output is the JSON envelope written with --json.
type Output struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewCommand creates the config command group
func NewCommand(env func() Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and modify cdl configuration settings.

The configuration holds the defaults for searches and downloads: game
version, mod loader, sort order, result amount, download directory and
the cache directory for cloned repositories. It is stored in
~/.config/cdl/config.yaml by default and created on first use.

Valid keys: ` + strings.Join(state.ConfigKeys, ", "),
		Example: `  # View current configuration
  cdl config show

  # Set a configuration value
  cdl config set game_version 1.20.1

  # Get a specific value
  cdl config get mod_loader

  # Reset to defaults
  cdl config reset

  # Show configuration file path
  cdl config path`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(newShowCommand(env))
	cmd.AddCommand(newGetCommand(env))
	cmd.AddCommand(newSetCommand(env))
	cmd.AddCommand(newResetCommand(env))
	cmd.AddCommand(newPathCommand(env))

	return cmd
}

func newShowCommand(env func() Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			cfg, err := state.LoadConfigFrom(cmd.Context(), e.Path)
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), e.JSON, cfg)
		},
	}
}

func newGetCommand(env func() Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			cfg, err := state.LoadConfigFrom(cmd.Context(), e.Path)
			if err != nil {
				return err
			}

			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}

			if e.JSON {
				return writeJSON(cmd.OutOrStdout(), Output{
					Status: "success",
					Data:   map[string]string{"key": args[0], "value": value},
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
}

func newSetCommand(env func() Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a configuration value",
		Example: `  cdl config set mod_loader fabric
  cdl config set amount 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			cfg, err := state.UpdateConfig(cmd.Context(), e.Path, func(c *state.Config) error {
				return c.Set(args[0], args[1])
			})
			if err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}
			return writeConfig(cmd.OutOrStdout(), e.JSON, cfg)
		},
	}
}

func newResetCommand(env func() Env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			cfg, err := state.ResetConfig(cmd.Context(), e.Path)
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), e.JSON, cfg)
		},
	}
}

func newPathCommand(env func() Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			if e.JSON {
				return writeJSON(cmd.OutOrStdout(), Output{
					Status: "success",
					Data:   map[string]string{"path": e.Path},
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), e.Path)
			return err
		},
	}
}

func writeConfig(w io.Writer, jsonMode bool, cfg *state.Config) error {
	if jsonMode {
		return writeJSON(w, Output{Status: "success", Data: configData(cfg)})
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// configData flattens cfg into the same keys the file and `config set` use.
func configData(cfg *state.Config) map[string]string {
	data := make(map[string]string, len(state.ConfigKeys))
	for _, key := range state.ConfigKeys {
		value, _ := cfg.Get(key)
		data[key] = value
	}
	return data
}

func writeJSON(w io.Writer, output Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}
