package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nigeltao/tiler/internal/config"
	"github.com/nigeltao/tiler/internal/logging"
	"github.com/nigeltao/tiler/internal/session"
	"github.com/nigeltao/tiler/internal/topology"
)

var (
	configPath string
	restarted  bool
	verbose    bool
)

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", "", "Path to config.yml or config.toml (default: search the tiler config directory)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiler",
		Short: "A tiling window manager for X11",
		Long: `tiler manages X11 windows into named groups, tiles them, and
reassigns groups to screens whenever monitors are plugged in or removed.
Run it from an X session script; it refuses to start if another window
manager is running.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.Configure(logging.Settings{Level: "debug"})
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx)
		},
	}
	addGlobalFlags(cmd.PersistentFlags())
	cmd.Flags().BoolVar(&restarted, "restarted", false, "Set when tiler re-execs itself; skips autostart")
	cmd.Flags().MarkHidden("restarted")

	cmd.AddCommand(newOutputsCmd(), newKeysCmd(), newCheckCmd(), newSchemaCmd(), newDefaultConfigCmd())
	return cmd
}

func newOutputsCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List the display outputs and how many screens they make",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := topology.ParseCountMode(mode)
			if err != nil {
				return err
			}
			source := &topology.RandR{}
			outputs, err := source.Outputs()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OUTPUT\tCONNECTION\tPREFERRED")
			for _, o := range outputs {
				fmt.Fprintf(w, "%s\t%s\t%v\n", o.ID, o.Connection, o.Preferred)
			}
			w.Flush()
			d := &topology.Detector{Source: source, Mode: m, Log: logging.NewLogger("topology")}
			fmt.Fprintf(cmd.OutOrStdout(), "\nscreens (%s): %d\n", mode, d.Count())
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "count", "preferred", "Which outputs count: preferred or connected")
	return cmd
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the key bindings the configuration produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tACTION\tDESCRIPTION")
			for _, b := range s.Dispatcher.Bindings() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Chord(), b.Action, b.Desc)
			}
			return w.Flush()
		},
	}
}

func newCheckCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration without starting",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession()
			if err != nil {
				return err
			}
			summary := struct {
				Groups   []string `json:"groups" yaml:"groups"`
				Bindings int      `json:"bindings" yaml:"bindings"`
				Layouts  []string `json:"layouts" yaml:"layouts"`
			}{Bindings: s.Dispatcher.Len(), Layouts: s.Config.Layouts}
			for _, g := range s.Registry.Groups() {
				summary.Groups = append(summary.Groups, g.DisplayLabel())
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(summary)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newDefaultConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default-config",
		Short: "Print the built-in configuration, a starting point for config.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		},
	}
}

// loadSession builds a session from the configuration without connecting to
// X, which is enough to report every configuration error.
func loadSession() (*session.Session, error) {
	c, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return session.New(c, session.Options{Source: noOutputs{}, Restarted: true})
}

type noOutputs struct{}

func (noOutputs) Outputs() ([]topology.Output, error) { return nil, nil }
