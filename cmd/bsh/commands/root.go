package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bshnet/bsh/cmd/bsh/internal/format"
	"github.com/bshnet/bsh/pkg/appctx"
	"github.com/bshnet/bsh/pkg/config"
	"github.com/bshnet/bsh/pkg/engine"
	"github.com/bshnet/bsh/pkg/logging"
)

const cliExecutable = "bsh"

// engineFactory builds the engine used by every command. Tests replace it.
type engineFactory func(cmd *cobra.Command) *engine.Engine

// NewCommand constructs the top-level bsh CLI command, wiring global flags,
// configuration loading and logging.
func NewCommand() *cobra.Command {
	return newCommand(defaultEngine)
}

func newCommand(newEngine engineFactory) *cobra.Command {
	var (
		configFile     string
		output         string
		verbosityCount int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "bsh - basic network reconnaissance tools",
		Long: `bsh gathers information about hosts on your local network: interfaces,
live devices, open ports, device fingerprints and likely user accounts.

These tools are for information gathering only. They do not perform any
exploitation or unauthorized access attempts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := format.ValidateMode(output); err != nil {
				return err
			}

			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			if cfg.Log.Format == "json" {
				logging.SetLogWriter(os.Stderr)
			}
			level := logging.ParseLevel(cfg.Log.Level)
			switch {
			case verbosityCount >= 2:
				level = zerolog.TraceLevel
			case verbosityCount == 1 && level > zerolog.DebugLevel:
				level = zerolog.DebugLevel
			}
			logging.ConfigureGlobal(level)

			ctx := appctx.WithConfig(cmd.Context(), mgr)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			log.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress notes and summaries")
	cmd.PersistentFlags().Bool("progress", false, "Print live progress updates to stderr")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "info", Title: "Information Commands"})
	cmd.AddGroup(&cobra.Group{ID: "scan", Title: "Scan Commands"})

	cmd.AddCommand(newInterfacesCommand(newEngine))
	cmd.AddCommand(newIPCommand(newEngine))
	cmd.AddCommand(newScanCommand(newEngine))
	cmd.AddCommand(newPortsCommand(newEngine))
	cmd.AddCommand(newDeviceCommand(newEngine))
	cmd.AddCommand(newUsersCommand(newEngine))
	cmd.AddCommand(newSearchCommand(newEngine))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// defaultEngine builds a production engine from the loaded configuration.
func defaultEngine(cmd *cobra.Command) *engine.Engine {
	opts := []engine.Option{engine.WithLogger(log.Logger)}
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		opts = append(opts, engine.WithProgressSink(format.FromCommand(cmd).Progress(cmd.ErrOrStderr())))
	}
	return engine.New(appctx.ScanConfig(cmd.Context()), opts...)
}
