package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bshnet/bsh/cmd/bsh/internal/format"
	"github.com/bshnet/bsh/pkg/version"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			return format.FromCommand(cmd).Render(info, func(w io.Writer) error {
				fmt.Fprintf(w, "%s version: %s\n", cliExecutable, info.Version)
				if short {
					return nil
				}
				fmt.Fprintf(w, "Commit: %s\n", info.Commit)
				fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
				fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
				_, err := fmt.Fprintf(w, "Platform: %s\n", info.Platform)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
