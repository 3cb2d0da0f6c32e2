package commands

import (
	"github.com/spf13/cobra"

	"github.com/bshnet/bsh/cmd/bsh/internal/format"
)

func newInterfacesCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "interfaces",
		Aliases: []string{"if"},
		Short:   "Show network interfaces and their information",
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := newEngine(cmd).Local(cmd.Context())
			if err != nil {
				return err
			}
			return format.FromCommand(cmd).Interfaces(info)
		},
	}
}

func newIPCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ip [target]",
		Short: "Show IP address information (default: local)",
		Long: `Without a target, or with "local", shows this machine's addresses,
hostname and FQDN. With a host name or address, resolves it, looks up its
reverse DNS name and tests reachability (TCP port 80, then ICMP echo).`,
		Example: "  bsh ip\n  bsh ip 8.8.8.8\n  bsh ip router.lan",
		GroupID: "info",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine(cmd)
			f := format.FromCommand(cmd)

			target := "local"
			if len(args) > 0 {
				target = args[0]
			}
			if target == "local" {
				info, err := eng.Local(cmd.Context())
				if err != nil {
					return err
				}
				return f.Local(info)
			}

			info, err := eng.Lookup(cmd.Context(), target)
			if err != nil {
				return err
			}
			return f.IPInfo(info)
		},
	}
}
