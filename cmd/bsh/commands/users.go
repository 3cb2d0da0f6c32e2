package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bshnet/bsh/cmd/bsh/internal/format"
	"github.com/bshnet/bsh/pkg/discovery"
)

func newUsersCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "users <ip>",
		Short: "Enumerate possible users on a device",
		Long: `Collects candidate usernames from SMB share listings (via smbclient),
SSH and RDP availability, and common HTTP user endpoints. SSH and RDP
candidates only show that the service answered; they do not prove the
account exists.`,
		Example: "  bsh users 192.168.1.1",
		GroupID: "scan",
		Args:    exactArgs(1, "IP address required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := newEngine(cmd).Users(cmd.Context(), args[0])
			if err := format.FromCommand(cmd).Users(args[0], users); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}

func newSearchCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "search <ip> <username>",
		Short:   "Search for a specific user on a device",
		Example: "  bsh search 192.168.1.1 admin",
		GroupID: "scan",
		Args:    exactArgs(2, "IP address and username required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := newEngine(cmd).Search(cmd.Context(), args[0], args[1])
			if err := format.FromCommand(cmd).Search(res); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}

// exactArgs is cobra.ExactArgs with a usage hint, classified as an invalid
// target.
func exactArgs(n int, msg string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s\nUsage: %s", discovery.ErrInvalidTarget, msg, cmd.UseLine())
		}
		return nil
	}
}
