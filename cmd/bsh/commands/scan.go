package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bshnet/bsh/cmd/bsh/internal/format"
	"github.com/bshnet/bsh/pkg/discovery"
	"github.com/bshnet/bsh/pkg/engine"
	"github.com/bshnet/bsh/pkg/scanner"
)

func newScanCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "scan [network]",
		Aliases: []string{"devices"},
		Short:   "Scan network for devices (default: local network)",
		Long: `Sweeps an IPv4 range for live hosts using ICMP echo with a TCP connect
fallback, then looks up each host's reverse DNS name and MAC address.

The range is "a.b.c.d/prefix"; a bare address implies /24. At most 256
addresses are probed. Without a range the first non-loopback IPv4
interface's network is used.`,
		Example: "  bsh scan\n  bsh scan 192.168.1.0/24",
		GroupID: "scan",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rangeArg := ""
			if len(args) > 0 {
				rangeArg = args[0]
			}

			report, err := newEngine(cmd).Discover(cmd.Context(), rangeArg)
			if report == nil {
				return err
			}
			if renderErr := format.FromCommand(cmd).Discovery(report); renderErr != nil {
				return errors.Join(err, renderErr)
			}
			return err
		},
	}
}

func newPortsCommand(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ports [host] [ports...]",
		Short: "Scan ports on a host (default: localhost)",
		Long: `Probes TCP ports on one host in the order given. Ports may be listed
individually, comma separated or as ranges. Without ports the default list
22, 80, 443, 8080, 3000 is scanned.`,
		Example: "  bsh ports localhost\n  bsh ports 192.168.1.1 22 80 443\n  bsh ports 192.168.1.1 1-1024",
		GroupID: "scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			host := "localhost"
			if len(args) > 0 {
				host = args[0]
				args = args[1:]
			}
			ports, err := scanner.ParsePorts(args)
			if err != nil {
				return fmt.Errorf("%w: %w", discovery.ErrInvalidTarget, err)
			}

			log.Debug().Str("host", host).Ints("ports", ports).Msg("scanning ports")
			scan := newEngine(cmd).ScanPorts(cmd.Context(), host, ports)
			if err := format.FromCommand(cmd).PortScan(scan, ports); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}

func newDeviceCommand(newEngine engineFactory) *cobra.Command {
	var noUsers bool

	cmd := &cobra.Command{
		Use:     "device <ip>",
		Aliases: []string{"info"},
		Short:   "Show detailed device information for an IP",
		Long: `Looks up the host name and MAC vendor, probes common device ports
(22, 23, 80, 443, 135, 139, 445, 3389, 8080, 8443) with banner grabbing, and
guesses the device type and operating system. When any port is open, user
enumeration runs as well.`,
		Example: "  bsh device 192.168.1.1\n  bsh info 192.168.1.100",
		GroupID: "scan",
		Args:    exactArgs(1, "IP address required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine(cmd)

			var rep engine.DeviceReport
			if noUsers {
				rep = engine.DeviceReport{HostRecord: eng.Device(cmd.Context(), args[0])}
			} else {
				rep = eng.DeviceWithUsers(cmd.Context(), args[0])
			}
			if err := format.FromCommand(cmd).Device(rep); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().BoolVar(&noUsers, "no-users", false, "Skip user enumeration")

	return cmd
}
