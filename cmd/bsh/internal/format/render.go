package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bshnet/bsh/pkg/engine"
	"github.com/bshnet/bsh/pkg/stringutil"
	"github.com/bshnet/bsh/pkg/types"
)

const bannerWidth = 80

var (
	readOnlyNote = []string{
		"Note: This tool only gathers publicly available information.",
		"It does not perform any unauthorized access attempts.",
	}
	portNote = []string{
		"Note: This tool only scans for open ports. It does not attempt",
		"to exploit or gain unauthorized access to any services.",
	}
)

// Interfaces renders interface addresses and the default gateway.
func (f *Formatter) Interfaces(info types.LocalInfo) error {
	return f.Render(info, func(w io.Writer) error {
		if err := f.Heading(w, "Network Interfaces"); err != nil {
			return err
		}
		if err := f.interfaceBlock(w, info.Interfaces); err != nil {
			return err
		}
		if err := f.Field(w, "", "Default Gateway", info.Gateway, "Not available"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}

func (f *Formatter) interfaceBlock(w io.Writer, ifaces []types.InterfaceInfo) error {
	if len(ifaces) == 0 {
		_, err := fmt.Fprintf(w, "No interfaces found.\n\n")
		return err
	}
	for _, in := range ifaces {
		if err := f.Field(w, "", "Interface", in.Name, ""); err != nil {
			return err
		}
		if err := f.Field(w, "  ", "Type", in.Family, ""); err != nil {
			return err
		}
		if err := f.Field(w, "  ", "IP", in.IP, ""); err != nil {
			return err
		}
		if err := f.Field(w, "  ", "Netmask", in.Netmask, "N/A"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Local renders information about this machine.
func (f *Formatter) Local(info types.LocalInfo) error {
	return f.Render(info, func(w io.Writer) error {
		if err := f.Heading(w, "Local IP Information"); err != nil {
			return err
		}
		if err := f.interfaceBlock(w, info.Interfaces); err != nil {
			return err
		}
		if err := f.Field(w, "", "Hostname", info.Hostname, "Unknown"); err != nil {
			return err
		}
		if info.FQDN != "" {
			if err := f.Field(w, "", "FQDN", info.FQDN, ""); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}

// IPInfo renders a remote lookup.
func (f *Formatter) IPInfo(info types.IPInfo) error {
	return f.Render(info, func(w io.Writer) error {
		if err := f.Heading(w, "IP Information for: "+info.Target); err != nil {
			return err
		}
		if err := f.Field(w, "", "IP Address", info.IP, ""); err != nil {
			return err
		}
		if err := f.Field(w, "", "Hostname", info.Hostname, "Not available (no reverse DNS)"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\nReachability Test:\n"); err != nil {
			return err
		}
		status := f.bad("May not be reachable") + " (" + info.Method + ")"
		if info.Reachable {
			status = f.good("Reachable") + " (" + info.Method + ")"
		}
		if err := f.Field(w, "  ", "Status", status, ""); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}

// Discovery renders the hosts found by a sweep.
func (f *Formatter) Discovery(report *engine.DiscoveryReport) error {
	return f.Render(report, func(w io.Writer) error {
		if err := f.Heading(w, "Network Device Scanner"); err != nil {
			return err
		}
		if err := f.Note(w,
			"Note: This tool only scans for devices on your local network.",
			"It does not perform any unauthorized access attempts.",
		); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Scanned network: %s (%d hosts)\n\n", report.Target, report.Candidates); err != nil {
			return err
		}

		if len(report.Hosts) == 0 {
			_, err := fmt.Fprintf(w, "No devices found on the network.\n\n")
			return err
		}
		if _, err := fmt.Fprintf(w, "Found %d device(s):\n\n", len(report.Hosts)); err != nil {
			return err
		}
		for i, h := range report.Hosts {
			if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, f.style(labelStyle, h.IP)); err != nil {
				return err
			}
			if err := f.Field(w, "   ", "MAC", h.MAC, "Unknown"); err != nil {
				return err
			}
			if err := f.Field(w, "   ", "Hostname", h.Hostname, "Unknown"); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return f.PrintSummary(fmt.Sprintf("Completed in %.1fs (run %s)", report.Duration.Seconds(), report.RunID))
	})
}

// PortScan renders per-port status in the order requested.
func (f *Formatter) PortScan(scan types.PortScan, ports []int) error {
	return f.Render(scan, func(w io.Writer) error {
		if err := f.Heading(w, "Port Scanner"); err != nil {
			return err
		}
		if err := f.Note(w, portNote...); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Scanning host: %s\nPorts to scan: %s\n\n", scan.Host, joinInts(ports)); err != nil {
			return err
		}

		for _, p := range ports {
			line := fmt.Sprintf("  Port %d: %s", p, f.bad("CLOSED"))
			if res, ok := scan.Services[p]; ok {
				svc := res.Service
				if svc == "" {
					svc = "Unknown service"
				}
				line = fmt.Sprintf("  Port %d: %s (%s)", p, f.good("OPEN"), svc)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w, "\nSummary:\n  Open ports: %d (%s)\n  Closed ports: %d\n\n",
			len(scan.OpenPorts), joinInts(scan.OpenPorts), len(scan.Closed))
		return err
	})
}

// Device renders a device profile and any users found on it.
func (f *Formatter) Device(rep engine.DeviceReport) error {
	return f.Render(rep, func(w io.Writer) error {
		if err := f.Heading(w, "Device Information for: "+rep.IP); err != nil {
			return err
		}
		if err := f.Note(w, readOnlyNote...); err != nil {
			return err
		}

		fields := []struct{ label, value, fallback string }{
			{"IP Address", rep.IP, ""},
			{"Hostname", rep.Hostname, "Not available"},
			{"MAC Address", rep.MAC, "Not available"},
			{"Vendor", rep.Vendor, "Unknown"},
		}
		for _, fl := range fields {
			if err := f.Field(w, "", fl.label, fl.value, fl.fallback); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := f.Field(w, "", "Device Type", rep.DeviceType, "Unknown"); err != nil {
			return err
		}
		if err := f.Field(w, "", "OS Information", rep.OSGuess, "Unknown"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if len(rep.OpenPorts) == 0 {
			_, err := fmt.Fprintf(w, "Open Ports: None detected\n\n")
			return err
		}
		if _, err := fmt.Fprintf(w, "Open Ports: %s\n\nServices:\n", joinInts(rep.OpenPorts)); err != nil {
			return err
		}
		for _, p := range rep.OpenPorts {
			svc := rep.Services[p]
			name := svc.Service
			if name == "" {
				name = "Unknown"
			}
			if _, err := fmt.Fprintf(w, "  Port %d: %s\n", p, name); err != nil {
				return err
			}
			if len(svc.Banner) > 0 {
				banner := stringutil.Ellipsis(stringutil.FirstLine(stringutil.Printable(svc.Banner)), bannerWidth)
				if err := f.Field(w, "    ", "Banner", banner, ""); err != nil {
					return err
				}
			}
			if svc.Version != "" {
				if err := f.Field(w, "    ", "Version", svc.Version, ""); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if len(rep.Users) > 0 {
			names := make([]string, 0, len(rep.Users))
			for _, u := range rep.Users {
				names = append(names, u.Username)
			}
			if _, err := fmt.Fprintf(w, "Users found: %s\n\n", strings.Join(names, ", ")); err != nil {
				return err
			}
		}
		return nil
	})
}

// Users renders enumerated user candidates.
func (f *Formatter) Users(host string, users []types.UserCandidate) error {
	if users == nil {
		users = []types.UserCandidate{}
	}
	return f.Render(users, func(w io.Writer) error {
		if err := f.Heading(w, "User Enumeration for: "+host); err != nil {
			return err
		}
		if err := f.Note(w,
			"Note: This tool only attempts safe, read-only enumeration.",
			"It does not perform any unauthorized access attempts.",
		); err != nil {
			return err
		}

		if len(users) == 0 {
			_, err := fmt.Fprint(w, "No users found via enumeration methods.\n"+
				"This may mean:\n"+
				"  - No enumeration services are available\n"+
				"  - Services require authentication\n"+
				"  - Services are configured securely\n\n")
			return err
		}

		if _, err := fmt.Fprintf(w, "Found %d possible user(s):\n\n", len(users)); err != nil {
			return err
		}
		rows := make([][]string, 0, len(users))
		for i, u := range users {
			rows = append(rows, []string{strconv.Itoa(i + 1), u.Username, u.Source, u.Method})
		}
		if err := f.PrintTable(w, []string{"#", "Username", "Source", "Method"}, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}

// Search renders a username existence check.
func (f *Formatter) Search(res types.SearchResult) error {
	return f.Render(res, func(w io.Writer) error {
		if err := f.Heading(w, fmt.Sprintf("Searching for user '%s' on: %s", res.Username, res.Host)); err != nil {
			return err
		}
		if !res.Found {
			_, err := fmt.Fprintf(w, "%s\n  This does not necessarily mean the user doesn't exist.\n\n",
				f.bad(fmt.Sprintf("✗ User '%s' not found via enumeration methods.", res.Username)))
			return err
		}
		_, err := fmt.Fprintf(w, "%s\n  Sources: %s\n\n",
			f.good(fmt.Sprintf("✓ User '%s' found!", res.Username)),
			strings.Join(res.Sources, ", "))
		return err
	})
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
