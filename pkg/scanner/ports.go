package scanner

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var (
	// DefaultPorts is scanned when no ports are given.
	DefaultPorts = []int{22, 80, 443, 8080, 3000}
	// DevicePorts is the port set used to fingerprint a device.
	DevicePorts = []int{22, 23, 80, 443, 135, 139, 445, 3389, 8080, 8443}
)

// ParsePorts converts command-line arguments into a port list. Each argument
// may be a single port, a comma separated list, or a range "1000-1002".
// Input order is kept and repeated ports are dropped. No arguments yields
// DefaultPorts.
func ParsePorts(args []string) ([]int, error) {
	seen := make(map[int]struct{})
	ports := []int{}

	add := func(p int) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		ports = append(ports, p)
	}

	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			if lo, hi, isRange := strings.Cut(part, "-"); isRange && lo != "" {
				start, err := toPort(lo)
				if err != nil {
					return nil, err
				}
				end, err := toPort(hi)
				if err != nil {
					return nil, err
				}
				if start > end {
					return nil, fmt.Errorf("invalid port range %q: start greater than end", part)
				}
				for p := start; p <= end; p++ {
					add(p)
				}
				continue
			}

			p, err := toPort(part)
			if err != nil {
				return nil, err
			}
			add(p)
		}
	}

	if len(ports) == 0 {
		return append([]int(nil), DefaultPorts...), nil
	}
	return ports, nil
}

func toPort(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("invalid port %q: not a decimal number", s)
	}
	// cast reads a leading 0 as octal.
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		digits = "0"
	}
	p, err := cast.ToIntE(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", p)
	}
	return p, nil
}
