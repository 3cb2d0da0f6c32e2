// Package fingerprint guesses what kind of device a host is from its open
// ports, MAC vendor and ICMP TTL. Every result is a hint, not a certainty.
package fingerprint

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/types"
)

// Device type labels.
const (
	TypeRouter        = "Router/Gateway"
	TypeLinuxServer   = "Server (Linux/Unix)"
	TypeWindowsServer = "Windows Server/Workstation"
	TypeWindows       = "Windows Device"
	TypeLinux         = "Linux/Unix Device"
	TypeWebServer     = "Web Server"
	TypeUnknown       = "Unknown (No open ports detected)"
	TypeNetwork       = "Network Device"
)

var webPorts = []int{80, 443, 8080}

// DeviceType applies the port rules in precedence order. A web port only
// marks a router when its service entry carries a banner or version, i.e.
// the service identified itself.
func DeviceType(openPorts []int, services map[int]types.PortResult) string {
	open := func(p int) bool { return slices.Contains(openPorts, p) }

	for _, p := range webPorts {
		if !open(p) {
			continue
		}
		if svc, ok := services[p]; ok && (len(svc.Banner) > 0 || svc.Version != "") {
			return TypeRouter
		}
	}

	switch {
	case open(22) && open(80):
		return TypeLinuxServer
	case open(3389):
		return TypeWindowsServer
	case open(445) || open(139):
		return TypeWindows
	case open(22):
		return TypeLinux
	case open(80) || open(443):
		return TypeWebServer
	case len(openPorts) == 0:
		return TypeUnknown
	}
	return TypeNetwork
}

// TTLHint maps an echo reply TTL to an OS family.
func TTLHint(ttl int) string {
	switch {
	case ttl <= 64:
		return "Linux/Unix"
	case ttl <= 128:
		return "Windows"
	default:
		return "Network Device"
	}
}

// PortHints returns OS hints implied by open ports.
func PortHints(openPorts []int) []string {
	var hints []string
	if slices.Contains(openPorts, 3389) {
		hints = append(hints, "Windows (RDP detected)")
	}
	if slices.Contains(openPorts, 445) || slices.Contains(openPorts, 139) {
		hints = append(hints, "Windows (SMB detected)")
	}
	if slices.Contains(openPorts, 22) {
		hints = append(hints, "Linux/Unix (SSH detected)")
	}
	return hints
}

// OSGuess joins the TTL hint (when hasTTL) and port hints, deduplicated,
// with " or ". No signal yields "".
func OSGuess(ttl int, hasTTL bool, openPorts []int) string {
	var hints []string
	if hasTTL {
		hints = append(hints, TTLHint(ttl))
	}
	for _, h := range PortHints(openPorts) {
		if !slices.Contains(hints, h) {
			hints = append(hints, h)
		}
	}
	return strings.Join(hints, " or ")
}

// TTLProber reports the TTL of an echo reply.
type TTLProber interface {
	TTL(ctx context.Context, ip string) (int, bool)
}

// Fingerprinter classifies host records.
type Fingerprinter struct {
	TTL    TTLProber
	Logger zerolog.Logger
}

// Classify fills DeviceType, OSGuess and Vendor on rec. OpenPorts and
// Services must already be populated.
func (f *Fingerprinter) Classify(ctx context.Context, rec *types.HostRecord) {
	rec.DeviceType = DeviceType(rec.OpenPorts, rec.Services)

	var (
		ttl    int
		hasTTL bool
	)
	if f.TTL != nil {
		ttl, hasTTL = f.TTL.TTL(ctx, rec.IP)
	}
	rec.OSGuess = OSGuess(ttl, hasTTL, rec.OpenPorts)

	if rec.MAC != "" {
		if v, ok := VendorFor(rec.MAC); ok {
			rec.Vendor = v
		}
	}

	f.Logger.Debug().
		Str("ip", rec.IP).
		Str("device_type", rec.DeviceType).
		Str("os_guess", rec.OSGuess).
		Int("ttl", ttl).
		Msg("host classified")
}
