package discovery

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ArpResolver maps an IPv4 address to the MAC in the neighbour table.
type ArpResolver interface {
	LookupMAC(ctx context.Context, ip string) (string, bool)
}

var macRe = regexp.MustCompile(`(?i)\b([0-9a-f]{1,2}(?:[:-][0-9a-f]{1,2}){5})\b`)

// ARPTable reads the kernel neighbour table, falling back to `arp -n`.
type ARPTable struct {
	Path    string
	Timeout time.Duration
	Logger  zerolog.Logger

	// runArp is replaced in tests.
	runArp func(ctx context.Context, ip string) ([]byte, error)
}

// NewARPTable returns a table reading /proc/net/arp.
func NewARPTable(timeout time.Duration, logger zerolog.Logger) *ARPTable {
	return &ARPTable{
		Path:    "/proc/net/arp",
		Timeout: timeout,
		Logger:  logger,
		runArp: func(ctx context.Context, ip string) ([]byte, error) {
			return exec.CommandContext(ctx, "arp", "-n", ip).CombinedOutput()
		},
	}
}

// LookupMAC returns the MAC for ip as upper-case colon separated octets.
func (a *ARPTable) LookupMAC(ctx context.Context, ip string) (string, bool) {
	if a.Path != "" {
		if f, err := os.Open(a.Path); err == nil {
			mac, ok := parseProcARP(f, ip)
			_ = f.Close()
			if ok {
				return mac, true
			}
		}
	}

	if a.runArp == nil {
		return "", false
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := a.runArp(ctx, ip)
	if err != nil {
		a.Logger.Debug().Err(err).Str("ip", ip).Msg("arp lookup failed")
		return "", false
	}
	return parseArpOutput(string(out))
}

// parseProcARP scans a Linux /proc/net/arp table for ip. Incomplete entries
// (flags 0x0 or an all-zero address) are skipped.
func parseProcARP(r io.Reader, ip string) (string, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != ip {
			continue
		}
		if fields[2] == "0x0" {
			continue
		}
		mac, ok := NormalizeMAC(fields[3])
		if !ok || mac == "00:00:00:00:00:00" {
			continue
		}
		return mac, true
	}
	return "", false
}

// parseArpOutput extracts the first MAC from `arp -n` output on Linux or
// macOS. macOS prints octets without leading zeros.
func parseArpOutput(out string) (string, bool) {
	m := macRe.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return NormalizeMAC(m[1])
}

// NormalizeMAC upper-cases mac and pads every octet to two digits.
func NormalizeMAC(mac string) (string, bool) {
	parts := strings.FieldsFunc(mac, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) != 6 {
		return "", false
	}
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return "", false
		}
		if len(p) == 1 {
			p = "0" + p
		}
		parts[i] = strings.ToUpper(p)
	}
	out := strings.Join(parts, ":")
	if !macRe.MatchString(out) {
		return "", false
	}
	return out, true
}
