// Package discovery finds live hosts on an IPv4 range and gathers the
// hostname and MAC address of each.
package discovery

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

const (
	// DefaultPrefix is assumed when a range has no "/".
	DefaultPrefix = 24
	// MaxScanHosts caps the number of candidate addresses per range.
	MaxScanHosts = 256
)

// AddrResolver resolves a host name to an IPv4 address.
type AddrResolver interface {
	LookupIPv4(ctx context.Context, host string) (netip.Addr, error)
}

// Target is an IPv4 range in "base/prefix" form. Base is used as given and
// is not masked to the network address.
type Target struct {
	Base     netip.Addr
	Prefix   int
	// MaxHosts lowers MaxScanHosts when positive; larger values are ignored.
	MaxHosts int
}

// ParseTarget parses "a.b.c.d/n", "a.b.c.d" (prefix 24) or "host[/n]".
// Host names are resolved through r; a nil r rejects them.
func ParseTarget(ctx context.Context, s string, r AddrResolver) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty range", ErrInvalidTarget)
	}

	base, prefixStr, hasPrefix := strings.Cut(s, "/")
	prefix := DefaultPrefix
	if hasPrefix {
		p, err := strconv.Atoi(strings.TrimSpace(prefixStr))
		if err != nil || p < 0 || p > 32 {
			return Target{}, fmt.Errorf("%w: bad prefix %q", ErrInvalidTarget, prefixStr)
		}
		prefix = p
	}

	addr, err := netip.ParseAddr(base)
	if err != nil {
		if r == nil {
			return Target{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidTarget, base)
		}
		addr, err = r.LookupIPv4(ctx, base)
		if err != nil {
			return Target{}, fmt.Errorf("%w: resolve %q: %w", ErrInvalidTarget, base, err)
		}
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return Target{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidTarget, base)
	}

	return Target{Base: addr, Prefix: prefix}, nil
}

// String renders the target as "base/prefix".
func (t Target) String() string {
	return fmt.Sprintf("%s/%d", t.Base, t.Prefix)
}

// ScanCount returns min(2^(32-prefix)-2, max hosts), never below zero.
func (t Target) ScanCount() int {
	limit := t.MaxHosts
	if limit <= 0 || limit > MaxScanHosts {
		limit = MaxScanHosts
	}
	if t.Prefix < 0 || t.Prefix >= 31 {
		return 0
	}
	hosts := (uint64(1) << uint(32-t.Prefix)) - 2
	if hosts > uint64(limit) {
		return limit
	}
	return int(hosts)
}

// Candidates returns the addresses probed for t: the base with its last
// octet advanced by 1..ScanCount modulo 256. The upper octets never change,
// so a large count wraps within the base's /24.
func (t Target) Candidates() []netip.Addr {
	n := t.ScanCount()
	out := make([]netip.Addr, 0, n)
	b := t.Base.As4()
	for i := 1; i <= n; i++ {
		ip := b
		ip[3] = byte((int(b[3]) + i) % 256)
		out = append(out, netip.AddrFrom4(ip))
	}
	return out
}
