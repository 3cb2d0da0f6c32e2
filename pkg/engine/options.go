package engine

import (
	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/discovery"
	"github.com/bshnet/bsh/pkg/fingerprint"
	"github.com/bshnet/bsh/pkg/scanner"
	"github.com/bshnet/bsh/pkg/userenum"
)

// Option is a functional option for configuring an Engine.
//
// Every provider defaults to the production implementation built from the
// ScanConfig passed to New. Options replace individual providers:
//
//	eng := engine.New(cfg,
//	    engine.WithLogger(logger),
//	    engine.WithLiveness(discovery.FallbackChecker{icmp, tcp}),
//	)
type Option func(*Engine)

// Resolver answers both forward and reverse lookups.
type Resolver interface {
	discovery.HostnameResolver
	discovery.AddrResolver
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLiveness replaces the ICMP-then-TCP liveness chain used by Discover.
func WithLiveness(c discovery.LivenessChecker) Option {
	return func(e *Engine) {
		e.liveness = c
	}
}

// WithPing replaces the echo checker Lookup uses when port 80 is closed.
func WithPing(c discovery.LivenessChecker) Option {
	return func(e *Engine) {
		e.ping = c
	}
}

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithARP replaces the neighbour table lookup.
func WithARP(a discovery.ArpResolver) Option {
	return func(e *Engine) {
		e.arp = a
	}
}

// WithInterfaces replaces the local interface listing.
func WithInterfaces(src discovery.InterfaceSource) Option {
	return func(e *Engine) {
		e.interfaces = src
	}
}

// WithTTL replaces the TTL source used for OS guessing.
func WithTTL(t fingerprint.TTLProber) Option {
	return func(e *Engine) {
		e.ttl = t
	}
}

// WithSMB replaces the smbclient wrapper.
func WithSMB(c userenum.SmbClient) Option {
	return func(e *Engine) {
		e.smb = c
	}
}

// WithDialer replaces the TCP dialer used by port probes.
func WithDialer(d scanner.Dialer) Option {
	return func(e *Engine) {
		e.dialer = d
	}
}

// WithProgressSink attaches a sink that receives scan progress events.
func WithProgressSink(sink ProgressSink) Option {
	return func(e *Engine) {
		e.progress = sink
	}
}
