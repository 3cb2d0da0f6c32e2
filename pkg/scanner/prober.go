// Package scanner probes TCP ports on a single host.
package scanner

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/types"
)

const (
	// DefaultProbeTimeout bounds a single port probe.
	DefaultProbeTimeout = 2 * time.Second
	// DefaultCheckTimeout bounds a service availability check.
	DefaultCheckTimeout = 1 * time.Second
	// DefaultBannerWait is how long a banner read waits for data.
	DefaultBannerWait = 300 * time.Millisecond
	// DefaultBannerSize caps the banner bytes read.
	DefaultBannerSize = 1024
)

// Dialer abstracts net.Dialer for tests.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober performs TCP connect probes with an optional banner read.
type Prober struct {
	Dialer     Dialer
	BannerWait time.Duration
	BannerSize int
	Logger     zerolog.Logger
}

// NewProber returns a Prober with default banner settings.
func NewProber(logger zerolog.Logger) *Prober {
	return &Prober{
		Dialer:     &net.Dialer{},
		BannerWait: DefaultBannerWait,
		BannerSize: DefaultBannerSize,
		Logger:     logger,
	}
}

func (p *Prober) dial(ctx context.Context, host string, port int, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := p.Dialer
	if d == nil {
		d = &net.Dialer{}
	}
	return d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// Probe connects to host:port within timeout. On success the port is open,
// the well-known service name is attached, and for banner ports a single
// short read is attempted. Any failure yields a closed result.
func (p *Prober) Probe(ctx context.Context, host string, port int, timeout time.Duration) types.PortResult {
	result := types.PortResult{Port: port}

	conn, err := p.dial(ctx, host, port, timeout)
	if err != nil {
		p.Logger.Debug().Err(err).Str("host", host).Int("port", port).Msg("probe failed")
		return result
	}
	defer func() {
		if err := conn.Close(); err != nil {
			p.Logger.Debug().Err(err).Str("host", host).Int("port", port).Msg("error closing connection")
		}
	}()

	result.Open = true
	if name, ok := ServiceName(port); ok {
		result.Service = name
	}

	if WantsBanner(port) {
		if banner := p.readBanner(conn); len(banner) > 0 {
			result.Banner = banner
			result.Version = InferVersion(banner)
		}
	}
	return result
}

// readBanner does one bounded read. Timeouts and EOF just mean no banner.
func (p *Prober) readBanner(conn net.Conn) []byte {
	wait := p.BannerWait
	if wait <= 0 {
		wait = DefaultBannerWait
	}
	size := p.BannerSize
	if size <= 0 {
		size = DefaultBannerSize
	}

	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return nil
	}
	buf := make([]byte, size)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return nil
	}
	return buf[:n]
}

// IsOpen reports whether a TCP connection to host:port succeeds within
// timeout. It satisfies the user enumerator's port checker.
func (p *Prober) IsOpen(ctx context.Context, host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	conn, err := p.dial(ctx, host, port, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
