package discovery

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog"
)

// LivenessChecker decides whether a host answers on the network.
type LivenessChecker interface {
	Alive(ctx context.Context, ip string) bool
}

// TTLProber reports the IP TTL of an echo reply from ip.
type TTLProber interface {
	TTL(ctx context.Context, ip string) (int, bool)
}

// Pinger is the subset of github.com/go-ping/ping used here.
type Pinger interface {
	Run() error
	Stop()
	Statistics() *ping.Statistics

	SetPrivileged(bool)
	SetCount(int)
	SetTimeout(time.Duration)
	GetTimeout() time.Duration
	SetOnRecv(func(*ping.Packet))
}

type pingerFactoryFunc func(ip string) (Pinger, error)

// ICMPChecker sends a single echo request per call.
type ICMPChecker struct {
	Timeout    time.Duration
	Privileged bool
	Logger     zerolog.Logger

	pingerFactory pingerFactoryFunc
}

// NewICMPChecker returns an ICMPChecker backed by go-ping.
func NewICMPChecker(timeout time.Duration, privileged bool, logger zerolog.Logger) *ICMPChecker {
	return &ICMPChecker{
		Timeout:    timeout,
		Privileged: privileged,
		Logger:     logger,
		pingerFactory: func(ip string) (Pinger, error) {
			p, err := ping.NewPinger(ip)
			if err != nil {
				return nil, err
			}
			return &realPingerAdapter{p: p}, nil
		},
	}
}

// Alive reports whether ip answered one echo request within the timeout.
func (c *ICMPChecker) Alive(ctx context.Context, ip string) bool {
	ok, _ := c.echo(ctx, ip)
	return ok
}

// TTL returns the TTL of the first echo reply from ip.
func (c *ICMPChecker) TTL(ctx context.Context, ip string) (int, bool) {
	ok, ttl := c.echo(ctx, ip)
	if !ok || ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

func (c *ICMPChecker) echo(ctx context.Context, ip string) (bool, int) {
	pinger, err := c.pingerFactory(ip)
	if err != nil {
		c.Logger.Debug().Err(err).Str("ip", ip).Msg("failed to create pinger")
		return false, 0
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	pinger.SetPrivileged(c.Privileged)
	pinger.SetCount(1)
	pinger.SetTimeout(timeout)

	var (
		mu  sync.Mutex
		ttl int
	)
	pinger.SetOnRecv(func(pkt *ping.Packet) {
		mu.Lock()
		if ttl == 0 {
			ttl = pkt.Ttl
		}
		mu.Unlock()
	})

	opCtx, opCancel := context.WithTimeout(ctx, pinger.GetTimeout()+500*time.Millisecond)
	defer opCancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-opCtx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		c.Logger.Debug().Err(err).Str("ip", ip).Msg("ping failed")
	}
	stats := pinger.Statistics()
	if opCtx.Err() != nil || stats == nil || stats.PacketsRecv == 0 {
		return false, 0
	}

	mu.Lock()
	defer mu.Unlock()
	return true, ttl
}

// internal adapter: wraps github.com/go-ping/ping.Pinger to implement our Pinger interface
type realPingerAdapter struct {
	p *ping.Pinger
}

func (r *realPingerAdapter) Run() error                   { return r.p.Run() }
func (r *realPingerAdapter) Stop()                        { r.p.Stop() }
func (r *realPingerAdapter) Statistics() *ping.Statistics { return r.p.Statistics() }

func (r *realPingerAdapter) SetPrivileged(v bool)            { r.p.SetPrivileged(v) }
func (r *realPingerAdapter) SetCount(c int)                  { r.p.Count = c }
func (r *realPingerAdapter) SetTimeout(t time.Duration)      { r.p.Timeout = t }
func (r *realPingerAdapter) GetTimeout() time.Duration       { return r.p.Timeout }
func (r *realPingerAdapter) SetOnRecv(fn func(*ping.Packet)) { r.p.OnRecv = fn }

// TCPChecker treats a host as alive when any of Ports accepts or actively
// refuses a connection. All ports are dialed concurrently.
type TCPChecker struct {
	Ports   []int
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Alive dials every port and returns on the first sign of life.
func (c *TCPChecker) Alive(ctx context.Context, ip string) bool {
	if len(c.Ports) == 0 {
		return false
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan bool, len(c.Ports))
	for _, port := range c.Ports {
		go func(port int) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
			if err == nil {
				_ = conn.Close()
				results <- true
				return
			}
			results <- errors.Is(err, syscall.ECONNREFUSED)
		}(port)
	}

	for range c.Ports {
		if <-results {
			return true
		}
	}
	return false
}

// FallbackChecker asks each checker in turn until one reports the host alive.
type FallbackChecker []LivenessChecker

// Alive implements LivenessChecker.
func (f FallbackChecker) Alive(ctx context.Context, ip string) bool {
	for _, c := range f {
		if ctx.Err() != nil {
			return false
		}
		if c != nil && c.Alive(ctx, ip) {
			return true
		}
	}
	return false
}
