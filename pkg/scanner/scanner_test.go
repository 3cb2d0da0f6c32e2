package scanner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bshnet/bsh/pkg/types"
)

// listen opens a loopback listener that runs handle for every connection.
func listen(t *testing.T, handle func(net.Conn)) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				if handle != nil {
					handle(conn)
				}
			}()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a loopback port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// portDialer redirects every dial to a fixed loopback port so tests can
// exercise well-known port numbers.
type portDialer struct {
	target int
	dialed []string
}

func (d *portDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.dialed = append(d.dialed, address)
	var nd net.Dialer
	return nd.DialContext(ctx, network, net.JoinHostPort("127.0.0.1", strconv.Itoa(d.target)))
}

type failDialer struct{}

func (failDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return nil, errors.New("connection refused")
}

func TestProbe_ClosedPort(t *testing.T) {
	p := NewProber(zerolog.Nop())
	res := p.Probe(context.Background(), "127.0.0.1", closedPort(t), time.Second)

	assert.False(t, res.Open)
	assert.Empty(t, res.Service)
	assert.Empty(t, res.Banner)
}

func TestProbe_OpenPortWithoutBannerRead(t *testing.T) {
	port := listen(t, func(c net.Conn) { _, _ = c.Write([]byte("hello\r\n")) })

	p := NewProber(zerolog.Nop())
	res := p.Probe(context.Background(), "127.0.0.1", port, time.Second)

	assert.True(t, res.Open)
	assert.Equal(t, port, res.Port)
	assert.Nil(t, res.Banner, "ephemeral ports are not banner ports")
}

func TestProbe_SSHBanner(t *testing.T) {
	target := listen(t, func(c net.Conn) {
		_, _ = c.Write([]byte("SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3\r\n"))
		time.Sleep(100 * time.Millisecond)
	})

	d := &portDialer{target: target}
	p := NewProber(zerolog.Nop())
	p.Dialer = d

	res := p.Probe(context.Background(), "192.0.2.10", 22, time.Second)

	require.True(t, res.Open)
	assert.Equal(t, "SSH", res.Service)
	assert.Equal(t, "SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3\r\n", string(res.Banner))
	assert.Equal(t, "OpenSSH_8.9p1", res.Version)
	assert.Equal(t, []string{"192.0.2.10:22"}, d.dialed)
}

func TestProbe_SilentBannerPortIsStillOpen(t *testing.T) {
	target := listen(t, func(c net.Conn) { time.Sleep(500 * time.Millisecond) })

	p := NewProber(zerolog.Nop())
	p.Dialer = &portDialer{target: target}
	p.BannerWait = 50 * time.Millisecond

	start := time.Now()
	res := p.Probe(context.Background(), "192.0.2.10", 80, time.Second)

	assert.True(t, res.Open)
	assert.Equal(t, "HTTP", res.Service)
	assert.Empty(t, res.Banner)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "banner read must not block")
}

func TestProbe_DialFailureIsClosed(t *testing.T) {
	p := NewProber(zerolog.Nop())
	p.Dialer = failDialer{}

	res := p.Probe(context.Background(), "192.0.2.10", 22, time.Second)
	assert.False(t, res.Open)
	assert.Empty(t, res.Service)
}

// hangDialer never connects; it returns only when the context ends.
type hangDialer struct{}

func (hangDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProbe_UnreachableHostReturnsWithinTimeout(t *testing.T) {
	p := NewProber(zerolog.Nop())
	p.Dialer = hangDialer{}

	start := time.Now()
	res := p.Probe(context.Background(), "192.0.2.10", 22, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, res.Open)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestIsOpen_UnreachableHostReturnsWithinTimeout(t *testing.T) {
	p := NewProber(zerolog.Nop())
	p.Dialer = hangDialer{}

	start := time.Now()
	open := p.IsOpen(context.Background(), "192.0.2.10", 445, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, open)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestIsOpen(t *testing.T) {
	p := NewProber(zerolog.Nop())

	assert.True(t, p.IsOpen(context.Background(), "127.0.0.1", listen(t, nil), time.Second))
	assert.False(t, p.IsOpen(context.Background(), "127.0.0.1", closedPort(t), time.Second))
}

func TestScan_OpenPortsKeepInputOrder(t *testing.T) {
	a := listen(t, nil)
	b := listen(t, nil)
	closed := closedPort(t)

	var seen []int
	s := NewScanner(NewProber(zerolog.Nop()), time.Second, zerolog.Nop())
	s.OnResult = func(r types.PortResult) { seen = append(seen, r.Port) }

	scan := s.Scan(context.Background(), "127.0.0.1", []int{b, closed, a})

	assert.Equal(t, "127.0.0.1", scan.Host)
	assert.Equal(t, []int{b, a}, scan.OpenPorts)
	assert.Equal(t, []int{closed}, scan.Closed)
	assert.Len(t, scan.Services, 2)
	assert.True(t, scan.Services[a].Open)
	assert.Equal(t, []int{b, closed, a}, seen)
}

func TestScan_CancelledContextSkipsRemainingPorts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProber(zerolog.Nop())
	p.Dialer = failDialer{}
	s := NewScanner(p, time.Second, zerolog.Nop())

	scan := s.Scan(ctx, "192.0.2.1", []int{22, 80})
	assert.Empty(t, scan.OpenPorts)
	assert.Equal(t, []int{22, 80}, scan.Closed)
}
