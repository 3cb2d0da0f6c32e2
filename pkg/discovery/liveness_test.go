package discovery

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	recv      int
	ttl       int
	block     bool
	runErr    error
	timeout   time.Duration
	count     int
	priv      bool
	onRecv    func(*ping.Packet)
	stopped   chan struct{}
	stopCalls atomic.Int32
}

func newMockPinger() *mockPinger { return &mockPinger{stopped: make(chan struct{})} }

func (m *mockPinger) Run() error {
	if m.block {
		<-m.stopped
		return nil
	}
	if m.recv > 0 && m.onRecv != nil {
		m.onRecv(&ping.Packet{Ttl: m.ttl})
	}
	return m.runErr
}

func (m *mockPinger) Stop() {
	if m.stopCalls.Add(1) == 1 {
		close(m.stopped)
	}
}

func (m *mockPinger) Statistics() *ping.Statistics {
	return &ping.Statistics{PacketsSent: 1, PacketsRecv: m.recv}
}

func (m *mockPinger) SetPrivileged(v bool)            { m.priv = v }
func (m *mockPinger) SetCount(c int)                  { m.count = c }
func (m *mockPinger) SetTimeout(t time.Duration)      { m.timeout = t }
func (m *mockPinger) GetTimeout() time.Duration       { return m.timeout }
func (m *mockPinger) SetOnRecv(fn func(*ping.Packet)) { m.onRecv = fn }

func checkerWith(p *mockPinger, factoryErr error) *ICMPChecker {
	c := NewICMPChecker(100*time.Millisecond, true, zerolog.Nop())
	c.pingerFactory = func(string) (Pinger, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return p, nil
	}
	return c
}

func TestICMPChecker_Alive(t *testing.T) {
	p := newMockPinger()
	p.recv, p.ttl = 1, 64
	c := checkerWith(p, nil)

	assert.True(t, c.Alive(context.Background(), "192.168.1.1"))
	assert.Equal(t, 1, p.count)
	assert.True(t, p.priv)
	assert.Equal(t, 100*time.Millisecond, p.timeout)
}

func TestICMPChecker_NoReply(t *testing.T) {
	p := newMockPinger()
	c := checkerWith(p, nil)

	assert.False(t, c.Alive(context.Background(), "192.168.1.1"))
	_, ok := c.TTL(context.Background(), "192.168.1.1")
	assert.False(t, ok)
}

func TestICMPChecker_FactoryError(t *testing.T) {
	c := checkerWith(nil, errors.New("socket: operation not permitted"))
	assert.False(t, c.Alive(context.Background(), "192.168.1.1"))
}

func TestICMPChecker_TTL(t *testing.T) {
	p := newMockPinger()
	p.recv, p.ttl = 1, 128
	c := checkerWith(p, nil)

	ttl, ok := c.TTL(context.Background(), "192.168.1.1")
	require.True(t, ok)
	assert.Equal(t, 128, ttl)
}

func TestICMPChecker_StopsOnCancel(t *testing.T) {
	p := newMockPinger()
	p.block = true
	c := checkerWith(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan bool)
	go func() { done <- c.Alive(ctx, "192.168.1.1") }()

	select {
	case alive := <-done:
		assert.False(t, alive)
	case <-time.After(2 * time.Second):
		t.Fatal("pinger was not stopped on cancellation")
	}
	assert.GreaterOrEqual(t, p.stopCalls.Load(), int32(1))
}

func TestTCPChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	open := ln.Addr().(*net.TCPAddr).Port

	t.Run("open port", func(t *testing.T) {
		c := &TCPChecker{Ports: []int{open}, Timeout: time.Second}
		assert.True(t, c.Alive(context.Background(), "127.0.0.1"))
	})

	t.Run("refused counts as alive", func(t *testing.T) {
		probe, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		closed := probe.Addr().(*net.TCPAddr).Port
		require.NoError(t, probe.Close())

		c := &TCPChecker{Ports: []int{closed}, Timeout: time.Second}
		assert.True(t, c.Alive(context.Background(), "127.0.0.1"))
	})

	t.Run("no ports", func(t *testing.T) {
		c := &TCPChecker{}
		assert.False(t, c.Alive(context.Background(), "127.0.0.1"))
	})
}

type staticLiveness bool

func (s staticLiveness) Alive(context.Context, string) bool { return bool(s) }

type countingLiveness struct {
	calls atomic.Int32
	alive bool
}

func (c *countingLiveness) Alive(context.Context, string) bool {
	c.calls.Add(1)
	return c.alive
}

func TestFallbackChecker(t *testing.T) {
	second := &countingLiveness{alive: true}
	assert.True(t, FallbackChecker{staticLiveness(false), second}.Alive(context.Background(), "10.0.0.1"))
	assert.Equal(t, int32(1), second.calls.Load())

	skipped := &countingLiveness{alive: true}
	assert.True(t, FallbackChecker{staticLiveness(true), skipped}.Alive(context.Background(), "10.0.0.1"))
	assert.Equal(t, int32(0), skipped.calls.Load())

	assert.False(t, FallbackChecker{staticLiveness(false), nil}.Alive(context.Background(), "10.0.0.1"))
}
