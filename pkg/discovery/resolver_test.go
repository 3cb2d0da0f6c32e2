package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExchanger struct {
	calls   atomic.Int32
	servers []string
	answer  func(q dns.Question) (*dns.Msg, error)
}

func (f *fakeExchanger) ExchangeContext(_ context.Context, m *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
	f.calls.Add(1)
	f.servers = append(f.servers, server)
	resp, err := f.answer(m.Question[0])
	if resp != nil {
		rcode := resp.Rcode
		resp.SetReply(m)
		resp.Rcode = rcode
	}
	return resp, time.Millisecond, err
}

func ptrAnswer(name string) func(dns.Question) (*dns.Msg, error) {
	return func(q dns.Question) (*dns.Msg, error) {
		rr, err := dns.NewRR(q.Name + " 300 IN PTR " + name)
		if err != nil {
			return nil, err
		}
		resp := new(dns.Msg)
		resp.Answer = []dns.RR{rr}
		return resp, nil
	}
}

func TestDNSResolver_PTR(t *testing.T) {
	var asked string
	ex := &fakeExchanger{answer: func(q dns.Question) (*dns.Msg, error) {
		asked = q.Name
		assert.Equal(t, dns.TypePTR, q.Qtype)
		return ptrAnswer("printer.lan.")(q)
	}}
	r := newDNSResolver(ex, []string{"192.0.2.53:53"}, 16, zerolog.Nop())
	r.Fallback = nil
	r.MDNS = false

	name, ok := r.LookupHostname(context.Background(), "192.168.1.20")
	require.True(t, ok)
	assert.Equal(t, "printer.lan", name)
	assert.Equal(t, "20.1.168.192.in-addr.arpa.", asked)
}

func TestDNSResolver_CachesAnswersAndMisses(t *testing.T) {
	ex := &fakeExchanger{answer: func(q dns.Question) (*dns.Msg, error) {
		if q.Name == "1.1.168.192.in-addr.arpa." {
			return ptrAnswer("router.lan.")(q)
		}
		resp := new(dns.Msg)
		resp.Rcode = dns.RcodeNameError
		return resp, nil
	}}
	r := newDNSResolver(ex, []string{"192.0.2.53:53"}, 16, zerolog.Nop())
	r.Fallback = nil
	r.MDNS = false

	for i := 0; i < 3; i++ {
		name, ok := r.LookupHostname(context.Background(), "192.168.1.1")
		assert.True(t, ok)
		assert.Equal(t, "router.lan", name)

		_, ok = r.LookupHostname(context.Background(), "192.168.1.2")
		assert.False(t, ok)
	}
	assert.Equal(t, int32(2), ex.calls.Load())
}

func TestDNSResolver_FallsBackOnTransportError(t *testing.T) {
	ex := &fakeExchanger{answer: func(dns.Question) (*dns.Msg, error) {
		return nil, errors.New("i/o timeout")
	}}
	r := newDNSResolver(ex, []string{"192.0.2.53:53", "192.0.2.54:53"}, 16, zerolog.Nop())
	r.MDNS = false
	r.Fallback = func(context.Context, string) ([]string, error) {
		return []string{"nas.local."}, nil
	}

	name, ok := r.LookupHostname(context.Background(), "10.0.0.9")
	require.True(t, ok)
	assert.Equal(t, "nas.local", name)
	assert.Equal(t, int32(2), ex.calls.Load(), "every server is tried before falling back")
}

func TestDNSResolver_MDNSAfterMiss(t *testing.T) {
	ex := &fakeExchanger{}
	ex.answer = func(q dns.Question) (*dns.Msg, error) {
		if ex.servers[len(ex.servers)-1] == "192.168.1.44:5353" {
			return ptrAnswer("macbook.local.")(q)
		}
		resp := new(dns.Msg)
		resp.Rcode = dns.RcodeNameError
		return resp, nil
	}
	r := newDNSResolver(ex, []string{"192.0.2.53:53"}, 16, zerolog.Nop())
	r.Fallback = nil

	name, ok := r.LookupHostname(context.Background(), "192.168.1.44")
	require.True(t, ok)
	assert.Equal(t, "macbook.local", name)
	assert.Equal(t, []string{"192.0.2.53:53", "192.168.1.44:5353"}, ex.servers)
}

func TestDNSResolver_NoServersUsesFallback(t *testing.T) {
	r := newDNSResolver(nil, nil, 16, zerolog.Nop())
	r.Fallback = func(context.Context, string) ([]string, error) {
		return nil, errors.New("no such host")
	}

	_, ok := r.LookupHostname(context.Background(), "10.0.0.9")
	assert.False(t, ok)
}

func TestDNSResolver_LookupIPv4Literal(t *testing.T) {
	r := newDNSResolver(nil, nil, 16, zerolog.Nop())
	addr, err := r.LookupIPv4(context.Background(), "192.168.1.5")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5", addr.String())
}
