package discovery

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAddrResolver map[string]string

func (r staticAddrResolver) LookupIPv4(_ context.Context, host string) (netip.Addr, error) {
	if s, ok := r[host]; ok {
		return netip.MustParseAddr(s), nil
	}
	return netip.Addr{}, errors.New("no such host")
}

func TestParseTarget(t *testing.T) {
	resolver := staticAddrResolver{"router.lan": "192.168.1.1"}

	tests := []struct {
		name       string
		input      string
		wantBase   string
		wantPrefix int
		wantErr    bool
	}{
		{name: "cidr", input: "192.168.1.0/24", wantBase: "192.168.1.0", wantPrefix: 24},
		{name: "no prefix defaults to 24", input: "10.0.0.5", wantBase: "10.0.0.5", wantPrefix: 24},
		{name: "slash 30", input: "192.168.1.0/30", wantBase: "192.168.1.0", wantPrefix: 30},
		{name: "slash 0", input: "10.0.0.0/0", wantBase: "10.0.0.0", wantPrefix: 0},
		{name: "hostname", input: "router.lan", wantBase: "192.168.1.1", wantPrefix: 24},
		{name: "hostname with prefix", input: "router.lan/28", wantBase: "192.168.1.1", wantPrefix: 28},
		{name: "unknown hostname", input: "nope.lan", wantErr: true},
		{name: "non numeric prefix", input: "10.0.0.0/abc", wantErr: true},
		{name: "prefix too large", input: "10.0.0.0/33", wantErr: true},
		{name: "negative prefix", input: "10.0.0.0/-1", wantErr: true},
		{name: "ipv6", input: "fe80::1/64", wantErr: true},
		{name: "empty", input: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(context.Background(), tt.input, resolver)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, got.Base.String())
			assert.Equal(t, tt.wantPrefix, got.Prefix)
		})
	}
}

func TestParseTarget_NilResolverRejectsNames(t *testing.T) {
	_, err := ParseTarget(context.Background(), "router.lan", nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestTarget_ScanCount(t *testing.T) {
	tests := []struct {
		prefix int
		want   int
	}{
		{0, 256},
		{16, 256},
		{23, 256},
		{24, 254},
		{25, 126},
		{28, 14},
		{30, 2},
		{31, 0},
		{32, 0},
	}
	for _, tt := range tests {
		target := Target{Base: netip.MustParseAddr("10.0.0.0"), Prefix: tt.prefix}
		assert.Equal(t, tt.want, target.ScanCount(), "prefix %d", tt.prefix)
	}
}

func TestTarget_ScanCountHonoursMaxHosts(t *testing.T) {
	target := Target{Base: netip.MustParseAddr("10.0.0.0"), Prefix: 24, MaxHosts: 16}
	assert.Equal(t, 16, target.ScanCount())
}

func TestTarget_MaxHostsCannotExceedCap(t *testing.T) {
	target := Target{Base: netip.MustParseAddr("10.0.0.0"), Prefix: 16, MaxHosts: 1000}
	assert.Equal(t, MaxScanHosts, target.ScanCount())

	seen := make(map[netip.Addr]struct{})
	for _, a := range target.Candidates() {
		seen[a] = struct{}{}
	}
	assert.Len(t, seen, len(target.Candidates()), "candidates must not repeat")
}

func TestTarget_Candidates(t *testing.T) {
	t.Run("slash 30", func(t *testing.T) {
		target := Target{Base: netip.MustParseAddr("192.168.1.0"), Prefix: 30}
		assert.Equal(t, []netip.Addr{
			netip.MustParseAddr("192.168.1.1"),
			netip.MustParseAddr("192.168.1.2"),
		}, target.Candidates())
	})

	t.Run("slash 24 covers .1 to .254", func(t *testing.T) {
		target := Target{Base: netip.MustParseAddr("192.168.1.0"), Prefix: 24}
		got := target.Candidates()
		require.Len(t, got, 254)
		assert.Equal(t, "192.168.1.1", got[0].String())
		assert.Equal(t, "192.168.1.254", got[253].String())
	})

	t.Run("last octet wraps within the /24", func(t *testing.T) {
		target := Target{Base: netip.MustParseAddr("10.0.0.250"), Prefix: 29}
		var got []string
		for _, a := range target.Candidates() {
			got = append(got, a.String())
		}
		assert.Equal(t, []string{"10.0.0.251", "10.0.0.252", "10.0.0.253", "10.0.0.254", "10.0.0.255", "10.0.0.0"}, got)
	})

	t.Run("wide prefix stays on base /24", func(t *testing.T) {
		target := Target{Base: netip.MustParseAddr("10.1.2.0"), Prefix: 16}
		got := target.Candidates()
		require.Len(t, got, 256)
		assert.Equal(t, "10.1.2.1", got[0].String())
		assert.Equal(t, "10.1.2.0", got[255].String())
	})

	t.Run("no candidates for host routes", func(t *testing.T) {
		target := Target{Base: netip.MustParseAddr("10.0.0.1"), Prefix: 32}
		assert.Empty(t, target.Candidates())
	})
}

func TestTarget_String(t *testing.T) {
	target := Target{Base: netip.MustParseAddr("172.16.0.0"), Prefix: 20}
	assert.Equal(t, "172.16.0.0/20", target.String())
}
