package discovery

import (
	"errors"
	"net"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInterfaces struct {
	addrs []IfaceAddr
	err   error
}

func (f fakeInterfaces) Addrs() ([]IfaceAddr, error) { return f.addrs, f.err }

func v4(name, cidr string, loopback bool) IfaceAddr {
	p := netip.MustParsePrefix(cidr)
	return IfaceAddr{
		Name:     name,
		Loopback: loopback,
		Prefix:   p,
		Mask:     net.CIDRMask(p.Bits(), 32),
	}
}

func TestDetectLocalNetwork(t *testing.T) {
	t.Run("first non-loopback ipv4", func(t *testing.T) {
		src := fakeInterfaces{addrs: []IfaceAddr{
			v4("lo", "127.0.0.1/8", true),
			{Name: "eth0", Prefix: netip.MustParsePrefix("fe80::1/64"), Mask: net.CIDRMask(64, 128)},
			v4("eth0", "192.168.1.37/24", false),
			v4("wlan0", "10.0.0.5/16", false),
		}}

		got, err := DetectLocalNetwork(src)
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.0/24", got.String())
	})

	t.Run("mask bits become prefix", func(t *testing.T) {
		got, err := DetectLocalNetwork(fakeInterfaces{addrs: []IfaceAddr{v4("en0", "172.16.5.9/20", false)}})
		require.NoError(t, err)
		assert.Equal(t, "172.16.0.0/20", got.String())
	})

	t.Run("lo-prefixed names are skipped", func(t *testing.T) {
		_, err := DetectLocalNetwork(fakeInterfaces{addrs: []IfaceAddr{v4("lo0", "10.9.9.9/24", false)}})
		assert.ErrorIs(t, err, ErrNoNetworkDetected)
	})

	t.Run("missing netmask", func(t *testing.T) {
		a := v4("eth0", "192.168.1.37/24", false)
		a.Mask = nil
		_, err := DetectLocalNetwork(fakeInterfaces{addrs: []IfaceAddr{a}})
		assert.ErrorIs(t, err, ErrNoNetworkDetected)
	})

	t.Run("only loopback", func(t *testing.T) {
		_, err := DetectLocalNetwork(fakeInterfaces{addrs: []IfaceAddr{v4("lo", "127.0.0.1/8", true)}})
		assert.ErrorIs(t, err, ErrNoNetworkDetected)
	})

	t.Run("interface error", func(t *testing.T) {
		_, err := DetectLocalNetwork(fakeInterfaces{err: errors.New("permission denied")})
		assert.ErrorIs(t, err, ErrNoNetworkDetected)
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestListInterfaces(t *testing.T) {
	src := fakeInterfaces{addrs: []IfaceAddr{
		v4("eth0", "192.168.1.37/24", false),
		{Name: "eth0", Prefix: netip.MustParsePrefix("fe80::1/64"), Mask: net.CIDRMask(64, 128)},
		{Name: "tun0", Prefix: netip.MustParsePrefix("10.8.0.2/32")},
	}}

	got, err := ListInterfaces(src)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "IPv4", got[0].Family)
	assert.Equal(t, "192.168.1.37", got[0].IP)
	assert.Equal(t, "255.255.255.0", got[0].Netmask)

	assert.Equal(t, "IPv6", got[1].Family)
	assert.Equal(t, "ffff:ffff:ffff:ffff::", got[1].Netmask)

	assert.Empty(t, got[2].Netmask)
}

func TestParseRouteTable(t *testing.T) {
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
eth0	0000A8C0	00000000	0001	0	0	100	00FFFFFF	0	0	0
eth0	00000000	0101A8C0	0003	0	0	100	00000000	0	0	0
`
	gw, ok := parseRouteTable(strings.NewReader(table))
	require.True(t, ok)
	assert.Equal(t, "192.168.1.1", gw.String())

	_, ok = parseRouteTable(strings.NewReader("Iface\tDestination\tGateway\n"))
	assert.False(t, ok)
}
