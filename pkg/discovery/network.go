package discovery

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	"go4.org/netipx"

	"github.com/bshnet/bsh/pkg/types"
)

// IfaceAddr is one address assigned to a network interface.
type IfaceAddr struct {
	Name     string
	Loopback bool
	// Prefix holds the interface address (not masked) and mask length.
	Prefix   netip.Prefix
	// Mask is the raw netmask, nil when the platform reports none.
	Mask     net.IPMask
}

// InterfaceSource lists interface addresses.
type InterfaceSource interface {
	Addrs() ([]IfaceAddr, error)
}

// SystemInterfaces reads addresses from the operating system.
type SystemInterfaces struct{}

// Addrs returns every IPv4 and IPv6 address on every interface.
func (SystemInterfaces) Addrs() ([]IfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	var out []IfaceAddr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			prefix, ok := netipx.FromStdIPNet(ipnet)
			if !ok {
				continue
			}
			out = append(out, IfaceAddr{
				Name:     iface.Name,
				Loopback: iface.Flags&net.FlagLoopback != 0,
				Prefix:   prefix,
				Mask:     ipnet.Mask,
			})
		}
	}
	return out, nil
}

// DetectLocalNetwork returns the network of the first non-loopback IPv4
// interface address that carries a netmask.
func DetectLocalNetwork(src InterfaceSource) (Target, error) {
	if src == nil {
		src = SystemInterfaces{}
	}
	addrs, err := src.Addrs()
	if err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrNoNetworkDetected, err)
	}

	for _, a := range addrs {
		if a.Loopback || strings.HasPrefix(a.Name, "lo") {
			continue
		}
		if !a.Prefix.IsValid() || !a.Prefix.Addr().Is4() || a.Mask == nil {
			continue
		}
		network := a.Prefix.Masked()
		return Target{Base: network.Addr(), Prefix: network.Bits()}, nil
	}
	return Target{}, ErrNoNetworkDetected
}

// ListInterfaces converts interface addresses for display.
func ListInterfaces(src InterfaceSource) ([]types.InterfaceInfo, error) {
	if src == nil {
		src = SystemInterfaces{}
	}
	addrs, err := src.Addrs()
	if err != nil {
		return nil, err
	}

	out := make([]types.InterfaceInfo, 0, len(addrs))
	for _, a := range addrs {
		info := types.InterfaceInfo{
			Name:   a.Name,
			Family: "IPv6",
			IP:     a.Prefix.Addr().String(),
		}
		if a.Prefix.Addr().Is4() {
			info.Family = "IPv4"
		}
		if a.Mask != nil {
			info.Netmask = maskString(a.Mask)
		}
		out = append(out, info)
	}
	return out, nil
}

func maskString(m net.IPMask) string {
	if len(m) == net.IPv4len {
		return net.IP(m).To4().String()
	}
	if len(m) == net.IPv6len {
		return net.IP(m).String()
	}
	return m.String()
}

// DefaultGateway reads the IPv4 default route from /proc/net/route.
func DefaultGateway() (netip.Addr, bool) {
	f, err := os.Open("/proc/net/route")
	if err != nil {
		return netip.Addr{}, false
	}
	defer f.Close()
	return parseRouteTable(f)
}

// parseRouteTable finds the 00000000 destination in a Linux route table.
// Addresses are little-endian hex.
func parseRouteTable(r io.Reader) (netip.Addr, bool) {
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], binary.LittleEndian.Uint32(raw))
		gw := netip.AddrFrom4(b)
		if gw.IsUnspecified() {
			continue
		}
		return gw, true
	}
	return netip.Addr{}, false
}
