package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// HostnameResolver performs reverse lookups.
type HostnameResolver interface {
	LookupHostname(ctx context.Context, ip string) (string, bool)
}

// Exchanger sends one DNS message. *dns.Client satisfies it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// DNSResolver answers PTR queries against the system name servers, falling
// back to the platform resolver. Answers, including misses, are cached.
type DNSResolver struct {
	Client   Exchanger
	Servers  []string
	Fallback func(ctx context.Context, addr string) ([]string, error)

	// MDNS enables a direct PTR query to the host's port 5353.
	MDNS   bool
	Logger zerolog.Logger

	cache *lru.Cache[string, string]
}

// NewDNSResolver reads /etc/resolv.conf for name servers. A missing file
// leaves only the platform resolver.
func NewDNSResolver(cacheSize int, timeout time.Duration, logger zerolog.Logger) *DNSResolver {
	var servers []string
	if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil {
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	} else {
		logger.Debug().Err(err).Msg("no resolv.conf, using platform resolver only")
	}
	return newDNSResolver(&dns.Client{Net: "udp", Timeout: timeout}, servers, cacheSize, logger)
}

func newDNSResolver(client Exchanger, servers []string, cacheSize int, logger zerolog.Logger) *DNSResolver {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, _ := lru.New[string, string](cacheSize)
	return &DNSResolver{
		Client:   client,
		Servers:  servers,
		Fallback: net.DefaultResolver.LookupAddr,
		MDNS:     true,
		Logger:   logger,
		cache:    cache,
	}
}

// LookupHostname returns the first PTR name for ip without the trailing dot.
// Unicast DNS is asked first, then the host's own mDNS responder when MDNS
// is set, then the platform resolver if DNS itself failed.
func (r *DNSResolver) LookupHostname(ctx context.Context, ip string) (string, bool) {
	if name, ok := r.cache.Get(ip); ok {
		return name, name != ""
	}

	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return "", false
	}

	name, err := r.exchangePTR(ctx, arpa, r.Servers)
	if name == "" && r.MDNS {
		if n, mErr := r.exchangePTR(ctx, arpa, []string{net.JoinHostPort(ip, mdnsPort)}); mErr == nil {
			name = n
		}
	}
	if name == "" && err != nil && r.Fallback != nil {
		r.Logger.Debug().Err(err).Str("ip", ip).Msg("PTR query failed, using platform resolver")
		if names, fErr := r.Fallback(ctx, ip); fErr == nil && len(names) > 0 {
			name = strings.TrimSuffix(names[0], ".")
		}
	}
	if ctx.Err() == nil {
		r.cache.Add(ip, name)
	}
	return name, name != ""
}

const mdnsPort = "5353"

var errNoServers = errors.New("no name servers")

// exchangePTR asks each server in turn. An NXDOMAIN or empty answer is a
// definite miss and stops the walk.
func (r *DNSResolver) exchangePTR(ctx context.Context, arpa string, servers []string) (string, error) {
	if r.Client == nil || len(servers) == 0 {
		return "", errNoServers
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range servers {
		resp, _, err := r.Client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode == dns.RcodeNameError {
			return "", nil
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode])
			continue
		}
		for _, rr := range resp.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				return strings.TrimSuffix(ptr.Ptr, "."), nil
			}
		}
		return "", nil
	}
	return "", lastErr
}

// LookupIPv4 resolves host to its first IPv4 address.
func (r *DNSResolver) LookupIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap(), nil
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		if a = a.Unmap(); a.Is4() {
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no IPv4 address for %s", host)
}
