// Package engine wires the discovery, port scanning, fingerprinting and user
// enumeration components behind one facade used by the CLI.
package engine

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/config"
	"github.com/bshnet/bsh/pkg/discovery"
	"github.com/bshnet/bsh/pkg/fingerprint"
	"github.com/bshnet/bsh/pkg/scanner"
	"github.com/bshnet/bsh/pkg/types"
	"github.com/bshnet/bsh/pkg/userenum"
)

// Reachability methods reported by Lookup.
const (
	MethodPortOpen   = "port 80 open"
	MethodPing       = "responds to ping"
	MethodNoResponse = "no ping response"
)

// DiscoveryReport is the outcome of one range sweep.
type DiscoveryReport struct {
	RunID      string             `json:"run_id" yaml:"run_id"`
	Target     string             `json:"target" yaml:"target"`
	Candidates int                `json:"candidates" yaml:"candidates"`
	StartedAt  time.Time          `json:"started_at" yaml:"started_at"`
	Duration   time.Duration      `json:"duration" yaml:"duration"`
	Hosts      []types.HostRecord `json:"hosts" yaml:"hosts"`
}

// DeviceReport is a device profile with the users enumerated on it.
type DeviceReport struct {
	types.HostRecord `yaml:",inline"`
	Users            []types.UserCandidate `json:"users,omitempty" yaml:"users,omitempty"`
}

// Engine runs scans against a fixed set of providers.
type Engine struct {
	cfg    config.ScanConfig
	logger zerolog.Logger

	liveness   discovery.LivenessChecker
	ping       discovery.LivenessChecker
	resolver   Resolver
	arp        discovery.ArpResolver
	interfaces discovery.InterfaceSource
	ttl        fingerprint.TTLProber
	smb        userenum.SmbClient
	dialer     scanner.Dialer
	progress   ProgressSink

	// hostname and gateway are replaced in tests.
	hostname func() (string, error)
	gateway  func() (string, bool)

	prober      *scanner.Prober
	ports       *scanner.Scanner
	ranges      *discovery.RangeScanner
	classifier  *fingerprint.Fingerprinter
	enumerator  *userenum.Enumerator
	lookupAddrs func(ctx context.Context, host string) ([]string, error)
}

// New builds an Engine from cfg. Providers not overridden by opts use the
// production implementations.
func New(cfg config.ScanConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var icmp *discovery.ICMPChecker
	if e.ping == nil || e.ttl == nil || e.liveness == nil {
		icmp = discovery.NewICMPChecker(cfg.PingTimeout, cfg.PrivilegedPing, e.component("icmp"))
	}
	if e.ping == nil {
		e.ping = icmp
	}
	if e.ttl == nil {
		e.ttl = icmp
	}
	if e.liveness == nil {
		e.liveness = discovery.FallbackChecker{
			icmp,
			&discovery.TCPChecker{
				Ports:   append([]int(nil), cfg.TCPFallbackPorts...),
				Timeout: cfg.PingTimeout,
				Logger:  e.component("tcp-liveness"),
			},
		}
	}
	if e.resolver == nil {
		e.resolver = discovery.NewDNSResolver(cfg.DNSCacheSize, cfg.CheckTimeout, e.component("dns"))
	}
	if e.arp == nil {
		e.arp = discovery.NewARPTable(cfg.ToolTimeout, e.component("arp"))
	}
	if e.interfaces == nil {
		e.interfaces = discovery.SystemInterfaces{}
	}
	if e.smb == nil {
		e.smb = userenum.NewSmbclient(cfg.SMBClient, cfg.ToolTimeout)
	}
	if e.hostname == nil {
		e.hostname = os.Hostname
	}
	if e.gateway == nil {
		e.gateway = func() (string, bool) {
			gw, ok := discovery.DefaultGateway()
			if !ok {
				return "", false
			}
			return gw.String(), true
		}
	}
	if e.lookupAddrs == nil {
		e.lookupAddrs = net.DefaultResolver.LookupHost
	}

	e.prober = scanner.NewProber(e.component("prober"))
	if e.dialer != nil {
		e.prober.Dialer = e.dialer
	}
	if cfg.BannerWait > 0 {
		e.prober.BannerWait = cfg.BannerWait
	}
	if cfg.BannerSize > 0 {
		e.prober.BannerSize = cfg.BannerSize
	}

	e.ports = scanner.NewScanner(e.prober, cfg.ProbeTimeout, e.component("scanner"))
	e.ports.OnResult = func(r types.PortResult) {
		status := "closed"
		if r.Open {
			status = "open"
		}
		e.emit(ProgressEvent{Phase: PhasePorts, Port: r.Port, Status: status, Message: r.Service})
	}

	e.ranges = &discovery.RangeScanner{
		Liveness:   e.liveness,
		Hostnames:  e.resolver,
		ARP:        e.arp,
		Interfaces: e.interfaces,
		Resolver:   e.resolver,
		BatchSize:  cfg.BatchSize,
		MaxHosts:   cfg.MaxHosts,
		Logger:     e.component("discovery"),
		OnHost: func(h types.HostRecord) {
			e.emit(ProgressEvent{Phase: PhaseDiscover, Host: h.IP, Status: "alive", Message: h.Hostname})
		},
	}

	e.classifier = &fingerprint.Fingerprinter{TTL: e.ttl, Logger: e.component("fingerprint")}
	e.enumerator = userenum.New(e.prober, e.smb, cfg.CheckTimeout, cfg.SSHTimeout, cfg.HTTPTimeout, e.component("userenum"))

	return e
}

func (e *Engine) component(name string) zerolog.Logger {
	return e.logger.With().Str("component", name).Logger()
}

// Discover sweeps rangeArg for live hosts. An empty rangeArg or "local"
// sweeps the detected local network. A cancelled ctx returns the hosts found
// so far alongside the context error.
func (e *Engine) Discover(ctx context.Context, rangeArg string) (*DiscoveryReport, error) {
	target, err := e.ranges.Resolve(ctx, rangeArg)
	if err != nil {
		return nil, WithErrorCode(fmt.Errorf("resolve range %q: %w", rangeArg, err), codeFor(err))
	}

	report := &DiscoveryReport{
		RunID:      uuid.NewString(),
		Target:     target.String(),
		Candidates: target.ScanCount(),
		StartedAt:  time.Now(),
	}
	e.logger.Info().
		Str("run_id", report.RunID).
		Str("target", report.Target).
		Int("candidates", report.Candidates).
		Msg("Starting network sweep")
	e.emit(ProgressEvent{Phase: PhaseDiscover, Status: "start", Message: report.Target})

	hosts, err := e.ranges.Scan(ctx, target)
	report.Hosts = hosts
	if report.Hosts == nil {
		report.Hosts = []types.HostRecord{}
	}
	report.Duration = time.Since(report.StartedAt)

	e.emit(ProgressEvent{Phase: PhaseDiscover, Status: statusFromError(err), Message: fmt.Sprintf("hosts=%d", len(report.Hosts))})
	if err != nil {
		return report, fmt.Errorf("sweep %s: %w", report.Target, err)
	}
	return report, nil
}

// ScanPorts probes ports on host, or DefaultPorts when ports is empty.
func (e *Engine) ScanPorts(ctx context.Context, host string, ports []int) types.PortScan {
	if len(ports) == 0 {
		ports = append([]int(nil), scanner.DefaultPorts...)
	}
	e.emit(ProgressEvent{Phase: PhasePorts, Host: host, Status: "start"})
	scan := e.ports.Scan(ctx, host, ports)
	e.emit(ProgressEvent{Phase: PhasePorts, Host: host, Status: statusFromError(ctx.Err())})
	return scan
}

// Device gathers everything known about one host: hostname, MAC and
// vendor, open device ports with banners, device type and OS guess.
func (e *Engine) Device(ctx context.Context, ip string) types.HostRecord {
	rec := types.HostRecord{IP: ip}
	if name, ok := e.resolver.LookupHostname(ctx, ip); ok {
		rec.Hostname = name
	}
	if mac, ok := e.arp.LookupMAC(ctx, ip); ok {
		rec.MAC = mac
	}

	e.emit(ProgressEvent{Phase: PhaseDevice, Host: ip, Status: "start"})
	rec.ApplyScan(e.ports.Scan(ctx, ip, append([]int(nil), scanner.DevicePorts...)))
	e.classifier.Classify(ctx, &rec)
	e.emit(ProgressEvent{Phase: PhaseDevice, Host: ip, Status: statusFromError(ctx.Err()), Message: rec.DeviceType})
	return rec
}

// DeviceWithUsers runs Device and, when any port is open, Users.
func (e *Engine) DeviceWithUsers(ctx context.Context, ip string) DeviceReport {
	rep := DeviceReport{HostRecord: e.Device(ctx, ip)}
	if len(rep.OpenPorts) > 0 {
		rep.Users = e.Users(ctx, ip)
	}
	return rep
}

// Users lists candidate usernames on ip.
func (e *Engine) Users(ctx context.Context, ip string) []types.UserCandidate {
	e.emit(ProgressEvent{Phase: PhaseUsers, Host: ip, Status: "start"})
	users := e.enumerator.Enumerate(ctx, ip)
	e.emit(ProgressEvent{Phase: PhaseUsers, Host: ip, Status: statusFromError(ctx.Err()), Message: fmt.Sprintf("users=%d", len(users))})
	return users
}

// Search checks whether username exists on ip.
func (e *Engine) Search(ctx context.Context, ip, username string) types.SearchResult {
	e.emit(ProgressEvent{Phase: PhaseSearch, Host: ip, Status: "start", Message: username})
	res := e.enumerator.Search(ctx, ip, username)
	e.emit(ProgressEvent{Phase: PhaseSearch, Host: ip, Status: statusFromError(ctx.Err()), Message: username})
	return res
}

// Interfaces lists every address bound to a local interface.
func (e *Engine) Interfaces() ([]types.InterfaceInfo, error) {
	ifaces, err := discovery.ListInterfaces(e.interfaces)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	return ifaces, nil
}

// Local describes this machine: hostname, FQDN, default gateway and
// interface addresses.
func (e *Engine) Local(ctx context.Context) (types.LocalInfo, error) {
	ifaces, err := e.Interfaces()
	if err != nil {
		return types.LocalInfo{}, err
	}
	info := types.LocalInfo{Interfaces: ifaces}

	if name, err := e.hostname(); err == nil {
		info.Hostname = name
		if fqdn := e.fqdn(ctx, name); fqdn != name {
			info.FQDN = fqdn
		}
	} else {
		e.logger.Debug().Err(err).Msg("hostname unavailable")
	}
	if gw, ok := e.gateway(); ok {
		info.Gateway = gw
	}
	return info, nil
}

// fqdn resolves name and returns the PTR name of its first IPv4 address.
func (e *Engine) fqdn(ctx context.Context, name string) string {
	addrs, err := e.lookupAddrs(ctx, name)
	if err != nil {
		return name
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip == nil || ip.To4() == nil {
			continue
		}
		if ptr, ok := e.resolver.LookupHostname(ctx, a); ok {
			return ptr
		}
		break
	}
	return name
}

// Lookup resolves target, reverse-resolves the address and tests
// reachability: TCP port 80 first, then an ICMP echo.
func (e *Engine) Lookup(ctx context.Context, target string) (types.IPInfo, error) {
	target = strings.TrimSpace(target)
	info := types.IPInfo{Target: target}

	addr, err := e.resolver.LookupIPv4(ctx, target)
	if err != nil {
		return info, WithErrorCode(
			fmt.Errorf("%w: could not resolve %s: %w", discovery.ErrInvalidTarget, target, err),
			errorCodeInvalidTarget,
		)
	}
	info.IP = addr.String()

	if name, ok := e.resolver.LookupHostname(ctx, info.IP); ok {
		info.Hostname = name
	}

	switch {
	case e.prober.IsOpen(ctx, info.IP, 80, e.cfg.ProbeTimeout):
		info.Reachable = true
		info.Method = MethodPortOpen
	case e.ping != nil && e.ping.Alive(ctx, info.IP):
		info.Reachable = true
		info.Method = MethodPing
	default:
		info.Method = MethodNoResponse
	}
	return info, nil
}
