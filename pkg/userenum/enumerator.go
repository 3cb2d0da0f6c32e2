// Package userenum looks for account names exposed by SMB, SSH, RDP and
// HTTP services on a single host. Only read-only, unauthenticated probes are
// used, and SSH/RDP hits mean the service is reachable, not that the account
// exists.
package userenum

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/types"
)

// PortChecker reports whether a TCP port accepts connections.
type PortChecker interface {
	IsOpen(ctx context.Context, host string, port int, timeout time.Duration) bool
}

// Source labels.
const (
	SourceSMB = "SMB"
	SourceSSH = "SSH"
	SourceRDP = "RDP"
)

// Method descriptions attached to candidates.
const (
	MethodSMBEnumeration = "SMB enumeration"
	MethodSMBExists      = "User exists (authentication attempted)"
	MethodSSHAvailable   = "SSH service available (user existence uncertain)"
	MethodRDPAvailable   = "RDP service available (user existence uncertain)"
)

var (
	// SSHUsers are tried when port 22 is open.
	SSHUsers = []string{"admin", "root", "administrator", "guest", "user", "test", "demo", "pi", "ubuntu", "debian"}
	// RDPUsers are tried when port 3389 is open.
	RDPUsers = []string{"Administrator", "admin", "guest", "user"}
)

// Enumerator runs the probe families against one host.
type Enumerator struct {
	Ports PortChecker
	SMB   SmbClient
	HTTP  *http.Client

	CheckTimeout time.Duration
	SSHTimeout   time.Duration

	// ReadWait bounds each read during the SSH exchange.
	ReadWait time.Duration

	SMBPorts  []int
	SSHPort   int
	RDPPort   int
	HTTPPorts []int

	// TLSPorts are the HTTPPorts spoken over HTTPS.
	TLSPorts []int

	Logger zerolog.Logger
}

// New returns an Enumerator with the standard port layout.
func New(ports PortChecker, smb SmbClient, checkTimeout, sshTimeout, httpTimeout time.Duration, logger zerolog.Logger) *Enumerator {
	return &Enumerator{
		Ports:        ports,
		SMB:          smb,
		HTTP:         NewHTTPClient(httpTimeout),
		CheckTimeout: checkTimeout,
		SSHTimeout:   sshTimeout,
		ReadWait:     time.Second,
		SMBPorts:     []int{445, 139},
		SSHPort:      22,
		RDPPort:      3389,
		HTTPPorts:    []int{80, 443, 8080, 8443},
		TLSPorts:     []int{443, 8443},
		Logger:       logger,
	}
}

// NewHTTPClient returns a client that skips certificate verification and
// does not follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // recon against self-signed devices
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *Enumerator) open(ctx context.Context, host string, port int) bool {
	if e.Ports == nil {
		return false
	}
	return e.Ports.IsOpen(ctx, host, port, e.CheckTimeout)
}

func (e *Enumerator) smbAvailable(ctx context.Context, host string) bool {
	return slices.ContainsFunc(e.SMBPorts, func(p int) bool { return e.open(ctx, host, p) })
}

// Enumerate runs every probe family and returns the candidates found,
// deduplicated by username. It never fails; probe errors are logged.
func (e *Enumerator) Enumerate(ctx context.Context, host string) []types.UserCandidate {
	var users []types.UserCandidate
	users = append(users, e.enumerateSMB(ctx, host)...)
	users = append(users, e.enumerateSSH(ctx, host)...)
	users = append(users, e.enumerateRDP(ctx, host)...)
	users = append(users, e.enumerateHTTP(ctx, host)...)

	users = types.DedupUsers(users)
	e.Logger.Debug().Str("host", host).Int("users", len(users)).Msg("enumeration complete")
	return users
}

// Search checks each probe family for one username.
func (e *Enumerator) Search(ctx context.Context, host, username string) types.SearchResult {
	res := types.SearchResult{Host: host, Username: username, Sources: []string{}}

	add := func(source, details string) {
		res.Found = true
		res.Sources = append(res.Sources, fmt.Sprintf("%s (%s)", source, details))
	}

	if e.smbAvailable(ctx, host) {
		if ok, details := e.checkSMBUser(ctx, host, username); ok {
			add(SourceSMB, details)
		}
	}
	if e.open(ctx, host, e.SSHPort) {
		if ok, details := e.checkSSH(ctx, host); ok {
			add(SourceSSH, details)
		}
	}
	if e.open(ctx, host, e.RDPPort) {
		add(SourceRDP, MethodRDPAvailable)
	}
	if ok, details := e.checkHTTPUser(ctx, host, username); ok {
		add("HTTP", details)
	}
	return res
}

func (e *Enumerator) enumerateSMB(ctx context.Context, host string) []types.UserCandidate {
	if e.SMB == nil || !e.smbAvailable(ctx, host) {
		return nil
	}
	names, err := e.SMB.ListUsers(ctx, host)
	if err != nil {
		e.Logger.Debug().Err(err).Str("host", host).Msg("smb listing failed")
		return nil
	}
	users := make([]types.UserCandidate, 0, len(names))
	for _, n := range names {
		users = append(users, types.UserCandidate{Username: n, Source: SourceSMB, Method: MethodSMBEnumeration})
	}
	return users
}

func (e *Enumerator) checkSMBUser(ctx context.Context, host, username string) (bool, string) {
	if e.SMB == nil {
		return false, ""
	}
	status, err := e.SMB.CheckUser(ctx, host, username)
	if err != nil {
		e.Logger.Debug().Err(err).Str("host", host).Str("user", username).Msg("smb user check failed")
		return false, ""
	}
	return status == SMBUserExists, MethodSMBExists
}

func (e *Enumerator) enumerateSSH(ctx context.Context, host string) []types.UserCandidate {
	if !e.open(ctx, host, e.SSHPort) {
		return nil
	}
	var users []types.UserCandidate
	for _, name := range SSHUsers {
		if ctx.Err() != nil {
			break
		}
		if ok, details := e.checkSSH(ctx, host); ok {
			users = append(users, types.UserCandidate{Username: name, Source: SourceSSH, Method: details})
		}
	}
	return users
}

func (e *Enumerator) enumerateRDP(ctx context.Context, host string) []types.UserCandidate {
	if !e.open(ctx, host, e.RDPPort) {
		return nil
	}
	var users []types.UserCandidate
	for _, name := range RDPUsers {
		// Reachability is re-checked per name.
		if e.open(ctx, host, e.RDPPort) {
			users = append(users, types.UserCandidate{Username: name, Source: SourceRDP, Method: MethodRDPAvailable})
		}
	}
	return users
}
