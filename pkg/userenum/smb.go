package userenum

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// SMBStatus is the outcome of a single-user SMB check.
type SMBStatus int

const (
	// SMBUnknown means the server gave no usable answer.
	SMBUnknown SMBStatus = iota
	// SMBUserExists means the server rejected the credentials for a known account.
	SMBUserExists
	// SMBNoSuchUser means the server reported the account does not exist.
	SMBNoSuchUser
)

// SmbClient lists and checks users over SMB null sessions.
type SmbClient interface {
	ListUsers(ctx context.Context, host string) ([]string, error)
	CheckUser(ctx context.Context, host, username string) (SMBStatus, error)
}

const maxSMBLines = 20

var (
	smbUserLineRe   = regexp.MustCompile(`(?i)(\w+)\s+.*user`)
	smbExistsRe     = regexp.MustCompile(`(?i)NT_STATUS_(LOGON_FAILURE|ACCOUNT_LOCKED_OUT)`)
	smbNoSuchUserRe = regexp.MustCompile(`(?i)NT_STATUS_NO_SUCH_USER`)
)

// Smbclient shells out to the Samba smbclient binary.
type Smbclient struct {
	Path    string
	Timeout time.Duration

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSmbclient returns a client using the binary at path ("smbclient" if empty).
func NewSmbclient(path string, timeout time.Duration) *Smbclient {
	if path == "" {
		path = "smbclient"
	}
	return &Smbclient{
		Path:     path,
		Timeout:  timeout,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

func (c *Smbclient) invoke(ctx context.Context, args ...string) (string, error) {
	bin, err := c.lookPath(c.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolUnavailable, c.Path, err)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := c.run(ctx, bin, args...)
	// smbclient exits non-zero on most NT_STATUS replies; the output is
	// what matters.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return string(out), err
	}
	return string(out), nil
}

// ListUsers runs `smbclient -L host -N` and returns the first word of each
// output line mentioning "user".
func (c *Smbclient) ListUsers(ctx context.Context, host string) ([]string, error) {
	out, err := c.invoke(ctx, "-L", host, "-N")
	if err != nil {
		return nil, err
	}
	return parseShareListing(out), nil
}

// CheckUser attempts an IPC$ connection as username with no password and
// interprets the NT status in the reply.
func (c *Smbclient) CheckUser(ctx context.Context, host, username string) (SMBStatus, error) {
	out, err := c.invoke(ctx, `\\`+host+`\IPC$`, "-U", username, "-N", "-c", "exit")
	if err != nil {
		return SMBUnknown, err
	}
	return parseCheckOutput(out), nil
}

func parseShareListing(out string) []string {
	var users []string
	lines := 0
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(strings.ToLower(line), "user") {
			continue
		}
		if lines++; lines > maxSMBLines {
			break
		}
		if m := smbUserLineRe.FindStringSubmatch(line); m != nil {
			users = append(users, m[1])
		}
	}
	return users
}

func parseCheckOutput(out string) SMBStatus {
	switch {
	case smbExistsRe.MatchString(out):
		return SMBUserExists
	case smbNoSuchUserRe.MatchString(out):
		return SMBNoSuchUser
	}
	return SMBUnknown
}
