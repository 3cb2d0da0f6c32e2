package scanner

import (
	"regexp"
	"strings"
)

var (
	serverHeaderRe = regexp.MustCompile(`(?i)^server:\s*(.+)$`)
	greetingRe     = regexp.MustCompile(`^220[ -]\(?([^()]+)\)?`)
)

// InferVersion extracts a product/version string from a banner. It knows
// SSH identification strings, HTTP Server headers and 220 greetings used by
// FTP and SMTP. Unknown banners yield "".
func InferVersion(banner []byte) string {
	if len(banner) == 0 {
		return ""
	}
	text := string(banner)

	switch {
	case strings.HasPrefix(text, "SSH-"):
		return sshVersion(text)
	case strings.HasPrefix(text, "HTTP/"):
		return httpServer(text)
	case strings.HasPrefix(text, "220"):
		if m := greetingRe.FindStringSubmatch(firstLine(text)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// sshVersion parses "SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3" into
// "OpenSSH_8.9p1".
func sshVersion(banner string) string {
	line := firstLine(banner)
	parts := strings.SplitN(line, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	software := strings.TrimSpace(parts[2])
	if i := strings.IndexByte(software, ' '); i >= 0 {
		software = software[:i]
	}
	return software
}

func httpServer(resp string) string {
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if m := serverHeaderRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
