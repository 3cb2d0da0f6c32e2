package userenum

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bshnet/bsh/pkg/types"
)

const maxBody = 1 << 20

var (
	// ListPaths are fetched during enumeration.
	ListPaths = []string{"/users", "/api/users", "/admin/users", "/userlist", "/members", "/profiles"}
	// UserPathTemplates are fetched during search; %s is the username.
	UserPathTemplates = []string{"/users/%s", "/api/users/%s", "/user/%s", "/profile/%s", "/~%s"}

	jsonUsernameRe = regexp.MustCompile(`(?i)"username":\s*"([^"]+)"`)
	listItemRe     = regexp.MustCompile(`(?i)<li[^>]*>([^<]+)</li>`)
	tokenRe        = regexp.MustCompile(`(?i)^[a-z0-9_]+$`)
)

func (e *Enumerator) endpoint(host string, port int, path string) string {
	scheme := "http"
	if slices.Contains(e.TLSPorts, port) {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + path
}

// get fetches target and returns the body of a 200 response.
func (e *Enumerator) get(ctx context.Context, target string) (string, bool) {
	client := e.HTTP
	if client == nil {
		client = NewHTTPClient(0)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", false
	}
	resp, err := client.Do(req)
	if err != nil {
		e.Logger.Debug().Err(err).Str("url", target).Msg("http request failed")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return "", false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", false
	}
	return string(body), true
}

func (e *Enumerator) enumerateHTTP(ctx context.Context, host string) []types.UserCandidate {
	var users []types.UserCandidate
	for _, port := range e.HTTPPorts {
		if !e.open(ctx, host, port) {
			continue
		}
		source := "HTTP:" + strconv.Itoa(port)
		for _, path := range ListPaths {
			if ctx.Err() != nil {
				return users
			}
			body, ok := e.get(ctx, e.endpoint(host, port, path))
			if !ok {
				continue
			}
			users = append(users, ExtractUsers(body, source, path)...)
		}
	}
	return users
}

// ExtractUsers pulls usernames from a response body: JSON "username" fields
// and short word-like list items (3 to 19 characters).
func ExtractUsers(body, source, path string) []types.UserCandidate {
	var users []types.UserCandidate
	for _, m := range jsonUsernameRe.FindAllStringSubmatch(body, -1) {
		users = append(users, types.UserCandidate{
			Username: m[1],
			Source:   source,
			Method:   "API endpoint: " + path,
		})
	}
	for _, m := range listItemRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) < 3 || len(name) > 19 || !tokenRe.MatchString(name) {
			continue
		}
		users = append(users, types.UserCandidate{
			Username: name,
			Source:   source,
			Method:   "HTML content: " + path,
		})
	}
	return users
}

func (e *Enumerator) checkHTTPUser(ctx context.Context, host, username string) (bool, string) {
	for _, port := range e.HTTPPorts {
		if !e.open(ctx, host, port) {
			continue
		}
		for _, tmpl := range UserPathTemplates {
			if ctx.Err() != nil {
				return false, ""
			}
			path := strings.Replace(tmpl, "%s", url.PathEscape(username), 1)
			body, ok := e.get(ctx, e.endpoint(host, port, path))
			if ok && strings.Contains(body, username) {
				return true, "Found in HTTP response at " + path
			}
		}
	}
	return false, ""
}
