package types

// UserCandidate is a username surfaced by one of the enumeration probes.
// Method documents how weak the evidence is (for SSH/RDP it only proves the
// service answered).
type UserCandidate struct {
	Username string `json:"username" yaml:"username"`
	Source   string `json:"source" yaml:"source"` // protocol/port tag, e.g. "SSH", "HTTP:8080"
	Method   string `json:"method" yaml:"method"`
}

// SearchResult is the outcome of a targeted existence check for one username.
type SearchResult struct {
	Host     string   `json:"host" yaml:"host"`
	Username string   `json:"username" yaml:"username"`
	Found    bool     `json:"found" yaml:"found"`
	Sources  []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// DedupUsers keeps the first candidate seen for each username.
func DedupUsers(users []UserCandidate) []UserCandidate {
	seen := make(map[string]struct{}, len(users))
	out := make([]UserCandidate, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.Username]; ok {
			continue
		}
		seen[u.Username] = struct{}{}
		out = append(out, u)
	}
	return out
}
