package types

// InterfaceInfo describes one address bound to a local interface.
type InterfaceInfo struct {
	Name    string `json:"name" yaml:"name"`
	Family  string `json:"family" yaml:"family"` // IPv4 | IPv6
	IP      string `json:"ip" yaml:"ip"`
	Netmask string `json:"netmask,omitempty" yaml:"netmask,omitempty"`
}

// IPInfo summarises a single target lookup.
type IPInfo struct {
	Target    string `json:"target" yaml:"target"`
	IP        string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Hostname  string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Method    string `json:"method,omitempty" yaml:"method,omitempty"` // how reachability was established
}

// LocalInfo describes the machine running the scan.
type LocalInfo struct {
	Hostname   string          `json:"hostname" yaml:"hostname"`
	FQDN       string          `json:"fqdn,omitempty" yaml:"fqdn,omitempty"`
	Gateway    string          `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	Interfaces []InterfaceInfo `json:"interfaces" yaml:"interfaces"`
}
