// pkg/types/host.go

// Package types holds the request-scoped records passed between scan stages.
package types

// PortResult is the outcome of a single TCP probe.
type PortResult struct {
	Port    int    `json:"port" yaml:"port"`
	Open    bool   `json:"open" yaml:"open"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"` // e.g., SSH, HTTP
	Banner  []byte `json:"banner,omitempty" yaml:"banner,omitempty"`   // raw bytes read right after connect
	Version string `json:"version,omitempty" yaml:"version,omitempty"` // product/version parsed from the banner
}

// PortScan aggregates probe results for one host.
type PortScan struct {
	Host      string             `json:"host" yaml:"host"`
	OpenPorts []int              `json:"open_ports" yaml:"open_ports"` // input order
	Closed    []int              `json:"closed_ports,omitempty" yaml:"closed_ports,omitempty"`
	Services  map[int]PortResult `json:"services,omitempty" yaml:"services,omitempty"`
}

// HostRecord is built incrementally: discovery sets IP/Hostname/MAC, the
// port scan sets OpenPorts/Services and the fingerprinter sets the rest.
type HostRecord struct {
	IP         string             `json:"ip" yaml:"ip"`
	Hostname   string             `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	MAC        string             `json:"mac,omitempty" yaml:"mac,omitempty"`
	Vendor     string             `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	OpenPorts  []int              `json:"open_ports,omitempty" yaml:"open_ports,omitempty"`
	Services   map[int]PortResult `json:"services,omitempty" yaml:"services,omitempty"`
	DeviceType string             `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	OSGuess    string             `json:"os_guess,omitempty" yaml:"os_guess,omitempty"`
}

// ApplyScan copies the port-scan owned fields onto the record.
func (h *HostRecord) ApplyScan(scan PortScan) {
	h.OpenPorts = append([]int(nil), scan.OpenPorts...)
	h.Services = make(map[int]PortResult, len(scan.Services))
	for port, res := range scan.Services {
		h.Services[port] = res
	}
}
