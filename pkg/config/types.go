// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for bsh.
type Config struct {
	Log  LogConfig  `description:"Logging configuration" koanf:"log"`
	Scan ScanConfig `description:"Scan engine configuration" koanf:"scan"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (debug, info, warn, error)" koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"omitempty,oneof=json text"`
}

// ScanConfig holds timeouts and limits for the reconnaissance engine.
type ScanConfig struct {
	// Port probing
	ProbeTimeout time.Duration `description:"TCP connect timeout for port scans" koanf:"probe_timeout" validate:"gt=0"`
	CheckTimeout time.Duration `description:"TCP connect timeout for service availability checks" koanf:"check_timeout" validate:"gt=0"`
	BannerWait   time.Duration `description:"How long to wait for a banner after connect" koanf:"banner_wait" validate:"gte=0"`
	BannerSize   int           `description:"Maximum banner bytes read" koanf:"banner_size" validate:"min=1,max=65536"`

	// Liveness sweep
	PingTimeout      time.Duration `description:"ICMP echo timeout per host" koanf:"ping_timeout" validate:"gt=0"`
	PrivilegedPing   bool          `description:"Use raw ICMP sockets (requires root)" koanf:"privileged_ping"`
	TCPFallbackPorts []int         `description:"Ports tried when a host does not answer ICMP" koanf:"tcp_fallback_ports" validate:"dive,min=1,max=65535"`
	BatchSize        int           `description:"Maximum outstanding liveness probes" koanf:"batch_size" validate:"min=1,max=50"`
	MaxHosts         int           `description:"Maximum candidate addresses per range" koanf:"max_hosts" validate:"min=1,max=256"`
	DNSCacheSize     int           `description:"Reverse DNS cache entries" koanf:"dns_cache_size" validate:"min=1"`

	// User enumeration
	HTTPTimeout time.Duration `description:"Per-request timeout for HTTP enumeration" koanf:"http_timeout" validate:"gt=0"`
	SSHTimeout  time.Duration `description:"Connect timeout for the SSH handshake check" koanf:"ssh_timeout" validate:"gt=0"`
	SMBClient   string        `description:"Path to the smbclient binary" koanf:"smbclient"`
	ToolTimeout time.Duration `description:"Timeout for external helper commands" koanf:"tool_timeout" validate:"gt=0"`
}
