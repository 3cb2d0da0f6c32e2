// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager backed by the global Koanf instance.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
		currentConfig: DefaultConfig(),
	}
}

// DefaultScanConfig returns the engine defaults: 2s port probes, 1s
// availability checks and ping, batches of 50 over at most 256 addresses.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		ProbeTimeout:     2 * time.Second,
		CheckTimeout:     1 * time.Second,
		BannerWait:       300 * time.Millisecond,
		BannerSize:       1024,
		PingTimeout:      1 * time.Second,
		PrivilegedPing:   false,
		TCPFallbackPorts: []int{80, 443, 22},
		BatchSize:        50,
		MaxHosts:         256,
		DNSCacheSize:     512,
		HTTPTimeout:      2 * time.Second,
		SSHTimeout:       2 * time.Second,
		SMBClient:        "smbclient",
		ToolTimeout:      5 * time.Second,
	}
}

// DefaultConfig returns a new Config populated with hardcoded defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scan: DefaultScanConfig(),
	}
}

// Load loads configuration from defaults, the optional YAML file, BSH_*
// environment variables and flags, in that order of precedence.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(customConfigFilePath, flags, debug))
}

// LoadWithSources loads the given sources in priority order and validates
// the merged result.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})
	for _, src := range sources {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		return err
	}
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfgCopy := m.currentConfig
	cfgCopy.Scan.TCPFallbackPorts = append([]int(nil), m.currentConfig.Scan.TCPFallbackPorts...)
	return cfgCopy
}

var validate = validator.New()

// Validate checks the configuration against its struct constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DefaultConfigAsMap flattens DefaultConfig for Koanf's confmap provider.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"scan.probe_timeout":      def.Scan.ProbeTimeout,
		"scan.check_timeout":      def.Scan.CheckTimeout,
		"scan.banner_wait":        def.Scan.BannerWait,
		"scan.banner_size":        def.Scan.BannerSize,
		"scan.ping_timeout":       def.Scan.PingTimeout,
		"scan.privileged_ping":    def.Scan.PrivilegedPing,
		"scan.tcp_fallback_ports": def.Scan.TCPFallbackPorts,
		"scan.batch_size":         def.Scan.BatchSize,
		"scan.max_hosts":          def.Scan.MaxHosts,
		"scan.dns_cache_size":     def.Scan.DNSCacheSize,
		"scan.http_timeout":       def.Scan.HTTPTimeout,
		"scan.ssh_timeout":        def.Scan.SSHTimeout,
		"scan.smbclient":          def.Scan.SMBClient,
		"scan.tool_timeout":       def.Scan.ToolTimeout,
	}
}

// BindFlags defines the persistent flags that map onto configuration keys.
func BindFlags(flags *pflag.FlagSet) {
	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")
	flags.String("log.level", "", "Log level (debug, info, warn, error)")
	flags.Bool("scan.privileged_ping", false, "Use raw ICMP sockets for liveness checks (requires root)")
}
