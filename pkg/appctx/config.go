package appctx

import (
	"context"

	"github.com/bshnet/bsh/pkg/config"
)

type key string

const configKey key = "bsh.config.manager"

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// ScanConfig returns the scan section of the configuration on ctx, falling
// back to defaults when no manager has been attached.
func ScanConfig(ctx context.Context) config.ScanConfig {
	if mgr, ok := Config(ctx); ok {
		return mgr.Get().Scan
	}
	return config.DefaultScanConfig()
}
