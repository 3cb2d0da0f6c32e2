package scanner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bshnet/bsh/pkg/types"
)

// Scanner probes a list of ports on one host, sequentially.
type Scanner struct {
	Prober  *Prober
	Timeout time.Duration
	Logger  zerolog.Logger

	// OnResult, when set, is called after each probe in input order.
	OnResult func(types.PortResult)
}

// NewScanner returns a Scanner using prober and the given per-port timeout.
func NewScanner(prober *Prober, timeout time.Duration, logger zerolog.Logger) *Scanner {
	return &Scanner{Prober: prober, Timeout: timeout, Logger: logger}
}

// Scan probes every port in ports. Open ports keep input order; ports absent
// from the result's Services were closed or unreachable. Cancelling ctx marks
// the remaining ports closed without dialing.
func (s *Scanner) Scan(ctx context.Context, host string, ports []int) types.PortScan {
	scan := types.PortScan{
		Host:      host,
		OpenPorts: []int{},
		Services:  make(map[int]types.PortResult),
	}

	prober := s.Prober
	if prober == nil {
		prober = NewProber(s.Logger)
	}

	start := time.Now()
	for _, port := range ports {
		var res types.PortResult
		if ctx.Err() != nil {
			res = types.PortResult{Port: port}
		} else {
			res = prober.Probe(ctx, host, port, s.Timeout)
		}

		if res.Open {
			scan.OpenPorts = append(scan.OpenPorts, port)
			scan.Services[port] = res
		} else {
			scan.Closed = append(scan.Closed, port)
		}
		if s.OnResult != nil {
			s.OnResult(res)
		}
	}

	s.Logger.Debug().
		Str("host", host).
		Int("ports", len(ports)).
		Int("open", len(scan.OpenPorts)).
		Dur("elapsed", time.Since(start)).
		Msg("port scan complete")
	return scan
}
