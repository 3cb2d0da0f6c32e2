package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bshnet/bsh/pkg/types"
)

// DefaultBatchSize bounds the number of outstanding liveness probes.
const DefaultBatchSize = 50

// RangeScanner sweeps a Target for live hosts.
type RangeScanner struct {
	Liveness   LivenessChecker
	Hostnames  HostnameResolver
	ARP        ArpResolver
	Interfaces InterfaceSource
	Resolver   AddrResolver
	BatchSize  int
	MaxHosts   int
	Logger     zerolog.Logger

	// OnHost is called once per live host from the scanning goroutine,
	// in candidate order, as each batch completes.
	OnHost func(types.HostRecord)
}

// Resolve turns a range argument into a Target. An empty argument or
// "local" selects the detected local network.
func (s *RangeScanner) Resolve(ctx context.Context, rangeArg string) (Target, error) {
	var (
		t   Target
		err error
	)
	switch strings.ToLower(strings.TrimSpace(rangeArg)) {
	case "", "local":
		t, err = DetectLocalNetwork(s.Interfaces)
	default:
		t, err = ParseTarget(ctx, rangeArg, s.Resolver)
	}
	if err != nil {
		return Target{}, err
	}
	t.MaxHosts = s.MaxHosts
	return t, nil
}

// Scan probes every candidate of t in batches and returns one record per
// live address, in candidate order. Each record carries the IP and, when
// available, hostname and MAC. On cancellation the records found so far are
// returned together with the context error.
func (s *RangeScanner) Scan(ctx context.Context, t Target) ([]types.HostRecord, error) {
	if s.Liveness == nil {
		return nil, fmt.Errorf("range scanner: no liveness checker configured")
	}
	batch := s.BatchSize
	if batch <= 0 || batch > DefaultBatchSize {
		batch = DefaultBatchSize
	}

	candidates := t.Candidates()
	s.Logger.Debug().
		Str("range", t.String()).
		Int("candidates", len(candidates)).
		Int("batch_size", batch).
		Msg("starting range scan")

	start := time.Now()
	records := []types.HostRecord{}
	for lo := 0; lo < len(candidates); lo += batch {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		hi := min(lo+batch, len(candidates))

		// Each task owns exactly one slot; nothing else is shared.
		slots := make([]*types.HostRecord, hi-lo)
		var g errgroup.Group
		for i := lo; i < hi; i++ {
			ip := candidates[i].String()
			slot := &slots[i-lo]
			g.Go(func() error {
				*slot = s.probe(ctx, ip)
				return nil
			})
		}
		_ = g.Wait()

		for _, rec := range slots {
			if rec == nil {
				continue
			}
			records = append(records, *rec)
			if s.OnHost != nil {
				s.OnHost(*rec)
			}
		}
	}

	s.Logger.Debug().
		Str("range", t.String()).
		Int("live", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("range scan complete")
	return records, ctx.Err()
}

func (s *RangeScanner) probe(ctx context.Context, ip string) *types.HostRecord {
	if !s.Liveness.Alive(ctx, ip) {
		return nil
	}
	rec := &types.HostRecord{IP: ip}
	if s.Hostnames != nil {
		if name, ok := s.Hostnames.LookupHostname(ctx, ip); ok {
			rec.Hostname = name
		}
	}
	if s.ARP != nil {
		if mac, ok := s.ARP.LookupMAC(ctx, ip); ok {
			rec.MAC = mac
		}
	}
	return rec
}
