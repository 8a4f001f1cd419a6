package synapse

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tensorplex-labs/eden/internal/metrics"
)

// ctxLogger returns the logger attached to ctx, or the global one.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if lg := zerolog.Ctx(ctx); lg.GetLevel() != zerolog.Disabled {
		return lg
	}
	return &log.Logger
}

// GenerateAll sends the same messages to every peer with at most
// cfg.Concurrency calls in flight. Each peer gets its own slot in the
// returned slice, in input order. A failed peer never affects its siblings.
func (c *Client) GenerateAll(ctx context.Context, peers []Peer, messages []Message) []Result {
	results := make([]Result, len(peers))
	if len(peers) == 0 {
		return results
	}
	lg := ctxLogger(ctx)

	headers, err := c.AuthHeaders()
	if err != nil {
		lg.Error().Err(err).Msg("failed to sign peer auth headers, sending unsigned")
		headers = nil
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for i, p := range peers {
		results[i].Peer = p
		g.Go(func() error {
			start := time.Now()
			content, err := c.generate(ctx, p.Address, messages, c.cfg.Timeout, headers)
			results[i].Elapsed = time.Since(start)

			if err == nil && content.IsEmpty() {
				err = errEmptyContent
			}
			if err != nil {
				results[i].Err = err
				metrics.PeerRequestsTotal.WithLabelValues("failed").Inc()
				lg.Debug().
					Err(err).
					Int("uid", p.UID).
					Str("address", p.Address).
					Dur("elapsed", results[i].Elapsed).
					Msg("peer generate failed")
				return nil
			}

			results[i].Content = content
			metrics.PeerRequestsTotal.WithLabelValues("ok").Inc()
			return nil
		})
	}

	_ = g.Wait()
	return results
}
