package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically removes expired entries from a TTL cache. Without it
// an entry that is written and never read again stays until Clear.
type Sweeper struct {
	cache    *TTL
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper running every interval
func NewSweeper(c *TTL, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{cache: c, interval: interval, logger: logger}
}

// Run blocks until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("cache sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.cache.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("swept expired cache entries")
			}
		case <-ctx.Done():
			s.logger.Info().Msg("cache sweeper stopped")
			return
		}
	}
}
