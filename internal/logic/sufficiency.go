package logic

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMinHistoryMatches is the number of finished matches a team must
// exceed before its derived features are trusted.
const DefaultMinHistoryMatches = 5

// SufficiencyGate decides whether the learned path has enough history to work with.
type SufficiencyGate struct {
	stats      StatsSource
	minMatches int
	logger     *zap.SugaredLogger
}

func NewSufficiencyGate(stats StatsSource, minMatches int, logger *zap.SugaredLogger) *SufficiencyGate {
	if minMatches <= 0 {
		minMatches = DefaultMinHistoryMatches
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SufficiencyGate{stats: stats, minMatches: minMatches, logger: logger}
}

// HasHistory reports whether team has more than the minimum number of
// finished matches strictly before asOf. Only an unreachable source is an
// error; any other count failure is treated as no history.
func (g *SufficiencyGate) HasHistory(ctx context.Context, teamID int64, asOf time.Time) (bool, error) {
	n, err := g.stats.CountFinished(ctx, teamID, asOf)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return false, err
		}
		g.logger.Debugw("History count failed, treating as insufficient", "team_id", teamID, "error", err)
		return false, nil
	}
	return n > g.minMatches, nil
}

// UseFallback checks both competitors concurrently and reports true only
// when neither has enough history.
func (g *SufficiencyGate) UseFallback(ctx context.Context, teamA, teamB int64, asOf time.Time) (bool, error) {
	var okA, okB bool
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		okA, err = g.HasHistory(ectx, teamA, asOf)
		return err
	})
	eg.Go(func() (err error) {
		okB, err = g.HasHistory(ectx, teamB, asOf)
		return err
	})
	if err := eg.Wait(); err != nil {
		return false, err
	}
	return !okA && !okB, nil
}
