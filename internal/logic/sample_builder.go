package logic

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fixturecast/predictor-api/internal/models"
)

// Deriver is the part of FeatureDeriver the sample builder and the learned
// predictor depend on.
type Deriver interface {
	Derive(ctx context.Context, teamID, opponentID int64, asOf time.Time, atVenue bool) (models.FeatureVector, error)
}

// SampleBuilder turns finished matches into symmetric training samples.
type SampleBuilder struct {
	deriver Deriver
}

func NewSampleBuilder(deriver Deriver) *SampleBuilder {
	return &SampleBuilder{deriver: deriver}
}

// BuildForMatch returns the home-attacking sample followed by the
// away-attacking sample. Both vectors use only history before kick-off.
func (b *SampleBuilder) BuildForMatch(ctx context.Context, match models.MatchRecord) ([2]models.MatchSample, error) {
	var out [2]models.MatchSample
	if !match.Finished() {
		return out, fmt.Errorf("match %d: %w", match.ID, ErrMatchNotFinished)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := b.deriver.Derive(gctx, match.HomeTeamID, match.AwayTeamID, match.Date, true)
		if err != nil {
			return fmt.Errorf("home features: %w", err)
		}
		out[0] = models.MatchSample{
			MatchID:    match.ID,
			AttackerID: match.HomeTeamID,
			DefenderID: match.AwayTeamID,
			AtVenue:    true,
			Features:   v,
			Goals:      float64(*match.HomeScore),
		}
		return nil
	})
	g.Go(func() error {
		v, err := b.deriver.Derive(gctx, match.AwayTeamID, match.HomeTeamID, match.Date, false)
		if err != nil {
			return fmt.Errorf("away features: %w", err)
		}
		out[1] = models.MatchSample{
			MatchID:    match.ID,
			AttackerID: match.AwayTeamID,
			DefenderID: match.HomeTeamID,
			AtVenue:    false,
			Features:   v,
			Goals:      float64(*match.AwayScore),
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return [2]models.MatchSample{}, fmt.Errorf("match %d: %w", match.ID, err)
	}
	return out, nil
}
