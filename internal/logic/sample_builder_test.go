package logic

import (
	"context"
	"errors"
	"testing"

	"github.com/fixturecast/predictor-api/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func TestBuildForMatch(t *testing.T) {
	deriver := &fakeDeriver{vectors: map[int64]models.FeatureVector{
		10: {TeamQualityRating: 61},
		20: {TeamQualityRating: 48},
	}}
	b := NewSampleBuilder(deriver)
	match := models.MatchRecord{
		ID: 7, Date: testAsOf, HomeTeamID: 10, AwayTeamID: 20,
		HomeScore: intPtr(3), AwayScore: intPtr(1), Status: "FINISHED",
	}

	pair, err := b.BuildForMatch(context.Background(), match)
	if err != nil {
		t.Fatalf("BuildForMatch failed: %v", err)
	}

	home, away := pair[0], pair[1]
	if home.AttackerID != 10 || home.DefenderID != 20 || !home.AtVenue || home.Goals != 3 {
		t.Errorf("home sample = %+v", home)
	}
	if away.AttackerID != 20 || away.DefenderID != 10 || away.AtVenue || away.Goals != 1 {
		t.Errorf("away sample = %+v", away)
	}
	if home.Features.TeamQualityRating != 61 || away.Features.TeamQualityRating != 48 {
		t.Error("samples carry the wrong attacker's features")
	}
	if home.MatchID != 7 || away.MatchID != 7 {
		t.Error("samples lost the match id")
	}
}

func TestBuildForMatchUnfinished(t *testing.T) {
	b := NewSampleBuilder(&fakeDeriver{})
	match := models.MatchRecord{ID: 8, HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(1), Status: "IN_PLAY"}

	if _, err := b.BuildForMatch(context.Background(), match); !errors.Is(err, ErrMatchNotFinished) {
		t.Fatalf("err = %v, want ErrMatchNotFinished", err)
	}
}

func TestBuildForMatchDeriveFailure(t *testing.T) {
	b := NewSampleBuilder(&fakeDeriver{err: ErrSourceUnavailable})
	match := models.MatchRecord{ID: 9, HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(0), AwayScore: intPtr(0)}

	if _, err := b.BuildForMatch(context.Background(), match); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want wrapped ErrSourceUnavailable", err)
	}
}
