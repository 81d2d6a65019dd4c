package logic

import (
	"context"
	"errors"
	"testing"
)

func TestTeamProfileFromAnalytics(t *testing.T) {
	saveRate := 0.74
	mockCH := &MockConn{
		Tactics:   []any{uint64(4), 1.8, 13.5, 55.0, 6.5, 17.0, 1.1, &saveRate},
		Assists:   []any{uint64(5), 10.0},
		TopScorer: []any{int64(99), 3.0},
	}
	src := NewAnalyticsProfileSource(mockCH, nil)

	p, err := src.TeamProfile(context.Background(), 1, testAsOf)
	if err != nil {
		t.Fatalf("TeamProfile failed: %v", err)
	}

	tests := []struct {
		name string
		got  *float64
		want float64
	}{
		{"xg", p.XGPerGame, 1.8},
		{"shots", p.ShotsPerGame, 13.5},
		{"possession", p.PossessionAvg, 55},
		{"pressing", p.PressingIntensity, 6.5},
		{"tackles", p.TacklesPerGame, 17},
		{"xg conceded", p.XGConcededPerGame, 1.1},
		{"save pct", p.SavePct, 0.74},
		{"assists", p.AssistsPerGame, 2},
		{"top scorer xg", p.TopScorerXG, 0.6},
	}
	for _, tt := range tests {
		if tt.got == nil {
			t.Errorf("%s not measured", tt.name)
			continue
		}
		if !approx(*tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, *tt.got, tt.want)
		}
	}
	if p.CoachWinRate != nil {
		t.Error("coach rate needs Postgres")
	}
	if mockCH.QueryRowCalls != 2 || mockCH.QueryCalls != 1 {
		t.Errorf("expected 2 QueryRow and 1 Query calls, got %d and %d", mockCH.QueryRowCalls, mockCH.QueryCalls)
	}
}

func TestTeamProfileEmptyWindow(t *testing.T) {
	mockCH := &MockConn{
		Tactics: []any{uint64(0), 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, (*float64)(nil)},
		Assists: []any{uint64(0), 0.0},
	}
	p, err := NewAnalyticsProfileSource(mockCH, nil).TeamProfile(context.Background(), 1, testAsOf)
	if err != nil {
		t.Fatalf("TeamProfile failed: %v", err)
	}
	if p.XGPerGame != nil || p.AssistsPerGame != nil || p.TopScorerXG != nil {
		t.Errorf("empty window should measure nothing: %+v", p)
	}
	if mockCH.QueryCalls != 0 {
		t.Errorf("top scorer query should be skipped, got %d calls", mockCH.QueryCalls)
	}
}

func TestTeamProfilePartialFailure(t *testing.T) {
	mockCH := &MockConn{
		TacticErr: context.DeadlineExceeded,
		Assists:   []any{uint64(4), 6.0},
	}
	p, err := NewAnalyticsProfileSource(mockCH, nil).TeamProfile(context.Background(), 1, testAsOf)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
	if p.AssistsPerGame == nil || *p.AssistsPerGame != 1.5 {
		t.Errorf("assists should still be measured: %+v", p.AssistsPerGame)
	}
}

func TestTeamProfileNoStores(t *testing.T) {
	p, err := NewAnalyticsProfileSource(nil, nil).TeamProfile(context.Background(), 1, testAsOf)
	if err != nil || p.XGPerGame != nil {
		t.Errorf("TeamProfile() = %+v, %v", p, err)
	}
}
