package logic

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestHasHistory(t *testing.T) {
	g := NewSufficiencyGate(gateStats(), 0, nil)
	ctx := context.Background()

	tests := []struct {
		team int64
		want bool
	}{
		{1, true},
		{2, false},
		{3, false},
	}
	for _, tt := range tests {
		got, err := g.HasHistory(ctx, tt.team, testAsOf)
		if err != nil {
			t.Fatalf("HasHistory(%d) failed: %v", tt.team, err)
		}
		if got != tt.want {
			t.Errorf("HasHistory(%d) = %v, want %v", tt.team, got, tt.want)
		}
	}

	// Matches on or after asOf do not count.
	got, err := g.HasHistory(ctx, 1, testAsOf.AddDate(0, 0, -7))
	if err != nil || got {
		t.Errorf("HasHistory before the latest match = %v, %v, want false", got, err)
	}
}

func TestHasHistoryQueryErrorIsInsufficient(t *testing.T) {
	stats := gateStats()
	stats.countErr = errors.New("syntax error at or near SELECT")
	g := NewSufficiencyGate(stats, 5, nil)

	got, err := g.HasHistory(context.Background(), 1, testAsOf)
	if err != nil {
		t.Fatalf("HasHistory returned %v, want nil", err)
	}
	if got {
		t.Error("a failed count should be treated as insufficient history")
	}
}

func TestUseFallback(t *testing.T) {
	g := NewSufficiencyGate(gateStats(), 5, nil)
	ctx := context.Background()

	tests := []struct {
		a, b int64
		want bool
	}{
		{1, 2, false},
		{2, 1, false},
		{2, 3, true},
	}
	for _, tt := range tests {
		got, err := g.UseFallback(ctx, tt.a, tt.b, testAsOf)
		if err != nil {
			t.Fatalf("UseFallback(%d, %d) failed: %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("UseFallback(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	stats := gateStats()
	stats.err = fmt.Errorf("%w: refused", ErrSourceUnavailable)
	if _, err := NewSufficiencyGate(stats, 5, nil).UseFallback(ctx, 1, 2, testAsOf); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("UseFallback err = %v, want ErrSourceUnavailable", err)
	}
}
