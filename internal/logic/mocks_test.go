package logic

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/fixturecast/predictor-api/internal/models"
	"github.com/fixturecast/predictor-api/internal/oracle"
)

var testAsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// played builds a finished match daysAgo days before testAsOf.
func played(daysAgo int, opponent int64, goalsFor, goalsAgainst int) models.TeamMatch {
	return models.TeamMatch{
		MatchID:      int64(daysAgo)*1000 + opponent,
		Date:         testAsOf.AddDate(0, 0, -daysAgo),
		OpponentID:   opponent,
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
		Result:       models.ResultFor(goalsFor, goalsAgainst),
	}
}

// fakeStats serves canned team histories. Histories must be newest first.
type fakeStats struct {
	matches     map[int64][]models.TeamMatch
	unavailable map[int64]int

	err            error
	unavailableErr error
	countErr       error

	mu    sync.Mutex
	calls int
}

func (f *fakeStats) called() error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.err
}

func (f *fakeStats) RecentMatches(ctx context.Context, teamID int64, before, since time.Time, limit int) ([]models.TeamMatch, error) {
	if err := f.called(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, classifySourceErr("recent matches", err)
	}
	var out []models.TeamMatch
	for _, m := range f.matches[teamID] {
		if !m.Date.Before(before) || (!since.IsZero() && !m.Date.After(since)) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStats) HeadToHead(ctx context.Context, teamID, opponentID int64, before, since time.Time) ([]models.TeamMatch, error) {
	all, err := f.RecentMatches(ctx, teamID, before, since, 0)
	if err != nil {
		return nil, err
	}
	var out []models.TeamMatch
	for _, m := range all {
		if m.OpponentID == opponentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStats) CountFinished(ctx context.Context, teamID int64, before time.Time) (int, error) {
	if err := f.called(); err != nil {
		return 0, err
	}
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.matches[teamID] {
		if m.Date.Before(before) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStats) CountUnavailable(ctx context.Context, teamID int64, asOf time.Time) (int, error) {
	if err := f.called(); err != nil {
		return 0, err
	}
	if f.unavailableErr != nil {
		return 0, f.unavailableErr
	}
	return f.unavailable[teamID], nil
}

type fakeProfiles struct {
	profiles map[int64]models.TeamProfile
	err      error
}

func (f *fakeProfiles) TeamProfile(ctx context.Context, teamID int64, before time.Time) (models.TeamProfile, error) {
	return f.profiles[teamID], f.err
}

// fakeDeriver returns a fixed vector per attacker.
type fakeDeriver struct {
	vectors map[int64]models.FeatureVector
	err     error

	mu    sync.Mutex
	venue map[int64]bool
}

func (f *fakeDeriver) Derive(ctx context.Context, teamID, opponentID int64, asOf time.Time, atVenue bool) (models.FeatureVector, error) {
	f.mu.Lock()
	if f.venue == nil {
		f.venue = make(map[int64]bool)
	}
	f.venue[teamID] = atVenue
	f.mu.Unlock()
	if f.err != nil {
		return models.FeatureVector{}, f.err
	}
	return f.vectors[teamID], nil
}

type fakeModel struct {
	snap *oracle.Snapshot
}

func (f *fakeModel) Active() *oracle.Snapshot {
	return f.snap
}

type fakePredictor struct {
	version string
	calls   int
	err     error
}

func (f *fakePredictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.PredictionResult{
		NameA:          req.CompetitorAName,
		NameB:          req.CompetitorBName,
		Outcome:        models.OutcomeDraw,
		PredictedLabel: "Draw",
		ModelVersion:   f.version,
	}, nil
}

type memoryCache struct {
	entries map[string]*models.PredictionResult
}

func (c *memoryCache) Get(ctx context.Context, key string) (*models.PredictionResult, bool) {
	r, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (c *memoryCache) Set(ctx context.Context, key string, result *models.PredictionResult) {
	if c.entries == nil {
		c.entries = make(map[string]*models.PredictionResult)
	}
	cp := *result
	c.entries[key] = &cp
}

// MockConn answers the analytics queries by table.
type MockConn struct {
	driver.Conn
	Tactics   []any
	Assists   []any
	TopScorer []any
	TacticErr error

	QueryCalls    int
	QueryRowCalls int
}

func (m *MockConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	m.QueryCalls++
	var rows [][]any
	if m.TopScorer != nil {
		rows = append(rows, m.TopScorer)
	}
	return &MockRows{rows: rows}, nil
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	m.QueryRowCalls++
	switch {
	case strings.Contains(query, "team_match_stats"):
		return &MockRow{vals: m.Tactics, err: m.TacticErr}
	default:
		return &MockRow{vals: m.Assists}
	}
}

type MockRows struct {
	driver.Rows
	rows [][]any
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.rows)
}

func (m *MockRows) Scan(dest ...any) error {
	for i, v := range m.rows[m.idx-1] {
		assign(dest[i], v)
	}
	return nil
}

func (m *MockRows) Close() error {
	return nil
}

func (m *MockRows) Err() error {
	return nil
}

type MockRow struct {
	driver.Row
	vals []any
	err  error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	for i, v := range m.vals {
		assign(dest[i], v)
	}
	return nil
}

func (m *MockRow) Err() error {
	return m.err
}

func assign(dest any, val any) {
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}
