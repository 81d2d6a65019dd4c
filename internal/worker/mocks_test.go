package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/fixturecast/predictor-api/internal/models"
)

// MockBuilder returns canned samples and fails or panics for chosen match ids
type MockBuilder struct {
	FailIDs  map[int64]bool
	PanicIDs map[int64]bool
	Delay    time.Duration
}

func (m *MockBuilder) BuildForMatch(ctx context.Context, match models.MatchRecord) ([2]models.MatchSample, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.PanicIDs[match.ID] {
		panic("corrupt fixture")
	}
	if m.FailIDs[match.ID] {
		return [2]models.MatchSample{}, errors.New("derive failed")
	}
	return [2]models.MatchSample{
		{MatchID: match.ID, AttackerID: match.HomeTeamID, DefenderID: match.AwayTeamID, AtVenue: true, Goals: float64(*match.HomeScore)},
		{MatchID: match.ID, AttackerID: match.AwayTeamID, DefenderID: match.HomeTeamID, AtVenue: false, Goals: float64(*match.AwayScore)},
	}, nil
}

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn

	mu       sync.Mutex
	Appended int
	Sent     int
	SendErr  error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Appended, m.Sent
}

// MockBatch implements driver.Batch
type MockBatch struct {
	driver.Batch
	conn *MockClickHouseConn
	rows int
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.rows++
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.conn.Appended += m.rows
	m.conn.Sent++
	return nil
}

func (m *MockBatch) Abort() error {
	return nil
}

func finishedMatch(id int64, home, away int) models.MatchRecord {
	return models.MatchRecord{
		ID:         id,
		Date:       time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		HomeTeamID: 10,
		AwayTeamID: 20,
		HomeScore:  &home,
		AwayScore:  &away,
		Status:     "FINISHED",
	}
}
