package logic

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSourceUnavailable means the statistics source cannot be reached at all.
	ErrSourceUnavailable = errors.New("statistics source unavailable")
	// ErrModelNotLoaded means no trained artifact is active.
	ErrModelNotLoaded = errors.New("scoring model not loaded")
	// ErrMatchNotFinished is returned for samples requested from unfinished matches.
	ErrMatchNotFinished = errors.New("match has no final score")
	// ErrInvalidRequest covers malformed prediction requests.
	ErrInvalidRequest = errors.New("invalid prediction request")
)

// classifySourceErr wraps connectivity failures with ErrSourceUnavailable so
// callers can tell an outage apart from a bad query.
func classifySourceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnectivityErr(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrSourceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivityErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.Timeout(err)
}
