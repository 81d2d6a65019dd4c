package logic

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestClassifySourceErr(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, true},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"bad query", errors.New("column does not exist"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifySourceErr("op", tt.err)
			if got := errors.Is(err, ErrSourceUnavailable); got != tt.unavailable {
				t.Errorf("classifySourceErr(%v) unavailable = %v, want %v", tt.err, got, tt.unavailable)
			}
		})
	}
	if classifySourceErr("op", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
