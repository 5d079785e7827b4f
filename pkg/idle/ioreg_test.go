package idle

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestParseHIDIdleTime(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedNanos int64
		expectError   bool
	}{
		{
			name: "Valid HIDIdleTime",
			input: `    | |   |   +-o IOHIDSystem  <class IOHIDSystem, id 0x1000002d0, registered, matched, active, busy 0 (0 ms), retain 22>
    | |   |     {
    | |   |       "HIDIdleTime" = 3456789012
    | |   |       "IOClass" = "IOHIDSystem"
    | |   |     }`,
			expectedNanos: 3456789012,
		},
		{
			name: "HIDIdleTime with quotes",
			input: `    | |   |       "HIDIdleTime" = "1234567890"
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectedNanos: 1234567890,
		},
		{
			name: "Zero HIDIdleTime",
			input: `    | |   |       "HIDIdleTime" = 0
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectedNanos: 0,
		},
		{
			name:        "Missing HIDIdleTime",
			input:       `"IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
		{
			name: "Invalid HIDIdleTime format",
			input: `    | |   |       "HIDIdleTime" = "not-a-number"
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
		{
			name: "HIDIdleTime without equals",
			input: `    | |   |       "HIDIdleTime" 3456789012
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseHIDIdleTime([]byte(tt.input))

			if (err != nil) != tt.expectError {
				t.Errorf("parseHIDIdleTime() error = %v, expectError %v", err, tt.expectError)
			}

			if result != tt.expectedNanos {
				t.Errorf("parseHIDIdleTime() = %v, want %v", result, tt.expectedNanos)
			}
		})
	}
}

func TestIoregQuerier_IdleTime(t *testing.T) {
	tests := []struct {
		name             string
		mockOutput       []byte
		mockError        error
		expectedIdleTime time.Duration
		expectError      bool
	}{
		{
			name: "Valid idle time - 5 seconds",
			mockOutput: []byte(`    | |   |       "HIDIdleTime" = 5000000000
    | |   |       "IOClass" = "IOHIDSystem"`),
			expectedIdleTime: 5 * time.Second,
		},
		{
			name: "Valid idle time - 2 minutes",
			mockOutput: []byte(`    | |   |       "HIDIdleTime" = 120000000000
    | |   |       "IOClass" = "IOHIDSystem"`),
			expectedIdleTime: 2 * time.Minute,
		},
		{
			name:        "ioreg command error",
			mockError:   fmt.Errorf("ioreg not found"),
			expectError: true,
		},
		{
			name:        "Invalid ioreg output",
			mockOutput:  []byte("invalid output"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &IoregQuerier{
				cmdExecutor: func(_ context.Context, name string, _ ...string) ([]byte, error) {
					if name != "ioreg" {
						t.Errorf("unexpected command: %s", name)
					}
					return tt.mockOutput, tt.mockError
				},
			}

			idleTime, err := q.IdleTime(context.Background())

			if (err != nil) != tt.expectError {
				t.Errorf("IdleTime() error = %v, expectError %v", err, tt.expectError)
			}

			if idleTime != tt.expectedIdleTime {
				t.Errorf("IdleTime() = %v, want %v", idleTime, tt.expectedIdleTime)
			}

			if q.IsAvailable(context.Background()) == tt.expectError {
				t.Errorf("IsAvailable() should be %v", !tt.expectError)
			}
		})
	}
}

func TestXprintidleQuerier_IdleTime(t *testing.T) {
	tests := []struct {
		name        string
		mockOutput  []byte
		mockError   error
		expected    time.Duration
		expectError bool
	}{
		{
			name:       "Milliseconds",
			mockOutput: []byte("4321\n"),
			expected:   4321 * time.Millisecond,
		},
		{
			name:        "No display",
			mockError:   fmt.Errorf("couldn't open display"),
			expectError: true,
		},
		{
			name:        "Garbage",
			mockOutput:  []byte("idle"),
			expectError: true,
		},
		{
			name:        "Negative",
			mockOutput:  []byte("-5"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &XprintidleQuerier{
				cmdExecutor: func(_ context.Context, name string, _ ...string) ([]byte, error) {
					if name != "xprintidle" {
						t.Errorf("unexpected command: %s", name)
					}
					return tt.mockOutput, tt.mockError
				},
			}

			got, err := q.IdleTime(context.Background())
			if (err != nil) != tt.expectError {
				t.Errorf("IdleTime() error = %v, expectError %v", err, tt.expectError)
			}
			if got != tt.expected {
				t.Errorf("IdleTime() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewQuerierOnlyReturnsAvailable(t *testing.T) {
	// Only checks that the call is safe on any host
	q := NewQuerier(context.Background())
	if q != nil && !q.IsAvailable(context.Background()) {
		t.Error("NewQuerier returned an unavailable querier")
	}
}
