package idle

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IoregQuerier reads the HID idle counter on macOS through ioreg.
type IoregQuerier struct {
	cmdExecutor cmdExecutor
}

// NewIoregQuerier creates a new ioreg idle querier.
func NewIoregQuerier() *IoregQuerier {
	return &IoregQuerier{
		cmdExecutor: defaultCmdExecutor,
	}
}

// IdleTime returns the time since the last keyboard or pointer event.
func (q *IoregQuerier) IdleTime(ctx context.Context) (time.Duration, error) {
	output, err := q.cmdExecutor(ctx, "ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, fmt.Errorf("failed to execute ioreg: %w", err)
	}

	idleNanos, err := parseHIDIdleTime(output)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}

	return time.Duration(idleNanos), nil
}

// parseHIDIdleTime extracts HIDIdleTime (nanoseconds) from ioreg output.
// The line looks like: "HIDIdleTime" = 123456789
func parseHIDIdleTime(output []byte) (int64, error) {
	for _, line := range bytes.Split(output, []byte("\n")) {
		lineStr := string(bytes.TrimSpace(line))
		if !strings.Contains(lineStr, "HIDIdleTime") {
			continue
		}

		parts := strings.Split(lineStr, "=")
		if len(parts) != 2 {
			continue
		}

		valueStr := strings.TrimSpace(parts[1])
		valueStr = strings.TrimSpace(strings.Trim(valueStr, "\""))

		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse idle time value: %w", err)
		}

		return value, nil
	}

	return 0, fmt.Errorf("HIDIdleTime not found in ioreg output")
}

// IsAvailable checks if ioreg is available on the system.
func (q *IoregQuerier) IsAvailable(ctx context.Context) bool {
	_, err := q.IdleTime(ctx)
	return err == nil
}
