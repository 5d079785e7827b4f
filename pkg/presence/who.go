package presence

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// WhoChecker detects presence from the output of `who`.
type WhoChecker struct {
	cmdExecutor cmdExecutor
}

// NewWhoChecker creates a new who-based checker.
func NewWhoChecker() *WhoChecker {
	return &WhoChecker{cmdExecutor: defaultCmdExecutor}
}

// IsPresent returns true if username has at least one login in `who`.
func (c *WhoChecker) IsPresent(ctx context.Context, username string) (bool, error) {
	output, err := c.cmdExecutor(ctx, "who")
	if err != nil {
		return false, fmt.Errorf("failed to execute who: %w", err)
	}
	return parseWho(output, username), nil
}

// parseWho matches the first field of each line exactly, so "al" does not
// match a login of "alice".
func parseWho(output []byte, username string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 && fields[0] == username {
			return true
		}
	}
	return false
}
