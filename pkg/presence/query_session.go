package presence

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// QuerySessionChecker detects presence from the output of the Windows
// `query session` command.
type QuerySessionChecker struct {
	cmdExecutor cmdExecutor
}

// NewQuerySessionChecker creates a new query-session based checker.
func NewQuerySessionChecker() *QuerySessionChecker {
	return &QuerySessionChecker{cmdExecutor: defaultCmdExecutor}
}

// IsPresent returns true if username owns a session in the Active state.
func (c *QuerySessionChecker) IsPresent(ctx context.Context, username string) (bool, error) {
	output, err := c.cmdExecutor(ctx, "query", "session")
	if err != nil {
		return false, fmt.Errorf("failed to execute query session: %w", err)
	}
	return parseQuerySession(output, username), nil
}

// parseQuerySession looks for a row with the username and an Active state.
// The current session is prefixed with '>' which is stripped.
//
//	 SESSIONNAME       USERNAME                 ID  STATE   TYPE        DEVICE
//	>console           alice                     1  Active
//	 rdp-tcp                                 65536  Listen
func parseQuerySession(output []byte, username string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), ">"))
		hasUser, active := false, false
		for _, f := range fields {
			if strings.EqualFold(f, username) {
				hasUser = true
			}
			if f == "Active" {
				active = true
			}
		}
		if hasUser && active {
			return true
		}
	}
	return false
}
