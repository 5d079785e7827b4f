package idle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TmuxQuerier derives idle time from tmux client activity.
type TmuxQuerier struct {
	sessionName string
	cmdExecutor cmdExecutor
	getenv      func(string) string
	now         func() time.Time
}

// NewTmuxQuerier creates a new tmux idle querier.
// If sessionName is empty, it will attempt to detect the current session.
func NewTmuxQuerier(sessionName string) *TmuxQuerier {
	return &TmuxQuerier{
		sessionName: sessionName,
		cmdExecutor: defaultCmdExecutor,
		getenv:      os.Getenv,
		now:         time.Now,
	}
}

// IdleTime retrieves the idle time from tmux.
func (q *TmuxQuerier) IdleTime(ctx context.Context) (time.Duration, error) {
	if !q.isInTmux() {
		return 0, fmt.Errorf("not in a tmux session")
	}

	sessionName := q.sessionName
	if sessionName == "" {
		name, err := q.getCurrentSessionName(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get current session name: %w", err)
		}
		sessionName = name
	}

	idleTime, err := q.getSessionIdleTime(ctx, sessionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get session idle time: %w", err)
	}

	return idleTime, nil
}

func (q *TmuxQuerier) isInTmux() bool {
	return q.getenv("TMUX") != ""
}

func (q *TmuxQuerier) getCurrentSessionName(ctx context.Context) (string, error) {
	output, err := q.cmdExecutor(ctx, "tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// getSessionIdleTime gets the minimum idle time across all clients in a session.
func (q *TmuxQuerier) getSessionIdleTime(ctx context.Context, sessionName string) (time.Duration, error) {
	output, err := q.cmdExecutor(ctx, "tmux", "list-clients", "-t", sessionName, "-F", "#{client_activity}")
	if err != nil {
		return 0, err
	}

	var mostRecentActivity time.Time
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		// client_activity is seconds since epoch
		activitySecs, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			continue
		}

		activityTime := time.Unix(activitySecs, 0)
		if mostRecentActivity.IsZero() || activityTime.After(mostRecentActivity) {
			mostRecentActivity = activityTime
		}
	}

	if mostRecentActivity.IsZero() {
		return 0, fmt.Errorf("no client activity for session %s", sessionName)
	}

	idleTime := q.now().Sub(mostRecentActivity)
	if idleTime < 0 {
		// Clock skew
		idleTime = 0
	}

	return idleTime, nil
}

// IsAvailable checks if tmux is available and we're in a tmux session.
func (q *TmuxQuerier) IsAvailable(ctx context.Context) bool {
	if !q.isInTmux() {
		return false
	}

	_, err := q.cmdExecutor(ctx, "tmux", "-V")
	return err == nil
}
