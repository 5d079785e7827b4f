package input

import (
	"fmt"
	"strings"
)

// checkHookSession reports whether a global input hook can see events in
// the current graphical session. The hook reads X11 on Unix, so it sees
// nothing without a display or under a native Wayland session.
func checkHookSession(goos string, getenv func(string) string) error {
	switch goos {
	case "darwin", "windows":
		return nil
	}
	if strings.EqualFold(getenv("XDG_SESSION_TYPE"), "wayland") {
		return fmt.Errorf("%w: wayland session", ErrUnsupported)
	}
	if getenv("DISPLAY") == "" {
		return fmt.Errorf("%w: no X display", ErrUnsupported)
	}
	return nil
}
