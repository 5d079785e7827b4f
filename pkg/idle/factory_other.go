//go:build !linux && !darwin

package idle

// platformQueriers has no idle sources on other platforms.
func platformQueriers() []Querier {
	return nil
}
