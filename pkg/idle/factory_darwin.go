//go:build darwin

package idle

// platformQueriers lists the macOS idle sources in order of preference.
func platformQueriers() []Querier {
	return []Querier{NewIoregQuerier()}
}
