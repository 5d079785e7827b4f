//go:build linux

package idle

// platformQueriers lists the Linux idle sources in order of preference.
func platformQueriers() []Querier {
	return []Querier{NewXprintidleQuerier(), NewTmuxQuerier("")}
}
