package model

import "time"

// WatchEntry is a symbol tracked by the scheduled watchlist run.
// A nil Assumptions means the configured defaults apply.
type WatchEntry struct {
	Symbol      string       `json:"symbol"`
	Assumptions *Assumptions `json:"assumptions,omitempty"`
	AddedAt     time.Time    `json:"added_at"`
}

// Effective returns the entry's own assumptions, or defaults if it has none.
func (e WatchEntry) Effective(defaults Assumptions) Assumptions {
	if e.Assumptions != nil {
		return *e.Assumptions
	}
	return defaults
}

// WatchState is the persisted watchlist.
type WatchState struct {
	Entries   []WatchEntry `json:"entries"`
	UpdatedAt time.Time    `json:"updated_at"`
}
