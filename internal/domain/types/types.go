// Package types contains the wire shapes of a daily result.
package types

// Entry is one ranked pick of the day.
type Entry struct {
	Rank   int    `json:"rank"`
	Region string `json:"region"`
	Name   string `json:"name"`
}

// Report is the JSON document printed for a run.
type Report struct {
	Date         string  `json:"date"`
	Replayed     bool    `json:"replayed"`
	RunID        string  `json:"run_id,omitempty"`
	HistorySince *string `json:"history_since,omitempty"`
	Picks        []Entry `json:"picks"`
}
