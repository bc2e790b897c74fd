// Package model contains domain models passed between layers.
package model

import "time"

// Item is one weighted entry of the catalog. Weight is a relative sampling
// mass, not a probability.
type Item struct {
	Region string
	Name   string
	Weight int
}

// DrawRecord is one persisted row of draw history.
type DrawRecord struct {
	ItemName string    // boss name, identity of the item
	Region   string    // empty for rows written before regions were tracked
	DrawDate time.Time // calendar day, normalised by Day
	RunID    string    // run that produced the row
	Seq      int       // 1-based position within the run
}

// Pick is a single line of a daily result.
type Pick struct {
	Region string `json:"region"`
	Name   string `json:"name"`
}

// PickOf returns the pick that a record represents.
func PickOf(rec DrawRecord) Pick {
	return Pick{Region: rec.Region, Name: rec.ItemName}
}
