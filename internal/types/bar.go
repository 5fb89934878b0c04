package types

import (
	"time"
)

// Granularity defines the time resolution of a bar table.
type Granularity string

const (
	GranularityDaily    Granularity = "daily"
	GranularityIntraday Granularity = "intraday"
)

// Valid reports whether the granularity is a known value.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityIntraday:
		return true
	default:
		return false
	}
}

// RawBar is one trading interval for one instrument as stored in the
// relational store: integer minor-currency-unit prices and lot-based volumes.
type RawBar struct {
	Time        time.Time
	Instrument  string
	PriceOpen   int64
	PriceHigh   int64
	PriceLow    int64
	PriceClose  int64
	VolumeLots  int64
	AmountMinor int64
}

// Bar is one trading interval for one instrument in canonical units:
// currency-unit float prices with the forward-adjustment factor applied,
// share-unit volumes inverse-adjusted so counts stay historically comparable.
type Bar struct {
	Time       time.Time
	Instrument string
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Amount     float64
	AdjFactor  float64
}

// DateOf truncates a timestamp to its date component. Intraday bars join
// adjustment factors on the date, so all bars of a day share the day's factor.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
