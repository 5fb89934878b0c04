package types

import (
	"fmt"
	"time"
)

// AdjustmentFactor is one vendor-supplied cumulative back-adjustment factor
// for one instrument on one date. RawFactor is monotonic non-decreasing per
// instrument over time.
type AdjustmentFactor struct {
	Instrument string
	Date       time.Time
	RawFactor  float64
}

// FactorKey identifies a factor row by (instrument, date).
type FactorKey struct {
	Instrument string
	Date       time.Time
}

// Key returns the FactorKey of the row. The date is truncated so intraday
// timestamps and daily dates compare equal.
func (f AdjustmentFactor) Key() FactorKey {
	return FactorKey{Instrument: f.Instrument, Date: DateOf(f.Date)}
}

// String implements fmt.Stringer for log output.
func (k FactorKey) String() string {
	return fmt.Sprintf("%s@%s", k.Instrument, k.Date.Format("2006-01-02"))
}
