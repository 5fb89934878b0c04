package types

import (
	"sort"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// FrameRow is one record of a canonical frame, keyed by (Timestamp, Instrument).
// Floats and Strings are aligned with the owning frame's column lists.
type FrameRow struct {
	Timestamp  time.Time
	Instrument string
	Floats     []float64
	Strings    []string
}

// Frame is the in-memory, unit-normalized, adjustment-applied table that all
// dataset types are derived from before writing. Rows are kept sorted by
// (Timestamp, Instrument) and unique per key once Sort and Dedup have run.
// KeyStrings extends the key with that many leading string columns for
// datasets whose rows are not unique per (Timestamp, Instrument) alone.
type Frame struct {
	FloatColumns  []string
	StringColumns []string
	KeyStrings    int
	Rows          []FrameRow
}

// InstrumentCoverage is the first/last key date of one instrument in a frame.
type InstrumentCoverage struct {
	Instrument string
	First      time.Time
	Last       time.Time
}

type frameKey struct {
	unixNano   int64
	instrument string
	strings    string
}

// NewFrame creates an empty frame with the column shape and key shape of the
// dataset type.
func NewFrame(dataset DatasetType) *Frame {
	return &Frame{
		FloatColumns:  dataset.FloatColumns(),
		StringColumns: dataset.StringColumns(),
		KeyStrings:    dataset.KeyStringColumns(),
		Rows:          nil,
	}
}

func (f *Frame) rowKeyStrings(row FrameRow) string {
	if f.KeyStrings == 0 || len(row.Strings) < f.KeyStrings {
		return ""
	}

	return strings.Join(row.Strings[:f.KeyStrings], "\x00")
}

func (f *Frame) rowKey(row FrameRow) frameKey {
	return frameKey{
		unixNano:   row.Timestamp.UnixNano(),
		instrument: row.Instrument,
		strings:    f.rowKeyStrings(row),
	}
}

// Append adds a row to the frame without re-sorting.
func (f *Frame) Append(row FrameRow) {
	f.Rows = append(f.Rows, row)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}

// ColumnsEqual reports whether two frames share the same column shape.
func (f *Frame) ColumnsEqual(other *Frame) bool {
	if len(f.FloatColumns) != len(other.FloatColumns) || len(f.StringColumns) != len(other.StringColumns) {
		return false
	}

	for i, c := range f.FloatColumns {
		if other.FloatColumns[i] != c {
			return false
		}
	}

	for i, c := range f.StringColumns {
		if other.StringColumns[i] != c {
			return false
		}
	}

	return true
}

// Sort orders rows by key ascending.
func (f *Frame) Sort() {
	sort.SliceStable(f.Rows, func(i, j int) bool {
		if !f.Rows[i].Timestamp.Equal(f.Rows[j].Timestamp) {
			return f.Rows[i].Timestamp.Before(f.Rows[j].Timestamp)
		}

		if f.Rows[i].Instrument != f.Rows[j].Instrument {
			return f.Rows[i].Instrument < f.Rows[j].Instrument
		}

		return f.rowKeyStrings(f.Rows[i]) < f.rowKeyStrings(f.Rows[j])
	})
}

// Dedup removes duplicate keys keeping the last-appended row per key, then
// re-sorts.
func (f *Frame) Dedup() {
	seen := make(map[frameKey]int, len(f.Rows))
	out := make([]FrameRow, 0, len(f.Rows))

	for _, row := range f.Rows {
		key := f.rowKey(row)
		if idx, ok := seen[key]; ok {
			out[idx] = row

			continue
		}

		seen[key] = len(out)
		out = append(out, row)
	}

	f.Rows = out
	f.Sort()
}

// Merge concatenates newer onto f and deduplicates keeping newer rows on key
// collision. Neither input is modified; the merged frame is sorted.
func (f *Frame) Merge(newer *Frame) (*Frame, error) {
	if !f.ColumnsEqual(newer) {
		return nil, errors.New(errors.ErrCodeWriteValidation, "cannot merge frames with different column shapes")
	}

	merged := &Frame{
		FloatColumns:  f.FloatColumns,
		StringColumns: f.StringColumns,
		KeyStrings:    f.KeyStrings,
		Rows:          make([]FrameRow, 0, len(f.Rows)+len(newer.Rows)),
	}
	merged.Rows = append(merged.Rows, f.Rows...)
	merged.Rows = append(merged.Rows, newer.Rows...)
	merged.Dedup()

	return merged, nil
}

// Concat appends the rows of other to f. Column shapes must match.
func (f *Frame) Concat(other *Frame) error {
	if !f.ColumnsEqual(other) {
		return errors.New(errors.ErrCodeWriteValidation, "cannot concat frames with different column shapes")
	}

	f.Rows = append(f.Rows, other.Rows...)

	return nil
}

// MaxTimestamp returns the maximum key timestamp in the frame, or None when
// the frame is empty.
func (f *Frame) MaxTimestamp() optional.Option[time.Time] {
	if len(f.Rows) == 0 {
		return optional.None[time.Time]()
	}

	max := f.Rows[0].Timestamp
	for _, row := range f.Rows[1:] {
		if row.Timestamp.After(max) {
			max = row.Timestamp
		}
	}

	return optional.Some(max)
}

// Instruments returns the distinct instruments of the frame, sorted.
func (f *Frame) Instruments() []string {
	seen := make(map[string]struct{}, len(f.Rows))
	for _, row := range f.Rows {
		seen[row.Instrument] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for instrument := range seen {
		out = append(out, instrument)
	}

	sort.Strings(out)

	return out
}

// Dates returns the distinct key dates of the frame, sorted and deduplicated.
func (f *Frame) Dates() []time.Time {
	seen := make(map[int64]time.Time, len(f.Rows))
	for _, row := range f.Rows {
		date := DateOf(row.Timestamp)
		seen[date.UnixNano()] = date
	}

	out := make([]time.Time, 0, len(seen))
	for _, date := range seen {
		out = append(out, date)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	return out
}

// Coverage returns the first/last key date per instrument, sorted by instrument.
func (f *Frame) Coverage() []InstrumentCoverage {
	byInstrument := make(map[string]*InstrumentCoverage, 16)

	for _, row := range f.Rows {
		date := DateOf(row.Timestamp)

		cov, ok := byInstrument[row.Instrument]
		if !ok {
			byInstrument[row.Instrument] = &InstrumentCoverage{Instrument: row.Instrument, First: date, Last: date}

			continue
		}

		if date.Before(cov.First) {
			cov.First = date
		}

		if date.After(cov.Last) {
			cov.Last = date
		}
	}

	out := make([]InstrumentCoverage, 0, len(byInstrument))
	for _, cov := range byInstrument {
		out = append(out, *cov)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })

	return out
}
