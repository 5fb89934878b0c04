// Package reader loads raw bars from the relational store, joins forward
// adjustment factors, and produces canonical frames keyed by
// (timestamp, instrument).
package reader

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/internal/universe"
	"github.com/quantex-lab/snapex/pkg/errors"
)

const (
	// instrumentBatchSize bounds peak memory when loading a whole universe.
	instrumentBatchSize = 500
	// DefaultWindowDays is the date-window size of the batched loader.
	DefaultWindowDays = 30
)

// BarSource provides raw bars in storage units.
type BarSource interface {
	QueryDailyBars(ctx context.Context, instruments []string, start, end time.Time) ([]types.RawBar, error)
	QueryIntradayBars(ctx context.Context, instruments []string, start, end time.Time) ([]types.RawBar, error)
}

// Window is one yielded batch of the batched loader.
type Window struct {
	Start time.Time
	End   time.Time
	Frame *types.Frame
}

// Reader converts raw storage-unit bars into canonical frames. Every emitted
// price is forward-adjusted or the load fails.
type Reader struct {
	bars    BarSource
	status  universe.StatusSource
	factors *factor.Resolver
	units   config.UnitConfig
	logger  *logger.Logger
}

// NewReader creates a Reader.
func NewReader(bars BarSource, status universe.StatusSource, factors *factor.Resolver, units config.UnitConfig, log *logger.Logger) *Reader {
	return &Reader{
		bars:    bars,
		status:  status,
		factors: factors,
		units:   units,
		logger:  log,
	}
}

// LoadBars loads bars for the instruments between start and end inclusive and
// returns a canonical frame sorted by (timestamp, instrument). Any bar whose
// (instrument, date) has no resolvable forward factor fails the whole call.
// An empty range returns an empty frame; the caller decides whether that is
// an error for its mode.
func (r *Reader) LoadBars(ctx context.Context, instruments []string, start, end time.Time, granularity types.Granularity) (*types.Frame, error) {
	if !granularity.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidGranularity, "unknown granularity %q", granularity)
	}

	var (
		raw []types.RawBar
		err error
	)

	if granularity == types.GranularityIntraday {
		raw, err = r.bars.QueryIntradayBars(ctx, instruments, start, end)
	} else {
		raw, err = r.bars.QueryDailyBars(ctx, instruments, start, end)
	}

	if err != nil {
		return nil, err
	}

	dataset := types.DatasetDailyBars
	if granularity == types.GranularityIntraday {
		dataset = types.DatasetIntradayBars
	}

	frame := types.NewFrame(dataset)
	if len(raw) == 0 {
		return frame, nil
	}

	forward, err := r.resolveForward(ctx, raw, start, end)
	if err != nil {
		return nil, err
	}

	for _, bar := range raw {
		key := types.FactorKey{Instrument: bar.Instrument, Date: types.DateOf(bar.Time)}

		f, ok := forward[key]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeFactorMissing,
				"no forward-adjustment factor for %s; refusing to emit unadjusted prices", key)
		}

		frame.Append(types.FrameRow{
			Timestamp:  bar.Time,
			Instrument: bar.Instrument,
			Floats: []float64{
				r.price(bar.PriceOpen, f),
				r.price(bar.PriceHigh, f),
				r.price(bar.PriceLow, f),
				r.price(bar.PriceClose, f),
				r.volume(bar.VolumeLots, f),
				r.amount(bar.AmountMinor),
				f,
			},
			Strings: nil,
		})
	}

	frame.Dedup()

	r.logger.Debug("loaded canonical bars",
		zap.String("granularity", string(granularity)),
		zap.Int("rows", frame.Len()))

	return frame, nil
}

// LoadBarsForUniverse resolves the instrument set from the filter and loads
// it in fixed-size instrument batches, concatenating the batch frames.
func (r *Reader) LoadBarsForUniverse(ctx context.Context, filter universe.Filter, start, end time.Time, granularity types.Granularity) (*types.Frame, error) {
	instruments, err := filter.Resolve(ctx, r.status)
	if err != nil {
		return nil, err
	}

	dataset := types.DatasetDailyBars
	if granularity == types.GranularityIntraday {
		dataset = types.DatasetIntradayBars
	}

	combined := types.NewFrame(dataset)

	for offset := 0; offset < len(instruments); offset += instrumentBatchSize {
		limit := offset + instrumentBatchSize
		if limit > len(instruments) {
			limit = len(instruments)
		}

		batch, err := r.LoadBars(ctx, instruments[offset:limit], start, end, granularity)
		if err != nil {
			return nil, err
		}

		if err := combined.Concat(batch); err != nil {
			return nil, err
		}
	}

	combined.Dedup()

	return combined, nil
}

// LoadBarsBatched yields (window_start, window_end, frame) for fixed-size
// date windows so a large intraday history never has to fit in memory at
// once. Iteration stops on the first error or when the consumer breaks.
func (r *Reader) LoadBarsBatched(ctx context.Context, instruments []string, start, end time.Time, granularity types.Granularity, windowDays int) func(yield func(Window, error) bool) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	return func(yield func(Window, error) bool) {
		windowStart := types.DateOf(start)
		lastDate := types.DateOf(end)

		for !windowStart.After(lastDate) {
			windowEnd := windowStart.AddDate(0, 0, windowDays-1)
			if windowEnd.After(lastDate) {
				windowEnd = lastDate
			}

			queryStart := windowStart
			if start.After(queryStart) {
				queryStart = start
			}

			// Inclusive query bound covering the whole last window day.
			queryEnd := windowEnd.AddDate(0, 0, 1).Add(-time.Nanosecond)
			if end.Before(queryEnd) {
				queryEnd = end
			}

			frame, err := r.LoadBars(ctx, instruments, queryStart, queryEnd, granularity)
			if !yield(Window{Start: windowStart, End: windowEnd, Frame: frame}, err) {
				return
			}

			if err != nil {
				return
			}

			windowStart = windowEnd.AddDate(0, 0, 1)
		}
	}
}

// resolveForward resolves raw factors for the instruments present in the raw
// rows and derives forward factors over the full candidate set.
func (r *Reader) resolveForward(ctx context.Context, raw []types.RawBar, start, end time.Time) (map[types.FactorKey]float64, error) {
	seen := make(map[string]struct{}, 16)
	instruments := make([]string, 0, 16)

	for _, bar := range raw {
		if _, ok := seen[bar.Instrument]; !ok {
			seen[bar.Instrument] = struct{}{}

			instruments = append(instruments, bar.Instrument)
		}
	}

	rows, err := r.factors.GetFactors(ctx, instruments, types.DateOf(start), types.DateOf(end))
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeFactorMissing,
			"no adjustment factors resolvable for requested range")
	}

	return factor.ComputeForward(rows, optional.None[time.Time]()), nil
}

// price converts a minor-currency-unit storage price to canonical units with
// the forward factor applied, rounded to the snapshot precision.
func (r *Reader) price(storage int64, forward float64) float64 {
	v := float64(storage) / r.units.PriceDivisor * forward

	return r.round(v)
}

// volume converts lot-based storage volume to canonical share units. Volumes
// are inverse-adjusted so share counts remain historically comparable.
func (r *Reader) volume(lots int64, forward float64) float64 {
	v := float64(lots) * r.units.LotSize / forward

	return r.round(v)
}

// amount converts a minor-currency-unit amount to currency units. Amounts are
// not price-adjusted.
func (r *Reader) amount(minor int64) float64 {
	return r.round(float64(minor) / r.units.PriceDivisor)
}

func (r *Reader) round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(r.units.PricePrecision).InexactFloat64()
}
