package export

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/types"
)

// Frame builders for the dataset types that are not canonical bar loads:
// derived factor tables, board daily bars, board membership, and board index
// metadata.

// factorFrame derives the per-instrument factor table: raw factor plus the
// forward factor computed over the full resolved row set.
func (c *Coordinator) factorFrame(ctx context.Context, instruments []string, start, end time.Time) (*types.Frame, error) {
	rows, err := c.factors.GetFactors(ctx, instruments, types.DateOf(start), types.DateOf(end))
	if err != nil {
		return nil, err
	}

	forward := factor.ComputeForward(rows, optional.None[time.Time]())
	frame := types.NewFrame(types.DatasetFactorTable)

	for _, row := range rows {
		fwd, ok := forward[row.Key()]
		if !ok {
			continue
		}

		frame.Append(types.FrameRow{
			Timestamp:  types.DateOf(row.Date),
			Instrument: row.Instrument,
			Floats:     []float64{row.RawFactor, fwd},
			Strings:    nil,
		})
	}

	frame.Dedup()

	return frame, nil
}

// boardDailyFrame loads board index bars. Board bars are unit-converted but
// never price-adjusted.
func (c *Coordinator) boardDailyFrame(ctx context.Context, boards []string, start, end time.Time) (*types.Frame, error) {
	raw, err := c.store.QueryBoardDailyBars(ctx, boards, start, end)
	if err != nil {
		return nil, err
	}

	frame := types.NewFrame(types.DatasetBoardDaily)

	for _, bar := range raw {
		frame.Append(types.FrameRow{
			Timestamp:  bar.Time,
			Instrument: bar.Instrument,
			Floats: []float64{
				c.roundMinor(bar.PriceOpen),
				c.roundMinor(bar.PriceHigh),
				c.roundMinor(bar.PriceLow),
				c.roundMinor(bar.PriceClose),
				float64(bar.VolumeLots) * c.units.LotSize,
				c.roundMinor(bar.AmountMinor),
			},
			Strings: nil,
		})
	}

	frame.Dedup()

	return frame, nil
}

// membershipFrame loads board membership rows keyed by (date, instrument,
// board); one instrument may sit on several boards on the same date.
func (c *Coordinator) membershipFrame(ctx context.Context, start, end time.Time) (*types.Frame, error) {
	rows, err := c.store.QueryBoardMembership(ctx, start, end)
	if err != nil {
		return nil, err
	}

	frame := types.NewFrame(types.DatasetBoardMembership)

	for _, row := range rows {
		frame.Append(types.FrameRow{
			Timestamp:  types.DateOf(row.Date),
			Instrument: row.Instrument,
			Floats:     []float64{row.Weight},
			Strings:    []string{row.Board},
		})
	}

	frame.Dedup()

	return frame, nil
}

// boardIndexFrame loads board/index metadata keyed by (updated date, board).
func (c *Coordinator) boardIndexFrame(ctx context.Context, start, end time.Time) (*types.Frame, error) {
	rows, err := c.store.QueryBoardIndices(ctx, start, end)
	if err != nil {
		return nil, err
	}

	frame := types.NewFrame(types.DatasetBoardIndex)

	for _, row := range rows {
		frame.Append(types.FrameRow{
			Timestamp:  types.DateOf(row.UpdatedAt),
			Instrument: row.Board,
			Floats:     []float64{float64(row.ConstituentCount)},
			Strings:    []string{row.Name, row.Category},
		})
	}

	frame.Dedup()

	return frame, nil
}

func (c *Coordinator) roundMinor(minor int64) float64 {
	v := float64(minor) / c.units.PriceDivisor

	return decimal.NewFromFloat(v).Round(c.units.PricePrecision).InexactFloat64()
}
