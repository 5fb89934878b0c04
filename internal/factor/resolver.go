// Package factor resolves per-instrument per-date forward-adjustment factors:
// local-store lookup first, external-API fallback second.
package factor

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
	"github.com/quantex-lab/snapex/pkg/pricing"
)

// latestWindow is the trailing range queried against the fallback provider
// when the local factor table is absent or empty.
const latestWindow = 30 * 24 * time.Hour

// LocalSource provides factor rows from the relational store.
type LocalSource interface {
	QueryFactors(ctx context.Context, instruments []string, start, end time.Time) ([]types.AdjustmentFactor, error)
	QueryLatestFactors(ctx context.Context, instruments []string) ([]types.AdjustmentFactor, error)
}

// Resolver resolves raw adjustment factors and derives forward factors from
// them. The fallback provider is consulted only for instruments the local
// table has no rows for, and only when enabled.
type Resolver struct {
	local         LocalSource
	fallback      pricing.Provider
	partialPolicy config.PartialFallbackPolicy
	logger        *logger.Logger
}

// NewResolver creates a Resolver. A nil fallback disables the external source.
func NewResolver(local LocalSource, fallback pricing.Provider, partialPolicy config.PartialFallbackPolicy, log *logger.Logger) *Resolver {
	if partialPolicy == "" {
		partialPolicy = config.PartialAccept
	}

	return &Resolver{
		local:         local,
		fallback:      fallback,
		partialPolicy: partialPolicy,
		logger:        log,
	}
}

// GetFactors returns raw factor rows for the instruments between start and
// end inclusive. Instruments with no local rows are fetched from the fallback
// provider when one is configured. An empty result means neither source has
// data; callers must treat that as "cannot export this range", never as
// factor = 1.
func (r *Resolver) GetFactors(ctx context.Context, instruments []string, start, end time.Time) ([]types.AdjustmentFactor, error) {
	rows, err := r.local.QueryFactors(ctx, instruments, start, end)
	if err != nil {
		return nil, err
	}

	covered := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		covered[row.Instrument] = struct{}{}
	}

	var missing []string

	for _, instrument := range instruments {
		if _, ok := covered[instrument]; !ok {
			missing = append(missing, instrument)
		}
	}

	if len(missing) == 0 || r.fallback == nil {
		return rows, nil
	}

	r.logger.Info("falling back to external provider for missing factors",
		zap.Int("missing", len(missing)))

	recovered := 0

	for _, instrument := range missing {
		fetched, err := r.fallback.FactorRows(ctx, instrument, start, end)
		if err != nil {
			return nil, err
		}

		if len(fetched) > 0 {
			recovered++

			rows = append(rows, fetched...)
		}
	}

	if r.partialPolicy == config.PartialReject && recovered < len(missing) {
		return nil, errors.Newf(errors.ErrCodeFactorPartialFallback,
			"fallback resolved %d of %d missing instruments", recovered, len(missing))
	}

	return rows, nil
}

// GetLatestFactors returns the most recent factor row per instrument. When
// the local table is empty, a short trailing window is resolved against the
// fallback provider instead.
func (r *Resolver) GetLatestFactors(ctx context.Context, instruments []string) ([]types.AdjustmentFactor, error) {
	rows, err := r.local.QueryLatestFactors(ctx, instruments)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 || r.fallback == nil {
		return rows, nil
	}

	end := time.Now().UTC()
	start := end.Add(-latestWindow)

	latest := make(map[string]types.AdjustmentFactor, len(instruments))

	for _, instrument := range instruments {
		fetched, err := r.fallback.FactorRows(ctx, instrument, start, end)
		if err != nil {
			return nil, err
		}

		for _, row := range fetched {
			if prev, ok := latest[instrument]; !ok || row.Date.After(prev.Date) {
				latest[instrument] = row
			}
		}
	}

	out := make([]types.AdjustmentFactor, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}

	return out, nil
}

// ComputeForward derives forward-adjustment factors from raw rows. With a
// base date, every row is divided by the instrument's raw factor at that date
// and instruments missing a base row are excluded. Without one, rows are
// divided by the instrument's maximum raw factor across the set, so the most
// recent known date maps to 1.0 and all prior dates are <= 1.0.
//
// This is a pure function over the supplied row set; no "latest factor"
// state survives across calls.
func ComputeForward(rows []types.AdjustmentFactor, baseDate optional.Option[time.Time]) map[types.FactorKey]float64 {
	baseByInstrument := make(map[string]float64, 16)

	if baseDate.IsSome() {
		base := types.DateOf(baseDate.Unwrap())

		for _, row := range rows {
			if types.DateOf(row.Date).Equal(base) {
				baseByInstrument[row.Instrument] = row.RawFactor
			}
		}
	} else {
		for _, row := range rows {
			if current, ok := baseByInstrument[row.Instrument]; !ok || row.RawFactor > current {
				baseByInstrument[row.Instrument] = row.RawFactor
			}
		}
	}

	forward := make(map[types.FactorKey]float64, len(rows))

	for _, row := range rows {
		base, ok := baseByInstrument[row.Instrument]
		if !ok || base <= 0 {
			continue
		}

		forward[row.Key()] = row.RawFactor / base
	}

	return forward
}
