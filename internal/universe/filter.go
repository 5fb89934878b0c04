// Package universe resolves export instrument sets from the instrument-status
// source.
package universe

import (
	"context"
	"sort"

	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// StatusSource provides the instrument-status rows the filter predicates are
// evaluated against.
type StatusSource interface {
	QueryInstrumentStatus(ctx context.Context) ([]types.InstrumentStatus, error)
}

// Filter selects the instruments included in an export run. The zero value
// includes everything.
type Filter struct {
	// Exchanges is an allow-list of exchange identifiers. Empty means all.
	Exchanges []string `json:"exchanges" validate:"omitempty,dive,required"`
	// ExcludeDelisted drops instruments no longer listed.
	ExcludeDelisted bool `json:"exclude_delisted"`
	// ExcludeSuspended drops instruments currently suspended from trading.
	ExcludeSuspended bool `json:"exclude_suspended"`
	// ExcludeSpecialTreatment drops instruments under special-treatment flags.
	ExcludeSpecialTreatment bool `json:"exclude_special_treatment"`
}

// Matches evaluates the filter predicates against one status row.
func (f Filter) Matches(status types.InstrumentStatus) bool {
	if len(f.Exchanges) > 0 {
		allowed := false

		for _, exchange := range f.Exchanges {
			if status.Exchange == exchange {
				allowed = true

				break
			}
		}

		if !allowed {
			return false
		}
	}

	if f.ExcludeDelisted && status.Delisted {
		return false
	}

	if f.ExcludeSuspended && status.Suspended {
		return false
	}

	if f.ExcludeSpecialTreatment && status.SpecialTreatment {
		return false
	}

	return true
}

// Resolve returns the sorted instruments passing the filter.
func (f Filter) Resolve(ctx context.Context, source StatusSource) ([]string, error) {
	statuses, err := source.QueryInstrumentStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to resolve instrument universe", err)
	}

	instruments := make([]string, 0, len(statuses))

	for _, status := range statuses {
		if f.Matches(status) {
			instruments = append(instruments, status.Instrument)
		}
	}

	sort.Strings(instruments)

	return instruments, nil
}
