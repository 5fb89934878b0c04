// Package pricing provides the external fallback source for adjustment
// factors, consulted only when the local factor table has no data for a
// requested key.
package pricing

import (
	"context"
	"time"

	"github.com/quantex-lab/snapex/internal/types"
)

// Provider fetches raw adjustment-factor rows for one instrument over a date
// range from an external vendor.
type Provider interface {
	// FactorRows returns factor rows for the instrument between start and end
	// inclusive. An empty slice with a nil error means the vendor has no data
	// for the range.
	FactorRows(ctx context.Context, instrument string, start, end time.Time) ([]types.AdjustmentFactor, error)
}
