package pricing

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// PolygonClient derives raw back-adjustment factors from the ratio of
// adjusted to unadjusted daily closes, which the vendor defines as the
// cumulative split/dividend adjustment up to the latest session.
type PolygonClient struct {
	client *polygon.Client
	logger *logger.Logger
}

// NewPolygonClient creates a pricing provider backed by the Polygon REST API.
func NewPolygonClient(apiKey string, log *logger.Logger) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonClient{
		client: polygon.New(apiKey),
		logger: log,
	}, nil
}

// FactorRows implements Provider.
func (c *PolygonClient) FactorRows(ctx context.Context, instrument string, start, end time.Time) ([]types.AdjustmentFactor, error) {
	adjusted, err := c.dailyCloses(ctx, instrument, start, end, true)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFactorFetchFailed, err, "failed to fetch adjusted closes for %s", instrument)
	}

	unadjusted, err := c.dailyCloses(ctx, instrument, start, end, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFactorFetchFailed, err, "failed to fetch unadjusted closes for %s", instrument)
	}

	rows := make([]types.AdjustmentFactor, 0, len(adjusted))

	for date, adjClose := range adjusted {
		unadjClose, ok := unadjusted[date]
		if !ok || unadjClose == 0 {
			continue
		}

		rows = append(rows, types.AdjustmentFactor{
			Instrument: instrument,
			Date:       time.Unix(0, date).UTC(),
			RawFactor:  adjClose / unadjClose,
		})
	}

	c.logger.Debug("fetched fallback factor rows",
		zap.String("instrument", instrument),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// dailyCloses returns close prices keyed by the date's UnixNano.
func (c *PolygonClient) dailyCloses(ctx context.Context, instrument string, start, end time.Time, adjusted bool) (map[int64]float64, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     instrument,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(adjusted).WithLimit(50000)

	closes := make(map[int64]float64)

	iter := c.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		date := types.DateOf(time.Time(agg.Timestamp).UTC())
		closes[date.UnixNano()] = agg.Close
	}

	if iter.Err() != nil {
		return nil, iter.Err()
	}

	return closes, nil
}
