package reader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/internal/universe"
	"github.com/quantex-lab/snapex/mocks"
	"github.com/quantex-lab/snapex/pkg/errors"
)

type ReaderTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	bars    *mocks.MockBarSource
	status  *mocks.MockStatusSource
	factors *mocks.MockLocalSource
	reader  *Reader
}

func TestReaderSuite(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

func (suite *ReaderTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.bars = mocks.NewMockBarSource(suite.ctrl)
	suite.status = mocks.NewMockStatusSource(suite.ctrl)
	suite.factors = mocks.NewMockLocalSource(suite.ctrl)

	log := logger.NewNopLogger()
	resolver := factor.NewResolver(suite.factors, nil, config.PartialAccept, log)
	units := config.UnitConfig{PriceDivisor: 1000, LotSize: 100, PricePrecision: 4}
	suite.reader = NewReader(suite.bars, suite.status, resolver, units, log)
}

func (suite *ReaderTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func rawBar(ts time.Time, instrument string, closeMinor, volumeLots, amountMinor int64) types.RawBar {
	return types.RawBar{
		Time:        ts,
		Instrument:  instrument,
		PriceOpen:   closeMinor,
		PriceHigh:   closeMinor,
		PriceLow:    closeMinor,
		PriceClose:  closeMinor,
		VolumeLots:  volumeLots,
		AmountMinor: amountMinor,
	}
}

func factorRow(instrument string, date time.Time, raw float64) types.AdjustmentFactor {
	return types.AdjustmentFactor{Instrument: instrument, Date: date, RawFactor: raw}
}

func (suite *ReaderTestSuite) TestLoadBarsAppliesForwardAdjustment() {
	// raw factor 0.98 at day 1 against a 1.0 maximum gives forward 0.98
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), []string{"600001.SH"}, day(1), day(2)).
		Return([]types.RawBar{rawBar(day(1), "600001.SH", 10000, 50, 123456)}, nil)
	suite.factors.EXPECT().
		QueryFactors(gomock.Any(), []string{"600001.SH"}, day(1), day(2)).
		Return([]types.AdjustmentFactor{
			factorRow("600001.SH", day(1), 0.98),
			factorRow("600001.SH", day(2), 1.0),
		}, nil)

	frame, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, day(1), day(2), types.GranularityDaily)
	suite.Require().NoError(err)
	suite.Require().Equal(1, frame.Len())

	floats := frame.Rows[0].Floats
	// close: 10000 / 1000 * 0.98, rounded to 4 decimals
	suite.InDelta(9.8, floats[3], 1e-9)
	// volume: 50 lots * 100 shares / 0.98, inverse-adjusted
	suite.InDelta(5102.0408, floats[4], 1e-9)
	// amount: 123456 / 1000, never adjusted
	suite.InDelta(123.456, floats[5], 1e-9)
	// the applied factor travels with the row
	suite.InDelta(0.98, floats[6], 1e-9)
}

func (suite *ReaderTestSuite) TestLoadBarsMissingFactorDateFails() {
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]types.RawBar{
			rawBar(day(1), "600001.SH", 10000, 50, 1),
			rawBar(day(2), "600001.SH", 10000, 50, 1),
		}, nil)
	// The factor table covers day 1 only; day 2's bar must not default to 1.0.
	suite.factors.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]types.AdjustmentFactor{factorRow("600001.SH", day(1), 1.0)}, nil)

	_, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, day(1), day(2), types.GranularityDaily)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFactorMissing))
}

func (suite *ReaderTestSuite) TestLoadBarsNoFactorsAtAllFails() {
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]types.RawBar{rawBar(day(1), "600001.SH", 10000, 50, 1)}, nil)
	suite.factors.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	_, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, day(1), day(2), types.GranularityDaily)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFactorMissing))
}

func (suite *ReaderTestSuite) TestLoadBarsEmptyRangeReturnsEmptyFrame() {
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	frame, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, day(1), day(2), types.GranularityDaily)
	suite.Require().NoError(err)
	suite.True(frame.Empty())
}

func (suite *ReaderTestSuite) TestLoadBarsRejectsUnknownGranularity() {
	_, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, day(1), day(2), types.Granularity("weekly"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidGranularity))
}

func (suite *ReaderTestSuite) TestLoadBarsIntradaySharesDayFactor() {
	morning := day(1).Add(10 * time.Hour)
	afternoon := day(1).Add(14 * time.Hour)

	suite.bars.EXPECT().
		QueryIntradayBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]types.RawBar{
			rawBar(morning, "600001.SH", 10000, 10, 1),
			rawBar(afternoon, "600001.SH", 12000, 10, 1),
		}, nil)
	suite.factors.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), day(1), day(1)).
		Return([]types.AdjustmentFactor{factorRow("600001.SH", day(1), 2.0)}, nil)

	frame, err := suite.reader.LoadBars(context.Background(), []string{"600001.SH"}, morning, afternoon, types.GranularityIntraday)
	suite.Require().NoError(err)
	suite.Require().Equal(2, frame.Len())
	// single factor row means forward = 1.0 for both intraday bars of the day
	suite.InDelta(1.0, frame.Rows[0].Floats[6], 1e-9)
	suite.InDelta(1.0, frame.Rows[1].Floats[6], 1e-9)
	suite.InDelta(10.0, frame.Rows[0].Floats[3], 1e-9)
	suite.InDelta(12.0, frame.Rows[1].Floats[3], 1e-9)
}

func (suite *ReaderTestSuite) TestLoadBarsForUniverseFiltersInstruments() {
	suite.status.EXPECT().
		QueryInstrumentStatus(gomock.Any()).
		Return([]types.InstrumentStatus{
			{Instrument: "600001.SH", Exchange: "SSE"},
			{Instrument: "600002.SH", Exchange: "SSE", Delisted: true},
		}, nil)
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), []string{"600001.SH"}, day(1), day(2)).
		Return([]types.RawBar{rawBar(day(1), "600001.SH", 10000, 50, 1)}, nil)
	suite.factors.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]types.AdjustmentFactor{factorRow("600001.SH", day(1), 1.0)}, nil)

	filter := universe.Filter{ExcludeDelisted: true}

	frame, err := suite.reader.LoadBarsForUniverse(context.Background(), filter, day(1), day(2), types.GranularityDaily)
	suite.Require().NoError(err)
	suite.Equal([]string{"600001.SH"}, frame.Instruments())
}

func (suite *ReaderTestSuite) TestLoadBarsBatchedWindows() {
	end := day(5)

	// 5 days at 2-day windows: [1,2] [3,4] [5,5]
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(3)

	var windows []Window
	for window, err := range suite.reader.LoadBarsBatched(context.Background(), []string{"600001.SH"}, day(1), end, types.GranularityDaily, 2) {
		suite.Require().NoError(err)
		windows = append(windows, window)
	}

	suite.Require().Len(windows, 3)
	suite.Equal(day(1), windows[0].Start)
	suite.Equal(day(2), windows[0].End)
	suite.Equal(day(3), windows[1].Start)
	suite.Equal(day(4), windows[1].End)
	suite.Equal(day(5), windows[2].Start)
	suite.Equal(day(5), windows[2].End)
}

func (suite *ReaderTestSuite) TestLoadBarsBatchedStopsOnConsumerBreak() {
	suite.bars.EXPECT().
		QueryDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(1)

	count := 0
	for range suite.reader.LoadBarsBatched(context.Background(), []string{"600001.SH"}, day(1), day(10), types.GranularityDaily, 2) {
		count++

		break
	}

	suite.Equal(1, count)
}
