package factor

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/mocks"
	"github.com/quantex-lab/snapex/pkg/errors"
)

type ResolverTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	local    *mocks.MockLocalSource
	fallback *mocks.MockProvider
	logger   *logger.Logger
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (suite *ResolverTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.local = mocks.NewMockLocalSource(suite.ctrl)
	suite.fallback = mocks.NewMockProvider(suite.ctrl)
	suite.logger = logger.NewNopLogger()
}

func (suite *ResolverTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func row(instrument string, date time.Time, factor float64) types.AdjustmentFactor {
	return types.AdjustmentFactor{Instrument: instrument, Date: date, RawFactor: factor}
}

func (suite *ResolverTestSuite) TestGetFactorsLocalOnly() {
	rows := []types.AdjustmentFactor{row("600001.SH", day(1), 1.2)}
	suite.local.EXPECT().
		QueryFactors(gomock.Any(), []string{"600001.SH"}, day(1), day(5)).
		Return(rows, nil)

	resolver := NewResolver(suite.local, nil, config.PartialAccept, suite.logger)

	got, err := resolver.GetFactors(context.Background(), []string{"600001.SH"}, day(1), day(5))
	suite.Require().NoError(err)
	suite.Equal(rows, got)
}

func (suite *ResolverTestSuite) TestGetFactorsFallbackOnlyForMissingInstruments() {
	local := []types.AdjustmentFactor{row("600001.SH", day(1), 1.2)}
	fetched := []types.AdjustmentFactor{row("600002.SH", day(1), 2.0)}

	suite.local.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), day(1), day(5)).
		Return(local, nil)
	// 600001.SH is covered locally; only 600002.SH goes to the fallback.
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600002.SH", day(1), day(5)).
		Return(fetched, nil)

	resolver := NewResolver(suite.local, suite.fallback, config.PartialAccept, suite.logger)

	got, err := resolver.GetFactors(context.Background(), []string{"600001.SH", "600002.SH"}, day(1), day(5))
	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func (suite *ResolverTestSuite) TestGetFactorsPartialAcceptKeepsSubset() {
	suite.local.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600001.SH", gomock.Any(), gomock.Any()).
		Return([]types.AdjustmentFactor{row("600001.SH", day(1), 1.0)}, nil)
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600002.SH", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	resolver := NewResolver(suite.local, suite.fallback, config.PartialAccept, suite.logger)

	got, err := resolver.GetFactors(context.Background(), []string{"600001.SH", "600002.SH"}, day(1), day(5))
	suite.Require().NoError(err)
	suite.Len(got, 1)
	suite.Equal("600001.SH", got[0].Instrument)
}

func (suite *ResolverTestSuite) TestGetFactorsPartialRejectFails() {
	suite.local.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600001.SH", gomock.Any(), gomock.Any()).
		Return([]types.AdjustmentFactor{row("600001.SH", day(1), 1.0)}, nil)
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600002.SH", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	resolver := NewResolver(suite.local, suite.fallback, config.PartialReject, suite.logger)

	_, err := resolver.GetFactors(context.Background(), []string{"600001.SH", "600002.SH"}, day(1), day(5))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFactorPartialFallback))
}

func (suite *ResolverTestSuite) TestGetFactorsNoFallbackReturnsLocalSubset() {
	suite.local.EXPECT().
		QueryFactors(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	resolver := NewResolver(suite.local, nil, config.PartialReject, suite.logger)

	got, err := resolver.GetFactors(context.Background(), []string{"600001.SH"}, day(1), day(5))
	suite.Require().NoError(err)
	suite.Empty(got)
}

func (suite *ResolverTestSuite) TestGetLatestFactorsFallbackPicksMostRecent() {
	suite.local.EXPECT().
		QueryLatestFactors(gomock.Any(), gomock.Any()).
		Return(nil, nil)
	suite.fallback.EXPECT().
		FactorRows(gomock.Any(), "600001.SH", gomock.Any(), gomock.Any()).
		Return([]types.AdjustmentFactor{
			row("600001.SH", day(1), 1.1),
			row("600001.SH", day(3), 1.3),
			row("600001.SH", day(2), 1.2),
		}, nil)

	resolver := NewResolver(suite.local, suite.fallback, config.PartialAccept, suite.logger)

	got, err := resolver.GetLatestFactors(context.Background(), []string{"600001.SH"})
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(day(3), got[0].Date)
	suite.Equal(1.3, got[0].RawFactor)
}

func (suite *ResolverTestSuite) TestComputeForwardLatestMapsToOne() {
	rows := []types.AdjustmentFactor{
		row("600001.SH", day(1), 1.0),
		row("600001.SH", day(2), 1.25),
		row("600001.SH", day(3), 2.5),
	}

	forward := ComputeForward(rows, optional.None[time.Time]())

	suite.Require().Len(forward, 3)
	suite.InDelta(0.4, forward[row("600001.SH", day(1), 0).Key()], 1e-12)
	suite.InDelta(0.5, forward[row("600001.SH", day(2), 0).Key()], 1e-12)
	suite.InDelta(1.0, forward[row("600001.SH", day(3), 0).Key()], 1e-12)
}

func (suite *ResolverTestSuite) TestComputeForwardExplicitBaseDate() {
	rows := []types.AdjustmentFactor{
		row("600001.SH", day(1), 1.0),
		row("600001.SH", day(2), 2.0),
		row("600001.SH", day(3), 4.0),
	}

	forward := ComputeForward(rows, optional.Some(day(2)))

	suite.InDelta(0.5, forward[row("600001.SH", day(1), 0).Key()], 1e-12)
	suite.InDelta(1.0, forward[row("600001.SH", day(2), 0).Key()], 1e-12)
	// dates after the base exceed 1.0 under an explicit base
	suite.InDelta(2.0, forward[row("600001.SH", day(3), 0).Key()], 1e-12)
}

func (suite *ResolverTestSuite) TestComputeForwardExcludesInstrumentWithoutBaseRow() {
	rows := []types.AdjustmentFactor{
		row("600001.SH", day(2), 2.0),
		row("600002.SH", day(1), 1.5), // no row at the base date
	}

	forward := ComputeForward(rows, optional.Some(day(2)))

	suite.Require().Len(forward, 1)
	suite.InDelta(1.0, forward[row("600001.SH", day(2), 0).Key()], 1e-12)
}

func (suite *ResolverTestSuite) TestComputeForwardIsPurePerCall() {
	first := []types.AdjustmentFactor{
		row("600001.SH", day(1), 1.0),
		row("600001.SH", day(2), 2.0),
	}
	// a later call with a truncated row set must not remember day(2)'s factor
	second := []types.AdjustmentFactor{
		row("600001.SH", day(1), 1.0),
	}

	_ = ComputeForward(first, optional.None[time.Time]())
	forward := ComputeForward(second, optional.None[time.Time]())

	suite.InDelta(1.0, forward[row("600001.SH", day(1), 0).Key()], 1e-12)
}

func (suite *ResolverTestSuite) TestComputeForwardMultipleInstrumentsIndependentBases() {
	rows := []types.AdjustmentFactor{
		row("600001.SH", day(1), 2.0),
		row("600001.SH", day(2), 4.0),
		row("600002.SH", day(1), 10.0),
		row("600002.SH", day(2), 20.0),
	}

	forward := ComputeForward(rows, optional.None[time.Time]())

	suite.InDelta(0.5, forward[row("600001.SH", day(1), 0).Key()], 1e-12)
	suite.InDelta(1.0, forward[row("600001.SH", day(2), 0).Key()], 1e-12)
	suite.InDelta(0.5, forward[row("600002.SH", day(1), 0).Key()], 1e-12)
	suite.InDelta(1.0, forward[row("600002.SH", day(2), 0).Key()], 1e-12)
}
