package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type FrameTestSuite struct {
	suite.Suite
}

func TestFrameSuite(t *testing.T) {
	suite.Run(t, new(FrameTestSuite))
}

func (suite *FrameTestSuite) day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func (suite *FrameTestSuite) barRow(ts time.Time, instrument string, close float64) FrameRow {
	return FrameRow{
		Timestamp:  ts,
		Instrument: instrument,
		Floats:     []float64{close, close, close, close, 100, 1000, 1},
	}
}

func (suite *FrameTestSuite) TestSortOrdersByTimestampThenInstrument() {
	frame := NewFrame(DatasetDailyBars)
	frame.Append(suite.barRow(suite.day(2), "600001.SH", 11))
	frame.Append(suite.barRow(suite.day(1), "600002.SH", 10))
	frame.Append(suite.barRow(suite.day(1), "600001.SH", 9))

	frame.Sort()

	suite.Equal("600001.SH", frame.Rows[0].Instrument)
	suite.Equal(suite.day(1), frame.Rows[0].Timestamp)
	suite.Equal("600002.SH", frame.Rows[1].Instrument)
	suite.Equal(suite.day(2), frame.Rows[2].Timestamp)
}

func (suite *FrameTestSuite) TestDedupKeepsLastAppendedRow() {
	frame := NewFrame(DatasetDailyBars)
	frame.Append(suite.barRow(suite.day(1), "600001.SH", 10))
	frame.Append(suite.barRow(suite.day(2), "600001.SH", 11))
	frame.Append(suite.barRow(suite.day(1), "600001.SH", 99))

	frame.Dedup()

	suite.Require().Equal(2, frame.Len())
	suite.Equal(99.0, frame.Rows[0].Floats[0])
	suite.Equal(suite.day(1), frame.Rows[0].Timestamp)
}

func (suite *FrameTestSuite) membershipRow(ts time.Time, instrument, board string, weight float64) FrameRow {
	return FrameRow{
		Timestamp:  ts,
		Instrument: instrument,
		Floats:     []float64{weight},
		Strings:    []string{board},
	}
}

func (suite *FrameTestSuite) TestDedupKeepsMembershipAcrossBoards() {
	frame := NewFrame(DatasetBoardMembership)
	frame.Append(suite.membershipRow(suite.day(1), "600001.SH", "hs300", 0.02))
	frame.Append(suite.membershipRow(suite.day(1), "600001.SH", "zz500", 0.01))
	frame.Append(suite.membershipRow(suite.day(1), "600001.SH", "hs300", 0.03))

	frame.Dedup()

	suite.Require().Equal(2, frame.Len())
	suite.Equal("hs300", frame.Rows[0].Strings[0])
	suite.Equal(0.03, frame.Rows[0].Floats[0])
	suite.Equal("zz500", frame.Rows[1].Strings[0])
	suite.Equal(0.01, frame.Rows[1].Floats[0])
}

func (suite *FrameTestSuite) TestMergeKeepsMembershipAcrossBoards() {
	older := NewFrame(DatasetBoardMembership)
	older.Append(suite.membershipRow(suite.day(1), "600001.SH", "hs300", 0.02))

	newer := NewFrame(DatasetBoardMembership)
	newer.Append(suite.membershipRow(suite.day(1), "600001.SH", "zz500", 0.01))
	newer.Append(suite.membershipRow(suite.day(1), "600001.SH", "hs300", 0.04))

	merged, err := older.Merge(newer)
	suite.Require().NoError(err)

	suite.Require().Equal(2, merged.Len())
	suite.Equal("hs300", merged.Rows[0].Strings[0])
	suite.Equal(0.04, merged.Rows[0].Floats[0])
	suite.Equal("zz500", merged.Rows[1].Strings[0])
}

func (suite *FrameTestSuite) TestMergeNewerWinsOnCollision() {
	older := NewFrame(DatasetDailyBars)
	older.Append(suite.barRow(suite.day(1), "600001.SH", 10))
	older.Append(suite.barRow(suite.day(2), "600001.SH", 11))

	newer := NewFrame(DatasetDailyBars)
	newer.Append(suite.barRow(suite.day(2), "600001.SH", 12))
	newer.Append(suite.barRow(suite.day(3), "600001.SH", 13))

	merged, err := older.Merge(newer)
	suite.Require().NoError(err)

	suite.Equal(3, merged.Len())
	suite.Equal(12.0, merged.Rows[1].Floats[0])
	// inputs untouched
	suite.Equal(2, older.Len())
	suite.Equal(11.0, older.Rows[1].Floats[0])
}

func (suite *FrameTestSuite) TestMergeRejectsShapeMismatch() {
	bars := NewFrame(DatasetDailyBars)
	membership := NewFrame(DatasetBoardMembership)

	_, err := bars.Merge(membership)

	suite.Error(err)
}

func (suite *FrameTestSuite) TestMergeIsIdempotent() {
	base := NewFrame(DatasetDailyBars)
	base.Append(suite.barRow(suite.day(1), "600001.SH", 10))
	base.Append(suite.barRow(suite.day(2), "600001.SH", 11))

	same := NewFrame(DatasetDailyBars)
	same.Append(suite.barRow(suite.day(1), "600001.SH", 10))
	same.Append(suite.barRow(suite.day(2), "600001.SH", 11))

	once, err := base.Merge(same)
	suite.Require().NoError(err)
	twice, err := once.Merge(same)
	suite.Require().NoError(err)

	suite.Equal(once.Len(), twice.Len())
	suite.Equal(once.Rows, twice.Rows)
}

func (suite *FrameTestSuite) TestMaxTimestamp() {
	frame := NewFrame(DatasetDailyBars)
	suite.True(frame.MaxTimestamp().IsNone())

	frame.Append(suite.barRow(suite.day(3), "600001.SH", 10))
	frame.Append(suite.barRow(suite.day(1), "600001.SH", 9))

	max, err := frame.MaxTimestamp().Take()
	suite.Require().NoError(err)
	suite.Equal(suite.day(3), max)
}

func (suite *FrameTestSuite) TestInstrumentsAndDates() {
	frame := NewFrame(DatasetIntradayBars)
	frame.Append(suite.barRow(suite.day(1).Add(10*time.Hour), "600002.SH", 10))
	frame.Append(suite.barRow(suite.day(1).Add(11*time.Hour), "600001.SH", 11))
	frame.Append(suite.barRow(suite.day(2).Add(10*time.Hour), "600001.SH", 12))

	suite.Equal([]string{"600001.SH", "600002.SH"}, frame.Instruments())
	suite.Equal([]time.Time{suite.day(1), suite.day(2)}, frame.Dates())
}

func (suite *FrameTestSuite) TestCoverage() {
	frame := NewFrame(DatasetDailyBars)
	frame.Append(suite.barRow(suite.day(2), "600002.SH", 10))
	frame.Append(suite.barRow(suite.day(1), "600001.SH", 10))
	frame.Append(suite.barRow(suite.day(5), "600001.SH", 10))

	coverage := frame.Coverage()

	suite.Require().Len(coverage, 2)
	suite.Equal("600001.SH", coverage[0].Instrument)
	suite.Equal(suite.day(1), coverage[0].First)
	suite.Equal(suite.day(5), coverage[0].Last)
	suite.Equal("600002.SH", coverage[1].Instrument)
	suite.Equal(suite.day(2), coverage[1].First)
	suite.Equal(suite.day(2), coverage[1].Last)
}

func (suite *FrameTestSuite) TestConcat() {
	a := NewFrame(DatasetDailyBars)
	a.Append(suite.barRow(suite.day(1), "600001.SH", 10))

	b := NewFrame(DatasetDailyBars)
	b.Append(suite.barRow(suite.day(2), "600001.SH", 11))

	suite.Require().NoError(a.Concat(b))
	suite.Equal(2, a.Len())

	suite.Error(a.Concat(NewFrame(DatasetBoardIndex)))
}
