package types

import (
	"time"
)

// DatasetType is a closed enumeration of the dataset files a snapshot can
// contain. Each variant carries its own column shape, file name, and default
// incremental lookback; selection is by switch, never by table-name lookup.
type DatasetType string

const (
	DatasetDailyBars       DatasetType = "daily_bars"
	DatasetIntradayBars    DatasetType = "intraday_bars"
	DatasetFactorTable     DatasetType = "factor_table"
	DatasetBoardDaily      DatasetType = "board_daily"
	DatasetBoardIndex      DatasetType = "board_index"
	DatasetBoardMembership DatasetType = "board_membership"
)

// AllDatasetTypes lists every dataset type in a stable order.
var AllDatasetTypes = []DatasetType{
	DatasetDailyBars,
	DatasetIntradayBars,
	DatasetFactorTable,
	DatasetBoardDaily,
	DatasetBoardIndex,
	DatasetBoardMembership,
}

// Valid reports whether the dataset type is a known variant.
func (d DatasetType) Valid() bool {
	switch d {
	case DatasetDailyBars, DatasetIntradayBars, DatasetFactorTable,
		DatasetBoardDaily, DatasetBoardIndex, DatasetBoardMembership:
		return true
	default:
		return false
	}
}

// FileName returns the snapshot file name for the dataset.
func (d DatasetType) FileName() string {
	return string(d) + ".parquet"
}

// Granularity returns the time resolution of the dataset's key.
func (d DatasetType) Granularity() Granularity {
	if d == DatasetIntradayBars {
		return GranularityIntraday
	}

	return GranularityDaily
}

// FloatColumns returns the float64 value columns of the dataset, in file order.
func (d DatasetType) FloatColumns() []string {
	switch d {
	case DatasetDailyBars, DatasetIntradayBars:
		return []string{"open", "high", "low", "close", "volume", "amount", "adj_factor"}
	case DatasetFactorTable:
		return []string{"raw_factor", "forward_factor"}
	case DatasetBoardDaily:
		return []string{"open", "high", "low", "close", "volume", "amount"}
	case DatasetBoardIndex:
		return []string{"constituent_count"}
	case DatasetBoardMembership:
		return []string{"weight"}
	default:
		return nil
	}
}

// StringColumns returns the string value columns of the dataset, in file order.
func (d DatasetType) StringColumns() []string {
	switch d {
	case DatasetBoardIndex:
		return []string{"name", "category"}
	case DatasetBoardMembership:
		return []string{"board"}
	default:
		return nil
	}
}

// KeyStringColumns returns how many leading string columns join
// (timestamp, instrument) in the dataset's row key. Board membership keys on
// the board as well: one instrument can belong to several boards on the same
// date.
func (d DatasetType) KeyStringColumns() int {
	if d == DatasetBoardMembership {
		return 1
	}

	return 0
}

// DefaultLookback returns the incremental window used when no checkpoint
// exists for the dataset.
func (d DatasetType) DefaultLookback() time.Duration {
	switch d {
	case DatasetDailyBars, DatasetIntradayBars, DatasetBoardDaily:
		return 7 * 24 * time.Hour
	case DatasetFactorTable, DatasetBoardIndex, DatasetBoardMembership:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Step returns the smallest time unit between two keys of the dataset. The
// next incremental window starts one step after the checkpoint.
func (d DatasetType) Step() time.Duration {
	if d.Granularity() == GranularityIntraday {
		return time.Minute
	}

	return 24 * time.Hour
}
