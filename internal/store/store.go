// Package store is the pooled accessor over the relational time-series store.
// All reads are parameterized queries; connections are scoped per logical
// operation through database/sql's pool.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// Store provides parameterized read access to the bar, factor, and
// instrument-status tables of the DuckDB time-series store.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// MembershipRow is one board-membership record: the instrument belonged to
// the board on the given date with the given index weight.
type MembershipRow struct {
	Date       time.Time
	Instrument string
	Board      string
	Weight     float64
}

// BoardIndexRow is one board/index metadata record.
type BoardIndexRow struct {
	Board            string
	Name             string
	Category         string
	ConstituentCount int64
	UpdatedAt        time.Time
}

// NewStore opens the DuckDB store at path.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to open store at %s", path)
	}

	// DuckDB-specific tuning for large range scans
	_, err = db.Exec(`
		SET memory_limit='4GB';
		SET threads=4;
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to configure store", err)
	}

	return &Store{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// DB exposes the underlying pool for components that share the store file,
// such as the checkpoint table.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// QueryDailyBars reads raw daily bars in storage units for the instruments
// between start and end inclusive, ordered by (trade_date, instrument).
func (s *Store) QueryDailyBars(ctx context.Context, instruments []string, start, end time.Time) ([]types.RawBar, error) {
	return s.queryBars(ctx, "daily_bars", "trade_date", instruments, start, end)
}

// QueryIntradayBars reads raw intraday bars in storage units for the
// instruments between start and end inclusive, ordered by (ts, instrument).
func (s *Store) QueryIntradayBars(ctx context.Context, instruments []string, start, end time.Time) ([]types.RawBar, error) {
	return s.queryBars(ctx, "intraday_bars", "ts", instruments, start, end)
}

func (s *Store) queryBars(ctx context.Context, table, timeColumn string, instruments []string, start, end time.Time) ([]types.RawBar, error) {
	builder := s.sq.
		Select(timeColumn, "instrument", "open_minor", "high_minor", "low_minor", "close_minor", "volume_lots", "amount_minor").
		From(table).
		Where(squirrel.And{
			squirrel.GtOrEq{timeColumn: start},
			squirrel.LtOrEq{timeColumn: end},
		}).
		OrderBy(timeColumn+" ASC", "instrument ASC")

	if len(instruments) > 0 {
		builder = builder.Where(squirrel.Eq{"instrument": instruments})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to build %s query", table)
	}

	s.logger.Debug("querying raw bars",
		zap.String("table", table),
		zap.Int("instruments", len(instruments)),
		zap.Time("start", start),
		zap.Time("end", end))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", table)
	}
	defer rows.Close()

	result := make([]types.RawBar, 0, 1024)

	for rows.Next() {
		var bar types.RawBar

		err := rows.Scan(&bar.Time, &bar.Instrument,
			&bar.PriceOpen, &bar.PriceHigh, &bar.PriceLow, &bar.PriceClose,
			&bar.VolumeLots, &bar.AmountMinor)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan raw bar", err)
		}

		result = append(result, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "error iterating %s rows", table)
	}

	return result, nil
}

// QueryFactors reads raw adjustment-factor rows for the instruments between
// start and end inclusive.
func (s *Store) QueryFactors(ctx context.Context, instruments []string, start, end time.Time) ([]types.AdjustmentFactor, error) {
	builder := s.sq.
		Select("instrument", "trade_date", "raw_factor").
		From("adjustment_factors").
		Where(squirrel.And{
			squirrel.GtOrEq{"trade_date": start},
			squirrel.LtOrEq{"trade_date": end},
		}).
		OrderBy("instrument ASC", "trade_date ASC")

	if len(instruments) > 0 {
		builder = builder.Where(squirrel.Eq{"instrument": instruments})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build factor query", err)
	}

	return s.scanFactors(ctx, query, args...)
}

// QueryLatestFactors reads the most recent factor row per instrument. An
// empty instrument list means all instruments.
func (s *Store) QueryLatestFactors(ctx context.Context, instruments []string) ([]types.AdjustmentFactor, error) {
	// Window dedup keeps the latest trade_date per instrument.
	ranked := s.sq.
		Select("instrument", "trade_date", "raw_factor",
			"ROW_NUMBER() OVER (PARTITION BY instrument ORDER BY trade_date DESC) AS rn").
		From("adjustment_factors")

	if len(instruments) > 0 {
		ranked = ranked.Where(squirrel.Eq{"instrument": instruments})
	}

	query, args, err := s.sq.
		Select("instrument", "trade_date", "raw_factor").
		FromSelect(ranked, "ranked").
		Where(squirrel.Eq{"rn": 1}).
		OrderBy("instrument ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build latest factor query", err)
	}

	return s.scanFactors(ctx, query, args...)
}

func (s *Store) scanFactors(ctx context.Context, query string, args ...any) ([]types.AdjustmentFactor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query adjustment factors", err)
	}
	defer rows.Close()

	result := make([]types.AdjustmentFactor, 0, 256)

	for rows.Next() {
		var factor types.AdjustmentFactor

		if err := rows.Scan(&factor.Instrument, &factor.Date, &factor.RawFactor); err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan adjustment factor", err)
		}

		result = append(result, factor)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating factor rows", err)
	}

	return result, nil
}

// QueryInstrumentStatus reads all instrument-status rows.
func (s *Store) QueryInstrumentStatus(ctx context.Context) ([]types.InstrumentStatus, error) {
	query, args, err := s.sq.
		Select("instrument", "exchange", "is_delisted", "is_suspended", "is_special_treatment").
		From("instrument_status").
		OrderBy("instrument ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build instrument status query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query instrument status", err)
	}
	defer rows.Close()

	result := make([]types.InstrumentStatus, 0, 1024)

	for rows.Next() {
		var status types.InstrumentStatus

		err := rows.Scan(&status.Instrument, &status.Exchange,
			&status.Delisted, &status.Suspended, &status.SpecialTreatment)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan instrument status", err)
		}

		result = append(result, status)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating status rows", err)
	}

	return result, nil
}

// QueryBoardDailyBars reads raw daily bars for board indices between start
// and end inclusive. Board bars carry no adjustment factor.
func (s *Store) QueryBoardDailyBars(ctx context.Context, boards []string, start, end time.Time) ([]types.RawBar, error) {
	builder := s.sq.
		Select("trade_date", "board", "open_minor", "high_minor", "low_minor", "close_minor", "volume_lots", "amount_minor").
		From("board_daily_bars").
		Where(squirrel.And{
			squirrel.GtOrEq{"trade_date": start},
			squirrel.LtOrEq{"trade_date": end},
		}).
		OrderBy("trade_date ASC", "board ASC")

	if len(boards) > 0 {
		builder = builder.Where(squirrel.Eq{"board": boards})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build board bar query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query board daily bars", err)
	}
	defer rows.Close()

	result := make([]types.RawBar, 0, 256)

	for rows.Next() {
		var bar types.RawBar

		err := rows.Scan(&bar.Time, &bar.Instrument,
			&bar.PriceOpen, &bar.PriceHigh, &bar.PriceLow, &bar.PriceClose,
			&bar.VolumeLots, &bar.AmountMinor)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan board bar", err)
		}

		result = append(result, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating board bar rows", err)
	}

	return result, nil
}

// QueryBoardMembership reads membership rows between start and end inclusive.
func (s *Store) QueryBoardMembership(ctx context.Context, start, end time.Time) ([]MembershipRow, error) {
	query, args, err := s.sq.
		Select("trade_date", "instrument", "board", "weight").
		From("board_membership").
		Where(squirrel.And{
			squirrel.GtOrEq{"trade_date": start},
			squirrel.LtOrEq{"trade_date": end},
		}).
		OrderBy("trade_date ASC", "instrument ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build membership query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query board membership", err)
	}
	defer rows.Close()

	result := make([]MembershipRow, 0, 1024)

	for rows.Next() {
		var row MembershipRow

		if err := rows.Scan(&row.Date, &row.Instrument, &row.Board, &row.Weight); err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan membership row", err)
		}

		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating membership rows", err)
	}

	return result, nil
}

// QueryBoardIndices reads board/index metadata rows updated between start and
// end inclusive.
func (s *Store) QueryBoardIndices(ctx context.Context, start, end time.Time) ([]BoardIndexRow, error) {
	query, args, err := s.sq.
		Select("board", "name", "category", "constituent_count", "updated_at").
		From("board_indices").
		Where(squirrel.And{
			squirrel.GtOrEq{"updated_at": start},
			squirrel.LtOrEq{"updated_at": end},
		}).
		OrderBy("board ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build board index query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query board indices", err)
	}
	defer rows.Close()

	result := make([]BoardIndexRow, 0, 64)

	for rows.Next() {
		var row BoardIndexRow

		if err := rows.Scan(&row.Board, &row.Name, &row.Category, &row.ConstituentCount, &row.UpdatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeScanFailed, "failed to scan board index row", err)
		}

		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating board index rows", err)
	}

	return result, nil
}

// CountBars returns the number of raw bars available in the given range.
func (s *Store) CountBars(ctx context.Context, granularity types.Granularity, start, end time.Time) (int, error) {
	table, timeColumn := "daily_bars", "trade_date"
	if granularity == types.GranularityIntraday {
		table, timeColumn = "intraday_bars", "ts"
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s >= $1 AND %s <= $2", table, timeColumn, timeColumn)

	var count int
	if err := s.db.QueryRowContext(ctx, query, start, end).Scan(&count); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count %s", table)
	}

	return count, nil
}
