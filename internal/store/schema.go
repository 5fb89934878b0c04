package store

// SchemaDDL creates the store tables the accessor reads from. The production
// store is populated by the ingestion jobs; this DDL exists for local
// bootstrap and tests.
const SchemaDDL = `
	CREATE TABLE IF NOT EXISTS daily_bars (
		trade_date TIMESTAMP,
		instrument TEXT,
		open_minor BIGINT,
		high_minor BIGINT,
		low_minor BIGINT,
		close_minor BIGINT,
		volume_lots BIGINT,
		amount_minor BIGINT
	);
	CREATE TABLE IF NOT EXISTS intraday_bars (
		ts TIMESTAMP,
		instrument TEXT,
		open_minor BIGINT,
		high_minor BIGINT,
		low_minor BIGINT,
		close_minor BIGINT,
		volume_lots BIGINT,
		amount_minor BIGINT
	);
	CREATE TABLE IF NOT EXISTS adjustment_factors (
		instrument TEXT,
		trade_date TIMESTAMP,
		raw_factor DOUBLE
	);
	CREATE TABLE IF NOT EXISTS instrument_status (
		instrument TEXT,
		exchange TEXT,
		is_delisted BOOLEAN,
		is_suspended BOOLEAN,
		is_special_treatment BOOLEAN
	);
	CREATE TABLE IF NOT EXISTS board_daily_bars (
		trade_date TIMESTAMP,
		board TEXT,
		open_minor BIGINT,
		high_minor BIGINT,
		low_minor BIGINT,
		close_minor BIGINT,
		volume_lots BIGINT,
		amount_minor BIGINT
	);
	CREATE TABLE IF NOT EXISTS board_membership (
		trade_date TIMESTAMP,
		instrument TEXT,
		board TEXT,
		weight DOUBLE
	);
	CREATE TABLE IF NOT EXISTS board_indices (
		board TEXT,
		name TEXT,
		category TEXT,
		constituent_count BIGINT,
		updated_at TIMESTAMP
	);
`

// EnsureSchema creates any missing store tables.
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(SchemaDDL)

	return err
}
