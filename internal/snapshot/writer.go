// Package snapshot serializes canonical frames to the snapshot on-disk
// layout: one parquet file per dataset type, an instrument-coverage index, a
// trading-calendar index, and a JSON manifest.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// Writer writes snapshot dataset files. Incremental appends are
// read-modify-write: the existing file is merged with the new frame keeping
// the last-written row per dataset key, then rewritten wholesale.
type Writer struct {
	root   string
	market string
	logger *logger.Logger
}

// NewWriter creates a Writer rooted at the snapshot directory.
func NewWriter(root, market string, log *logger.Logger) *Writer {
	return &Writer{
		root:   root,
		market: market,
		logger: log,
	}
}

// Dir returns the directory of a snapshot.
func (w *Writer) Dir(snapshotID string) string {
	return filepath.Join(w.root, snapshotID)
}

// DatasetPath returns the parquet path of a dataset within a snapshot.
func (w *Writer) DatasetPath(snapshotID string, dataset types.DatasetType) string {
	return filepath.Join(w.Dir(snapshotID), dataset.FileName())
}

// WriteFull validates the frame, overwrites the dataset file, and regenerates
// the auxiliary indices and the manifest.
func (w *Writer) WriteFull(snapshotID string, dataset types.DatasetType, frame *types.Frame) error {
	if err := w.validate(dataset, frame); err != nil {
		return err
	}

	frame.Dedup()

	dir := w.Dir(snapshotID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeSnapshotWriteFailed, err, "failed to create snapshot dir %s", dir)
	}

	if err := w.writeParquet(w.DatasetPath(snapshotID, dataset), frame); err != nil {
		return err
	}

	if err := writeIndices(dir, frame); err != nil {
		return err
	}

	if err := writeManifest(dir, newManifest(snapshotID, w.market, frame)); err != nil {
		return err
	}

	w.logger.Info("wrote full snapshot dataset",
		zap.String("snapshot_id", snapshotID),
		zap.String("dataset", string(dataset)),
		zap.Int("rows", frame.Len()))

	return nil
}

// WriteIncremental merges the frame into the existing dataset file keeping
// the last-written row per key. A missing file behaves like WriteFull minus
// manifest regeneration.
func (w *Writer) WriteIncremental(snapshotID string, dataset types.DatasetType, frame *types.Frame) error {
	if err := w.validate(dataset, frame); err != nil {
		return err
	}

	dir := w.Dir(snapshotID)
	path := w.DatasetPath(snapshotID, dataset)

	manifest, hasManifest, err := readManifest(dir)
	if err != nil {
		return err
	}

	if hasManifest {
		if err := checkFormatCompatible(manifest); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		frame.Dedup()

		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(errors.ErrCodeSnapshotWriteFailed, err, "failed to create snapshot dir %s", dir)
		}

		if err := w.writeParquet(path, frame); err != nil {
			return err
		}

		return writeIndices(dir, frame)
	}

	existing, err := w.ReadFrame(path, dataset)
	if err != nil {
		return err
	}

	merged, err := existing.Merge(frame)
	if err != nil {
		return err
	}

	if err := w.writeParquet(path, merged); err != nil {
		return err
	}

	if err := writeIndices(dir, merged); err != nil {
		return err
	}

	w.logger.Info("wrote incremental snapshot dataset",
		zap.String("snapshot_id", snapshotID),
		zap.String("dataset", string(dataset)),
		zap.Int("new_rows", frame.Len()),
		zap.Int("total_rows", merged.Len()))

	return nil
}

// validate checks the frame's column shape against the dataset's expected
// key-tuple and columns.
func (w *Writer) validate(dataset types.DatasetType, frame *types.Frame) error {
	if !dataset.Valid() {
		return errors.Newf(errors.ErrCodeUnsupportedDataset, "unknown dataset type %q", dataset)
	}

	expected := types.NewFrame(dataset)
	if !frame.ColumnsEqual(expected) {
		return errors.Newf(errors.ErrCodeWriteValidation,
			"frame columns %v/%v do not match dataset %s columns %v/%v",
			frame.FloatColumns, frame.StringColumns, dataset, expected.FloatColumns, expected.StringColumns)
	}

	for _, row := range frame.Rows {
		if row.Instrument == "" || row.Timestamp.IsZero() {
			return errors.New(errors.ErrCodeWriteValidation, "frame row is missing its (timestamp, instrument) key")
		}

		if len(row.Floats) != len(frame.FloatColumns) || len(row.Strings) != len(frame.StringColumns) {
			return errors.Newf(errors.ErrCodeWriteValidation,
				"frame row for %s has %d/%d values, expected %d/%d",
				row.Instrument, len(row.Floats), len(row.Strings), len(frame.FloatColumns), len(frame.StringColumns))
		}
	}

	return nil
}

// writeParquet stages the frame in an in-memory DuckDB table and exports it
// with COPY, overwriting the target file.
func (w *Writer) writeParquet(path string, frame *types.Frame) (err error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to open staging database", err)
	}
	defer db.Close()

	columns := make([]string, 0, 2+len(frame.FloatColumns)+len(frame.StringColumns))
	columns = append(columns, "ts TIMESTAMP", "instrument TEXT")

	for _, col := range frame.FloatColumns {
		columns = append(columns, col+" DOUBLE")
	}

	for _, col := range frame.StringColumns {
		columns = append(columns, col+" TEXT")
	}

	_, err = db.Exec(fmt.Sprintf("CREATE TABLE frame (%s)", strings.Join(columns, ", ")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to create staging table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to begin staging transaction", err)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO frame VALUES (%s)", strings.Join(placeholders, ", ")))
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to prepare staging insert", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))

	for _, row := range frame.Rows {
		args[0] = row.Timestamp
		args[1] = row.Instrument

		for i, v := range row.Floats {
			args[2+i] = v
		}

		for i, v := range row.Strings {
			args[2+len(row.Floats)+i] = v
		}

		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to stage frame row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to commit staging transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf("COPY frame TO '%s' (FORMAT PARQUET)", path))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSnapshotWriteFailed, err, "failed to export parquet to %s", path)
	}

	return nil
}

// ReadFrame loads a dataset parquet file back into a frame.
func (w *Writer) ReadFrame(path string, dataset types.DatasetType) (*types.Frame, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotReadFailed, "failed to open staging database", err)
	}
	defer db.Close()

	frame := types.NewFrame(dataset)

	selectColumns := make([]string, 0, 2+len(frame.FloatColumns)+len(frame.StringColumns))
	selectColumns = append(selectColumns, "ts", "instrument")
	selectColumns = append(selectColumns, frame.FloatColumns...)
	selectColumns = append(selectColumns, frame.StringColumns...)

	query := fmt.Sprintf("SELECT %s FROM read_parquet('%s') ORDER BY ts, instrument",
		strings.Join(selectColumns, ", "), path)

	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSnapshotReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	for rows.Next() {
		row := types.FrameRow{
			Floats:  make([]float64, len(frame.FloatColumns)),
			Strings: make([]string, len(frame.StringColumns)),
		}

		dest := make([]any, 0, len(selectColumns))
		dest = append(dest, &row.Timestamp, &row.Instrument)

		for i := range row.Floats {
			dest = append(dest, &row.Floats[i])
		}

		for i := range row.Strings {
			dest = append(dest, &row.Strings[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSnapshotReadFailed, "failed to scan snapshot row", err)
		}

		frame.Append(row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSnapshotReadFailed, err, "error iterating %s", path)
	}

	return frame, nil
}
