package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// FormatVersion is the snapshot layout version recorded in manifests.
// Incremental writes refuse snapshots with a different major version.
const FormatVersion = "1.2.0"

const (
	manifestFileName  = "manifest.json"
	coverageFileName  = "instruments.txt"
	calendarFileName  = "calendar.txt"
	dateLayout        = "2006-01-02"
	manifestTimestamp = time.RFC3339
)

// Manifest describes a snapshot directory for downstream consumers.
type Manifest struct {
	SnapshotID      string   `json:"snapshot_id"`
	Market          string   `json:"market"`
	FormatVersion   string   `json:"format_version"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	InstrumentCount int      `json:"instrument_count"`
	Columns         []string `json:"columns"`
	GeneratedAt     string   `json:"generated_at"`
}

func newManifest(snapshotID, market string, frame *types.Frame) Manifest {
	columns := make([]string, 0, len(frame.FloatColumns)+len(frame.StringColumns))
	columns = append(columns, frame.FloatColumns...)
	columns = append(columns, frame.StringColumns...)

	manifest := Manifest{
		SnapshotID:      snapshotID,
		Market:          market,
		FormatVersion:   FormatVersion,
		Start:           "",
		End:             "",
		InstrumentCount: len(frame.Instruments()),
		Columns:         columns,
		GeneratedAt:     time.Now().UTC().Format(manifestTimestamp),
	}

	dates := frame.Dates()
	if len(dates) > 0 {
		manifest.Start = dates[0].Format(dateLayout)
		manifest.End = dates[len(dates)-1].Format(dateLayout)
	}

	return manifest
}

func writeManifest(dir string, manifest Manifest) error {
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to encode manifest", err)
	}

	path := filepath.Join(dir, manifestFileName)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeSnapshotWriteFailed, err, "failed to write %s", path)
	}

	return nil
}

func readManifest(dir string) (Manifest, bool, error) {
	path := filepath.Join(dir, manifestFileName)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{}, false, nil
	}

	if err != nil {
		return Manifest{}, false, errors.Wrapf(errors.ErrCodeSnapshotReadFailed, err, "failed to read %s", path)
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return Manifest{}, false, errors.Wrapf(errors.ErrCodeSnapshotReadFailed, err, "failed to parse %s", path)
	}

	return manifest, true, nil
}

// checkFormatCompatible refuses to append to a snapshot written with a
// different major layout version.
func checkFormatCompatible(manifest Manifest) error {
	if manifest.FormatVersion == "" {
		return nil
	}

	existing, err := semver.NewVersion(manifest.FormatVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeManifestIncompatible, err,
			"snapshot %s has unparsable format version %q", manifest.SnapshotID, manifest.FormatVersion)
	}

	current := semver.MustParse(FormatVersion)
	if existing.Major() != current.Major() {
		return errors.Newf(errors.ErrCodeManifestIncompatible,
			"snapshot %s was written with format %s, current is %s", manifest.SnapshotID, manifest.FormatVersion, FormatVersion)
	}

	return nil
}

// writeIndices regenerates the instrument-coverage and trading-calendar text
// indices from the full content of the dataset just written.
func writeIndices(dir string, frame *types.Frame) error {
	coverage := frame.Coverage()

	coverageOut := make([]byte, 0, len(coverage)*32)
	for _, cov := range coverage {
		line := cov.Instrument + "," + cov.First.Format(dateLayout) + "," + cov.Last.Format(dateLayout) + "\n"
		coverageOut = append(coverageOut, line...)
	}

	if err := os.WriteFile(filepath.Join(dir, coverageFileName), coverageOut, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to write instrument coverage index", err)
	}

	dates := frame.Dates()

	calendarOut := make([]byte, 0, len(dates)*11)
	for _, date := range dates {
		calendarOut = append(calendarOut, (date.Format(dateLayout) + "\n")...)
	}

	if err := os.WriteFile(filepath.Join(dir, calendarFileName), calendarOut, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to write trading calendar index", err)
	}

	return nil
}
