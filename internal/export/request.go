package export

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/internal/universe"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// RunState is the lifecycle state of one coordinator run.
type RunState string

const (
	StatePending      RunState = "pending"
	StateLoading      RunState = "loading"
	StateWriting      RunState = "writing"
	StateCheckpointed RunState = "checkpointed"
	StateFailed       RunState = "failed"
)

// OnProgress reports coordinator progress to the caller. current and total
// are batch counts; message is a human-readable description.
type OnProgress func(current, total float64, message string)

// Request describes one export run.
type Request struct {
	SnapshotID string            `json:"snapshot_id" validate:"required"`
	Dataset    types.DatasetType `json:"dataset" validate:"required"`
	// Start is required in full mode; incremental mode computes it from the
	// checkpoint or the dataset's default lookback.
	Start time.Time `json:"start"`
	End   time.Time `json:"end" validate:"required"`
	// Instruments restricts the export. Empty means the filtered universe for
	// per-instrument datasets and all boards for board datasets.
	Instruments []string        `json:"instruments"`
	Filter      universe.Filter `json:"filter"`
	// WindowDays sizes the date windows of batched intraday exports.
	WindowDays int `json:"window_days" validate:"omitempty,min=1"`
}

// Result summarizes a finished run.
type Result struct {
	RunID       string            `json:"run_id"`
	SnapshotID  string            `json:"snapshot_id"`
	Dataset     types.DatasetType `json:"dataset"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Instruments int               `json:"instruments"`
	Rows        int               `json:"rows"`
	State       RunState          `json:"state"`
}

func (r Request) validate(full bool) error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid export request", err)
	}

	if !r.Dataset.Valid() {
		return errors.Newf(errors.ErrCodeUnsupportedDataset, "unknown dataset type %q", r.Dataset)
	}

	if full {
		if r.Start.IsZero() {
			return errors.New(errors.ErrCodeMissingParameter, "full export requires a start date")
		}

		if r.Start.After(r.End) {
			return errors.Newf(errors.ErrCodeInvalidWindow, "start %s is after end %s",
				r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
		}
	}

	return nil
}
