// Package export orchestrates BarReader, SnapshotWriter, and CheckpointStore
// for a snapshot id and date range, in full or incremental mode. Each run is
// the state machine determine window -> load data -> write snapshot ->
// advance checkpoint; any failing step fails the whole run and nothing is
// retried here.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/checkpoint"
	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/reader"
	"github.com/quantex-lab/snapex/internal/snapshot"
	"github.com/quantex-lab/snapex/internal/store"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// Coordinator runs exports for every dataset type. Concurrent runs targeting
// the same (snapshot, dataset) pair are not safe against each other and must
// be serialized by the caller.
type Coordinator struct {
	store       *store.Store
	reader      *reader.Reader
	factors     *factor.Resolver
	writer      *snapshot.Writer
	checkpoints *checkpoint.Store
	units       config.UnitConfig
	logger      *logger.Logger
	onProgress  OnProgress
}

// NewCoordinator creates a Coordinator. onProgress may be nil.
func NewCoordinator(st *store.Store, rd *reader.Reader, factors *factor.Resolver, writer *snapshot.Writer, checkpoints *checkpoint.Store, units config.UnitConfig, log *logger.Logger, onProgress OnProgress) *Coordinator {
	return &Coordinator{
		store:       st,
		reader:      rd,
		factors:     factors,
		writer:      writer,
		checkpoints: checkpoints,
		units:       units,
		logger:      log,
		onProgress:  onProgress,
	}
}

// ExportFull exports the caller-supplied [start, end] window, overwriting the
// dataset file. An empty result set is a failed export, never a silent skip.
func (c *Coordinator) ExportFull(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(true); err != nil {
		return Result{}, err
	}

	result := c.newResult(req, req.Start, req.End)
	c.logState(result, StatePending)

	if req.Dataset == types.DatasetIntradayBars {
		return c.exportIntradayFull(ctx, req, result)
	}

	c.logState(result, StateLoading)

	frame, err := c.loadFrame(ctx, req, req.Start, req.End)
	if err != nil {
		return c.fail(result, err)
	}

	if frame.Empty() {
		return c.fail(result, errors.Newf(errors.ErrCodeDataUnavailable,
			"no %s data between %s and %s", req.Dataset,
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02")))
	}

	c.logState(result, StateWriting)

	if err := c.writer.WriteFull(req.SnapshotID, req.Dataset, frame); err != nil {
		return c.fail(result, err)
	}

	if err := c.advance(req, frame.MaxTimestamp().Unwrap()); err != nil {
		return c.fail(result, err)
	}

	result.Rows = frame.Len()
	result.Instruments = len(frame.Instruments())
	result.State = StateCheckpointed
	c.logState(result, StateCheckpointed)

	return result, nil
}

// ExportIncremental computes the window start from the checkpoint (plus one
// time unit) or the dataset's default lookback, and merges new rows into the
// dataset file. A window whose start exceeds end is a no-op success; the
// checkpoint only advances to the maximum timestamp actually written.
func (c *Coordinator) ExportIncremental(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(false); err != nil {
		return Result{}, err
	}

	last, err := c.checkpoints.Get(req.SnapshotID, req.Dataset)
	if err != nil {
		return Result{}, err
	}

	var start time.Time
	if last.IsSome() {
		start = last.Unwrap().Add(req.Dataset.Step())
	} else {
		start = req.End.Add(-req.Dataset.DefaultLookback())
	}

	result := c.newResult(req, start, req.End)
	c.logState(result, StatePending)

	if start.After(req.End) {
		c.logger.Info("incremental window already covered, nothing to export",
			zap.String("run_id", result.RunID),
			zap.Time("computed_start", start),
			zap.Time("end", req.End))
		result.State = StateCheckpointed

		return result, nil
	}

	c.logState(result, StateLoading)

	frame, err := c.loadFrame(ctx, req, start, req.End)
	if err != nil {
		return c.fail(result, err)
	}

	if frame.Empty() {
		// No new trading days in the window; the checkpoint stays put so the
		// next run re-examines the same range.
		result.State = StateCheckpointed

		return result, nil
	}

	c.logState(result, StateWriting)

	if err := c.writer.WriteIncremental(req.SnapshotID, req.Dataset, frame); err != nil {
		return c.fail(result, err)
	}

	if err := c.advance(req, frame.MaxTimestamp().Unwrap()); err != nil {
		return c.fail(result, err)
	}

	result.Rows = frame.Len()
	result.Instruments = len(frame.Instruments())
	result.State = StateCheckpointed
	c.logState(result, StateCheckpointed)

	return result, nil
}

// exportIntradayFull streams fixed-size date windows through the batched
// loader: the first non-empty window establishes the file with a full write,
// later windows merge in, and the checkpoint advances once at the end to the
// maximum timestamp seen across all windows.
func (c *Coordinator) exportIntradayFull(ctx context.Context, req Request, result Result) (Result, error) {
	instruments := req.Instruments

	if len(instruments) == 0 {
		resolved, err := req.Filter.Resolve(ctx, c.store)
		if err != nil {
			return c.fail(result, err)
		}

		instruments = resolved
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = reader.DefaultWindowDays
	}

	totalWindows := float64(countWindows(req.Start, req.End, windowDays))

	var (
		wroteAny bool
		maxSeen  time.Time
		rows     int
		seenErr  error
		window   int
	)

	instrumentSet := make(map[string]struct{}, len(instruments))

	c.logState(result, StateLoading)

	c.reader.LoadBarsBatched(ctx, instruments, req.Start, req.End, types.GranularityIntraday, windowDays)(func(w reader.Window, err error) bool {
		if err != nil {
			seenErr = err

			return false
		}

		window++
		c.progress(float64(window), totalWindows, fmt.Sprintf("exporting %s window %s", req.Dataset, w.Start.Format("2006-01-02")))

		if w.Frame.Empty() {
			return true
		}

		if !wroteAny {
			seenErr = c.writer.WriteFull(req.SnapshotID, req.Dataset, w.Frame)
		} else {
			seenErr = c.writer.WriteIncremental(req.SnapshotID, req.Dataset, w.Frame)
		}

		if seenErr != nil {
			return false
		}

		wroteAny = true
		rows += w.Frame.Len()

		for _, instrument := range w.Frame.Instruments() {
			instrumentSet[instrument] = struct{}{}
		}

		if max := w.Frame.MaxTimestamp(); max.IsSome() && max.Unwrap().After(maxSeen) {
			maxSeen = max.Unwrap()
		}

		return true
	})

	if seenErr != nil {
		return c.fail(result, seenErr)
	}

	if !wroteAny {
		return c.fail(result, errors.Newf(errors.ErrCodeDataUnavailable,
			"no intraday data between %s and %s",
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02")))
	}

	if err := c.advance(req, maxSeen); err != nil {
		return c.fail(result, err)
	}

	result.Rows = rows
	result.Instruments = len(instrumentSet)
	result.State = StateCheckpointed
	c.logState(result, StateCheckpointed)

	return result, nil
}

// loadFrame dispatches to the dataset-specific loader.
func (c *Coordinator) loadFrame(ctx context.Context, req Request, start, end time.Time) (*types.Frame, error) {
	switch req.Dataset {
	case types.DatasetDailyBars:
		if len(req.Instruments) == 0 {
			return c.reader.LoadBarsForUniverse(ctx, req.Filter, start, end, types.GranularityDaily)
		}

		return c.reader.LoadBars(ctx, req.Instruments, start, end, types.GranularityDaily)
	case types.DatasetIntradayBars:
		if len(req.Instruments) == 0 {
			return c.reader.LoadBarsForUniverse(ctx, req.Filter, start, end, types.GranularityIntraday)
		}

		return c.reader.LoadBars(ctx, req.Instruments, start, end, types.GranularityIntraday)
	case types.DatasetFactorTable:
		instruments := req.Instruments

		if len(instruments) == 0 {
			resolved, err := req.Filter.Resolve(ctx, c.store)
			if err != nil {
				return nil, err
			}

			instruments = resolved
		}

		return c.factorFrame(ctx, instruments, start, end)
	case types.DatasetBoardDaily:
		return c.boardDailyFrame(ctx, req.Instruments, start, end)
	case types.DatasetBoardMembership:
		return c.membershipFrame(ctx, start, end)
	case types.DatasetBoardIndex:
		return c.boardIndexFrame(ctx, start, end)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedDataset, "unknown dataset type %q", req.Dataset)
	}
}

// advance moves the checkpoint to the maximum timestamp actually written,
// never to the requested end, so a partially-empty window does not mark the
// full range as covered.
func (c *Coordinator) advance(req Request, maxWritten time.Time) error {
	return c.checkpoints.Advance(req.SnapshotID, req.Dataset, maxWritten)
}

func (c *Coordinator) newResult(req Request, start, end time.Time) Result {
	return Result{
		RunID:      uuid.New().String(),
		SnapshotID: req.SnapshotID,
		Dataset:    req.Dataset,
		Start:      start,
		End:        end,
		State:      StatePending,
	}
}

func (c *Coordinator) logState(result Result, state RunState) {
	c.logger.Info("export run state",
		zap.String("run_id", result.RunID),
		zap.String("snapshot_id", result.SnapshotID),
		zap.String("dataset", string(result.Dataset)),
		zap.String("state", string(state)))
}

func (c *Coordinator) fail(result Result, err error) (Result, error) {
	result.State = StateFailed
	c.logger.Error("export run failed",
		zap.String("run_id", result.RunID),
		zap.String("snapshot_id", result.SnapshotID),
		zap.String("dataset", string(result.Dataset)),
		zap.Error(err))

	return result, err
}

func (c *Coordinator) progress(current, total float64, message string) {
	if c.onProgress != nil {
		c.onProgress(current, total, message)
	}
}

func countWindows(start, end time.Time, windowDays int) int {
	days := int(types.DateOf(end).Sub(types.DateOf(start)).Hours()/24) + 1
	windows := days / windowDays

	if days%windowDays != 0 {
		windows++
	}

	return windows
}
