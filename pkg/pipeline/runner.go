package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/transportlab/zonelink/pkg/geometry"
	"github.com/transportlab/zonelink/pkg/observability"
	"github.com/transportlab/zonelink/pkg/overlay"
	"github.com/transportlab/zonelink/pkg/weights"
	"github.com/transportlab/zonelink/pkg/zone"
)

// Runner executes the correspondence pipeline.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a pipeline runner. A nil logger discards output.
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{logger: logger}
}

// targetReasonPrefix marks diagnostics for excluded target zones.
const targetReasonPrefix = "target zone excluded: "

// zoneResult is the typed message a worker sends back for one source zone.
type zoneResult struct {
	zoneID  string
	entries []zone.Entry
	err     error
}

// Execute runs the full pipeline over the two collections and returns the
// weight table plus diagnostics.
//
// Per-zone failures (unrepairable geometry, no overlap, timeout) become
// diagnostics; only empty inputs and index construction abort the run. On
// context cancellation, in-flight zones are abandoned and ctx.Err() is
// returned alongside a partial Result holding the batches of the zones that
// completed.
func (r *Runner) Execute(ctx context.Context, source, target *zone.Collection, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger
	if logger == nil {
		logger = opts.Logger
	}

	if source == nil || source.Len() == 0 {
		return nil, zone.ErrEmptySources
	}
	if target == nil || target.Len() == 0 {
		return nil, zone.ErrEmptyTargets
	}

	result := &Result{RunID: uuid.NewString()}
	builder := weights.NewBuilder()

	runStart := time.Now()
	observability.Run().OnRunStart(ctx, result.RunID, source.Len(), target.Len())
	defer func() {
		observability.Run().OnRunComplete(ctx, result.RunID,
			result.Stats.Entries, result.Stats.SkippedZones, time.Since(runStart), ctx.Err())
	}()

	// Validation. Zones that fail repair are diagnostics, not failures.
	start := time.Now()
	sourceRecords, sourceDiags := geometry.ValidateCollection(source, opts.AreaEpsilon)
	targetRecords, targetDiags := geometry.ValidateCollection(target, opts.AreaEpsilon)
	for _, d := range sourceDiags {
		builder.Skip(d.ZoneID, d.Reason)
	}
	// Excluded target zones are reported too; the reason prefix keeps them
	// distinguishable from skipped source zones.
	for _, d := range targetDiags {
		logger.Warnf("target zone %s excluded: %s", d.ZoneID, d.Reason)
		builder.Skip(d.ZoneID, targetReasonPrefix+d.Reason)
	}
	result.Stats.ValidateTime = time.Since(start)
	result.Stats.SourceZones = len(sourceRecords)
	result.Stats.TargetZones = len(targetRecords)
	logger.Debugf("validated %d source and %d target zones (%d skipped)",
		len(sourceRecords), len(targetRecords), len(sourceDiags)+len(targetDiags))

	// Index and target meshes, built once and shared read-only.
	start = time.Now()
	engine, err := overlay.NewEngine(targetRecords, opts.overlayOptions())
	if err != nil {
		return nil, err
	}
	result.Stats.IndexTime = time.Since(start)

	// Overlay worker pool.
	start = time.Now()
	results := r.runPool(ctx, engine, sourceRecords, opts)
	for res := range results {
		switch {
		case res.err == nil:
			builder.Add(res.entries)
		case errors.Is(res.err, context.Canceled), errors.Is(res.err, context.DeadlineExceeded):
			// Run-level cancellation; in-flight zones are abandoned.
		default:
			logger.Debugf("zone %s skipped: %v", res.zoneID, res.err)
			builder.Skip(res.zoneID, reason(res.err))
		}
	}
	result.Stats.OverlayTime = time.Since(start)

	table, diags, err := builder.Finish()
	if err != nil {
		return nil, err
	}
	result.Table = table
	result.Diagnostics = diags
	result.Stats.Entries = len(table)
	result.Stats.SkippedZones = len(diags)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	logger.Infof("run %s: %d entries, %d zones skipped", result.RunID, len(table), len(diags))
	return result, nil
}

// runPool fans source zones out to a bounded worker pool and returns the
// channel of per-zone results. The channel is closed once all workers exit.
func (r *Runner) runPool(ctx context.Context, engine *overlay.Engine, sources []zone.Record, opts Options) <-chan zoneResult {
	jobs := make(chan zone.Record)
	results := make(chan zoneResult)

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- processZone(ctx, engine, rec, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range sources {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// processZone computes one source zone's normalized entries. The per-zone
// timeout converts a stalled overlay into a skippable error instead of
// stalling the pool.
func processZone(ctx context.Context, engine *overlay.Engine, rec zone.Record, opts Options) (res zoneResult) {
	zctx, cancel := context.WithTimeout(ctx, opts.ZoneTimeout)
	defer cancel()

	start := time.Now()
	observability.Run().OnZoneStart(ctx, rec.ID)
	defer func() {
		observability.Run().OnZoneComplete(ctx, rec.ID, len(res.entries), time.Since(start), res.err)
	}()

	frags, err := engine.Fragments(zctx, rec)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = zone.ErrZoneTimeout
		}
		return zoneResult{zoneID: rec.ID, err: err}
	}

	entries, err := weights.Normalize(frags, rec, opts.Mode)
	if err != nil {
		return zoneResult{zoneID: rec.ID, err: err}
	}
	return zoneResult{zoneID: rec.ID, entries: entries}
}

// reason maps a per-zone error onto a stable diagnostic string.
func reason(err error) string {
	switch {
	case errors.Is(err, zone.ErrNoOverlap):
		return zone.ErrNoOverlap.Error()
	case errors.Is(err, zone.ErrZoneTimeout):
		return zone.ErrZoneTimeout.Error()
	case errors.Is(err, zone.ErrZeroAttribute):
		return zone.ErrZeroAttribute.Error()
	case errors.Is(err, zone.ErrDegenerateZone):
		return zone.ErrDegenerateZone.Error()
	case errors.Is(err, zone.ErrInvalidGeometry):
		return zone.ErrInvalidGeometry.Error()
	}
	return err.Error()
}
