// Package pipeline orchestrates the full correspondence computation:
// validate -> index -> overlay -> weight -> assemble.
//
// The overlay pass is an embarrassingly parallel map over source zones. Each
// zone's candidate lookup, intersection, weighting, and normalization is
// self-contained; workers share only the read-only spatial index and target
// meshes, so no locking is needed beyond final collection.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{Mode: weights.ModeArea}
//	result, err := runner.Execute(ctx, source, target, opts)
//	if err != nil {
//	    return err
//	}
//	export(result.Table, result.Diagnostics)
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/transportlab/zonelink/pkg/geometry"
	"github.com/transportlab/zonelink/pkg/overlay"
	"github.com/transportlab/zonelink/pkg/weights"
	"github.com/transportlab/zonelink/pkg/zone"
)

// Default values shared by the CLI and API entry points.
const (
	// DefaultZoneTimeout bounds the overlay computation for a single
	// source zone. On expiry the zone is skipped, not the run.
	DefaultZoneTimeout = time.Minute

	// DefaultMode is the default weighting mode.
	DefaultMode = weights.ModeArea
)

// Options contains all configuration for a correspondence run. The zero
// value is usable; ValidateAndSetDefaults fills in defaults. This struct
// supports JSON serialization for API requests.
type Options struct {
	// Mode selects area or attribute weighting.
	Mode weights.Mode `json:"mode,omitempty"`

	// AbsoluteSliver and RelativeSliver configure fragment filtering; the
	// larger of the two effective thresholds applies per source zone.
	AbsoluteSliver float64 `json:"absolute_sliver,omitempty"`
	RelativeSliver float64 `json:"relative_sliver,omitempty"`

	// AreaEpsilon is the degenerate-ring threshold used during repair.
	AreaEpsilon float64 `json:"area_epsilon,omitempty"`

	// Workers sizes the overlay worker pool. Defaults to GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// ZoneTimeout bounds a single zone's overlay computation.
	ZoneTimeout time.Duration `json:"zone_timeout,omitempty"`

	// Logger receives progress output. Defaults to a discarding logger.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if err := weights.ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.AbsoluteSliver < 0 || o.RelativeSliver < 0 {
		return fmt.Errorf("sliver thresholds must not be negative")
	}
	if o.RelativeSliver == 0 {
		o.RelativeSliver = overlay.DefaultRelativeSliver
	}
	if o.AreaEpsilon == 0 {
		o.AreaEpsilon = geometry.DefaultAreaEpsilon
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ZoneTimeout <= 0 {
		o.ZoneTimeout = DefaultZoneTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// overlayOptions converts pipeline options to overlay engine options.
func (o *Options) overlayOptions() overlay.Options {
	return overlay.Options{
		AbsoluteSliver: o.AbsoluteSliver,
		RelativeSliver: o.RelativeSliver,
	}
}

// Result contains the outputs of a correspondence run.
type Result struct {
	// RunID uniquely identifies this run in logs and exports.
	RunID string

	// Table is the final weight table, sorted by (source, target).
	Table zone.Table

	// Diagnostics lists zones skipped at validation, for lack of overlap,
	// or on timeout, sorted by zone ID. Excluded target zones appear with a
	// "target zone excluded" reason prefix.
	Diagnostics zone.Diagnostics

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	SourceZones  int           `json:"source_zones"`
	TargetZones  int           `json:"target_zones"`
	Entries      int           `json:"entries"`
	SkippedZones int           `json:"skipped_zones"`
	ValidateTime time.Duration `json:"validate_time"`
	IndexTime    time.Duration `json:"index_time"`
	OverlayTime  time.Duration `json:"overlay_time"`
}
