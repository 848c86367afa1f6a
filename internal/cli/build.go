package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/transportlab/zonelink/pkg/cache"
	"github.com/transportlab/zonelink/pkg/geoio"
	"github.com/transportlab/zonelink/pkg/pipeline"
	"github.com/transportlab/zonelink/pkg/weights"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	config            string  // optional TOML config file
	output            string  // weight table path (.csv or .json)
	diagnostics       string  // skipped-zone report path (JSON)
	idProperty        string  // feature property holding the zone ID
	attributeProperty string  // feature property holding the weighting attribute
	mode              string  // "area" or "attribute"
	absoluteSliver    float64 // minimum fragment area kept
	relativeSliver    float64 // minimum fragment share of its source zone
	workers           int     // parallel zone workers
	zoneTimeout       time.Duration
	noCache           bool // bypass the result cache entirely
	refresh           bool // recompute and overwrite any cached result
}

// newBuildCmd creates the build command that computes a correspondence table
// from a source and a target zone collection.
func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <source.geojson> <target.geojson>",
		Short: "Compute the area-weighted correspondence table for two zone systems",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			mergeConfig(&opts, cfg, cmd)
			return runBuild(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "weight table output (.csv or .json, default <source>_to_<target>.csv)")
	cmd.Flags().StringVar(&opts.diagnostics, "diagnostics", "", "write skipped-zone report to this JSON file")
	cmd.Flags().StringVar(&opts.idProperty, "id-property", geoio.DefaultIDProperty, "feature property holding the zone ID")
	cmd.Flags().StringVar(&opts.attributeProperty, "attribute-property", "", "feature property holding the weighting attribute")
	cmd.Flags().StringVar(&opts.mode, "mode", string(weights.ModeArea), "weighting mode: area or attribute")
	cmd.Flags().Float64Var(&opts.absoluteSliver, "absolute-sliver", 0, "drop fragments smaller than this area")
	cmd.Flags().Float64Var(&opts.relativeSliver, "relative-sliver", 0, "drop fragments below this share of their source zone")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel zone workers (default GOMAXPROCS)")
	cmd.Flags().DurationVar(&opts.zoneTimeout, "zone-timeout", 0, "per-zone overlay deadline (default 1m)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

// mergeConfig fills opts from cfg for every flag the user did not set
// explicitly, so flags always win over the config file.
func mergeConfig(opts *buildOpts, cfg Config, cmd *cobra.Command) {
	if !cmd.Flags().Changed("id-property") && cfg.Input.IDProperty != "" {
		opts.idProperty = cfg.Input.IDProperty
	}
	if !cmd.Flags().Changed("attribute-property") && cfg.Input.AttributeProperty != "" {
		opts.attributeProperty = cfg.Input.AttributeProperty
	}
	if !cmd.Flags().Changed("mode") && cfg.Run.Mode != "" {
		opts.mode = cfg.Run.Mode
	}
	if !cmd.Flags().Changed("absolute-sliver") && cfg.Run.AbsoluteSliver != 0 {
		opts.absoluteSliver = cfg.Run.AbsoluteSliver
	}
	if !cmd.Flags().Changed("relative-sliver") && cfg.Run.RelativeSliver != 0 {
		opts.relativeSliver = cfg.Run.RelativeSliver
	}
	if !cmd.Flags().Changed("workers") && cfg.Run.Workers != 0 {
		opts.workers = cfg.Run.Workers
	}
	if !cmd.Flags().Changed("zone-timeout") && cfg.Run.ZoneTimeout.Duration != 0 {
		opts.zoneTimeout = cfg.Run.ZoneTimeout.Duration
	}
	if !cmd.Flags().Changed("output") && cfg.Output.Table != "" {
		opts.output = cfg.Output.Table
	}
	if !cmd.Flags().Changed("diagnostics") && cfg.Output.Diagnostics != "" {
		opts.diagnostics = cfg.Output.Diagnostics
	}
}

func runBuild(ctx context.Context, sourcePath, targetPath string, opts *buildOpts) error {
	logger := loggerFromContext(ctx)

	sourceBytes, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	targetBytes, err := os.ReadFile(targetPath)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}

	pipeOpts := pipeline.Options{
		Mode:           weights.Mode(opts.mode),
		AbsoluteSliver: opts.absoluteSliver,
		RelativeSliver: opts.relativeSliver,
		Workers:        opts.workers,
		ZoneTimeout:    opts.zoneTimeout,
		Logger:         logger,
	}
	if err := pipeOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	store, key := openCache(ctx, opts, sourceBytes, targetBytes, pipeOpts)
	if store != nil {
		defer store.Close()
	}

	result, cached := cachedResult(ctx, store, key, opts.refresh)
	if result == nil {
		result, err = computeResult(ctx, sourceBytes, targetBytes, opts, pipeOpts)
		if err != nil {
			return err
		}
		storeResult(ctx, store, key, result)
	}

	if cached {
		printInfo("Using cached result %s", StyleDim.Render(result.RunID))
	}
	return writeOutputs(sourcePath, targetPath, opts, result, cached)
}

// openCache sets up the file cache and the content key for this run. A nil
// store means caching is disabled.
func openCache(ctx context.Context, opts *buildOpts, sourceBytes, targetBytes []byte, pipeOpts pipeline.Options) (cache.Cache, string) {
	if opts.noCache {
		return nil, ""
	}
	logger := loggerFromContext(ctx)

	dir, err := cacheDir()
	if err != nil {
		logger.Warn("cache disabled", "error", err)
		return nil, ""
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("cache disabled", "error", err)
		return nil, ""
	}

	keyOpts := struct {
		Mode              weights.Mode `json:"mode"`
		AbsoluteSliver    float64      `json:"absolute_sliver"`
		RelativeSliver    float64      `json:"relative_sliver"`
		AreaEpsilon       float64      `json:"area_epsilon"`
		IDProperty        string       `json:"id_property"`
		AttributeProperty string       `json:"attribute_property"`
	}{pipeOpts.Mode, pipeOpts.AbsoluteSliver, pipeOpts.RelativeSliver, pipeOpts.AreaEpsilon, opts.idProperty, opts.attributeProperty}
	return store, cache.RunKey(sourceBytes, targetBytes, keyOpts)
}

// cachedResult looks the run up in the cache. It returns (nil, false) on a
// miss or when caching is off.
func cachedResult(ctx context.Context, store cache.Cache, key string, refresh bool) (*pipeline.Result, bool) {
	if store == nil || refresh {
		return nil, false
	}
	logger := loggerFromContext(ctx)

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var result pipeline.Result
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("cache entry corrupt, recomputing", "error", err)
		return nil, false
	}
	logger.Debug("cache hit", "key", key)
	return &result, true
}

func computeResult(ctx context.Context, sourceBytes, targetBytes []byte, opts *buildOpts, pipeOpts pipeline.Options) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)
	readOpts := geoio.ReadOptions{
		IDProperty:        opts.idProperty,
		AttributeProperty: opts.attributeProperty,
	}

	prog := newProgress(logger)
	source, err := geoio.ReadZones(bytes.NewReader(sourceBytes), readOpts)
	if err != nil {
		return nil, fmt.Errorf("source zones: %w", err)
	}
	target, err := geoio.ReadZones(bytes.NewReader(targetBytes), readOpts)
	if err != nil {
		return nil, fmt.Errorf("target zones: %w", err)
	}
	prog.done(fmt.Sprintf("Loaded %d source and %d target zones", source.Len(), target.Len()))

	spinner := newSpinner(ctx, "Computing overlay...")
	spinner.Start()
	result, err := pipeline.NewRunner(logger).Execute(ctx, source, target, pipeOpts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func storeResult(ctx context.Context, store cache.Cache, key string, result *pipeline.Result) {
	if store == nil {
		return
	}
	logger := loggerFromContext(ctx)
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("cache write failed", "error", err)
		return
	}
	if err := store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		logger.Warn("cache write failed", "error", err)
	}
}

func writeOutputs(sourcePath, targetPath string, opts *buildOpts, result *pipeline.Result, cached bool) error {
	output := opts.output
	if output == "" {
		output = defaultOutputPath(sourcePath, targetPath)
	}

	var err error
	if strings.EqualFold(filepath.Ext(output), ".json") {
		err = geoio.ExportTableJSON(result.Table, output)
	} else {
		err = geoio.ExportTableCSV(result.Table, output)
	}
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	printSuccess("Computed %d correspondences for %d source zones", len(result.Table), result.Stats.SourceZones)
	if !cached {
		printDetail("validate %s, index %s, overlay %s",
			result.Stats.ValidateTime.Round(time.Millisecond),
			result.Stats.IndexTime.Round(time.Millisecond),
			result.Stats.OverlayTime.Round(time.Millisecond))
	}
	printFile(output)

	if n := len(result.Diagnostics); n > 0 {
		printWarning("Skipped %d zones", n)
		for _, d := range result.Diagnostics {
			printDetail("%s: %s", d.ZoneID, d.Reason)
		}
	}
	if opts.diagnostics != "" {
		if err := geoio.ExportDiagnosticsJSON(result.Diagnostics, opts.diagnostics); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
		printFile(opts.diagnostics)
	}
	return nil
}

// defaultOutputPath derives <source>_to_<target>.csv in the working directory.
func defaultOutputPath(sourcePath, targetPath string) string {
	base := func(p string) string {
		name := filepath.Base(p)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return base(sourcePath) + "_to_" + base(targetPath) + ".csv"
}
