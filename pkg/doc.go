// Package pkg provides the core libraries for zonelink zone correspondence.
//
// # Overview
//
// zonelink computes area-weighted correspondence tables between two
// incompatible zone systems (for example census tracts and traffic analysis
// zones), so data collected against one set of boundaries can be
// reapportioned onto another. The pkg directory is organized into three main
// areas:
//
//  1. Domain logic (zone model, geometry repair, spatial index, overlay,
//     weights)
//  2. Orchestration (the pipeline running validate -> index -> overlay ->
//     weight)
//  3. Infrastructure (GeoJSON I/O, result cache, graph rendering,
//     observability hooks, build info)
//
// # Architecture
//
// The typical data flow through zonelink:
//
//	GeoJSON feature collections
//	         |
//	    [geoio] package (parse features into zones)
//	         |
//	    [geometry] package (repair rings, triangulate into meshes)
//	         |
//	    [index] + [overlay] packages (candidate lookup, intersection areas)
//	         |
//	    [weights] package (raw weights, per-source normalization)
//	         |
//	    weight table (CSV/JSON export, graph rendering)
//
// # Quick Start
//
// Compute a correspondence table:
//
//	import (
//	    "context"
//	    "github.com/transportlab/zonelink/pkg/geoio"
//	    "github.com/transportlab/zonelink/pkg/pipeline"
//	)
//
//	source, _ := geoio.ImportZones("districts.geojson", geoio.ReadOptions{})
//	target, _ := geoio.ImportZones("blocks.geojson", geoio.ReadOptions{})
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), source, target, pipeline.Options{})
//	if err != nil {
//	    // handle error
//	}
//	_ = geoio.ExportTableCSV(result.Table, "districts_to_blocks.csv")
//
// # Main Packages
//
// [zone] - Zone model: collections, weight table entries, diagnostics, and
// the sentinel errors shared across the module.
//
// [geometry] - Ring repair and validation, signed areas, triangulation, and
// mesh intersection. The mesh representation makes intersection areas a sum
// of signed convex clips, which handles holes and multipolygon parts without
// a general boolean-operations dependency.
//
// [index] - Bounding-box R-tree over target zones for candidate lookup.
//
// [overlay] - The overlay engine: per source zone, clip against candidate
// targets and filter sliver fragments.
//
// [weights] - Raw weight derivation (area or attribute mode), per-source
// normalization, and mass conservation checks.
//
// [pipeline] - Orchestration used by the CLI and the HTTP API. Validates
// inputs, builds the index, runs the overlay worker pool, and assembles the
// final table plus diagnostics.
//
// [geoio] - GeoJSON import and CSV/JSON table export.
//
// [cache] - Content-addressed result cache with file, Redis, and null
// backends.
//
// [render] - Bipartite correspondence graphs in Graphviz DOT and SVG.
//
// [observability] - Optional instrumentation hooks for runs and cache
// operations.
//
// [buildinfo] - Build-time version information set via ldflags.
//
// [zone]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/zone
// [geometry]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/geometry
// [index]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/index
// [overlay]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/overlay
// [weights]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/weights
// [pipeline]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/pipeline
// [geoio]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/geoio
// [cache]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/cache
// [render]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/render
// [observability]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/transportlab/zonelink/pkg/buildinfo
package pkg
