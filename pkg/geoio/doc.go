// Package geoio provides the file-format adapters around the correspondence
// core: GeoJSON import of zone collections and CSV/JSON export of weight
// tables and diagnostics.
//
// # Import
//
// Zone collections are read from GeoJSON feature collections. Each feature
// must carry a unique identifier property and polygonal geometry; an optional
// numeric property supplies the attribute used by attribute weighting:
//
//	zones, err := geoio.ReadZones(r, geoio.ReadOptions{
//	    IDProperty:        "zone_id",
//	    AttributeProperty: "population",
//	})
//
// Geometry is taken as-is in the file's planar coordinate system; repair and
// validation happen later in the pipeline, not here.
//
// # Export
//
// Weight tables export as CSV (source,target,weight) or JSON. Diagnostics
// export as JSON next to the table so skipped zones are never silently lost:
//
//	err := geoio.WriteTableCSV(w, result.Table)
//	err = geoio.WriteDiagnosticsJSON(w, result.Diagnostics)
package geoio
