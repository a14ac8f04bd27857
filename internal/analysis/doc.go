// Package analysis derives the series and summaries behind every chart of the
// dashboard from station and year views of the unified table.
//
// All functions are pure: they read a view and return fresh values. Missing
// measurements (NaN) are skipped by means and sums and surface as null in the
// JSON produced from the returned types.
package analysis
