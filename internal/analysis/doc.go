// Package analysis turns filtered hourly observations into the numbers an
// operations analyst reads: bucketed volume totals, corridor travel-time
// KPIs, bottleneck and capacity-risk rankings, and signal cycle length
// recommendations.
//
// Every function is a pure, single-pass computation over in-memory slices.
// Missing observations are NaN and are skipped by the aggregations in
// stats.go, matching how a blank spreadsheet cell is ignored by a mean.
package analysis
