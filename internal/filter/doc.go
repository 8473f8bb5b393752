// Package filter holds the query-side selections applied before analysis:
// inclusive date ranges, relative presets, hour-of-day focus windows and the
// signal timing periods.
package filter
