// Package domain models hourly corridor observations from the signal
// operations data feeds.
//
// # Data Sources
//
// Two record families are ingested, either as CSV exports or as flat JSON
// messages on the source topic:
//
//	travel_time: local_datetime, segment_name, direction,
//	             average_traveltime (min), average_delay (min), average_speed (mph)
//	volume:      local_datetime, intersection_name, direction, total_volume (vehicles/hour)
//
// # Corridor Conventions
//
// Segment names join two corridor nodes with an arrow:
//
//	"Avenue 52 → Calle Tampico"
//
// ASCII arrows ("->") are rewritten to the canonical form during parsing.
// The node list in [DefaultNodeOrder] runs south to north, so a segment whose
// origin sits earlier in that list is travelled northbound.
//
// Direction strings arrive in many spellings ("NB", "Northbound", "north-bound",
// "SB (2)"). [NormalizeDirection] folds them into nb, sb or unk.
//
// # Missing Values
//
// Unparseable numeric fields become NaN. Aggregations skip NaN the same way a
// missing observation is skipped, so a blank cell never reads as zero traffic.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of kind|location|direction|hour.
// Re-ingesting the same hour for the same location overwrites the earlier row,
// which keeps uploads and topic replays idempotent. See [generateID].
package domain
