package domain

import (
	"regexp"
	"strings"
)

// Direction is the normalized travel direction of a segment or approach.
type Direction string

const (
	DirectionNorth   Direction = "nb"
	DirectionSouth   Direction = "sb"
	DirectionUnknown Direction = "unk"
)

var (
	// directionSeparatorRe collapses whitespace and punctuation so
	// "North-Bound", "north_bound" and "NB/1" tokenize the same way.
	directionSeparatorRe = regexp.MustCompile(`[\s\-()_/\\]+`)
	northRe              = regexp.MustCompile(`\b(nb|north|northbound)\b`)
	southRe              = regexp.MustCompile(`\b(sb|south|southbound)\b`)
)

// NormalizeDirection folds a free-form direction string into nb, sb or unk.
func NormalizeDirection(value string) Direction {
	v := strings.ToLower(strings.TrimSpace(value))
	v = directionSeparatorRe.ReplaceAllString(v, " ")
	switch {
	case northRe.MatchString(v):
		return DirectionNorth
	case southRe.MatchString(v):
		return DirectionSouth
	default:
		return DirectionUnknown
	}
}

// Arrow returns the glyph label used in rankings, e.g. "↑ NB".
func (d Direction) Arrow() string {
	switch d {
	case DirectionNorth:
		return "↑ NB"
	case DirectionSouth:
		return "↓ SB"
	default:
		return "• UNK"
	}
}
