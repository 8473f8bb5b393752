package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGranularity is returned for an unrecognized aggregation level.
var ErrInvalidGranularity = errors.New("invalid granularity")

// Granularity is the time bucket width used for aggregation.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts the level name in any case. An empty string means hourly.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Hourly, nil
	case Hourly, Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// Unit is the volume rate unit for totals at this granularity.
func (g Granularity) Unit() string {
	switch g {
	case Daily:
		return "vpd"
	case Weekly:
		return "vpw"
	case Monthly:
		return "vpm"
	default:
		return "vph"
	}
}

// Label is the display name, e.g. "Weekly".
func (g Granularity) Label() string {
	if g == "" {
		return "Hourly"
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Noun is the bucket name used in KPI captions: hour, day, week or month.
func (g Granularity) Noun() string {
	switch g {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	default:
		return "hour"
	}
}
