package filter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTimeFocus = errors.New("unknown time focus")
	ErrInvalidHourRange = errors.New("invalid hour range")
	ErrUnknownPeriod    = errors.New("unknown period")
)

// TimeFocus selects which hours of the day feed an hourly analysis.
type TimeFocus string

const (
	FocusAll     TimeFocus = "all"
	FocusPeak    TimeFocus = "peak"
	FocusAMPeak  TimeFocus = "am_peak"
	FocusPMPeak  TimeFocus = "pm_peak"
	FocusOffPeak TimeFocus = "off_peak"
	FocusCustom  TimeFocus = "custom"
)

// Peak windows, start inclusive and end exclusive.
const (
	amPeakStart = 7
	amPeakEnd   = 9
	pmPeakStart = 16
	pmPeakEnd   = 18
)

// HourWindow is a resolved time focus. StartHour and EndHour only apply to FocusCustom.
type HourWindow struct {
	Focus     TimeFocus `json:"focus"`
	StartHour int       `json:"start_hour,omitempty"`
	EndHour   int       `json:"end_hour,omitempty"`
}

// AllHours keeps every hour.
var AllHours = HourWindow{Focus: FocusAll}

// NewHourWindow validates a focus name. Custom windows take 0 <= start < end <= 24.
func NewHourWindow(focus string, startHour, endHour int) (HourWindow, error) {
	f := TimeFocus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(focus)), "-", "_"))
	switch f {
	case "":
		return AllHours, nil
	case FocusAll, FocusPeak, FocusAMPeak, FocusPMPeak, FocusOffPeak:
		return HourWindow{Focus: f}, nil
	case FocusCustom:
		if startHour < 0 || startHour > 23 || endHour < 1 || endHour > 24 || startHour >= endHour {
			return HourWindow{}, fmt.Errorf("%w: %d-%d", ErrInvalidHourRange, startHour, endHour)
		}
		return HourWindow{Focus: f, StartHour: startHour, EndHour: endHour}, nil
	default:
		return HourWindow{}, fmt.Errorf("%w: %q", ErrUnknownTimeFocus, focus)
	}
}

// Includes reports whether an hour of day (0-23) passes the focus.
func (w HourWindow) Includes(hour int) bool {
	am := hour >= amPeakStart && hour < amPeakEnd
	pm := hour >= pmPeakStart && hour < pmPeakEnd
	switch w.Focus {
	case FocusPeak:
		return am || pm
	case FocusAMPeak:
		return am
	case FocusPMPeak:
		return pm
	case FocusOffPeak:
		return !am && !pm
	case FocusCustom:
		return hour >= w.StartHour && hour < w.EndHour
	default:
		return true
	}
}

// Label is the human-readable focus name.
func (w HourWindow) Label() string {
	switch w.Focus {
	case FocusPeak:
		return "Peak Hours (7–9 AM, 4–6 PM)"
	case FocusAMPeak:
		return "AM Peak (7–9 AM)"
	case FocusPMPeak:
		return "PM Peak (4–6 PM)"
	case FocusOffPeak:
		return "Off-Peak"
	case FocusCustom:
		return fmt.Sprintf("Custom Range (%02d:00–%02d:00)", w.StartHour, w.EndHour)
	default:
		return "All Hours"
	}
}

// Period is a signal timing plan window.
type Period string

const (
	PeriodAM  Period = "AM"
	PeriodMD  Period = "MD"
	PeriodPM  Period = "PM"
	PeriodAll Period = "ALL"
)

// ParsePeriod accepts AM, MD, PM or ALL in any case. Empty means AM.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToUpper(strings.TrimSpace(s))); p {
	case "":
		return PeriodAM, nil
	case PeriodAM, PeriodMD, PeriodPM, PeriodAll:
		return p, nil
	case "ALL DAY", "ALL_DAY":
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Hours returns the inclusive first and last hour of the period.
func (p Period) Hours() (first, last int) {
	switch p {
	case PeriodAM:
		return 5, 10
	case PeriodMD:
		return 11, 15
	case PeriodPM:
		return 16, 20
	default:
		return 0, 23
	}
}

// Includes reports whether an hour of day belongs to the period.
func (p Period) Includes(hour int) bool {
	first, last := p.Hours()
	return hour >= first && hour <= last
}

// Window renders the period span, e.g. "05:00–10:00".
func (p Period) Window() string {
	first, last := p.Hours()
	return fmt.Sprintf("%02d:00–%02d:00", first, last)
}
