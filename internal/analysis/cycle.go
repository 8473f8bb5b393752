package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

// ErrUnknownCycle is returned for a cycle length outside the timing table.
var ErrUnknownCycle = errors.New("unknown cycle length")

// CycleLength is a signal timing plan: free mode or a fixed cycle in seconds.
type CycleLength string

const (
	CycleFree CycleLength = "Free mode"
	Cycle110  CycleLength = "110 sec"
	Cycle120  CycleLength = "120 sec"
	Cycle130  CycleLength = "130 sec"
	Cycle140  CycleLength = "140 sec"
)

// CycleOrder lists the plans from shortest to longest.
var CycleOrder = []CycleLength{CycleFree, Cycle110, Cycle120, Cycle130, Cycle140}

var cycleColors = map[CycleLength]string{
	CycleFree: "#7f8c8d",
	Cycle110:  "#27ae60",
	Cycle120:  "#3498db",
	Cycle130:  "#f39c12",
	Cycle140:  "#e74c3c",
}

// ParseCycleLength accepts "140", "140 sec", "140s", "free" or "Free mode".
func ParseCycleLength(s string) (CycleLength, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Cycle140, nil
	}
	if strings.HasPrefix(v, "free") {
		return CycleFree, nil
	}
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(v, "sec"), "s"))
	for _, c := range CycleOrder[1:] {
		if strconv.Itoa(c.Seconds()) == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCycle, s)
}

// Seconds is the cycle duration; free mode is 0.
func (c CycleLength) Seconds() int {
	if c == CycleFree {
		return 0
	}
	n, _ := strconv.Atoi(strings.Fields(string(c))[0])
	return n
}

// Color is the palette entry used on charts.
func (c CycleLength) Color() string {
	return cycleColors[c]
}

// RecommendCycle maps an average hourly volume onto the timing table.
func RecommendCycle(volume float64) CycleLength {
	switch {
	case math.IsNaN(volume) || volume <= 0:
		return CycleFree
	case volume >= 2400:
		return Cycle140
	case volume >= 1500:
		return Cycle130
	case volume >= 600:
		return Cycle120
	case volume >= 300:
		return Cycle110
	default:
		return CycleFree
	}
}

// CycleStatus compares a recommendation against the running plan.
type CycleStatus string

const (
	StatusOptimal  CycleStatus = "OPTIMAL"
	StatusIncrease CycleStatus = "INCREASE"
	StatusReduce   CycleStatus = "REDUCE"
)

// StatusOrder is the display order of statuses.
var StatusOrder = []CycleStatus{StatusOptimal, StatusIncrease, StatusReduce}

var statusColors = map[CycleStatus]string{
	StatusOptimal:  "#2ecc71",
	StatusIncrease: "#e67e22",
	StatusReduce:   "#8e44ad",
}

func (s CycleStatus) Color() string {
	return statusColors[s]
}

// CompareCycle reports whether the current plan should change to match the recommendation.
func CompareCycle(recommended, current CycleLength) CycleStatus {
	switch {
	case recommended == current:
		return StatusOptimal
	case recommended == CycleFree:
		return StatusReduce
	case current == CycleFree:
		return StatusIncrease
	case recommended.Seconds() > current.Seconds():
		return StatusIncrease
	case recommended.Seconds() < current.Seconds():
		return StatusReduce
	default:
		return StatusOptimal
	}
}

// LegendItem describes one row of the timing table for clients.
type LegendItem struct {
	Label     CycleLength `json:"label"`
	Condition string      `json:"condition"`
	Color     string      `json:"color"`
}

// CycleLegend returns the timing table, longest cycle first.
func CycleLegend() []LegendItem {
	return []LegendItem{
		{Cycle140, "≥ 2400 vph", Cycle140.Color()},
		{Cycle130, "≥ 1500 vph", Cycle130.Color()},
		{Cycle120, "≥ 600 vph", Cycle120.Color()},
		{Cycle110, "≥ 300 vph", Cycle110.Color()},
		{CycleFree, "< 300 vph", CycleFree.Color()},
	}
}

// HourlyCycle is the recommendation for one hour of the day.
type HourlyCycle struct {
	Hour               int         `json:"hour"`
	Label              string      `json:"label"`
	Volume             int         `json:"avg_volume_vph"`
	Recommendation     CycleLength `json:"recommendation"`
	RecommendedSeconds int         `json:"recommended_sec"`
	Status             CycleStatus `json:"status"`
}

// StatusCount is how many hours carry a status.
type StatusCount struct {
	Status CycleStatus `json:"status"`
	Hours  int         `json:"hours"`
	Color  string      `json:"color"`
}

// CycleKPIs summarize how well the running plan fits demand.
type CycleKPIs struct {
	HoursAnalyzed           int      `json:"hours_analyzed"`
	Window                  string   `json:"window"`
	OptimalHours            int      `json:"optimal_hours"`
	Efficiency              float64  `json:"efficiency_pct"`
	ChangesNeeded           int      `json:"changes_needed"`
	IncreaseHours           []string `json:"increase_hours"`
	ReduceHours             []string `json:"reduce_hours"`
	IncreasePreview         string   `json:"increase_preview"`
	ReducePreview           string   `json:"reduce_preview"`
	HighVolumeRows          int      `json:"high_volume_rows"`
	PeriodRows              int      `json:"period_rows"`
	HighVolumeShare         float64  `json:"high_volume_share_pct"`
	PeakRawVolume           float64  `json:"peak_raw_volume"`
	PeakCapacityUtilization float64  `json:"peak_capacity_utilization_pct"`
}

// CycleReport is the full cycle length analysis for one selection.
type CycleReport struct {
	Intersection string        `json:"intersection"`
	Direction    string        `json:"direction"`
	StartLabel   string        `json:"start_label"`
	EndLabel     string        `json:"end_label"`
	Period       filter.Period `json:"period"`
	Window       string        `json:"window"`
	CurrentCycle CycleLength   `json:"current_cycle"`
	Hourly       []HourlyCycle `json:"hourly"`
	KPIs         CycleKPIs     `json:"kpis"`
	StatusCounts []StatusCount `json:"status_counts"`
	PeakVolume   int           `json:"peak_volume_vph"`
	PeakHour     string        `json:"peak_hour"`
	Legend       []LegendItem  `json:"legend"`
}

const dayLabelLayout = "Monday, Jan 02, 2006"

// AnalyzeCycleLengths averages volume per hour of day within the period,
// recommends a cycle per hour and compares it with the current plan.
func AnalyzeCycleLengths(raw []domain.VolumeRecord, period filter.Period, current CycleLength, th Thresholds) (CycleReport, error) {
	if len(raw) == 0 {
		return CycleReport{}, ErrNoVolumeData
	}
	rep := CycleReport{
		Period:       period,
		Window:       period.Window(),
		CurrentCycle: current,
		Legend:       CycleLegend(),
	}
	rep.Intersection, rep.Direction, rep.StartLabel, rep.EndLabel = cycleContext(raw)

	byHour := make(map[int][]float64)
	var periodVols []float64
	for _, r := range raw {
		h := r.LocalDateTime.Hour()
		if !period.Includes(h) {
			continue
		}
		byHour[h] = append(byHour[h], r.TotalVolume)
		periodVols = append(periodVols, r.TotalVolume)
	}
	if len(periodVols) == 0 {
		return CycleReport{}, ErrNoPeriodData
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		m := Mean(byHour[h])
		if !isFinite(m) {
			continue
		}
		vol := int(math.RoundToEven(m))
		rec := RecommendCycle(float64(vol))
		rep.Hourly = append(rep.Hourly, HourlyCycle{
			Hour:               h,
			Label:              fmt.Sprintf("%02d:00", h),
			Volume:             vol,
			Recommendation:     rec,
			RecommendedSeconds: rec.Seconds(),
			Status:             CompareCycle(rec, current),
		})
	}
	if len(rep.Hourly) == 0 {
		return CycleReport{}, ErrNoPeriodData
	}

	k := CycleKPIs{HoursAnalyzed: len(rep.Hourly), Window: rep.Window}
	counts := make(map[CycleStatus]int)
	for i, hc := range rep.Hourly {
		counts[hc.Status]++
		switch hc.Status {
		case StatusIncrease:
			k.IncreaseHours = append(k.IncreaseHours, hc.Label)
		case StatusReduce:
			k.ReduceHours = append(k.ReduceHours, hc.Label)
		}
		if i == 0 || hc.Volume > rep.PeakVolume {
			rep.PeakVolume, rep.PeakHour = hc.Volume, hc.Label
		}
	}
	k.OptimalHours = counts[StatusOptimal]
	k.Efficiency = percentOf(k.OptimalHours, k.HoursAnalyzed)
	k.ChangesNeeded = k.HoursAnalyzed - k.OptimalHours
	k.IncreasePreview = HoursPreview(k.IncreaseHours, 5)
	k.ReducePreview = HoursPreview(k.ReduceHours, 5)

	k.PeriodRows = Count(periodVols)
	k.HighVolumeRows = countAbove(periodVols, th.HighVolumeVPH)
	k.HighVolumeShare = percentOf(k.HighVolumeRows, k.PeriodRows)
	k.PeakRawVolume = orZero(Max(periodVols))
	if th.CapacityVPH > 0 {
		k.PeakCapacityUtilization = k.PeakRawVolume / th.CapacityVPH * 100
	}
	rep.KPIs = k

	for _, s := range StatusOrder {
		rep.StatusCounts = append(rep.StatusCounts, StatusCount{Status: s, Hours: counts[s], Color: s.Color()})
	}
	return rep, nil
}

// HoursPreview lists up to limit hour labels and counts the rest.
func HoursPreview(labels []string, limit int) string {
	if len(labels) == 0 {
		return "None"
	}
	if len(labels) <= limit {
		return strings.Join(labels, ", ")
	}
	return strings.Join(labels[:limit], ", ") + fmt.Sprintf(" (+%d more)", len(labels)-limit)
}

func cycleContext(raw []domain.VolumeRecord) (intersection, direction, startLabel, endLabel string) {
	names := make(map[string]struct{})
	dirs := make(map[string]struct{})
	var first, last time.Time
	for i, r := range raw {
		if r.IntersectionName != "" {
			names[r.IntersectionName] = struct{}{}
		}
		if r.Direction != "" {
			dirs[r.Direction] = struct{}{}
		}
		if i == 0 || r.LocalDateTime.Before(first) {
			first = r.LocalDateTime
		}
		if i == 0 || r.LocalDateTime.After(last) {
			last = r.LocalDateTime
		}
	}
	intersection = contextLabel(names, "Intersections")
	if len(dirs) > 1 {
		direction = "All Directions"
	} else {
		direction = contextLabel(dirs, "")
	}
	return intersection, direction, first.Format(dayLabelLayout), last.Format(dayLabelLayout)
}

func contextLabel(set map[string]struct{}, plural string) string {
	switch len(set) {
	case 0:
		return "N/A"
	case 1:
		for k := range set {
			return k
		}
	}
	return fmt.Sprintf("%d %s", len(set), plural)
}
