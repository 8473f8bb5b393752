package chart

import (
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
)

// CycleVolume draws the average hourly volume, each bar colored by its recommended cycle.
func CycleVolume(rep analysis.CycleReport) (gochart.BarChart, error) {
	if len(rep.Hourly) == 0 {
		return gochart.BarChart{}, ErrNoSeries
	}
	bars := make([]gochart.Value, len(rep.Hourly))
	var top float64
	for i, h := range rep.Hourly {
		c := hex(h.Recommendation.Color())
		bars[i] = gochart.Value{
			Label: h.Label,
			Value: float64(h.Volume),
			Style: gochart.Style{FillColor: c, StrokeColor: c},
		}
		top = max(top, float64(h.Volume))
	}
	return gochart.BarChart{
		Title:      fmt.Sprintf("Hourly Volume and Recommended Cycle (%s %s)", rep.Period, rep.Window),
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: background(),
		BarWidth:   40,
		YAxis:      gochart.YAxis{Name: "Average Volume (vph)", Range: yRange(top)},
		Bars:       bars,
	}, nil
}

// CycleStatus shows how many hours are optimal or need a longer or shorter cycle.
// Statuses with no hours are left out of the pie.
func CycleStatus(rep analysis.CycleReport) (gochart.PieChart, error) {
	var values []gochart.Value
	for _, sc := range rep.StatusCounts {
		if sc.Hours == 0 {
			continue
		}
		c := hex(sc.Color)
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", sc.Status, sc.Hours),
			Value: float64(sc.Hours),
			Style: gochart.Style{FillColor: c, StrokeColor: c},
		})
	}
	if len(values) == 0 {
		return gochart.PieChart{}, ErrNoSeries
	}
	return gochart.PieChart{
		Title:  "Current Cycle Status",
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}, nil
}
