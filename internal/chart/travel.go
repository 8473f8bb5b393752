package chart

import (
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
)

// Metric selects which travel series a trend chart plots.
type Metric string

const (
	MetricDelay      Metric = "delay"
	MetricTravelTime Metric = "travel_time"
)

func (m Metric) label() string {
	if m == MetricDelay {
		return "Average Delay (min)"
	}
	return "Average Travel Time (min)"
}

// TravelTrend plots route delay or travel time over the bucketed series.
func TravelTrend(points []analysis.TrendPoint, m Metric, g domain.Granularity, title string) (gochart.Chart, error) {
	if len(points) == 0 {
		return gochart.Chart{}, ErrNoSeries
	}
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	var top float64
	for i, p := range points {
		xs[i] = p.Start
		ys[i] = p.TravelTime
		if m == MetricDelay {
			ys[i] = p.Delay
		}
		top = max(top, ys[i])
	}
	step := stepOf(g)
	xs, ys = padSingle(xs, ys, step)

	color := hex("#1f77b4")
	if m == MetricDelay {
		color = hex("#d62728")
	}
	ch := gochart.Chart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: background(),
		XAxis:      timeAxis(g.Label(), step),
		YAxis:      gochart.YAxis{Name: m.label(), Range: yRange(top)},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    m.label(),
				XValues: xs,
				YValues: ys,
				Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2},
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch, nil
}

func stepOf(g domain.Granularity) time.Duration {
	switch g {
	case domain.Daily:
		return 24 * time.Hour
	case domain.Weekly:
		return 7 * 24 * time.Hour
	case domain.Monthly:
		return 30 * 24 * time.Hour
	default:
		return time.Hour
	}
}
