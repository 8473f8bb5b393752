package chart

import (
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
)

// VolumeTrend plots each intersection's bucket totals with the scaled
// capacity as a dashed line and the high-volume threshold as a dotted line.
func VolumeTrend(p analysis.VolumeProfile, title string) (gochart.Chart, error) {
	if len(p.Series) == 0 {
		return gochart.Chart{}, ErrNoSeries
	}
	step := stepOf(p.Granularity)
	var series []gochart.Series
	var top float64
	for i, s := range p.Series {
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, pt := range s.Points {
			xs[j], ys[j] = pt.Start, pt.Volume
			top = max(top, pt.Volume)
		}
		xs, ys = padSingle(xs, ys, step)
		series = append(series, gochart.TimeSeries{
			Name:    s.Intersection,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: seriesColor(i), StrokeWidth: 2},
		})
	}

	if len(p.Capacity) > 0 {
		xs := make([]time.Time, len(p.Capacity))
		caps := make([]float64, len(p.Capacity))
		highs := make([]float64, len(p.Capacity))
		for i, c := range p.Capacity {
			xs[i], caps[i], highs[i] = c.Start, c.Capacity, c.Threshold
			top = max(top, c.Capacity)
		}
		capXs, caps := padSingle(xs, caps, step)
		highXs, highs := padSingle(xs, highs, step)
		series = append(series,
			gochart.TimeSeries{
				Name:    "Capacity",
				XValues: capXs,
				YValues: caps,
				Style:   gochart.Style{StrokeColor: hex("#e74c3c"), StrokeWidth: 2, StrokeDashArray: []float64{8, 4}},
			},
			gochart.TimeSeries{
				Name:    "High Volume Threshold",
				XValues: highXs,
				YValues: highs,
				Style:   gochart.Style{StrokeColor: hex("#f39c12"), StrokeWidth: 2, StrokeDashArray: []float64{2, 4}},
			},
		)
	}

	ch := gochart.Chart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: background(),
		XAxis:      timeAxis(p.Granularity.Label(), step),
		YAxis:      gochart.YAxis{Name: fmt.Sprintf("Volume (%s)", p.Unit), Range: yRange(top)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch, nil
}

// VolumeRanking draws one bar per intersection's average bucket total, busiest first.
func VolumeRanking(p analysis.VolumeProfile, title string) (gochart.BarChart, error) {
	if len(p.Ranking) == 0 {
		return gochart.BarChart{}, ErrNoSeries
	}
	bars := make([]gochart.Value, len(p.Ranking))
	var top float64
	for i, r := range p.Ranking {
		bars[i] = gochart.Value{
			Label: fmt.Sprintf("#%d %s", r.Rank, r.Intersection),
			Value: r.Average,
			Style: gochart.Style{FillColor: seriesColor(i), StrokeColor: seriesColor(i)},
		}
		top = max(top, r.Average)
	}
	return gochart.BarChart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: background(),
		BarWidth:   60,
		YAxis:      gochart.YAxis{Name: fmt.Sprintf("Average (%s)", p.Unit), Range: yRange(top)},
		Bars:       bars,
	}, nil
}
