// Package chart turns analysis results into go-chart values that render to
// PNG or SVG. Builders never draw; Render does.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrNoSeries      = errors.New("no data to chart")
	ErrUnknownFormat = errors.New("unknown chart format")
	ErrUnknownChart  = errors.New("unknown chart")
)

const (
	defaultWidth  = 1024
	defaultHeight = 400
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Renderable is satisfied by gochart.Chart, gochart.BarChart and gochart.PieChart.
type Renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// Render draws r to w in the requested format.
func Render(w io.Writer, r Renderable, f Format) error {
	if err := r.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render %s chart: %w", f, err)
	}
	return nil
}

// Name identifies a chart the API and CLI can produce.
type Name string

const (
	NameDelay         Name = "delay"
	NameTravelTime    Name = "travel-time"
	NameVolumeTrend   Name = "volume-trend"
	NameVolumeRanking Name = "volume-ranking"
	NameCycleVolume   Name = "cycle-volume"
	NameCycleStatus   Name = "cycle-status"
)

// Names lists every chart in display order.
var Names = []Name{NameDelay, NameTravelTime, NameVolumeTrend, NameVolumeRanking, NameCycleVolume, NameCycleStatus}

// Family groups charts by the report that feeds them.
type Family int

const (
	FamilyTravel Family = iota
	FamilyVolume
	FamilyCycle
)

// Family returns the report family n is drawn from.
func (n Name) Family() Family {
	switch n {
	case NameVolumeTrend, NameVolumeRanking:
		return FamilyVolume
	case NameCycleVolume, NameCycleStatus:
		return FamilyCycle
	default:
		return FamilyTravel
	}
}

// ParseName validates a chart name.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Names {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// hex converts "#rrggbb" to a drawing color.
func hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

var seriesPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

func seriesColor(i int) drawing.Color {
	return hex(seriesPalette[i%len(seriesPalette)])
}

// yRange pins the axis at zero with headroom so flat series still render.
func yRange(maxValue float64) *gochart.ContinuousRange {
	if maxValue <= 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	return &gochart.ContinuousRange{Min: 0, Max: maxValue * 1.1}
}

// padSingle widens a one-point series so the x range is not empty.
func padSingle(xs []time.Time, ys []float64, step time.Duration) ([]time.Time, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []time.Time{xs[0], xs[0].Add(step)}, []float64{ys[0], ys[0]}
}

func timeAxis(name string, step time.Duration) gochart.XAxis {
	layout := "Jan 02"
	if step < 24*time.Hour {
		layout = "01-02 15h"
	}
	return gochart.XAxis{Name: name, ValueFormatter: gochart.TimeValueFormatterWithFormat(layout)}
}

func background() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}}
}
