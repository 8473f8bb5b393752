package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultRowLimit caps ranked tables returned by the API.
const DefaultRowLimit = 15

// Analysis holds the engineering thresholds and display limits that drive the
// reports. Every field has a built-in default, so a thresholds file only
// needs the values it overrides.
type Analysis struct {
	Thresholds       analysis.Thresholds
	NodeOrder        []string
	TopIntersections int
	RowLimit         int
}

// DefaultAnalysis returns the built-in thresholds and corridor node order.
func DefaultAnalysis() Analysis {
	return Analysis{
		Thresholds:       analysis.DefaultThresholds(),
		NodeOrder:        append([]string(nil), domain.DefaultNodeOrder...),
		TopIntersections: analysis.DefaultTopIntersections,
		RowLimit:         DefaultRowLimit,
	}
}

type analysisFile struct {
	CapacityVPH      *float64 `yaml:"capacity_vph"`
	HighVolumeVPH    *float64 `yaml:"high_volume_vph"`
	HighDelaySec     *float64 `yaml:"high_delay_sec"`
	CriticalDelaySec *float64 `yaml:"critical_delay_sec"`
	NodeOrder        []string `yaml:"node_order"`
	TopIntersections *int     `yaml:"top_intersections"`
	RowLimit         *int     `yaml:"row_limit"`
}

// LoadAnalysis reads a YAML thresholds file. An empty path returns the defaults.
func LoadAnalysis(path string) (Analysis, error) {
	if path == "" {
		return DefaultAnalysis(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("read thresholds file: %w", err)
	}
	return ParseAnalysis(data)
}

// ParseAnalysis overlays YAML settings on the defaults. Unknown keys are rejected.
func ParseAnalysis(data []byte) (Analysis, error) {
	a := DefaultAnalysis()

	var f analysisFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Analysis{}, fmt.Errorf("parse thresholds file: %w", err)
	}

	setFloat(&a.Thresholds.CapacityVPH, f.CapacityVPH)
	setFloat(&a.Thresholds.HighVolumeVPH, f.HighVolumeVPH)
	setFloat(&a.Thresholds.HighDelaySec, f.HighDelaySec)
	setFloat(&a.Thresholds.CriticalDelaySec, f.CriticalDelaySec)
	if len(f.NodeOrder) > 0 {
		a.NodeOrder = f.NodeOrder
	}
	if f.TopIntersections != nil {
		a.TopIntersections = *f.TopIntersections
	}
	if f.RowLimit != nil {
		a.RowLimit = *f.RowLimit
	}

	if err := a.Validate(); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// Validate rejects thresholds that would make the scores meaningless.
func (a Analysis) Validate() error {
	t := a.Thresholds
	switch {
	case t.CapacityVPH <= 0:
		return errors.New("capacity_vph must be positive")
	case t.HighVolumeVPH <= 0:
		return errors.New("high_volume_vph must be positive")
	case t.HighDelaySec <= 0:
		return errors.New("high_delay_sec must be positive")
	case t.CriticalDelaySec < t.HighDelaySec:
		return errors.New("critical_delay_sec must not be below high_delay_sec")
	case a.TopIntersections <= 0:
		return errors.New("top_intersections must be positive")
	case a.RowLimit <= 0:
		return errors.New("row_limit must be positive")
	}
	seen := make(map[string]struct{}, len(a.NodeOrder))
	for _, n := range a.NodeOrder {
		if n == "" {
			return errors.New("node_order contains an empty name")
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("node_order lists %q twice", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
