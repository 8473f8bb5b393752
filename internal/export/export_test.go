package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/traffic-ops-analytics/internal/analysis"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	"github.com/couchcryptid/traffic-ops-analytics/internal/filter"
)

func sampleTable() Table {
	return Table{
		Name:   "volume_filtered",
		Header: []string{"local_datetime", "intersection_name", "direction", "total_volume"},
		Rows: [][]any{
			{time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), "Avenue 50", "NB", 1200.5},
			{time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), "Calle Tampico, West", "SB", math.NaN()},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "volume_filtered.xlsx", sampleTable().FileName(f))

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseName(t *testing.T) {
	n, err := ParseName("Capacity-Risk")
	require.NoError(t, err)
	assert.Equal(t, NameCapacityRisk, n)

	_, err = ParseName("heatmap")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"local_datetime", "intersection_name", "direction", "total_volume"},
		{"2024-03-04 07:00:00", "Avenue 50", "NB", "1200.5"},
		{"2024-03-04 08:00:00", "Calle Tampico, West", "SB", ""},
	}, records)
}

func TestWriteXLSX(t *testing.T) {
	cycle := Table{
		Name:   CycleTableName(filter.PeriodAll),
		Header: []string{"Hour", "Status"},
		Rows:   [][]any{{"07:00", "OPTIMAL"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable(), cycle))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"volume_filtered", "cycle_length_recommendations_al"}, f.GetSheetList())

	rows, err := f.GetRows("volume_filtered")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "intersection_name", rows[0][1])
	assert.Equal(t, "Avenue 50", rows[1][1])
	assert.Equal(t, "1200.5", rows[1][3])

	rows, err = f.GetRows("cycle_length_recommendations_al")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hour", "Status"}, {"07:00", "OPTIMAL"}}, rows)
}

func TestWriteXLSXRequiresTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteXLSX(&buf))
}

func TestTables(t *testing.T) {
	ts := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)

	t.Run("bottlenecks", func(t *testing.T) {
		tbl := BottlenecksTable([]analysis.Bottleneck{{
			Segment: "Avenue 52 → Calle Tampico", Direction: domain.DirectionNorth, Score: 90,
			Rating: analysis.RatingCritical, AvgDelay: 2.004, Observations: 2,
		}})
		assert.Equal(t, "bottlenecks.csv", tbl.FileName(FormatCSV))
		require.Len(t, tbl.Rows, 1)
		assert.Len(t, tbl.Rows[0], len(tbl.Header))
		assert.Equal(t, "nb", tbl.Rows[0][1])
		assert.Equal(t, 2.0, tbl.Rows[0][4])
	})

	t.Run("performance", func(t *testing.T) {
		tbl := PerformanceTable([]domain.TravelTimeRecord{{LocalDateTime: ts, SegmentName: "A → B", Direction: "NB"}})
		assert.Equal(t, "performance_filtered", tbl.Name)
		assert.Len(t, tbl.Rows[0], len(tbl.Header))
	})

	t.Run("capacity risk", func(t *testing.T) {
		tbl := CapacityRiskTable([]analysis.CapacityRiskRow{{Intersection: "X", RiskScore: 64.9, DataPoints: 2}})
		assert.Equal(t, "capacity_risk", tbl.Name)
		assert.Len(t, tbl.Rows[0], len(tbl.Header))
	})

	t.Run("volume", func(t *testing.T) {
		tbl := VolumeTable([]domain.VolumeRecord{{LocalDateTime: ts, IntersectionName: "X", Direction: "NB", TotalVolume: 10}})
		assert.Equal(t, []any{ts, "X", "NB", 10.0}, tbl.Rows[0])
	})

	t.Run("cycle", func(t *testing.T) {
		tbl := CycleTable(analysis.CycleReport{
			Period:       filter.PeriodPM,
			CurrentCycle: analysis.Cycle120,
			Hourly: []analysis.HourlyCycle{{
				Hour: 17, Label: "17:00", Volume: 1650, Recommendation: analysis.Cycle130,
				RecommendedSeconds: 130, Status: analysis.StatusIncrease,
			}},
		})
		assert.Equal(t, "cycle_length_recommendations_pm.csv", tbl.FileName(FormatCSV))
		assert.Equal(t, []any{"17:00", 1650, "130 sec", 130, "120 sec", "INCREASE"}, tbl.Rows[0])
	})
}
