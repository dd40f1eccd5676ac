// Package report exports analysis results as CSV tables and GeoJSON.
package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"waterscan/pkg/change"
	"waterscan/pkg/waterbody"
)

// BodyRow is one line of the water body table.
type BodyRow struct {
	Label   int     `csv:"label"`
	Pixels  int     `csv:"pixels"`
	AreaKm2 float64 `csv:"area_km2"`
	MinRow  int     `csv:"min_row"`
	MinCol  int     `csv:"min_col"`
	MaxRow  int     `csv:"max_row"`
	MaxCol  int     `csv:"max_col"`
}

// StatsRow is one line of the scene statistics table.
type StatsRow struct {
	Scene           string  `csv:"scene"`
	TotalAreaKm2    float64 `csv:"total_area_km2"`
	CoveragePercent float64 `csv:"coverage_percent"`
	WaterPixels     int     `csv:"water_pixels"`
	TotalPixels     int     `csv:"total_pixels"`
	Bodies          int     `csv:"bodies"`
}

// NewStatsRow flattens a scene's statistics into a table row.
func NewStatsRow(scene string, s change.WaterStats, bodies int) StatsRow {
	return StatsRow{
		Scene:           scene,
		TotalAreaKm2:    s.TotalArea,
		CoveragePercent: s.CoveragePercent,
		WaterPixels:     s.WaterPixels,
		TotalPixels:     s.TotalPixels,
		Bodies:          bodies,
	}
}

// BodyRows converts labeler output into table rows, ordered by label.
func BodyRows(bodies []waterbody.Body) []BodyRow {
	rows := make([]BodyRow, len(bodies))
	for i, b := range bodies {
		rows[i] = BodyRow{
			Label:   b.Label,
			Pixels:  b.Pixels,
			AreaKm2: b.Area,
			MinRow:  b.MinRow,
			MinCol:  b.MinCol,
			MaxRow:  b.MaxRow,
			MaxCol:  b.MaxCol,
		}
	}
	return rows
}

// WriteBodiesCSV writes the water body table with a header line.
func WriteBodiesCSV(w io.Writer, bodies []waterbody.Body) error {
	rows := BodyRows(bodies)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("error writing water body table: %w", err)
	}
	return nil
}

// ReadBodiesCSV parses a table written by WriteBodiesCSV.
func ReadBodiesCSV(r io.Reader) ([]BodyRow, error) {
	var rows []BodyRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error reading water body table: %w", err)
	}
	return rows, nil
}

// WriteStatsCSV writes scene statistics with a header line.
func WriteStatsCSV(w io.Writer, rows []StatsRow) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("error writing statistics table: %w", err)
	}
	return nil
}

// WriteChangeCSV writes a single change summary with a header line.
func WriteChangeCSV(w io.Writer, c change.WaterChange) error {
	rows := []change.WaterChange{c}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("error writing change table: %w", err)
	}
	return nil
}
