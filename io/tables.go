/*package io reads pore-network tables, reads batch configuration, and
writes result rows.

Input tables come from the upstream pore network producer as comma
separated files with a fixed column order. Cells are allowed to hold
non-finite values ("NaN"); such rows are kept and flagged rather than
dropped here, since row exclusion is the geometry builder's decision.
*/
package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
)

// Fixed table layouts from the pore network producer.
const (
	bodyCols   = 6 // X, Y, Z, radius, half domain length, branch count
	throatCols = 7 // X1, Y1, Z1, X2, Y2, Z2, radius
)

// BodiesPath returns the pore body table path for sample n.
func BodiesPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("pore_bodies_%d.csv", n))
}

// ThroatsPath returns the pore throat table path for sample n.
func ThroatsPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("pore_throats_%d.csv", n))
}

// ReadBodies reads a pore body table. Coordinates, radii and the domain
// half-length are multiplied by scale on the way in (the first stage of
// the micron-to-meter conversion). The half-length is taken from the first
// data row and must be positive; it is assumed constant across rows.
func ReadBodies(file string, scale float64) (
	bodies []geom.Body, halfLength float64, err error,
) {
	rows, err := readTable(file, bodyCols)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%s: empty table", file)
	}

	halfLength = rows[0][4] * scale
	if !(halfLength > 0) {
		return nil, 0, fmt.Errorf(
			"%s: invalid domain half-length %g", file, rows[0][4],
		)
	}

	bodies = make([]geom.Body, len(rows))
	for i, row := range rows {
		bodies[i] = geom.Body{
			Center: r3.Vec{
				X: row[0] * scale, Y: row[1] * scale, Z: row[2] * scale,
			},
			Radius:     row[3] * scale,
			HalfLength: halfLength,
			Branches:   int(row[5]),
		}
	}
	return bodies, halfLength, nil
}

// ReadThroats reads a pore throat table, applying the same scale as
// ReadBodies.
func ReadThroats(file string, scale float64) ([]geom.Throat, error) {
	rows, err := readTable(file, throatCols)
	if err != nil {
		return nil, err
	}

	throats := make([]geom.Throat, len(rows))
	for i, row := range rows {
		throats[i] = geom.Throat{
			A: r3.Vec{
				X: row[0] * scale, Y: row[1] * scale, Z: row[2] * scale,
			},
			B: r3.Vec{
				X: row[3] * scale, Y: row[4] * scale, Z: row[5] * scale,
			},
			Radius: row[6] * scale,
		}
	}
	return throats, nil
}

// readTable reads a csv file into float64 rows with at least cols columns
// each. A non-numeric first line is treated as a header and skipped; a
// non-numeric cell anywhere else is an error.
func readTable(file string, cols int) ([][]float64, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}

	rows := [][]float64{}
	for i, record := range records {
		if len(record) < cols {
			return nil, fmt.Errorf(
				"%s: row %d has %d columns, want %d",
				file, i, len(record), cols,
			)
		}

		row := make([]float64, cols)
		ok := true
		for j := 0; j < cols; j++ {
			row[j], err = strconv.ParseFloat(
				strings.TrimSpace(record[j]), 64,
			)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("%s: non-numeric cell in row %d", file, i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
