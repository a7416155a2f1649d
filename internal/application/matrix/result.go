package matrix

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

const (
	MatrixSheet = "Matrix"
	TableSheet  = "Table"
)

// CSVHeader is the header row of the flat export.
var CSVHeader = []string{"row_label", "col_label", "value"}

// Result is a symmetric distance matrix with its formulas in row order.
type Result struct {
	Formulas  []string
	Distances *mat.SymDense
	Rounded   bool
}

// Cell is one entry of the flat export. Labels are 1-based.
type Cell struct {
	Row   int     `json:"row_label"`
	Col   int     `json:"col_label"`
	Value float64 `json:"value"`
}

// Size returns the number of formulas.
func (r *Result) Size() int { return len(r.Formulas) }

// At returns the distance between formulas i and j.
func (r *Result) At(i, j int) float64 { return r.Distances.At(i, j) }

// Rows returns the full matrix as dense rows.
func (r *Result) Rows() [][]float64 {
	n := r.Size()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = r.Distances.At(i, j)
		}
	}
	return out
}

// Table flattens the full matrix row-major.
func (r *Result) Table() []Cell {
	n := r.Size()
	out := make([]Cell, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out = append(out, Cell{Row: i + 1, Col: j + 1, Value: r.Distances.At(i, j)})
		}
	}
	return out
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Formulas []string    `json:"formulas"`
		Matrix   [][]float64 `json:"matrix"`
		Rounded  bool        `json:"rounded"`
	}{r.Formulas, r.Rows(), r.Rounded})
}

// WriteCSV writes the header and one row_label,col_label,value line per
// cell.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range r.Table() {
		if err := cw.Write([]string{strconv.Itoa(c.Row), strconv.Itoa(c.Col), FormatValue(c.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook holding the square matrix, labelled by
// formula, and the flat table.
func (r *Result) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatrixSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(TableSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	top := make([]interface{}, 0, r.Size()+1)
	top = append(top, "")
	for _, formula := range r.Formulas {
		top = append(top, formula)
	}
	if err := f.SetSheetRow(MatrixSheet, "A1", &top); err != nil {
		return err
	}
	for i, formula := range r.Formulas {
		row := make([]interface{}, 0, r.Size()+1)
		row = append(row, formula)
		for j := range r.Formulas {
			row = append(row, r.Distances.At(i, j))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(MatrixSheet, cell, &row); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(r.Size()+1, 1)
	if err := f.SetCellStyle(MatrixSheet, "A1", last, header); err != nil {
		return err
	}

	if err := f.SetSheetRow(TableSheet, "A1", &[]interface{}{CSVHeader[0], CSVHeader[1], CSVHeader[2]}); err != nil {
		return err
	}
	if err := f.SetCellStyle(TableSheet, "A1", "C1", header); err != nil {
		return err
	}
	for k, c := range r.Table() {
		cell, _ := excelize.CoordinatesToCellName(1, k+2)
		if err := f.SetSheetRow(TableSheet, cell, &[]interface{}{c.Row, c.Col, c.Value}); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

// FormatValue renders a distance with the fewest digits that round-trip.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
