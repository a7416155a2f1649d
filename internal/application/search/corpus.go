// Package search ranks a corpus of known compounds by their compositional
// distance to a query formula.
package search

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// ErrCorpusInvalid reports a corpus file that could not be opened or read.
var ErrCorpusInvalid = errors.New(errors.CodeCorpusInvalid, "corpus could not be read")

// Compound is one corpus row with its composition computed at load time.
type Compound struct {
	ID          string                 `json:"id"`
	Formula     string                 `json:"formula"`
	Symbols     []string               `json:"symbols"`
	Composition composition.Normalized `json:"composition"`
}

// HasElement reports whether symbol occurs in the formula with a non-zero
// count.
func (c Compound) HasElement(symbol string) bool {
	i := sort.SearchStrings(c.Symbols, symbol)
	return i < len(c.Symbols) && c.Symbols[i] == symbol
}

// Corpus is an immutable set of compounds.
type Corpus struct {
	Source    string
	Compounds []Compound
	Skipped   int
}

// Len returns the number of loaded compounds.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Compounds)
}

// LoadCorpus reads a .csv or .xlsx file of id,formula rows.
func LoadCorpus(path string, table element.Table, log logging.Logger) (*Corpus, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrCorpusInvalid.WithCause(err).WithDetail(path)
		}
		defer f.Close()
		return ReadCSV(f, path, table, log)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrCorpusInvalid.WithCause(err).WithDetail(path)
		}
		defer f.Close()
		return ReadXLSX(f, path, table, log)
	default:
		return nil, ErrCorpusInvalid.WithDetailf("unsupported corpus format %q", filepath.Ext(path))
	}
}

// ReadCSV reads id,formula rows. A leading header row is skipped.
func ReadCSV(r io.Reader, source string, table element.Table, log logging.Logger) (*Corpus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, ErrCorpusInvalid.WithCause(err).WithDetail(source)
	}
	return NewCorpus(source, rows, table, log), nil
}

// ReadXLSX reads id,formula rows from the first sheet of a workbook.
func ReadXLSX(r io.Reader, source string, table element.Table, log logging.Logger) (*Corpus, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrCorpusInvalid.WithCause(err).WithDetail(source)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrCorpusInvalid.WithDetailf("%s: workbook has no sheets", source)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ErrCorpusInvalid.WithCause(err).WithDetail(source)
	}
	return NewCorpus(source, rows, table, log), nil
}

// NewCorpus builds a corpus from raw rows. Blank rows are ignored; rows with
// no formula or an unparseable one are skipped, logged and counted.
func NewCorpus(source string, rows [][]string, table element.Table, log logging.Logger) *Corpus {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if table == nil {
		table = element.Default()
	}

	c := &Corpus{Source: source}
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}
		line := i + 1
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			log.Warn("corpus row skipped", logging.String("source", source),
				logging.Int("line", line), logging.String("reason", "missing formula"))
			c.Skipped++
			continue
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			id = fmt.Sprintf("row-%d", line)
		}
		formula := strings.TrimSpace(row[1])

		compound, err := newCompound(id, formula, table)
		if err != nil {
			log.Warn("corpus row skipped", logging.String("source", source),
				logging.Int("line", line), logging.Formula(formula), logging.Err(err))
			c.Skipped++
			continue
		}
		c.Compounds = append(c.Compounds, compound)
	}
	return c
}

func newCompound(id, formula string, table element.Table) (Compound, error) {
	raw, err := composition.Parse(formula)
	if err != nil {
		return Compound{}, err
	}
	comp, err := composition.Normalize(raw, table)
	if err != nil {
		return Compound{}, err
	}
	symbols := make([]string, 0, raw.Len())
	for _, s := range raw.Symbols() {
		if raw.Count(s) > 0 {
			symbols = append(symbols, s)
		}
	}
	return Compound{ID: id, Formula: formula, Symbols: symbols, Composition: comp}, nil
}

func isHeader(row []string) bool {
	return len(row) >= 2 && strings.EqualFold(strings.TrimSpace(row[1]), "formula")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
