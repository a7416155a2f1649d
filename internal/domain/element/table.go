// Package element holds the element position table: the mapping from a
// chemical symbol to its integer position on the modified Pettifor scale.
// Positions are the shared axis on which compositions are compared.
package element

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/turtacn/ChemHammer/pkg/errors"
)

// DefaultFallbackSymbol is the symbol whose position unknown symbols take.
const DefaultFallbackSymbol = "H"

//go:embed data/elements.json
var defaultData []byte

// ErrTableInvalid is returned when table data cannot be decoded or fails
// validation.
var ErrTableInvalid = errors.New(errors.CodeElementTableInvalid, "invalid element table")

// Table resolves chemical symbols to positions on the comparison axis.
type Table interface {
	// Lookup returns the position of symbol and whether it is known.
	Lookup(symbol string) (int, bool)
	// Fallback returns the position used for unknown symbols.
	Fallback() int
}

// Element is one row of the table data.
type Element struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	AtomicNumber int    `json:"atomic_number"`
	Position     int    `json:"mod_petti_num"`
}

// PositionTable is the immutable Table built from element data.
type PositionTable struct {
	bySymbol   map[string]Element
	byPosition map[int]Element
	fallback   int
	digest     string
}

// Option customises Load.
type Option func(*loadOptions)

type loadOptions struct {
	fallbackSymbol string
}

// WithFallbackSymbol selects the element whose position unknown symbols map
// to. It must exist in the data.
func WithFallbackSymbol(symbol string) Option {
	return func(o *loadOptions) {
		if symbol != "" {
			o.fallbackSymbol = symbol
		}
	}
}

// Load decodes a JSON array of elements from r and validates it.
func Load(r io.Reader, opts ...Option) (*PositionTable, error) {
	o := loadOptions{fallbackSymbol: DefaultFallbackSymbol}
	for _, opt := range opts {
		opt(&o)
	}

	var rows []Element
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, ErrTableInvalid.WithCause(err)
	}
	return build(rows, o.fallbackSymbol)
}

// LoadFile reads table data from a JSON file.
func LoadFile(path string, opts ...Option) (*PositionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrTableInvalid.WithDetail(path).WithCause(err)
	}
	defer f.Close()

	t, err := Load(f, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load element table "+path)
	}
	return t, nil
}

// LoadEmbedded builds a fresh table from the embedded data, e.g. to pick a
// different fallback symbol.
func LoadEmbedded(opts ...Option) (*PositionTable, error) {
	return Load(bytes.NewReader(defaultData), opts...)
}

var (
	defaultOnce  sync.Once
	defaultTable *PositionTable
)

// Default returns the embedded modified Pettifor table with Hydrogen as the
// fallback. The embedded data is validated by tests, so a failure here is a
// build defect and panics.
func Default() *PositionTable {
	defaultOnce.Do(func() {
		t, err := LoadEmbedded()
		if err != nil {
			panic(fmt.Sprintf("element: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

func build(rows []Element, fallbackSymbol string) (*PositionTable, error) {
	if len(rows) == 0 {
		return nil, ErrTableInvalid.WithDetail("no elements")
	}
	t := &PositionTable{
		bySymbol:   make(map[string]Element, len(rows)),
		byPosition: make(map[int]Element, len(rows)),
	}
	for i, e := range rows {
		e.Symbol = strings.TrimSpace(e.Symbol)
		if e.Symbol == "" {
			return nil, ErrTableInvalid.WithDetailf("row %d: empty symbol", i)
		}
		if e.Position <= 0 {
			return nil, ErrTableInvalid.WithDetailf("row %d (%s): position must be positive, got %d", i, e.Symbol, e.Position)
		}
		if _, dup := t.bySymbol[e.Symbol]; dup {
			return nil, ErrTableInvalid.WithDetailf("duplicate symbol %s", e.Symbol)
		}
		t.bySymbol[e.Symbol] = e
		if _, taken := t.byPosition[e.Position]; !taken {
			t.byPosition[e.Position] = e
		}
	}

	fb, ok := t.bySymbol[fallbackSymbol]
	if !ok {
		return nil, ErrTableInvalid.WithDetailf("fallback symbol %s not in table", fallbackSymbol)
	}
	t.fallback = fb.Position
	t.digest = digest(t.Elements(), fb.Symbol)
	return t, nil
}

func digest(rows []Element, fallbackSymbol string) string {
	h := sha256.New()
	for _, e := range rows {
		fmt.Fprintf(h, "%s=%d;", e.Symbol, e.Position)
	}
	fmt.Fprintf(h, "fallback=%s", fallbackSymbol)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Lookup implements Table.
func (t *PositionTable) Lookup(symbol string) (int, bool) {
	e, ok := t.bySymbol[symbol]
	if !ok {
		return 0, false
	}
	return e.Position, true
}

// Fallback implements Table.
func (t *PositionTable) Fallback() int {
	return t.fallback
}

// Fingerprint identifies the symbol-to-position mapping and the fallback
// symbol. Tables that resolve every symbol identically share a fingerprint.
func (t *PositionTable) Fingerprint() string {
	return t.digest
}

// Element returns the full row for symbol.
func (t *PositionTable) Element(symbol string) (Element, bool) {
	e, ok := t.bySymbol[symbol]
	return e, ok
}

// SymbolAt returns the first symbol loaded at position.
func (t *PositionTable) SymbolAt(position int) (string, bool) {
	e, ok := t.byPosition[position]
	return e.Symbol, ok
}

// Len returns the number of elements.
func (t *PositionTable) Len() int {
	return len(t.bySymbol)
}

// Elements returns a copy of the rows ordered by position, then symbol.
func (t *PositionTable) Elements() []Element {
	out := make([]Element, 0, len(t.bySymbol))
	for _, e := range t.bySymbol {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

var _ Table = (*PositionTable)(nil)
