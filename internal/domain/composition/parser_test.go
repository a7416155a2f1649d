package composition

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemHammer/pkg/errors"
)

func TestParse_Formulas(t *testing.T) {
	cases := []struct {
		name    string
		formula string
		want    map[string]float64
	}{
		{"water", "H2O", map[string]float64{"H": 2, "O": 1}},
		{"spaced", "Li Mn2 O4", map[string]float64{"Li": 1, "Mn": 2, "O": 4}},
		{"group multiplier", "(C H3)4 N", map[string]float64{"C": 4, "H": 12, "N": 1}},
		{"decimal counts", "(Li1.104 Mn0.896) Mn O4", map[string]float64{"Li": 1.104, "Mn": 0.896 + 1, "O": 4}},
		{"phosphate", "Li1.3Al0.3Ti1.7(PO4)3", map[string]float64{"Li": 1.3, "Al": 0.3, "Ti": 1.7, "P": 3, "O": 12}},
		{"nested mixed brackets", "[Co(NH3)6]Cl3", map[string]float64{"Co": 1, "N": 6, "H": 18, "Cl": 3}},
		{"braces", "{Fe2}2", map[string]float64{"Fe": 4}},
		{"nested multipliers", "((H)2)3", map[string]float64{"H": 6}},
		{"decimal group multiplier", "(O)1.5", map[string]float64{"O": 1.5}},
		{"repeated symbol", "CH3CH2OH", map[string]float64{"C": 2, "H": 6, "O": 1}},
		{"trailing dot", "CuSO4.", map[string]float64{"Cu": 1, "S": 1, "O": 4}},
		{"empty", "", map[string]float64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := Parse(tc.formula)
			require.NoError(t, err)
			got := raw.Map()
			require.Len(t, got, len(tc.want))
			for sym, n := range tc.want {
				assert.InDelta(t, n, got[sym], 1e-12, sym)
			}
		})
	}
}

func TestParse_FlatRoundTrip(t *testing.T) {
	cases := map[string]float64{
		"H2O":            3,
		"NaCl":           2,
		"Fe2O3":          5,
		"Li1.104Mn0.896": 2,
		"Ba Ti O3":       5,
		"C6H12O6":        24,
		"Y1Ba2Cu3O6.95":  12.95,
	}
	for formula, sum := range cases {
		raw, err := Parse(formula)
		require.NoError(t, err, formula)
		assert.InDelta(t, sum, raw.Total(), 1e-12, formula)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"(C H3)4 N) (Cu",
		"((C H3)4 N",
		"[Fe",
		"Fe}",
		"C)(H",
		"C1..2",
		"(O)2..5",
	}
	for _, formula := range cases {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeMalformedFormula))
			assert.True(t, stderrors.Is(err, ErrMalformedFormula))
		})
	}
}

func TestParse_LegacyPatch(t *testing.T) {
	raw, err := Parse("((C H3)4 N) (Cu Cd (C N)4)) (C Cl4)")
	require.NoError(t, err)

	want := map[string]float64{"C": 6, "H": 12, "N": 5, "Cu": 1, "Cd": 1, "Cl": 4}
	assert.Equal(t, want, raw.Map())

	corrected, err := Parse("((C H3)4 N) (Cu Cd (C N4)) (C Cl4)")
	require.NoError(t, err)
	assert.Equal(t, corrected.Map(), raw.Map())

	// Only the exact string is patched.
	_, err = Parse("((C H3)4 N) (Cu Cd (C N)4)) (C Cl4) ")
	assert.True(t, errors.IsCode(err, errors.CodeMalformedFormula))
}

func TestRaw_Accessors(t *testing.T) {
	raw := MustParse("(C H3)4 N")

	assert.Equal(t, []string{"C", "H", "N"}, raw.Symbols())
	assert.Equal(t, 3, raw.Len())
	assert.Equal(t, 12.0, raw.Count("H"))
	assert.Equal(t, 0.0, raw.Count("O"))
	assert.Equal(t, "C4H12N", raw.String())

	m := raw.Map()
	m["H"] = 0
	assert.Equal(t, 12.0, raw.Count("H"), "Map must return a copy")
}

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(map[string]float64{"Fe": 2, "O": 3})
	require.NoError(t, err)
	assert.Equal(t, "Fe2O3", raw.String())

	_, err = NewRaw(map[string]float64{"Fe": -1})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidDistribution))

	_, err = NewRaw(map[string]float64{"": 1})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidDistribution))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("((") })
}

func TestFuse(t *testing.T) {
	got := fuse(map[string]float64{"C": 1, "H": 3}, map[string]float64{"H": 1, "O": 1}, 2)
	assert.Equal(t, map[string]float64{"C": 2, "H": 8, "O": 2}, got)
}
