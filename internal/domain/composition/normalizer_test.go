package composition

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

type stubTable struct {
	positions map[string]int
	fallback  int
}

func (s stubTable) Lookup(symbol string) (int, bool) {
	p, ok := s.positions[symbol]
	return p, ok
}

func (s stubTable) Fallback() int { return s.fallback }

func TestNormalize_DefaultTable(t *testing.T) {
	n, err := Normalize(MustParse("LiMnO4"), element.Default())
	require.NoError(t, err)

	require.Len(t, n, 3)
	assert.Equal(t, []int{12, 72, 97}, n.Positions())
	assert.InDelta(t, 1.0/6, n[0].Mass, 1e-15)
	assert.InDelta(t, 1.0/6, n[1].Mass, 1e-15)
	assert.InDelta(t, 4.0/6, n[2].Mass, 1e-15)
	assert.NoError(t, n.Validate())
}

func TestNormalize_UnknownSymbolUsesFallback(t *testing.T) {
	table := element.Default()

	n, err := Normalize(MustParse("Xx O"), table)
	require.NoError(t, err)
	assert.Equal(t, []int{97, table.Fallback()}, n.Positions())

	assert.Equal(t, []string{"Xx"}, Unknown(MustParse("Xx O"), table))
	assert.Empty(t, Unknown(MustParse("H2O"), table))
}

func TestNormalize_MergesSharedPositions(t *testing.T) {
	table := stubTable{positions: map[string]int{"A": 5, "B": 5, "C": 1}, fallback: 9}

	n, err := Normalize(MustParse("A B2 C Zz"), table)
	require.NoError(t, err)
	require.Equal(t, Normalized{{1, 0.2}, {5, 0.6}, {9, 0.2}}, roundEntries(n))
}

func TestNormalize_DropsZeroCounts(t *testing.T) {
	n, err := Normalize(MustParse("H0O2"), element.Default())
	require.NoError(t, err)
	assert.Equal(t, Normalized{{Position: 97, Mass: 1}}, n)
}

func TestNormalize_Empty(t *testing.T) {
	for _, formula := range []string{"", "H0", "   ", "123"} {
		_, err := Normalize(MustParse(formula), element.Default())
		require.Error(t, err, formula)
		assert.True(t, errors.IsCode(err, errors.CodeEmptyComposition), formula)
	}
}

func TestNormalize_MassesSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	table := element.Default()
	symbols := []string{"H", "Li", "O", "Fe", "Mn", "P", "Cl", "Ba", "Ti", "Zz"}

	for i := 0; i < 500; i++ {
		counts := map[string]float64{}
		for _, sym := range symbols {
			if rng.Intn(2) == 0 {
				counts[sym] = rng.Float64()*100 + 1e-3
			}
		}
		counts["O"] += 1
		raw, err := NewRaw(counts)
		require.NoError(t, err)

		n, err := Normalize(raw, table)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, n.Total(), 1e-9)
		for j := 1; j < len(n); j++ {
			assert.Less(t, n[j-1].Position, n[j].Position)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := MustParse("Li1.3Al0.3Ti1.7(PO4)3")
	first, err := Normalize(raw, element.Default())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Normalize(raw, element.Default())
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestNormalized_Validate(t *testing.T) {
	cases := map[string]Normalized{
		"empty":          {},
		"negative":       {{1, -0.5}, {2, 1.5}},
		"nan":            {{1, math.NaN()}},
		"not increasing": {{2, 0.5}, {2, 0.5}},
		"short total":    {{1, 0.5}},
	}
	for name, n := range cases {
		assert.Error(t, n.Validate(), name)
	}
	assert.NoError(t, Normalized{{1, 0.25}, {3, 0.75}}.Validate())
}

func TestNormalized_Helpers(t *testing.T) {
	n := Normalized{{1, 0.25}, {3, 0.75}}
	assert.Equal(t, []float64{0.25, 0.75}, n.Masses())
	assert.True(t, n.Contains(3))
	assert.False(t, n.Contains(2))

	c := n.Clone()
	c[0].Mass = 1
	assert.Equal(t, 0.25, n[0].Mass)
	assert.False(t, n.Equal(c))
	assert.Nil(t, Normalized(nil).Clone())
}

func TestFromFormula(t *testing.T) {
	n, err := FromFormula("H2O", element.Default())
	require.NoError(t, err)
	assert.Len(t, n, 2)

	_, err = FromFormula("(H2O", element.Default())
	assert.True(t, errors.IsCode(err, errors.CodeMalformedFormula))
}

func roundEntries(n Normalized) Normalized {
	out := n.Clone()
	for i := range out {
		out[i].Mass = math.Round(out[i].Mass*1e12) / 1e12
	}
	return out
}
