package chemhammer_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemHammer/internal/domain/composition"
	"github.com/turtacn/ChemHammer/internal/domain/element"
	"github.com/turtacn/ChemHammer/internal/domain/transport"
	"github.com/turtacn/ChemHammer/pkg/chemhammer"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// The figure of 24.315 quoted for this pair elsewhere cannot be reproduced on
// the embedded table; 8.503962529274006 is what both the simplex and the
// closed form give. See "Reference constant" in DESIGN.md before changing it.
func TestDistanceFromStrings_EndToEnd(t *testing.T) {
	d, err := chemhammer.DistanceFromStrings("(Li1.104 Mn0.896) Mn O4", "Li1.3Al0.3Ti1.7(PO4)3")
	require.NoError(t, err)
	assert.InDelta(t, 8.503962529274006, d, 1e-9)
}

func TestDistanceFromStrings_KnownPairs(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"H2O", "NaCl", 45},
		{"H2O", "Fe2O3", 14.4},
		{"NaCl", "Fe2O3", 34.6},
		{"H2O", "OH2", 0},
	}
	for _, tc := range cases {
		d, err := chemhammer.DistanceFromStrings(tc.a, tc.b)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, d, 1e-9, "%s vs %s", tc.a, tc.b)
	}
}

func TestDistance_IdentityAndSymmetry(t *testing.T) {
	formulas := []string{"LiMn2O4", "LiFePO4", "BaTiO3", "(C H3)4 N", "[Co(NH3)6]Cl3", "Y1Ba2Cu3O7"}
	for _, a := range formulas {
		ca, err := chemhammer.CompositionOf(a)
		require.NoError(t, err)

		self, err := chemhammer.Distance(ca, ca)
		require.NoError(t, err)
		assert.Equal(t, 0.0, self, a)

		for _, b := range formulas {
			cb, err := chemhammer.CompositionOf(b)
			require.NoError(t, err)
			ab, err := chemhammer.Distance(ca, cb)
			require.NoError(t, err)
			ba, err := chemhammer.Distance(cb, ca)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "%s vs %s", a, b)
		}
	}
}

func TestDistanceFromStrings_Errors(t *testing.T) {
	_, err := chemhammer.DistanceFromStrings("(C H3)4 N) (Cu", "H2O")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMalformedFormula))
	assert.True(t, stderrors.Is(err, composition.ErrMalformedFormula))

	_, err = chemhammer.DistanceFromStrings("H2O", "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeEmptyComposition))
	assert.Contains(t, err.Error(), "second formula")
}

func TestDistance_EmptyComposition(t *testing.T) {
	c, err := chemhammer.CompositionOf("H2O")
	require.NoError(t, err)
	_, err = chemhammer.Distance(c, nil)
	assert.True(t, errors.IsCode(err, errors.CodeEmptyComposition))
}

func TestEngine_CustomTable(t *testing.T) {
	table, err := element.Load(strings.NewReader(
		`[{"symbol":"H","mod_petti_num":1},{"symbol":"O","mod_petti_num":2},{"symbol":"Na","mod_petti_num":10}]`))
	require.NoError(t, err)

	e := chemhammer.NewEngine(table, transport.WithFastPath(true))
	assert.Same(t, table, e.Table())
	assert.True(t, e.Solver().FastPath())

	d, err := e.DistanceFromStrings("H", "O")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-12)

	// Unknown symbols land on the fallback (H at 1).
	d, err = e.DistanceFromStrings("Xx", "H")
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestEngine_Inspect(t *testing.T) {
	e := chemhammer.DefaultEngine()

	comp, unknown, err := e.Inspect("NaXx2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Xx"}, unknown)
	require.Len(t, comp, 2)
	assert.Equal(t, e.Table().Fallback(), comp[1].Position)
	assert.InDelta(t, 2.0/3.0, comp[1].Mass, 1e-12)

	_, unknown, err = e.Inspect("NaCl")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	_, _, err = e.Inspect("Na(Cl")
	assert.True(t, errors.IsCode(err, errors.CodeMalformedFormula))
}

func TestEngine_DistanceWithStats(t *testing.T) {
	a, err := chemhammer.CompositionOf("LiMn2O4")
	require.NoError(t, err)
	b, err := chemhammer.CompositionOf("LiFePO4")
	require.NoError(t, err)

	d, stats, err := chemhammer.DefaultEngine().DistanceWithStats(a, b)
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
	assert.Equal(t, len(a)+len(b), stats.Supply+stats.Demand)
	assert.False(t, stats.Balanced)
}

func TestNewEngine_NilTableUsesDefault(t *testing.T) {
	e := chemhammer.NewEngine(nil)
	assert.Equal(t, element.Default(), e.Table())
}

func TestNodes(t *testing.T) {
	nodes := chemhammer.Nodes(composition.Normalized{{Position: 3, Mass: 0.5}, {Position: 7, Mass: 0.5}})
	assert.Equal(t, []transport.Node{{Position: 3, Mass: 0.5}, {Position: 7, Mass: 0.5}}, nodes)
}
