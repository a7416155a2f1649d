package transport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func total(nodes []Node) float64 {
	var t float64
	for _, nd := range nodes {
		t += nd.Mass
	}
	return t
}

// solveUnsorted runs the simplex on a and b in the given order, skipping
// the canonical sort, so the northwest start is generally not optimal.
func solveUnsorted(t *testing.T, a, b []Node) (*problem, Stats) {
	t.Helper()
	p := newProblem(a, b, total(a), total(b), DefaultEpsilon)
	stats := Stats{Supply: p.m, Demand: p.n, Balanced: p.dummy}
	require.NoError(t, p.run(DefaultMaxPivotFactor*(p.m+p.n), &stats))
	return p, stats
}

func shuffled(rng *rand.Rand, nodes []Node) []Node {
	out := append([]Node(nil), nodes...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func equalMasses(positions []int) []Node {
	out := make([]Node, len(positions))
	for i, pos := range positions {
		out[i] = Node{Position: pos, Mass: 1 / float64(len(positions))}
	}
	return out
}

func TestProblem_SinglePivotLeavingTie(t *testing.T) {
	a := []Node{{3, 0.5}, {1, 0.5}}
	b := []Node{{1, 0.5}, {3, 0.5}}

	p, stats := solveUnsorted(t, a, b)
	assert.Equal(t, 1, stats.Pivots)
	assert.Zero(t, stats.Degenerate)
	assert.InDelta(t, 0, p.cost(), 1e-12)

	// (0,0) and (1,1) both carry 0.5 on the losing side; the lower index
	// leaves and (1,1) stays basic at zero flow.
	assert.False(t, p.basic[0])
	assert.True(t, p.basic[1])
	assert.True(t, p.basic[2])
	assert.True(t, p.basic[3])
	assert.Equal(t, []float64{0, 0.5, 0.5, 0}, p.flow)
	assert.Len(t, p.basis, p.m+p.n-1)
}

func TestProblem_CycleAlternatesSupplyAndDemand(t *testing.T) {
	a := []Node{{3, 0.5}, {1, 0.5}}
	b := []Node{{1, 0.5}, {3, 0.5}}
	p := newProblem(a, b, 1, 1, DefaultEpsilon)
	p.northwest()
	require.NoError(t, p.potentials())

	path := p.cycle(0, 1)
	assert.Equal(t, []int{3, 2, 0}, path)
	for k := 1; k < len(path); k++ {
		i0, j0 := path[k-1]/p.n, path[k-1]%p.n
		i1, j1 := path[k]/p.n, path[k]%p.n
		assert.True(t, i0 == i1 || j0 == j1, "cells %d and %d share no node", path[k-1], path[k])
	}
}

func TestProblem_UnsortedRandomPivotsMatchClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var pivots, maxPivots int
	for i := 0; i < 300; i++ {
		a := shuffled(rng, randomDistribution(rng, 50))
		b := shuffled(rng, randomDistribution(rng, 50))

		p, stats := solveUnsorted(t, a, b)
		assert.LessOrEqual(t, stats.Pivots, DefaultMaxPivotFactor*(p.m+p.n))
		assert.Len(t, p.basis, p.m+p.n-1)

		want, err := Closed1D(a, b)
		require.NoError(t, err)
		assert.InDelta(t, want, p.cost(), 1e-9)

		pivots += stats.Pivots
		if stats.Pivots > maxPivots {
			maxPivots = stats.Pivots
		}
	}
	assert.Positive(t, pivots)
	assert.Greater(t, maxPivots, 10)
}

func TestProblem_TiedMassesDegeneratePivots(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	var degenerate int
	for i := 0; i < 200; i++ {
		k := 2 + rng.Intn(20)
		a := equalMasses(rng.Perm(103)[:k])
		b := equalMasses(rng.Perm(103)[:k])
		for j := range a {
			a[j].Position++
			b[j].Position++
		}

		p, stats := solveUnsorted(t, a, b)
		assert.GreaterOrEqual(t, stats.Pivots, stats.Degenerate)

		want, err := Closed1D(a, b)
		require.NoError(t, err)
		assert.InDelta(t, want, p.cost(), 1e-9)

		degenerate += stats.Degenerate
	}
	assert.Positive(t, degenerate)
}

func TestProblem_ReversedPermutation(t *testing.T) {
	positions := []int{1, 5, 9, 14, 20, 27, 35, 44}
	a := equalMasses(positions)
	rev := make([]int, len(positions))
	for i, pos := range positions {
		rev[len(positions)-1-i] = pos + 2
	}
	b := equalMasses(rev)

	p, stats := solveUnsorted(t, a, b)
	assert.Positive(t, stats.Pivots)
	assert.InDelta(t, 2, p.cost(), 1e-9)
}
