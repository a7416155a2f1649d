package transport

import "math"

// Closed1D returns the transportation distance of two balanced
// distributions as the integral of the absolute difference of their
// cumulative masses along the axis. Unbalanced inputs are rejected.
func Closed1D(supply, demand []Node) (float64, error) {
	ta, err := validate(supply, "supply")
	if err != nil {
		return 0, err
	}
	tb, err := validate(demand, "demand")
	if err != nil {
		return 0, err
	}
	if math.Abs(ta-tb) > DefaultEpsilon {
		return 0, ErrInvalidDistribution.WithDetailf("unbalanced totals %v and %v", ta, tb)
	}

	a, b := sortedCopy(supply), sortedCopy(demand)
	if lessNodes(b, a) {
		a, b = b, a
	}
	return closed(a, b), nil
}

// closed assumes a and b are sorted by position.
func closed(a, b []Node) float64 {
	var (
		ia, ib int
		fa, fb float64
		total  float64
		prev   int
		first  = true
	)
	for ia < len(a) || ib < len(b) {
		x := 0
		switch {
		case ia == len(a):
			x = b[ib].Position
		case ib == len(b):
			x = a[ia].Position
		case a[ia].Position <= b[ib].Position:
			x = a[ia].Position
		default:
			x = b[ib].Position
		}
		if !first {
			total += math.Abs(fa-fb) * float64(x-prev)
		}
		for ia < len(a) && a[ia].Position == x {
			fa += a[ia].Mass
			ia++
		}
		for ib < len(b) && b[ib].Position == x {
			fb += b[ib].Mass
			ib++
		}
		prev, first = x, false
	}
	return total
}
