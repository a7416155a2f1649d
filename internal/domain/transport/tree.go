package transport

// problem is the balanced m × n transportation instance being pivoted.
// Cells are indexed c = i·n + j. Tree nodes are supply 0..m−1 followed by
// demand m..m+n−1.
type problem struct {
	m, n   int
	eps    float64
	dummy  bool
	supply []float64
	demand []float64

	costs []float64
	flow  []float64
	basic []bool
	basis []int

	// spanning tree scratch, rebuilt before every pricing pass
	adj        [][]int
	pot        []float64
	depth      []int
	parent     []int
	parentCell []int
	queue      []int
}

func newProblem(a, b []Node, ta, tb, eps float64) *problem {
	p := &problem{eps: eps}

	p.supply = masses(a)
	p.demand = masses(b)
	switch diff := ta - tb; {
	case diff > eps:
		p.demand = append(p.demand, diff)
		p.dummy = true
	case diff < -eps:
		p.supply = append(p.supply, -diff)
		p.dummy = true
	}
	p.m, p.n = len(p.supply), len(p.demand)

	cells := p.m * p.n
	p.costs = make([]float64, cells)
	for i := 0; i < len(a) && i < p.m; i++ {
		for j := 0; j < len(b) && j < p.n; j++ {
			d := a[i].Position - b[j].Position
			if d < 0 {
				d = -d
			}
			p.costs[i*p.n+j] = float64(d)
		}
	}
	p.flow = make([]float64, cells)
	p.basic = make([]bool, cells)
	p.basis = make([]int, 0, p.m+p.n-1)

	nodes := p.m + p.n
	p.adj = make([][]int, nodes)
	p.pot = make([]float64, nodes)
	p.depth = make([]int, nodes)
	p.parent = make([]int, nodes)
	p.parentCell = make([]int, nodes)
	p.queue = make([]int, 0, nodes)
	return p
}

func masses(nodes []Node) []float64 {
	out := make([]float64, len(nodes))
	for i, nd := range nodes {
		out[i] = nd.Mass
	}
	return out
}

// northwest allocates the initial basis. Every step advances exactly one
// index, so the basis has m+n−1 cells.
func (p *problem) northwest() {
	ra := append([]float64(nil), p.supply...)
	rb := append([]float64(nil), p.demand...)

	i, j := 0, 0
	for {
		c := i*p.n + j
		q := ra[i]
		if rb[j] < q {
			q = rb[j]
		}
		p.flow[c] = q
		p.basic[c] = true
		p.basis = append(p.basis, c)
		ra[i] -= q
		rb[j] -= q

		switch {
		case i == p.m-1 && j == p.n-1:
			return
		case i == p.m-1:
			j++
		case j == p.n-1:
			i++
		case ra[i] <= rb[j]:
			i++
		default:
			j++
		}
	}
}

func (p *problem) run(maxPivots int, stats *Stats) error {
	p.northwest()

	for {
		if err := p.potentials(); err != nil {
			return err
		}
		enter := p.price()
		if enter < 0 {
			return nil
		}
		if stats.Pivots >= maxPivots {
			return ErrSolverInternal.WithDetailf("pivot bound %d exceeded (m=%d n=%d)", maxPivots, p.m, p.n)
		}
		theta := p.pivot(enter)
		stats.Pivots++
		if theta == 0 {
			stats.Degenerate++
		}
	}
}

// potentials walks the basis tree breadth-first from supply node 0 and sets
// pot so that pot[i] − pot[m+j] = cost on every basic cell.
func (p *problem) potentials() error {
	for u := range p.adj {
		p.adj[u] = p.adj[u][:0]
		p.depth[u] = -1
	}
	for _, c := range p.basis {
		i, j := c/p.n, c%p.n
		p.adj[i] = append(p.adj[i], c)
		p.adj[p.m+j] = append(p.adj[p.m+j], c)
	}

	p.queue = append(p.queue[:0], 0)
	p.pot[0] = 0
	p.depth[0] = 0
	p.parent[0] = -1
	p.parentCell[0] = -1
	reached := 1

	for head := 0; head < len(p.queue); head++ {
		u := p.queue[head]
		for _, c := range p.adj[u] {
			i, j := c/p.n, c%p.n
			v := i
			if u < p.m {
				v = p.m + j
			}
			if p.depth[v] >= 0 {
				continue
			}
			if u < p.m {
				p.pot[v] = p.pot[u] - p.costs[c]
			} else {
				p.pot[v] = p.pot[u] + p.costs[c]
			}
			p.depth[v] = p.depth[u] + 1
			p.parent[v] = u
			p.parentCell[v] = c
			p.queue = append(p.queue, v)
			reached++
		}
	}

	if reached != p.m+p.n {
		return ErrSolverInternal.WithDetailf("basis tree spans %d of %d nodes", reached, p.m+p.n)
	}
	return nil
}

// price returns the non-basic cell with the most negative reduced cost below
// −eps, or −1 when the basis is optimal. Scanning in cell order and only
// replacing on a strictly smaller value keeps the lowest (i, j) on ties.
func (p *problem) price() int {
	best, enter := -p.eps, -1
	for i := 0; i < p.m; i++ {
		for j := 0; j < p.n; j++ {
			c := i*p.n + j
			if p.basic[c] {
				continue
			}
			if r := p.costs[c] - (p.pot[i] - p.pot[p.m+j]); r < best {
				best, enter = r, c
			}
		}
	}
	return enter
}

// cycle returns the basic cells on the tree path from demand node m+j to
// supply node i.
func (p *problem) cycle(i, j int) []int {
	u, v := p.m+j, i
	var up, down []int
	for p.depth[u] > p.depth[v] {
		up = append(up, p.parentCell[u])
		u = p.parent[u]
	}
	for p.depth[v] > p.depth[u] {
		down = append(down, p.parentCell[v])
		v = p.parent[v]
	}
	for u != v {
		up = append(up, p.parentCell[u])
		u = p.parent[u]
		down = append(down, p.parentCell[v])
		v = p.parent[v]
	}
	for k := len(down) - 1; k >= 0; k-- {
		up = append(up, down[k])
	}
	return up
}

// pivot brings enter into the basis and returns the flow moved. Path cells
// at even offsets lose flow, odd offsets gain it. The leaving cell is the
// losing cell with the least flow, lowest index on ties.
func (p *problem) pivot(enter int) float64 {
	path := p.cycle(enter/p.n, enter%p.n)

	leave := -1
	var theta float64
	for k := 0; k < len(path); k += 2 {
		c := path[k]
		f := p.flow[c]
		if leave < 0 || f < theta || (f == theta && c < leave) {
			theta, leave = f, c
		}
	}

	for k, c := range path {
		if k%2 == 0 {
			p.flow[c] -= theta
		} else {
			p.flow[c] += theta
		}
	}
	p.flow[enter] = theta
	p.flow[leave] = 0

	p.basic[leave] = false
	p.basic[enter] = true
	for k, c := range p.basis {
		if c == leave {
			p.basis[k] = enter
			break
		}
	}
	return theta
}

// cost sums flow × cost over the basis in cell order.
func (p *problem) cost() float64 {
	var total float64
	for c, ok := range p.basic {
		if ok {
			total += p.flow[c] * p.costs[c]
		}
	}
	return total
}
