package domain

import "time"

// CostMatrix is a dense n×n table of travel durations between nodes.
// Entries are directional; At(i, j) need not equal At(j, i).
type CostMatrix struct {
	n int
	d []time.Duration
}

func NewCostMatrix(n int) CostMatrix {
	return CostMatrix{n: n, d: make([]time.Duration, n*n)}
}

// Size returns the number of nodes.
func (m CostMatrix) Size() int { return m.n }

func (m CostMatrix) At(i, j int) time.Duration { return m.d[i*m.n+j] }

func (m CostMatrix) Set(i, j int, d time.Duration) { m.d[i*m.n+j] = d }
