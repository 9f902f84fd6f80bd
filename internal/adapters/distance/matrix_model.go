package distance

import (
	"fmt"
	"tapas-route-service/internal/domain"
	"time"
)

type Pair struct {
	From, To string
	Duration time.Duration
}

// MatrixModel answers travel times from an externally supplied table keyed
// by point ID. Pairs are directional; nothing assumes symmetry.
type MatrixModel struct {
	m map[pairKey]time.Duration
}

type pairKey struct{ from, to string }

func NewMatrixModel(pairs []Pair) (*MatrixModel, error) {
	m := make(map[pairKey]time.Duration, len(pairs))
	for _, p := range pairs {
		if p.Duration < 0 {
			return nil, &domain.InvalidInputError{Field: "matrix", Reason: fmt.Sprintf("negative duration %s for %q -> %q", p.Duration, p.From, p.To)}
		}
		m[pairKey{p.From, p.To}] = p.Duration
	}
	return &MatrixModel{m: m}, nil
}

func (p *MatrixModel) Duration(a, b domain.Point) (time.Duration, error) {
	if a.ID == b.ID {
		return 0, nil
	}
	d, ok := p.m[pairKey{a.ID, b.ID}]
	if !ok {
		return 0, fmt.Errorf("matrix model: missing pair %q -> %q", a.ID, b.ID)
	}
	return d, nil
}
