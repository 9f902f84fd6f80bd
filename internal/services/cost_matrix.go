package services

import (
	"fmt"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/ports"
)

// BuildCostMatrix evaluates the distance model for every ordered pair of
// points. The diagonal is zero; nothing assumes the model is symmetric.
func BuildCostMatrix(model ports.DistanceModel, points []domain.Point) (domain.CostMatrix, error) {
	n := len(points)
	m := domain.NewCostMatrix(n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d, err := model.Duration(points[i], points[j])
			if err != nil {
				return domain.CostMatrix{}, fmt.Errorf("build cost matrix: pair %q -> %q: %w", points[i].ID, points[j].ID, err)
			}
			if d < 0 {
				return domain.CostMatrix{}, &domain.InvalidInputError{
					Field:  "distance",
					Reason: fmt.Sprintf("negative travel time %s for %q -> %q", d, points[i].ID, points[j].ID),
				}
			}
			m.Set(i, j, d)
		}
	}

	return m, nil
}
