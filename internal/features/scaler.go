package features

import (
	"fmt"
	"math"

	"hotel_recommender/internal/domain"
)

// zero-variance columns (up to rounding noise) are left unscaled
const varianceTolerance = 1e-20

// Scaler holds per-column standard-score parameters.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes column means and population standard deviations.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, fmt.Errorf("%w: no rows to fit scaler", domain.ErrInputNotFound)
	}
	n := len(rows[0])
	mean := make([]float64, n)
	for i, r := range rows {
		if len(r) != n {
			return Scaler{}, fmt.Errorf("%w: row %d has %d columns, want %d", domain.ErrSchemaMismatch, i, len(r), n)
		}
		for j, x := range r {
			mean[j] += x
		}
	}
	cnt := float64(len(rows))
	for j := range mean {
		mean[j] /= cnt
	}
	variance := make([]float64, n)
	for _, r := range rows {
		for j, x := range r {
			d := x - mean[j]
			variance[j] += d * d
		}
	}
	scale := make([]float64, n)
	for j := range variance {
		v := variance[j] / cnt
		if v <= varianceTolerance*math.Max(1, mean[j]*mean[j]) {
			scale[j] = 1
			continue
		}
		scale[j] = math.Sqrt(v)
	}
	return Scaler{Mean: mean, Scale: scale}, nil
}

// Apply returns the standard score of row. It never refits.
func (s Scaler) Apply(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) || len(row) != len(s.Scale) {
		return nil, fmt.Errorf("%w: row has %d columns, scaler has %d", domain.ErrSchemaMismatch, len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, x := range row {
		out[j] = (x - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}
