package oracle

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each feature to zero mean and unit variance. It is
// fitted on training data and stored in the artifact so inference applies
// exactly the same transform.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and population standard deviation.
// Constant columns get a std of 1 so they transform to zero.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, errors.New("fit scaler: no rows")
	}
	width := len(rows[0])
	s := Scaler{Mean: make([]float64, width), Std: make([]float64, width)}

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			if len(r) != width {
				return Scaler{}, errors.New("fit scaler: ragged rows")
			}
			col[i] = r[j]
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
		if s.Std[j] < 1e-12 || math.IsNaN(s.Std[j]) {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Transform returns a standardized copy of x.
func (s Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s Scaler) width() int { return len(s.Mean) }
