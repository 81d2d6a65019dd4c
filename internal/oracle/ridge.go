package oracle

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fixturecast/predictor-api/internal/models"
)

// DefaultLambda is the ridge penalty used when none is configured.
const DefaultLambda = 1.0

// FitOptions configure a training run.
type FitOptions struct {
	Lambda  float64
	Version string
}

// Fit standardizes the sample features and solves the ridge normal equations
// (XᵀX + λI)w = Xᵀ(y - ȳ). The intercept is the label mean, which is exact
// because standardized columns are centered.
func Fit(samples []models.MatchSample, opts FitOptions) (*Artifact, error) {
	if len(samples) == 0 {
		return nil, errors.New("fit: no samples")
	}
	if opts.Lambda <= 0 {
		opts.Lambda = DefaultLambda
	}
	createdAt := time.Now().UTC()
	if opts.Version == "" {
		opts.Version = "ridge-v1-" + createdAt.Format("20060102T150405Z")
	}

	raw := make([][]float64, len(samples))
	var labelMean float64
	for i, s := range samples {
		raw[i] = s.Features.Values()
		labelMean += s.Goals
	}
	labelMean /= float64(len(samples))

	scaler, err := FitScaler(raw)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	width := scaler.width()
	x := mat.NewDense(len(samples), width, nil)
	y := mat.NewVecDense(len(samples), nil)
	for i, r := range raw {
		x.SetRow(i, scaler.Transform(r))
		y.SetVec(i, samples[i].Goals-labelMean)
	}

	var gram mat.Dense
	gram.Mul(x.T(), x)
	for j := 0; j < width; j++ {
		gram.Set(j, j, gram.At(j, j)+opts.Lambda)
	}
	var moment mat.VecDense
	moment.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &moment); err != nil {
		return nil, fmt.Errorf("fit: solve normal equations: %w", err)
	}

	weights := make([]float64, width)
	for j := range weights {
		weights[j] = w.AtVec(j)
	}

	return &Artifact{
		Version:      opts.Version,
		CreatedAt:    createdAt,
		FeatureNames: append([]string(nil), models.FeatureNames[:]...),
		Scaler:       scaler,
		Weights:      weights,
		Intercept:    labelMean,
		Lambda:       opts.Lambda,
		SampleCount:  len(samples),
	}, nil
}
