// Package ols is the default model-fitting collaborator: ordinary least
// squares by QR decomposition. It exists so the standardization engine has a
// deterministic fitter to delegate refit to; any external fitter satisfying
// ports.Fitter can replace it.
package ols

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"goeffect/domain/dataset"
	"goeffect/domain/model"
)

// Fitter fits linear models by least squares. Stateless and deterministic;
// the seed accepted by Fit is part of the collaborator contract but OLS has
// no stochastic component to seed.
type Fitter struct{}

// NewFitter creates an OLS fitter.
func NewFitter() *Fitter {
	return &Fitter{}
}

// Fit estimates the model described by spec on the dataset and returns the
// standardization view: coefficients, standard errors, residual df, design
// matrix columns, response, R-squared, and grouping structure when the spec
// names a grouping column.
func (f *Fitter) Fit(ctx context.Context, data *dataset.Table, spec dataset.ModelSpec, seed int64) (*model.Fitted, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := spec.Validate(data); err != nil {
		return nil, err
	}

	respCol, _ := data.Column(spec.Response)
	y := make([]float64, len(respCol.Values))
	copy(y, respCol.Values)

	cols, err := buildDesign(data, spec)
	if err != nil {
		return nil, err
	}

	n := len(y)
	p := len(cols)
	if n <= p {
		return nil, fmt.Errorf("cannot fit %d terms on %d observations", p, n)
	}

	X := mat.NewDense(n, p, nil)
	for j, c := range cols {
		X.SetCol(j, c.values)
	}
	yVec := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(X)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, yVec); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}

	// Residual variance and fit quality.
	var pred mat.VecDense
	pred.MulVec(X, &beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - pred.AtVec(i)
		rss += r * r
	}
	df := float64(n - p)
	sigma2 := rss / df

	tss := totalSumSquares(y, spec.Intercept)
	rsq := 0.0
	if tss > 0 {
		rsq = 1 - rss/tss
	}

	// Coefficient covariance via (X'X)^-1.
	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("design matrix is rank deficient: %w", err)
	}

	terms := make([]model.Term, p)
	for j, c := range cols {
		terms[j] = model.Term{
			Name:          c.name,
			Role:          c.role,
			Coefficient:   beta.AtVec(j),
			SE:            math.Sqrt(sigma2 * xtxInv.At(j, j)),
			Column:        c.values,
			Factor:        c.factor,
			ContrastLevel: c.contrastLevel,
			Parents:       c.parents,
		}
	}

	fitted := &model.Fitted{
		Terms:       terms,
		Response:    y,
		ResidualDF:  df,
		RSquared:    rsq,
		HasRSquared: true,
	}

	if spec.Grouping != "" {
		g, _ := data.Column(spec.Grouping)
		groups := make([]int, n)
		for i := range groups {
			groups[i] = g.LevelCode(i)
		}
		fitted.Groups = groups
		fitted.GroupNames = g.Levels
	}

	return fitted, nil
}

// totalSumSquares is around the mean for intercept models and around zero
// otherwise, matching the usual R-squared definitions.
func totalSumSquares(y []float64, intercept bool) float64 {
	center := 0.0
	if intercept {
		for _, v := range y {
			center += v
		}
		center /= float64(len(y))
	}
	tss := 0.0
	for _, v := range y {
		d := v - center
		tss += d * d
	}
	return tss
}
