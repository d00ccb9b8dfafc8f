package standardize

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// confidenceInterval builds a two-sided interval around a standardized
// estimate using the t distribution at the model's residual df. Falls back to
// the normal quantile when the df is missing or non-positive (large-sample or
// Bayesian collaborators that report no residual df).
func confidenceInterval(estimate, se, df, level float64) (low, high float64) {
	if se == 0 || math.IsNaN(se) {
		return estimate, estimate
	}
	q := criticalValue(df, level)
	return estimate - q*se, estimate + q*se
}

func criticalValue(df, level float64) float64 {
	p := 0.5 + level/2
	if df > 0 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		return t.Quantile(p)
	}
	n := distuv.Normal{Mu: 0, Sigma: 1}
	return n.Quantile(p)
}

// expTriple exponentiates an estimate and its CI bounds, the post-processing
// step for multiplicative-link models.
func expTriple(est, low, high float64) (float64, float64, float64) {
	return math.Exp(est), math.Exp(low), math.Exp(high)
}
