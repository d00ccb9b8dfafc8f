// Package effectsize converts between families of effect-size statistics:
// standardized mean differences, correlations, and variance-explained ratios.
// Every conversion is a pure function over sufficient statistics; the
// returned values carry those statistics for audit.
package effectsize

import (
	"math"

	"github.com/montanaflynn/stats"

	"goeffect/domain/core"
	"goeffect/domain/effect"
	"goeffect/domain/model"
)

// TToR converts a t-statistic to the correlation r = t / sqrt(t^2 + df),
// preserving the sign of t.
func TToR(t, dfError float64) effect.Value {
	r := t / math.Sqrt(t*t+dfError)
	return effect.Value{
		Kind:  effect.KindCorrelation,
		Value: r,
		Stats: map[string]float64{"t": t, "df_error": dfError},
	}
}

// TToD converts a t-statistic to Cohen's d under the equal-group-size
// approximation d = 2t / sqrt(df).
func TToD(t, dfError float64) effect.Value {
	d := 2 * t / math.Sqrt(dfError)
	return effect.Value{
		Kind:  effect.KindCohensD,
		Value: d,
		Stats: map[string]float64{"t": t, "df_error": dfError},
	}
}

// CohensD computes the standardized mean difference between two groups in
// units of the pooled SD, variances weighted by n-1.
func CohensD(groupA, groupB []float64) (effect.Value, error) {
	meanA, varA, nA, err := groupStats(groupA)
	if err != nil {
		return effect.Value{}, err
	}
	meanB, varB, nB, err := groupStats(groupB)
	if err != nil {
		return effect.Value{}, err
	}

	pooled := math.Sqrt(((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2))
	if pooled <= 0 {
		return effect.Value{}, core.NewDegenerateColumnError("pooled SD")
	}

	return effect.Value{
		Kind:  effect.KindCohensD,
		Value: (meanA - meanB) / pooled,
		Stats: map[string]float64{
			"mean_a": meanA, "mean_b": meanB,
			"var_a": varA, "var_b": varB,
			"n_a": nA, "n_b": nB,
			"pooled_sd": pooled,
		},
	}, nil
}

// GlassDelta computes the standardized mean difference using only the
// reference group's SD. The second group is the reference (control) by
// convention; use GlassDeltaReference to override.
func GlassDelta(groupA, groupB []float64) (effect.Value, error) {
	return GlassDeltaReference(groupA, groupB, 1)
}

// GlassDeltaReference computes Glass's delta with an explicit reference
// group: 0 selects the first group's SD as denominator, 1 the second's.
func GlassDeltaReference(groupA, groupB []float64, reference int) (effect.Value, error) {
	if reference != 0 && reference != 1 {
		return effect.Value{}, core.NewValidationError("reference", "must be 0 or 1")
	}
	meanA, varA, nA, err := groupStats(groupA)
	if err != nil {
		return effect.Value{}, err
	}
	meanB, varB, nB, err := groupStats(groupB)
	if err != nil {
		return effect.Value{}, err
	}

	refVar := varB
	if reference == 0 {
		refVar = varA
	}
	refSD := math.Sqrt(refVar)
	if refSD <= 0 {
		return effect.Value{}, core.NewDegenerateColumnError("reference group SD")
	}

	return effect.Value{
		Kind:  effect.KindGlassDelta,
		Value: (meanA - meanB) / refSD,
		Stats: map[string]float64{
			"mean_a": meanA, "mean_b": meanB,
			"n_a": nA, "n_b": nB,
			"reference": float64(reference), "reference_sd": refSD,
		},
	}, nil
}

// CohensF2 computes f^2 = (R2_full - R2_reduced) / (1 - R2_full) from a
// nested model pair. Both models must have been fit on the same observations;
// the response fingerprints are compared to enforce that.
func CohensF2(reduced, full *model.Fitted) (effect.Value, error) {
	if !reduced.HasRSquared || !full.HasRSquared {
		return effect.Value{}, core.NewIncompatibleModelsError("both models must expose R-squared")
	}
	if !reduced.Fingerprint().Equals(full.Fingerprint()) {
		return effect.Value{}, core.NewIncompatibleModelsError("response fingerprints differ")
	}
	return CohensF2FromR2(reduced.RSquared, full.RSquared)
}

// CohensF2FromR2 computes f^2 directly from two R-squared values.
func CohensF2FromR2(r2Reduced, r2Full float64) (effect.Value, error) {
	if r2Full >= 1 {
		return effect.Value{}, core.NewDegenerateColumnError("residual variance of full model")
	}
	return effect.Value{
		Kind:  effect.KindCohensF2,
		Value: (r2Full - r2Reduced) / (1 - r2Full),
		Stats: map[string]float64{"r2_reduced": r2Reduced, "r2_full": r2Full},
	}, nil
}

// StandardizedSlopeToR is the identity that makes refit verifiable: for a
// single-predictor linear model the standardized slope is the Pearson r.
func StandardizedSlopeToR(slope float64) effect.Value {
	return effect.Value{
		Kind:  effect.KindCorrelation,
		Value: slope,
		Stats: map[string]float64{"standardized_slope": slope},
	}
}

func groupStats(group []float64) (mean, variance, n float64, err error) {
	if len(group) < 2 {
		return 0, 0, 0, core.ErrInsufficientData
	}
	mean, err = stats.Mean(group)
	if err != nil {
		return 0, 0, 0, err
	}
	variance, err = stats.SampleVariance(group)
	if err != nil {
		return 0, 0, 0, err
	}
	return mean, variance, float64(len(group)), nil
}
