// Package dispersion computes center/spread pairs for numeric vectors, the
// building block every standardization method divides by.
package dispersion

import (
	"math"

	"github.com/montanaflynn/stats"

	"goeffect/domain/core"
)

// MADConsistency rescales the raw median absolute deviation so it estimates
// the standard deviation under normality.
const MADConsistency = 1.4826

// Pair is a center/spread summary of a numeric vector: (mean, sample SD) in
// the classical case, (median, scaled MAD) in the robust case.
type Pair struct {
	Center float64 `json:"center"`
	Spread float64 `json:"spread"`
}

// Divisor returns the spread for use as a denominator, failing explicitly on
// degenerate (constant) columns instead of dividing toward infinity.
func (p Pair) Divisor(column string) (float64, error) {
	if p.Spread <= 0 || math.IsNaN(p.Spread) {
		return 0, core.NewDegenerateColumnError(column)
	}
	return p.Spread, nil
}

// Estimate computes the dispersion pair over a full vector.
func Estimate(values []float64, robust bool) (Pair, error) {
	if len(values) < 2 {
		return Pair{}, core.ErrInsufficientData
	}
	if robust {
		center, err := stats.Median(values)
		if err != nil {
			return Pair{}, err
		}
		mad, err := stats.MedianAbsoluteDeviation(values)
		if err != nil {
			return Pair{}, err
		}
		return Pair{Center: center, Spread: MADConsistency * mad}, nil
	}
	center, err := stats.Mean(values)
	if err != nil {
		return Pair{}, err
	}
	spread, err := stats.StandardDeviationSample(values)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Center: center, Spread: spread}, nil
}

// EstimateRows computes the dispersion pair over a row subset, used by the
// smart method (reference-level rows) and group-restricted statistics.
func EstimateRows(values []float64, robust bool, rows []int) (Pair, error) {
	subset := make([]float64, 0, len(rows))
	for _, i := range rows {
		if i < 0 || i >= len(values) {
			return Pair{}, core.NewValidationError("rows", "row index out of range")
		}
		subset = append(subset, values[i])
	}
	return Estimate(subset, robust)
}

// GroupView exposes the grouping structure needed for within/between splits
// without this package depending on the model view.
type GroupView interface {
	GroupMeans(values []float64) []float64
	CenterWithinGroups(values []float64) []float64
}

// WithinGroups computes the dispersion of a vector after removing group
// means, the level-1 scale of pseudo-standardization. The center of the
// returned pair is the grand center of the raw vector, which is what refit
// and pseudo use for centering.
func WithinGroups(values []float64, robust bool, groups GroupView) (Pair, error) {
	centered := groups.CenterWithinGroups(values)
	within, err := Estimate(centered, robust)
	if err != nil {
		return Pair{}, err
	}
	grand, err := Estimate(values, robust)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Center: grand.Center, Spread: within.Spread}, nil
}

// BetweenGroups computes the dispersion of the group means, the level-2
// scale of pseudo-standardization.
func BetweenGroups(values []float64, robust bool, groups GroupView) (Pair, error) {
	return Estimate(groups.GroupMeans(values), robust)
}
