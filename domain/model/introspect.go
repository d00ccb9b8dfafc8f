package model

import (
	"math"

	"goeffect/domain/core"
)

// HasDesignMatrix reports whether every term carries its design column.
// Absence is a hard failure for all methods except refit.
func (f *Fitted) HasDesignMatrix() bool {
	for _, t := range f.Terms {
		if t.Column == nil {
			return false
		}
	}
	return len(f.Terms) > 0
}

// HasGrouping reports whether the model carries multilevel structure.
func (f *Fitted) HasGrouping() bool {
	return len(f.Groups) == len(f.Response) && len(f.Groups) > 0
}

// HasInteractions reports whether any term is an interaction product.
func (f *Fitted) HasInteractions() bool {
	for _, t := range f.Terms {
		if t.Role == RoleInteraction {
			return true
		}
	}
	return false
}

// FactorVariables returns the distinct source variables behind factor-contrast
// terms, in first-seen order.
func (f *Fitted) FactorVariables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range f.Terms {
		if t.Role == RoleFactor && t.Factor != "" && !seen[t.Factor] {
			seen[t.Factor] = true
			out = append(out, t.Factor)
		}
	}
	return out
}

// ReferenceRows returns the row indices belonging to the reference level of a
// factor variable: the rows where every contrast column of that factor is 0.
func (f *Fitted) ReferenceRows(factor string) ([]int, error) {
	var contrasts [][]float64
	for _, t := range f.Terms {
		if t.Role == RoleFactor && t.Factor == factor {
			if t.Column == nil {
				return nil, core.ErrMissingDesignMatrix
			}
			contrasts = append(contrasts, t.Column)
		}
	}
	if len(contrasts) == 0 {
		return nil, core.NewValidationError(factor, "no contrast terms for factor")
	}
	var rows []int
	for i := 0; i < f.N(); i++ {
		ref := true
		for _, col := range contrasts {
			if col[i] != 0 {
				ref = false
				break
			}
		}
		if ref {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

// GroupCount returns the number of distinct groups.
func (f *Fitted) GroupCount() int {
	if !f.HasGrouping() {
		return 0
	}
	max := -1
	for _, g := range f.Groups {
		if g > max {
			max = g
		}
	}
	return max + 1
}

// GroupMeans collapses a vector to one mean per group.
func (f *Fitted) GroupMeans(values []float64) []float64 {
	k := f.GroupCount()
	sums := make([]float64, k)
	counts := make([]float64, k)
	for i, g := range f.Groups {
		sums[g] += values[i]
		counts[g]++
	}
	means := make([]float64, k)
	for g := range means {
		if counts[g] > 0 {
			means[g] = sums[g] / counts[g]
		}
	}
	return means
}

// CenterWithinGroups subtracts each row's group mean from a vector, leaving
// the within-group variation.
func (f *Fitted) CenterWithinGroups(values []float64) []float64 {
	means := f.GroupMeans(values)
	out := make([]float64, len(values))
	for i, g := range f.Groups {
		out[i] = values[i] - means[g]
	}
	return out
}

// TermLevel resolves the level-1/level-2 classification of a term. Explicit
// classification from the external model wins; otherwise a term whose column
// is constant within every group is level-2, anything else level-1.
func (f *Fitted) TermLevel(t *Term) (Level, error) {
	if t.GroupLevel != LevelUnknown {
		return t.GroupLevel, nil
	}
	if !f.HasGrouping() {
		return LevelUnknown, core.ErrMissingGrouping
	}
	if t.Column == nil {
		return LevelUnknown, core.ErrMissingDesignMatrix
	}
	centered := f.CenterWithinGroups(t.Column)
	for _, v := range centered {
		if math.Abs(v) > 1e-12 {
			return LevelWithin, nil
		}
	}
	return LevelBetween, nil
}

// IsBinaryColumn reports whether a column takes exactly two distinct values,
// the convention used to treat 0/1 predictors like factor contrasts.
func IsBinaryColumn(values []float64) bool {
	unique := make(map[float64]bool)
	for _, v := range values {
		if !math.IsNaN(v) {
			unique[v] = true
		}
		if len(unique) > 2 {
			return false
		}
	}
	return len(unique) == 2
}
