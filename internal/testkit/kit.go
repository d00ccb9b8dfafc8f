// Package testkit provides deterministic synthetic datasets and the standard
// 32-row motor-trend fixture used across the statistical test suites.
package testkit

import (
	"fmt"
	"math/rand"

	"goeffect/domain/dataset"
)

// LinearDataset generates y = intercept + slope*x + noise with a seeded
// generator, one numeric predictor.
func LinearDataset(n int, slope, intercept, noise float64, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()*3 + 10
		y[i] = intercept + slope*x[i] + rng.NormFloat64()*noise
	}
	t, err := dataset.NewTable([]dataset.Column{
		{Name: "x", Kind: dataset.KindNumeric, Values: x},
		{Name: "y", Kind: dataset.KindNumeric, Values: y},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// MultiNumericDataset generates a purely numeric three-predictor regression
// with known coefficients and correlated predictors.
func MultiNumericDataset(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	x3 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = rng.NormFloat64() * 2
		x2[i] = 0.4*x1[i] + rng.NormFloat64()
		x3[i] = rng.NormFloat64()*5 + 2
		y[i] = 1.5 + 2.0*x1[i] - 0.7*x2[i] + 0.3*x3[i] + rng.NormFloat64()
	}
	t, err := dataset.NewTable([]dataset.Column{
		{Name: "x1", Kind: dataset.KindNumeric, Values: x1},
		{Name: "x2", Kind: dataset.KindNumeric, Values: x2},
		{Name: "x3", Kind: dataset.KindNumeric, Values: x3},
		{Name: "y", Kind: dataset.KindNumeric, Values: y},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// GroupedDataset generates a multilevel design: x varies within groups
// (level-1), z is constant within each group (level-2), and y carries both
// effects plus a random group intercept.
func GroupedDataset(groups, perGroup int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	n := groups * perGroup

	g := make([]float64, n)
	x := make([]float64, n)
	z := make([]float64, n)
	y := make([]float64, n)
	levels := make([]string, groups)

	for gi := 0; gi < groups; gi++ {
		levels[gi] = fmt.Sprintf("g%02d", gi+1)
		groupZ := rng.NormFloat64() * 4
		groupIntercept := rng.NormFloat64() * 2
		for j := 0; j < perGroup; j++ {
			i := gi*perGroup + j
			g[i] = float64(gi)
			z[i] = groupZ
			x[i] = rng.NormFloat64() * 1.5
			y[i] = 3 + groupIntercept + 1.2*x[i] + 0.8*z[i] + rng.NormFloat64()*0.5
		}
	}

	t, err := dataset.NewTable([]dataset.Column{
		{Name: "g", Kind: dataset.KindGrouping, Values: g, Levels: levels},
		{Name: "x", Kind: dataset.KindNumeric, Values: x},
		{Name: "z", Kind: dataset.KindNumeric, Values: z},
		{Name: "y", Kind: dataset.KindNumeric, Values: y},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// SplitByFactor partitions a numeric column by the levels of a factor column,
// returning one slice per level in level order.
func SplitByFactor(t *dataset.Table, valueCol, factorCol string) ([][]float64, error) {
	v, ok := t.Column(valueCol)
	if !ok {
		return nil, fmt.Errorf("column %s not found", valueCol)
	}
	f, ok := t.Column(factorCol)
	if !ok {
		return nil, fmt.Errorf("column %s not found", factorCol)
	}
	out := make([][]float64, len(f.Levels))
	for i := range v.Values {
		code := f.LevelCode(i)
		out[code] = append(out[code], v.Values[i])
	}
	return out, nil
}
