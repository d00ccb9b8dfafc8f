package ols

import (
	"fmt"

	"goeffect/domain/dataset"
	"goeffect/domain/model"
)

// InterceptTerm is the canonical name of the intercept column.
const InterceptTerm = "intercept"

// designColumn is one expanded column of the model matrix before fitting.
type designColumn struct {
	name          string
	role          model.Role
	values        []float64
	factor        string
	contrastLevel string
	parents       []string
}

// buildDesign expands a dataset and model spec into model-matrix columns:
// intercept, numeric predictors as-is, factors as treatment-coded contrasts
// against their first level, and interactions as products of the expanded
// sides.
func buildDesign(t *dataset.Table, spec dataset.ModelSpec) ([]designColumn, error) {
	n := t.Rows()
	var cols []designColumn

	if spec.Intercept {
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		cols = append(cols, designColumn{name: InterceptTerm, role: model.RoleIntercept, values: ones})
	}

	for _, p := range spec.Predictors {
		c, ok := t.Column(p)
		if !ok {
			return nil, fmt.Errorf("predictor %s not in dataset", p)
		}
		expanded, err := expandColumn(c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, expanded...)
	}

	for _, ia := range spec.Interactions {
		a, ok := t.Column(ia.A)
		if !ok {
			return nil, fmt.Errorf("interaction column %s not in dataset", ia.A)
		}
		b, ok := t.Column(ia.B)
		if !ok {
			return nil, fmt.Errorf("interaction column %s not in dataset", ia.B)
		}
		left, err := expandColumn(a)
		if err != nil {
			return nil, err
		}
		right, err := expandColumn(b)
		if err != nil {
			return nil, err
		}
		for _, lc := range left {
			for _, rc := range right {
				prod := make([]float64, n)
				for i := range prod {
					prod[i] = lc.values[i] * rc.values[i]
				}
				cols = append(cols, designColumn{
					name:    lc.name + ":" + rc.name,
					role:    model.RoleInteraction,
					values:  prod,
					parents: []string{ia.A, ia.B},
				})
			}
		}
	}

	return cols, nil
}

// expandColumn turns one dataset column into its model-matrix columns.
func expandColumn(c *dataset.Column) ([]designColumn, error) {
	switch c.Kind {
	case dataset.KindNumeric:
		values := make([]float64, len(c.Values))
		copy(values, c.Values)
		return []designColumn{{name: c.Name, role: model.RoleNumeric, values: values}}, nil

	case dataset.KindFactor:
		if len(c.Levels) < 2 {
			return nil, fmt.Errorf("factor %s needs at least 2 levels", c.Name)
		}
		// Treatment coding: the first level is the reference and gets no
		// column; each remaining level gets a 0/1 indicator.
		cols := make([]designColumn, 0, len(c.Levels)-1)
		for levelIdx := 1; levelIdx < len(c.Levels); levelIdx++ {
			indicator := make([]float64, len(c.Values))
			for i := range c.Values {
				if c.LevelCode(i) == levelIdx {
					indicator[i] = 1
				}
			}
			cols = append(cols, designColumn{
				name:          c.Name + "." + c.Levels[levelIdx],
				role:          model.RoleFactor,
				values:        indicator,
				factor:        c.Name,
				contrastLevel: c.Levels[levelIdx],
			})
		}
		return cols, nil

	case dataset.KindGrouping:
		return nil, fmt.Errorf("grouping column %s cannot enter the design matrix as a predictor", c.Name)

	default:
		return nil, fmt.Errorf("column %s has unknown kind %q", c.Name, c.Kind)
	}
}
