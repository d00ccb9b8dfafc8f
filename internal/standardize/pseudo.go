package standardize

import (
	"goeffect/domain/core"
	"goeffect/domain/model"
	"goeffect/domain/standard"
	"goeffect/internal/dispersion"
)

// pseudo standardizes mixed-model coefficients at the level they vary on:
// level-1 terms (varying within groups) against within-group dispersion,
// level-2 terms (constant within groups) against the dispersion of group
// means. Requires grouping structure on the model view.
func (e *Engine) pseudo(m *model.Fitted, req standard.Request) (standard.Table, error) {
	if !m.HasGrouping() {
		return standard.Table{}, core.ErrMissingGrouping
	}

	within, err := dispersion.WithinGroups(m.Response, req.Robust, m)
	if err != nil {
		return standard.Table{}, err
	}
	between, err := dispersion.BetweenGroups(m.Response, req.Robust, m)
	if err != nil {
		return standard.Table{}, err
	}
	withinDiv, err := within.Divisor("response(within)")
	if err != nil {
		return standard.Table{}, err
	}
	betweenDiv, err := between.Divisor("response(between)")
	if err != nil {
		return standard.Table{}, err
	}

	table := standard.Table{Method: standard.MethodPseudo, CILevel: req.Level(), Rows: make([]standard.Row, 0, len(m.Terms))}
	for _, t := range m.Terms {
		table.Rows = append(table.Rows, e.pseudoRow(m, t, req, withinDiv, betweenDiv))
	}
	return table, nil
}

func (e *Engine) pseudoRow(m *model.Fitted, t model.Term, req standard.Request, withinDiv, betweenDiv float64) standard.Row {
	level, err := m.TermLevel(&t)
	if err != nil {
		return failedRow(t.Name, err)
	}

	syDiv := withinDiv
	if level == model.LevelBetween {
		syDiv = betweenDiv
	}

	// Contrast-like terms divide only; their coding has no spread to scale by.
	if t.Role == model.RoleIntercept || t.Role == model.RoleFactor || model.IsBinaryColumn(t.Column) {
		return scaledRow(t, 1/syDiv, m.ResidualDF, req, false, nil)
	}

	var sx dispersion.Pair
	if level == model.LevelBetween {
		sx, err = dispersion.BetweenGroups(t.Column, req.Robust, m)
	} else {
		sx, err = dispersion.WithinGroups(t.Column, req.Robust, m)
	}
	if err != nil {
		return failedRow(t.Name, err)
	}
	spread, err := sx.Divisor(t.Name)
	if err != nil {
		return failedRow(t.Name, err)
	}
	return scaledRow(t, predictorSpread(spread, req)/syDiv, m.ResidualDF, req, false, nil)
}
