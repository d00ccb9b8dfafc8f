package standardize

import (
	"errors"

	"goeffect/domain/core"
	"goeffect/domain/model"
	"goeffect/domain/standard"
	"goeffect/internal/dispersion"
)

// posthoc rescales the raw coefficients of an already-fitted model. Numeric
// terms scale by spread(x)/spread(y); factor contrasts and binary columns
// divide by spread(y) only, since their 0/1 coding has no meaningful spread.
//
// With smart set, the response dispersion for each factor term is restricted
// to the rows of that factor's reference level, reproducing a Glass's-delta
// convention. The restriction is only well defined for a single factor with
// no interactions; outside that the method degrades to the global dispersion
// and flags the term.
func (e *Engine) posthoc(m *model.Fitted, req standard.Request, smart bool) (standard.Table, error) {
	method := standard.MethodPosthoc
	if smart {
		method = standard.MethodSmart
	}

	sy, err := dispersion.Estimate(m.Response, req.Robust)
	if err != nil {
		return standard.Table{}, err
	}
	syDiv, err := sy.Divisor("response")
	if err != nil {
		// A constant response defeats every term at once.
		return standard.Table{}, err
	}

	ambiguous := smart && (len(m.FactorVariables()) > 1 || m.HasInteractions())
	refDivisors := make(map[string]float64)

	table := standard.Table{Method: method, CILevel: req.Level(), Rows: make([]standard.Row, 0, len(m.Terms))}
	for _, t := range m.Terms {
		table.Rows = append(table.Rows, e.posthocRow(m, t, req, smart, ambiguous, syDiv, refDivisors))
	}
	return table, nil
}

func (e *Engine) posthocRow(m *model.Fitted, t model.Term, req standard.Request, smart, ambiguous bool, syDiv float64, refDivisors map[string]float64) standard.Row {
	switch {
	case t.Role == model.RoleIntercept:
		return scaledRow(t, 1/syDiv, m.ResidualDF, req, false, nil)

	case t.Role == model.RoleFactor:
		if !smart {
			return scaledRow(t, 1/syDiv, m.ResidualDF, req, false, nil)
		}
		if ambiguous {
			return scaledRow(t, 1/syDiv, m.ResidualDF, req, true,
				[]standard.Warning{standard.WarningAmbiguousReference})
		}
		div, err := e.referenceDivisor(m, t.Factor, req, refDivisors)
		if err != nil {
			if errors.Is(err, core.ErrInsufficientData) || core.IsDegenerateColumnError(err) {
				// Reference subset unusable; fall back to the global
				// dispersion rather than fail the term outright.
				return scaledRow(t, 1/syDiv, m.ResidualDF, req, true,
					[]standard.Warning{standard.WarningAmbiguousReference})
			}
			return failedRow(t.Name, err)
		}
		return scaledRow(t, 1/div, m.ResidualDF, req, false, nil)

	case t.Role == model.RoleInteraction:
		sx, err := dispersion.Estimate(t.Column, req.Robust)
		if err != nil {
			return failedRow(t.Name, err)
		}
		spread, err := sx.Divisor(t.Name)
		if err != nil {
			return failedRow(t.Name, err)
		}
		// Interaction products have no reliable posthoc convention; the
		// model-matrix column scale is reported as advisory only.
		return scaledRow(t, predictorSpread(spread, req)/syDiv, m.ResidualDF, req, true,
			[]standard.Warning{standard.WarningApproximateInteraction})

	case model.IsBinaryColumn(t.Column):
		// Binary predictors keep their original coding: divide by the
		// response spread only.
		return scaledRow(t, 1/syDiv, m.ResidualDF, req, false, nil)

	default:
		sx, err := dispersion.Estimate(t.Column, req.Robust)
		if err != nil {
			return failedRow(t.Name, err)
		}
		spread, err := sx.Divisor(t.Name)
		if err != nil {
			return failedRow(t.Name, err)
		}
		return scaledRow(t, predictorSpread(spread, req)/syDiv, m.ResidualDF, req, false, nil)
	}
}

// referenceDivisor computes (and caches) the response dispersion over the
// reference-level rows of one factor.
func (e *Engine) referenceDivisor(m *model.Fitted, factor string, req standard.Request, cache map[string]float64) (float64, error) {
	if div, ok := cache[factor]; ok {
		return div, nil
	}
	rows, err := m.ReferenceRows(factor)
	if err != nil {
		return 0, err
	}
	pair, err := dispersion.EstimateRows(m.Response, req.Robust, rows)
	if err != nil {
		return 0, err
	}
	div, err := pair.Divisor("response@" + factor)
	if err != nil {
		return 0, err
	}
	cache[factor] = div
	return div, nil
}
