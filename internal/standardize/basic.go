package standardize

import (
	"goeffect/domain/model"
	"goeffect/domain/standard"
	"goeffect/internal/dispersion"
)

// basic treats every design-matrix column uniformly as numeric, factor
// contrasts and interaction products included: estimate scales by
// spread(column)/spread(response). Less faithful for factors than posthoc,
// but stable under interactions and directly comparable across model
// matrices, which is why it stays a named alternative rather than a bug.
func (e *Engine) basic(m *model.Fitted, req standard.Request) (standard.Table, error) {
	sy, err := dispersion.Estimate(m.Response, req.Robust)
	if err != nil {
		return standard.Table{}, err
	}
	syDiv, err := sy.Divisor("response")
	if err != nil {
		return standard.Table{}, err
	}

	table := standard.Table{Method: standard.MethodBasic, CILevel: req.Level(), Rows: make([]standard.Row, 0, len(m.Terms))}
	for _, t := range m.Terms {
		if t.Role == model.RoleIntercept {
			// The intercept column has zero spread by construction, which
			// under the uniform rule pins its standardized value at 0.
			table.Rows = append(table.Rows, scaledRow(t, 0, m.ResidualDF, req, false, nil))
			continue
		}
		sx, err := dispersion.Estimate(t.Column, req.Robust)
		if err != nil {
			table.Rows = append(table.Rows, failedRow(t.Name, err))
			continue
		}
		spread, err := sx.Divisor(t.Name)
		if err != nil {
			table.Rows = append(table.Rows, failedRow(t.Name, err))
			continue
		}
		table.Rows = append(table.Rows, scaledRow(t, predictorSpread(spread, req)/syDiv, m.ResidualDF, req, false, nil))
	}
	return table, nil
}
