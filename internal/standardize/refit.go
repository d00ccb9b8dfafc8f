package standardize

import (
	"context"
	"fmt"

	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/standard"
	"goeffect/internal/dispersion"
)

// refit standardizes by re-estimation: numeric columns of the dataset are
// rescaled to dispersion units and the same model spec is handed back to the
// fitting collaborator. The refit coefficients are the standardized
// coefficients with no further arithmetic, which makes this the only method
// that stays exact under interactions. Failure of the collaborator is
// model-wide and never retried; retrying a non-deterministic optimizer would
// silently produce different, unvalidated results.
func (e *Engine) refit(ctx context.Context, in Input, req standard.Request) (standard.Table, error) {
	if e.fitter == nil {
		return standard.Table{}, core.ErrFitterMissing
	}
	if in.Data == nil {
		return standard.Table{}, core.NewValidationError("data", "refit requires the raw dataset")
	}
	if err := in.Spec.Validate(in.Data); err != nil {
		return standard.Table{}, err
	}

	std, err := StandardizeDataset(in.Data, in.Spec, req)
	if err != nil {
		return standard.Table{}, err
	}

	fitted, err := e.fitter.Fit(ctx, std, in.Spec, req.Seed)
	if err != nil {
		return standard.Table{}, core.NewRefitError(err)
	}
	if err := fitted.Validate(); err != nil {
		return standard.Table{}, core.NewRefitError(err)
	}

	table := standard.Table{Method: standard.MethodRefit, CILevel: req.Level(), Rows: make([]standard.Row, 0, len(fitted.Terms))}
	for _, t := range fitted.Terms {
		table.Rows = append(table.Rows, scaledRow(t, 1, fitted.ResidualDF, req, false, nil))
	}
	return table, nil
}

// StandardizeDataset builds the transformed dataset refit is estimated on:
// the numeric response and every numeric column the spec references become
// (x - center) / spread, with predictor spreads doubled under TwoSD. Factor
// and grouping columns pass through untouched; their contrasts already encode
// levels. Exported so idempotence can be checked and so callers can reuse the
// exact transform.
func StandardizeDataset(t *dataset.Table, spec dataset.ModelSpec, req standard.Request) (*dataset.Table, error) {
	referenced := map[string]bool{spec.Response: true}
	for _, p := range spec.Predictors {
		referenced[p] = true
	}
	for _, ia := range spec.Interactions {
		referenced[ia.A] = true
		referenced[ia.B] = true
	}

	columns := make([]dataset.Column, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c
		if c.Kind != dataset.KindNumeric || !referenced[c.Name] {
			continue
		}
		scaled, err := scaleColumn(c, req, c.Name != spec.Response)
		if err != nil {
			return nil, err
		}
		columns[i] = scaled
	}
	return dataset.NewTable(columns)
}

func scaleColumn(c dataset.Column, req standard.Request, isPredictor bool) (dataset.Column, error) {
	pair, err := dispersion.Estimate(c.Values, req.Robust)
	if err != nil {
		return dataset.Column{}, fmt.Errorf("column %s: %w", c.Name, err)
	}
	spread, err := pair.Divisor(c.Name)
	if err != nil {
		return dataset.Column{}, err
	}
	if isPredictor {
		spread = predictorSpread(spread, req)
	}
	values := make([]float64, len(c.Values))
	for i, v := range c.Values {
		values[i] = (v - pair.Center) / spread
	}
	return dataset.Column{Name: c.Name, Kind: c.Kind, Values: values}, nil
}
