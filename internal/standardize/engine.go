// Package standardize implements the standardization engine: four precisely
// distinct conventions for expressing regression coefficients in dispersion
// units, plus the refit strategy that re-estimates instead of rescaling.
package standardize

import (
	"context"
	"fmt"

	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/model"
	"goeffect/domain/standard"
	"goeffect/ports"
)

// Input bundles what one standardization call may consume. Model is required
// for every method except refit, which is the only method that can proceed
// from the raw dataset and model spec alone.
type Input struct {
	Model *model.Fitted
	Data  *dataset.Table
	Spec  dataset.ModelSpec
}

// Engine dispatches a request to the selected standardization method. The
// engine is stateless; every call operates on its own dispersion pairs and
// coefficient rows.
type Engine struct {
	fitter ports.Fitter
}

// NewEngine creates an engine. The fitter may be nil when refit is never used.
func NewEngine(fitter ports.Fitter) *Engine {
	return &Engine{fitter: fitter}
}

// Standardize applies the requested method and returns one row per model
// term. Term-scoped failures (degenerate column, unsupported role) surface on
// their row; refit and structural failures are request-fatal.
func (e *Engine) Standardize(ctx context.Context, in Input, req standard.Request) (standard.Table, error) {
	if err := req.Validate(); err != nil {
		return standard.Table{}, err
	}

	if req.Method == standard.MethodRefit {
		return e.refit(ctx, in, req)
	}

	m := in.Model
	if m == nil {
		return standard.Table{}, core.NewValidationError("model", "fitted model required for non-refit methods")
	}
	if err := m.Validate(); err != nil {
		return standard.Table{}, err
	}
	if !m.HasDesignMatrix() {
		return standard.Table{}, core.ErrMissingDesignMatrix
	}

	switch req.Method {
	case standard.MethodPosthoc:
		return e.posthoc(m, req, false)
	case standard.MethodSmart:
		return e.posthoc(m, req, true)
	case standard.MethodBasic:
		return e.basic(m, req)
	case standard.MethodPseudo:
		return e.pseudo(m, req)
	default:
		return standard.Table{}, fmt.Errorf("%w: %q", core.ErrUnknownMethod, req.Method)
	}
}

// scaledRow builds one output row from a raw coefficient and a scale factor.
// The same scale applies to the point estimate and its standard error, so the
// t-statistic of the term is untouched by standardization.
func scaledRow(t model.Term, scale, df float64, req standard.Request, approx bool, warnings []standard.Warning) standard.Row {
	est := t.Coefficient * scale
	se := t.SE * scale
	if se < 0 {
		se = -se
	}
	low, high := confidenceInterval(est, se, df, req.Level())

	if req.Exponentiate {
		est, low, high = expTriple(est, low, high)
		warnings = append(warnings, standard.WarningExponentiated)
	}

	return standard.Row{
		Term:        t.Name,
		Estimate:    est,
		SE:          se,
		CILow:       low,
		CIHigh:      high,
		Approximate: approx,
		Warnings:    warnings,
	}
}

// failedRow records a term-scoped error without aborting sibling terms.
func failedRow(name string, err error) standard.Row {
	return standard.Row{Term: name, Err: err, Error: err.Error()}
}

// predictorSpread applies the two-SD convention: predictor dispersions (never
// the response) are doubled before dividing.
func predictorSpread(spread float64, req standard.Request) float64 {
	if req.TwoSD {
		return 2 * spread
	}
	return spread
}
