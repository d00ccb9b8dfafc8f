package standard

import (
	"fmt"

	"goeffect/domain/core"
)

// Method selects the standardization convention
type Method string

const (
	// MethodRefit re-estimates the model on standardized data; the only
	// method that is exact in the presence of interactions.
	MethodRefit Method = "refit"
	// MethodPosthoc rescales coefficients with global dispersions.
	MethodPosthoc Method = "posthoc"
	// MethodSmart is posthoc with the response dispersion for factor terms
	// restricted to the factor's reference-level rows (Glass-delta-like).
	MethodSmart Method = "smart"
	// MethodBasic treats every design-matrix column uniformly as numeric,
	// the convention most external tools implement by default.
	MethodBasic Method = "basic"
	// MethodPseudo standardizes mixed-model terms by within-group (level-1)
	// or between-group (level-2) dispersion.
	MethodPseudo Method = "pseudo"
)

// Methods lists every supported method in canonical order.
func Methods() []Method {
	return []Method{MethodRefit, MethodPosthoc, MethodSmart, MethodBasic, MethodPseudo}
}

// Valid reports whether the method is known.
func (m Method) Valid() bool {
	switch m {
	case MethodRefit, MethodPosthoc, MethodSmart, MethodBasic, MethodPseudo:
		return true
	}
	return false
}

// Request carries the knobs of one standardization call.
type Request struct {
	Method Method `json:"method"`
	// Robust swaps mean/SD for median/MAD everywhere a dispersion is taken.
	Robust bool `json:"robust"`
	// TwoSD doubles every predictor dispersion (never the response) before
	// dividing, the Gelman convention.
	TwoSD bool `json:"two_sd"`
	// Exponentiate post-processes estimate and CI bounds; only sensible for
	// multiplicative-link models.
	Exponentiate bool `json:"exponentiate"`
	// CILevel is the two-sided confidence level; 0 defaults to 0.95.
	CILevel float64 `json:"ci_level,omitempty"`
	// Seed is handed to the fitting collaborator under refit so stochastic
	// optimizers stay deterministic.
	Seed int64 `json:"seed,omitempty"`
}

// Level returns the effective confidence level.
func (r Request) Level() float64 {
	if r.CILevel <= 0 || r.CILevel >= 1 {
		return 0.95
	}
	return r.CILevel
}

// Validate checks the request.
func (r Request) Validate() error {
	if !r.Method.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownMethod, r.Method)
	}
	if r.CILevel != 0 && (r.CILevel <= 0 || r.CILevel >= 1) {
		return core.NewValidationError("ci_level", fmt.Sprintf("must be in (0,1), got %v", r.CILevel))
	}
	return nil
}

// Warning flags a caveat attached to a single coefficient
type Warning string

const (
	// WarningApproximateInteraction marks interaction terms under
	// posthoc/smart, where the convention is documented as unreliable.
	WarningApproximateInteraction Warning = "APPROXIMATE_INTERACTION"
	// WarningAmbiguousReference marks smart factor terms where the
	// reference-level subset could not be isolated (multiple factors or
	// interactions) and the global response dispersion was used instead.
	WarningAmbiguousReference Warning = "AMBIGUOUS_REFERENCE"
	// WarningExponentiated marks values reported on the response ratio scale.
	WarningExponentiated Warning = "EXPONENTIATED"
)

// Row is one standardized coefficient. Rows for terms that failed carry Err
// and zeroed statistics; a failing term never aborts its siblings.
type Row struct {
	Term        string    `json:"term"`
	Estimate    float64   `json:"estimate"`
	SE          float64   `json:"se"`
	CILow       float64   `json:"ci_low"`
	CIHigh      float64   `json:"ci_high"`
	Approximate bool      `json:"approximate,omitempty"`
	Warnings    []Warning `json:"warnings,omitempty"`
	Error       string    `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether this term's computation failed.
func (r Row) Failed() bool { return r.Err != nil }

// Table is the ordered output of one standardization call: one row per model
// term, intercept included when the model has one.
type Table struct {
	Method  Method  `json:"method"`
	CILevel float64 `json:"ci_level"`
	Rows    []Row   `json:"rows"`
}

// Row finds a row by term name.
func (t Table) Row(term string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Term == term {
			return r, true
		}
	}
	return Row{}, false
}

// FailedTerms returns the names of terms whose computation failed.
func (t Table) FailedTerms() []string {
	var out []string
	for _, r := range t.Rows {
		if r.Failed() {
			out = append(out, r.Term)
		}
	}
	return out
}
