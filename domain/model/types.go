// Package model holds the read-only view of an externally fitted model.
// The standardization engine consumes this view and never branches on the
// concrete model family, only on the capabilities the view exposes
// (design matrix present, grouping present, multiplicative link).
package model

import (
	"fmt"

	"goeffect/domain/core"
)

// Role classifies a design-matrix column
type Role string

const (
	RoleIntercept   Role = "intercept"
	RoleNumeric     Role = "numeric"
	RoleFactor      Role = "factor_contrast"
	RoleInteraction Role = "interaction"
)

// Level classifies a term in a multilevel model
type Level int

const (
	LevelUnknown Level = 0 // not classified; introspection derives it from the column
	LevelWithin  Level = 1 // varies within groups (level-1)
	LevelBetween Level = 2 // constant within groups, varies between (level-2)
)

// Term is one model term: a named coefficient plus the design-matrix column
// that produced it. Column may be nil when the external model exposes no
// design matrix (only refit can proceed in that case).
type Term struct {
	Name        string
	Role        Role
	Coefficient float64
	SE          float64
	Column      []float64

	// Factor names the source variable for factor-contrast terms and
	// ContrastLevel the non-reference level this contrast encodes.
	Factor        string
	ContrastLevel string

	// Parents names the source variables of an interaction term.
	Parents []string

	// GroupLevel is the level-1/level-2 classification for mixed models.
	GroupLevel Level
}

// Fitted is the immutable standardization view of an external fitted model.
type Fitted struct {
	Terms      []Term
	Response   []float64
	ResidualDF float64

	// Groups maps each row to a group index for multilevel models; nil
	// otherwise. GroupNames carries the label per group index.
	Groups     []int
	GroupNames []string

	// Multiplicative marks links whose coefficients act multiplicatively
	// after exponentiation (logistic, Poisson).
	Multiplicative bool

	// RSquared is set by fitters that compute it; HasRSquared guards use.
	RSquared    float64
	HasRSquared bool
}

// Validate checks structural invariants of the view.
func (f *Fitted) Validate() error {
	if len(f.Terms) == 0 {
		return core.NewValidationError("terms", "fitted model has no terms")
	}
	if len(f.Response) == 0 {
		return core.NewValidationError("response", "fitted model has no response vector")
	}
	n := len(f.Response)
	for _, t := range f.Terms {
		if t.Column != nil && len(t.Column) != n {
			return core.NewValidationError(t.Name,
				fmt.Sprintf("design column length %d does not match response length %d", len(t.Column), n))
		}
	}
	if f.Groups != nil && len(f.Groups) != n {
		return core.NewValidationError("groups",
			fmt.Sprintf("grouping length %d does not match response length %d", len(f.Groups), n))
	}
	return nil
}

// N returns the number of observations.
func (f *Fitted) N() int { return len(f.Response) }

// Term finds a term by name.
func (f *Fitted) Term(name string) (*Term, bool) {
	for i := range f.Terms {
		if f.Terms[i].Name == name {
			return &f.Terms[i], true
		}
	}
	return nil, false
}

// Fingerprint identifies the observations this model was fit on.
func (f *Fitted) Fingerprint() core.Hash {
	return core.ObservationFingerprint(f.Response)
}
