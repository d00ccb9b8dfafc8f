package dataset

import (
	"fmt"

	"goeffect/domain/core"
)

// Kind classifies a column for standardization purposes
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindFactor   Kind = "factor"
	KindGrouping Kind = "grouping"
)

// Column is a single dataset column. Factor and grouping columns carry integer
// level codes in Values (0-based index into Levels); numeric columns carry raw
// measurements and leave Levels nil.
type Column struct {
	Name   string    `json:"name"`
	Kind   Kind      `json:"kind"`
	Values []float64 `json:"values"`
	Levels []string  `json:"levels,omitempty"`
}

// LevelCode returns the level code at row i for factor/grouping columns.
func (c *Column) LevelCode(i int) int {
	return int(c.Values[i])
}

// Table is an immutable in-memory dataset: ordered columns of equal length.
type Table struct {
	Columns []Column `json:"columns"`
}

// NewTable validates column lengths and returns a table.
func NewTable(columns []Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, core.NewValidationError("columns", "dataset must have at least one column")
	}
	n := len(columns[0].Values)
	for _, c := range columns {
		if len(c.Values) != n {
			return nil, core.NewValidationError(c.Name,
				fmt.Sprintf("column length %d does not match %d", len(c.Values), n))
		}
		if c.Kind == KindFactor || c.Kind == KindGrouping {
			if len(c.Levels) == 0 {
				return nil, core.NewValidationError(c.Name, "factor/grouping column needs levels")
			}
			for i, v := range c.Values {
				code := int(v)
				if float64(code) != v || code < 0 || code >= len(c.Levels) {
					return nil, core.NewValidationError(c.Name,
						fmt.Sprintf("row %d holds invalid level code %v", i, v))
				}
			}
		}
	}
	return &Table{Columns: columns}, nil
}

// Rows returns the number of observations.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column finds a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Interaction names a pairwise interaction between two predictors.
type Interaction struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ModelSpec describes the structure of a model to fit: which column is the
// response, which columns act as predictors, and any interactions or grouping.
// The fitting itself is a collaborator concern; the spec only names columns.
type ModelSpec struct {
	Response     string        `json:"response"`
	Predictors   []string      `json:"predictors"`
	Interactions []Interaction `json:"interactions,omitempty"`
	Grouping     string        `json:"grouping,omitempty"`
	Intercept    bool          `json:"intercept"`
}

// Validate checks the spec against a dataset.
func (s ModelSpec) Validate(t *Table) error {
	resp, ok := t.Column(s.Response)
	if !ok {
		return fmt.Errorf("%w: response %s", core.ErrColumnNotFound, s.Response)
	}
	if resp.Kind != KindNumeric {
		return core.NewValidationError(s.Response, "response must be numeric")
	}
	if len(s.Predictors) == 0 {
		return core.NewValidationError("predictors", "at least one predictor required")
	}
	for _, p := range s.Predictors {
		if _, ok := t.Column(p); !ok {
			return fmt.Errorf("%w: predictor %s", core.ErrColumnNotFound, p)
		}
	}
	for _, ia := range s.Interactions {
		if _, ok := t.Column(ia.A); !ok {
			return fmt.Errorf("%w: interaction term %s", core.ErrColumnNotFound, ia.A)
		}
		if _, ok := t.Column(ia.B); !ok {
			return fmt.Errorf("%w: interaction term %s", core.ErrColumnNotFound, ia.B)
		}
	}
	if s.Grouping != "" {
		g, ok := t.Column(s.Grouping)
		if !ok {
			return fmt.Errorf("%w: grouping %s", core.ErrColumnNotFound, s.Grouping)
		}
		if g.Kind != KindGrouping {
			return core.NewValidationError(s.Grouping, "grouping column must have grouping kind")
		}
	}
	return nil
}
