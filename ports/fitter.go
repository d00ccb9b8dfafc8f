package ports

import (
	"context"

	"goeffect/domain/dataset"
	"goeffect/domain/model"
)

// Fitter is the external model-fitting collaborator. The standardization core
// never estimates coefficients itself; refit hands the transformed dataset
// back through this port. Implementations must be deterministic for identical
// inputs and seed.
type Fitter interface {
	Fit(ctx context.Context, data *dataset.Table, spec dataset.ModelSpec, seed int64) (*model.Fitted, error)
}

// FitterFunc adapts a function to the Fitter port.
type FitterFunc func(ctx context.Context, data *dataset.Table, spec dataset.ModelSpec, seed int64) (*model.Fitted, error)

func (f FitterFunc) Fit(ctx context.Context, data *dataset.Table, spec dataset.ModelSpec, seed int64) (*model.Fitted, error) {
	return f(ctx, data, spec, seed)
}
