package ports

import (
	"context"

	"goeffect/domain/dataset"
)

// DatasetReader loads a dataset from an external source (file, spreadsheet,
// database). Dataset I/O is a collaborator concern, not part of the core.
type DatasetReader interface {
	Read(ctx context.Context) (*dataset.Table, error)
}
