package ports

import (
	"context"

	"goeffect/domain/core"
	"goeffect/domain/report"
)

// ReportRepository persists standardization reports for cross-study
// comparison. Persistence sits outside the core; the engine itself holds no
// state beyond a single call.
type ReportRepository interface {
	Save(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, id core.ReportID) (*report.Report, error)
	ListRecent(ctx context.Context, limit int) ([]report.Report, error)
}
