package report

import (
	"time"

	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/effect"
	"goeffect/domain/standard"
)

// Report is one persisted standardization result: the request that produced
// it, the coefficient table, and any secondary effect-size conversions. The
// core never persists anything; reports exist so analysts can compare
// standardized magnitudes across models and studies.
type Report struct {
	ID          core.ReportID     `json:"id"`
	Dataset     string            `json:"dataset,omitempty"`
	Spec        dataset.ModelSpec `json:"spec"`
	Request     standard.Request  `json:"request"`
	Table       standard.Table    `json:"table"`
	EffectSizes []effect.Value    `json:"effect_sizes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// New creates a report with a fresh time-ordered ID.
func New(datasetName string, spec dataset.ModelSpec, req standard.Request, table standard.Table) *Report {
	return &Report{
		ID:        core.ReportID(core.NewID()),
		Dataset:   datasetName,
		Spec:      spec,
		Request:   req,
		Table:     table,
		CreatedAt: time.Now().UTC(),
	}
}
