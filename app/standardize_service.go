package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/effect"
	"goeffect/domain/model"
	"goeffect/domain/report"
	"goeffect/domain/standard"
	"goeffect/internal"
	"goeffect/internal/effectsize"
	"goeffect/internal/standardize"
	"goeffect/ports"
)

// StandardizeService is the application layer gluing the fitting collaborator
// to the standardization engine and the report repository. It owns no
// statistical logic of its own.
type StandardizeService struct {
	engine *standardize.Engine
	fitter ports.Fitter
	repo   ports.ReportRepository
	log    *internal.Logger
}

// NewStandardizeService wires the service. repo may be nil, in which case
// reports are returned but not persisted.
func NewStandardizeService(fitter ports.Fitter, repo ports.ReportRepository, log *internal.Logger) *StandardizeService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &StandardizeService{
		engine: standardize.NewEngine(fitter),
		fitter: fitter,
		repo:   repo,
		log:    log,
	}
}

// StandardizeInput is one standardization job over a raw dataset.
type StandardizeInput struct {
	DatasetName string
	Data        *dataset.Table
	Spec        dataset.ModelSpec
	Request     standard.Request
}

// Standardize fits the model, applies the requested method, and returns (and
// optionally persists) the report.
func (s *StandardizeService) Standardize(ctx context.Context, in StandardizeInput) (*report.Report, error) {
	table, _, err := s.run(ctx, in, in.Request)
	if err != nil {
		return nil, err
	}

	r := report.New(in.DatasetName, in.Spec, in.Request, table)
	if s.repo != nil {
		if err := s.repo.Save(ctx, r); err != nil {
			return nil, fmt.Errorf("persist report %s: %w", r.ID, err)
		}
	}
	s.log.Info("standardized %s via %s: %d terms, %d failed",
		in.DatasetName, in.Request.Method, len(table.Rows), len(table.FailedTerms()))
	return r, nil
}

// Compare runs several methods over the same model for side-by-side
// validation. The scale-based methods are embarrassingly parallel and run
// concurrently; refit runs alone first because the fitting collaborator is
// not guaranteed reentrant-safe.
func (s *StandardizeService) Compare(ctx context.Context, in StandardizeInput, methods []standard.Method) (map[standard.Method]standard.Table, error) {
	out := make(map[standard.Method]standard.Table, len(methods))
	var mu sync.Mutex

	var scaleMethods []standard.Method
	for _, m := range methods {
		if m == standard.MethodRefit {
			req := in.Request
			req.Method = m
			table, _, err := s.run(ctx, in, req)
			if err != nil {
				return nil, fmt.Errorf("method %s: %w", m, err)
			}
			out[m] = table
			continue
		}
		scaleMethods = append(scaleMethods, m)
	}

	// One shared fit feeds every scale method.
	var fitted *model.Fitted
	if len(scaleMethods) > 0 {
		var err error
		fitted, err = s.fit(ctx, in)
		if err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range scaleMethods {
		req := in.Request
		req.Method = m
		g.Go(func() error {
			table, err := s.engine.Standardize(gctx, standardize.Input{Model: fitted}, req)
			if err != nil {
				return fmt.Errorf("method %s: %w", req.Method, err)
			}
			mu.Lock()
			out[req.Method] = table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GroupDifference computes Cohen's d and Glass's delta for a numeric column
// split by a two-level factor. The first level is the control/reference group.
func (s *StandardizeService) GroupDifference(ctx context.Context, data *dataset.Table, valueCol, factorCol string) ([]effect.Value, error) {
	f, ok := data.Column(factorCol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrColumnNotFound, factorCol)
	}
	if len(f.Levels) != 2 {
		return nil, core.NewValidationError(factorCol, "group difference needs exactly 2 levels")
	}
	v, ok := data.Column(valueCol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrColumnNotFound, valueCol)
	}

	var control, treatment []float64
	for i := range v.Values {
		if f.LevelCode(i) == 0 {
			control = append(control, v.Values[i])
		} else {
			treatment = append(treatment, v.Values[i])
		}
	}

	d, err := effectsize.CohensD(treatment, control)
	if err != nil {
		return nil, err
	}
	delta, err := effectsize.GlassDelta(treatment, control)
	if err != nil {
		return nil, err
	}
	return []effect.Value{d, delta}, nil
}

// NestedF2 fits a reduced and a full model on the same dataset and converts
// the R-squared gain to Cohen's f-squared.
func (s *StandardizeService) NestedF2(ctx context.Context, data *dataset.Table, reduced, full dataset.ModelSpec, seed int64) (effect.Value, error) {
	mr, err := s.fitter.Fit(ctx, data, reduced, seed)
	if err != nil {
		return effect.Value{}, fmt.Errorf("fit reduced model: %w", err)
	}
	mf, err := s.fitter.Fit(ctx, data, full, seed)
	if err != nil {
		return effect.Value{}, fmt.Errorf("fit full model: %w", err)
	}
	return effectsize.CohensF2(mr, mf)
}

// GetReport loads a persisted report.
func (s *StandardizeService) GetReport(ctx context.Context, id core.ReportID) (*report.Report, error) {
	if s.repo == nil {
		return nil, core.ErrReportNotFound
	}
	return s.repo.Get(ctx, id)
}

// ListReports loads the most recent persisted reports.
func (s *StandardizeService) ListReports(ctx context.Context, limit int) ([]report.Report, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// run validates and executes one request, fitting the model first for
// methods that standardize an already-fitted model.
func (s *StandardizeService) run(ctx context.Context, in StandardizeInput, req standard.Request) (standard.Table, *model.Fitted, error) {
	if err := req.Validate(); err != nil {
		return standard.Table{}, nil, err
	}
	if in.Data == nil {
		return standard.Table{}, nil, core.NewValidationError("data", "dataset required")
	}
	if err := in.Spec.Validate(in.Data); err != nil {
		return standard.Table{}, nil, err
	}

	engineIn := standardize.Input{Data: in.Data, Spec: in.Spec}
	var fitted *model.Fitted
	if req.Method != standard.MethodRefit {
		var err error
		fitted, err = s.fit(ctx, in)
		if err != nil {
			return standard.Table{}, nil, err
		}
		engineIn.Model = fitted
	}

	table, err := s.engine.Standardize(ctx, engineIn, req)
	if err != nil {
		return standard.Table{}, nil, err
	}
	return table, fitted, nil
}

func (s *StandardizeService) fit(ctx context.Context, in StandardizeInput) (*model.Fitted, error) {
	if s.fitter == nil {
		return nil, core.ErrFitterMissing
	}
	fitted, err := s.fitter.Fit(ctx, in.Data, in.Spec, in.Request.Seed)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	return fitted, nil
}
