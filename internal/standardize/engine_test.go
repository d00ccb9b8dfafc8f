package standardize

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"goeffect/adapters/ols"
	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/model"
	"goeffect/domain/standard"
	"goeffect/internal/testkit"
	"goeffect/ports"
)

func newTestEngine() *Engine {
	return NewEngine(ols.NewFitter())
}

func fitModel(t *testing.T, data *dataset.Table, spec dataset.ModelSpec) *model.Fitted {
	t.Helper()
	fitted, err := ols.NewFitter().Fit(context.Background(), data, spec, 0)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return fitted
}

func mustRow(t *testing.T, table standard.Table, term string) standard.Row {
	t.Helper()
	row, ok := table.Row(term)
	if !ok {
		t.Fatalf("term %s missing from %s table", term, table.Method)
	}
	if row.Failed() {
		t.Fatalf("term %s failed: %v", term, row.Err)
	}
	return row
}

func TestRefit_SinglePredictorSlopeIsPearsonR(t *testing.T) {
	data := testkit.LinearDataset(200, 1.7, 4.0, 2.5, 11)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x"}, Intercept: true}

	table, err := newTestEngine().Standardize(context.Background(), Input{Data: data, Spec: spec},
		standard.Request{Method: standard.MethodRefit})
	if err != nil {
		t.Fatalf("refit: %v", err)
	}

	x, _ := data.Column("x")
	y, _ := data.Column("y")
	r := stat.Correlation(x.Values, y.Values, nil)

	slope := mustRow(t, table, "x").Estimate
	if math.Abs(slope-r) > 1e-8 {
		t.Errorf("standardized slope %.10f != Pearson r %.10f", slope, r)
	}
}

func TestNumericOnlyModel_MethodsAgree(t *testing.T) {
	data := testkit.MultiNumericDataset(150, 7)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x1", "x2", "x3"}, Intercept: true}
	fitted := fitModel(t, data, spec)
	eng := newTestEngine()
	ctx := context.Background()

	refit, err := eng.Standardize(ctx, Input{Data: data, Spec: spec}, standard.Request{Method: standard.MethodRefit})
	if err != nil {
		t.Fatalf("refit: %v", err)
	}
	posthoc, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	basic, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodBasic})
	if err != nil {
		t.Fatalf("basic: %v", err)
	}

	// Slopes must coincide on a purely numeric model; intercepts follow
	// method-specific conventions and are excluded.
	for _, term := range []string{"x1", "x2", "x3"} {
		re := mustRow(t, refit, term)
		ph := mustRow(t, posthoc, term)
		ba := mustRow(t, basic, term)
		if math.Abs(re.Estimate-ph.Estimate) > 1e-8 {
			t.Errorf("%s: refit %.10f vs posthoc %.10f", term, re.Estimate, ph.Estimate)
		}
		if math.Abs(ph.Estimate-ba.Estimate) > 1e-10 {
			t.Errorf("%s: posthoc %.10f vs basic %.10f", term, ph.Estimate, ba.Estimate)
		}
		if math.Abs(re.SE-ph.SE) > 1e-8 {
			t.Errorf("%s: refit SE %.10f vs posthoc SE %.10f", term, re.SE, ph.SE)
		}
	}
}

func TestFactorModel_BasicAndPosthocDiverge(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"am"}, Intercept: true}
	fitted := fitModel(t, data, spec)
	eng := newTestEngine()
	ctx := context.Background()

	posthoc, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	basic, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodBasic})
	if err != nil {
		t.Fatalf("basic: %v", err)
	}

	ph := mustRow(t, posthoc, "am.manual")
	ba := mustRow(t, basic, "am.manual")
	if math.Abs(ph.Estimate-ba.Estimate) < 1e-6 {
		t.Errorf("expected posthoc (%.6f) and basic (%.6f) to differ on a factor contrast",
			ph.Estimate, ba.Estimate)
	}
	// basic multiplies the posthoc value by the 0/1 column's own spread,
	// which is below 1 for any real indicator.
	if math.Abs(ba.Estimate) >= math.Abs(ph.Estimate) {
		t.Errorf("basic |%.6f| should shrink relative to posthoc |%.6f|", ba.Estimate, ph.Estimate)
	}
}

func TestMotorTrend_RefitCoefficientVersusCohensD(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"am"}, Intercept: true}

	table, err := newTestEngine().Standardize(context.Background(), Input{Data: data, Spec: spec},
		standard.Request{Method: standard.MethodRefit})
	if err != nil {
		t.Fatalf("refit: %v", err)
	}

	std := mustRow(t, table, "am.manual").Estimate
	if math.Abs(std-1.20) > 0.02 {
		t.Errorf("standardized transmission coefficient = %.4f, want ~1.20", std)
	}
	// The pooled-SD mean difference on the same data is ~1.48; the two
	// conventions answer different questions and must not coincide.
	if math.Abs(std-1.48) < 0.2 {
		t.Errorf("standardized coefficient %.4f unexpectedly matches the pooled-SD difference", std)
	}
}

func TestRefit_Idempotent(t *testing.T) {
	data := testkit.MultiNumericDataset(120, 3)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x1", "x2", "x3"}, Intercept: true}
	req := standard.Request{Method: standard.MethodRefit}
	eng := newTestEngine()
	ctx := context.Background()

	std1, err := StandardizeDataset(data, spec, req)
	if err != nil {
		t.Fatalf("standardize dataset: %v", err)
	}
	std2, err := StandardizeDataset(std1, spec, req)
	if err != nil {
		t.Fatalf("re-standardize dataset: %v", err)
	}
	for i, c := range std1.Columns {
		for j := range c.Values {
			if math.Abs(c.Values[j]-std2.Columns[i].Values[j]) > 1e-10 {
				t.Fatalf("column %s row %d changed on second pass: %.12f vs %.12f",
					c.Name, j, c.Values[j], std2.Columns[i].Values[j])
			}
		}
	}

	first, err := eng.Standardize(ctx, Input{Data: data, Spec: spec}, req)
	if err != nil {
		t.Fatalf("refit: %v", err)
	}
	second, err := eng.Standardize(ctx, Input{Data: std1, Spec: spec}, req)
	if err != nil {
		t.Fatalf("refit on standardized data: %v", err)
	}
	for _, term := range []string{"x1", "x2", "x3"} {
		a := mustRow(t, first, term).Estimate
		b := mustRow(t, second, term).Estimate
		if math.Abs(a-b) > 1e-8 {
			t.Errorf("%s: %.10f on raw data vs %.10f on standardized data", term, a, b)
		}
	}
}

func TestSmart_SingleFactorUsesReferenceDispersion(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"am"}, Intercept: true}
	fitted := fitModel(t, data, spec)

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodSmart})
	if err != nil {
		t.Fatalf("smart: %v", err)
	}
	row := mustRow(t, table, "am.manual")
	if row.Approximate {
		t.Error("single-factor model should not degrade to the global dispersion")
	}

	// Expected scale: slope divided by the response SD over reference rows.
	am, _ := fitted.Term("am.manual")
	rows, err := fitted.ReferenceRows("am")
	if err != nil {
		t.Fatalf("reference rows: %v", err)
	}
	ref := make([]float64, 0, len(rows))
	for _, i := range rows {
		ref = append(ref, fitted.Response[i])
	}
	want := am.Coefficient / sampleSD(ref)
	if math.Abs(row.Estimate-want) > 1e-8 {
		t.Errorf("smart estimate %.6f, want %.6f", row.Estimate, want)
	}

	// Posthoc divides by the global SD instead, so the two must differ here.
	posthoc, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	if math.Abs(mustRow(t, posthoc, "am.manual").Estimate-row.Estimate) < 1e-6 {
		t.Error("smart should diverge from posthoc when reference rows have their own spread")
	}
}

func TestSmart_MultipleFactorsDegradeWithWarning(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"am", "cyl"}, Intercept: true}
	fitted := fitModel(t, data, spec)

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodSmart})
	if err != nil {
		t.Fatalf("smart: %v", err)
	}

	for _, term := range []string{"am.manual", "cyl.6", "cyl.8"} {
		row := mustRow(t, table, term)
		if !row.Approximate {
			t.Errorf("%s: expected approximate flag under ambiguous reference", term)
		}
		if !hasWarning(row, standard.WarningAmbiguousReference) {
			t.Errorf("%s: missing ambiguous-reference warning", term)
		}
	}

	// With an ambiguous reference the factor terms must equal plain posthoc.
	posthoc, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	a := mustRow(t, table, "am.manual").Estimate
	b := mustRow(t, posthoc, "am.manual").Estimate
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("degraded smart %.10f should equal posthoc %.10f", a, b)
	}
}

func TestPosthoc_InteractionFlaggedApproximate(t *testing.T) {
	data := testkit.MultiNumericDataset(150, 5)
	spec := dataset.ModelSpec{
		Response:     "y",
		Predictors:   []string{"x1", "x2"},
		Interactions: []dataset.Interaction{{A: "x1", B: "x2"}},
		Intercept:    true,
	}
	fitted := fitModel(t, data, spec)

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	row := mustRow(t, table, "x1:x2")
	if !row.Approximate {
		t.Error("interaction term should be flagged approximate")
	}
	if !hasWarning(row, standard.WarningApproximateInteraction) {
		t.Error("interaction term missing its warning")
	}
	if mustRow(t, table, "x1").Approximate {
		t.Error("main effect should not inherit the interaction flag")
	}
}

func TestPseudo_SplitsByLevel(t *testing.T) {
	data := testkit.GroupedDataset(12, 10, 21)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x", "z"}, Grouping: "g", Intercept: true}
	fitted := fitModel(t, data, spec)

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPseudo})
	if err != nil {
		t.Fatalf("pseudo: %v", err)
	}

	xTerm, _ := fitted.Term("x")
	zTerm, _ := fitted.Term("z")

	// x varies within groups: both scales are within-group dispersions.
	yWithin := sampleSD(fitted.CenterWithinGroups(fitted.Response))
	xWithin := sampleSD(fitted.CenterWithinGroups(xTerm.Column))
	wantX := xTerm.Coefficient * xWithin / yWithin
	gotX := mustRow(t, table, "x").Estimate
	if math.Abs(gotX-wantX) > 1e-8 {
		t.Errorf("level-1 estimate %.6f, want %.6f", gotX, wantX)
	}

	// z is constant within groups: both scales come from group means.
	yBetween := sampleSD(fitted.GroupMeans(fitted.Response))
	zBetween := sampleSD(fitted.GroupMeans(zTerm.Column))
	wantZ := zTerm.Coefficient * zBetween / yBetween
	gotZ := mustRow(t, table, "z").Estimate
	if math.Abs(gotZ-wantZ) > 1e-8 {
		t.Errorf("level-2 estimate %.6f, want %.6f", gotZ, wantZ)
	}
}

func TestPseudo_RequiresGrouping(t *testing.T) {
	data := testkit.MultiNumericDataset(80, 2)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x1"}, Intercept: true}
	fitted := fitModel(t, data, spec)

	_, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPseudo})
	if !errors.Is(err, core.ErrMissingGrouping) {
		t.Fatalf("expected missing-grouping error, got %v", err)
	}
}

func TestTwoSD_DoublesPredictorScaleOnly(t *testing.T) {
	data := testkit.MultiNumericDataset(100, 9)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x1", "x3"}, Intercept: true}
	fitted := fitModel(t, data, spec)
	eng := newTestEngine()
	ctx := context.Background()

	plain, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	doubled, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc, TwoSD: true})
	if err != nil {
		t.Fatalf("posthoc two-sd: %v", err)
	}

	for _, term := range []string{"x1", "x3"} {
		a := mustRow(t, plain, term).Estimate
		b := mustRow(t, doubled, term).Estimate
		if math.Abs(b-2*a) > 1e-10 {
			t.Errorf("%s: two-sd estimate %.8f, want exactly double %.8f", term, b, a)
		}
	}
	// The intercept scales by the response only; the convention leaves it alone.
	ia := mustRow(t, plain, ols.InterceptTerm).Estimate
	ib := mustRow(t, doubled, ols.InterceptTerm).Estimate
	if math.Abs(ia-ib) > 1e-12 {
		t.Errorf("intercept moved under two-sd: %.8f vs %.8f", ia, ib)
	}
}

func TestExponentiate_TransformsEstimateAndCI(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"wt"}, Intercept: true}
	fitted := fitModel(t, data, spec)
	eng := newTestEngine()
	ctx := context.Background()

	raw, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	exp, err := eng.Standardize(ctx, Input{Model: fitted}, standard.Request{Method: standard.MethodPosthoc, Exponentiate: true})
	if err != nil {
		t.Fatalf("posthoc exponentiate: %v", err)
	}

	r := mustRow(t, raw, "wt")
	e := mustRow(t, exp, "wt")
	if math.Abs(e.Estimate-math.Exp(r.Estimate)) > 1e-10 {
		t.Errorf("estimate %.8f, want exp(%.8f)", e.Estimate, r.Estimate)
	}
	if math.Abs(e.CILow-math.Exp(r.CILow)) > 1e-10 || math.Abs(e.CIHigh-math.Exp(r.CIHigh)) > 1e-10 {
		t.Error("CI bounds were not exponentiated alongside the estimate")
	}
	if !hasWarning(e, standard.WarningExponentiated) {
		t.Error("exponentiated row missing its warning")
	}
}

func TestConfidenceInterval_StudentTQuantile(t *testing.T) {
	data := testkit.MotorTrend()
	spec := dataset.ModelSpec{Response: "mpg", Predictors: []string{"wt"}, Intercept: true}
	fitted := fitModel(t, data, spec)

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: fitted},
		standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc: %v", err)
	}
	row := mustRow(t, table, "wt")

	// 32 observations, 2 terms: df = 30, t(0.975, 30) = 2.0423.
	q := (row.CIHigh - row.CILow) / (2 * row.SE)
	if math.Abs(q-2.0423) > 1e-3 {
		t.Errorf("implied critical value %.4f, want 2.0423 at df=30", q)
	}
}

func TestDegenerateColumn_FailsTermNotTable(t *testing.T) {
	n := 40
	constant := make([]float64, n)
	good := make([]float64, n)
	resp := make([]float64, n)
	for i := 0; i < n; i++ {
		constant[i] = 3
		good[i] = float64(i)
		resp[i] = float64(i)*0.5 + float64(i%7)
	}
	m := &model.Fitted{
		Terms: []model.Term{
			{Name: "flat", Role: model.RoleNumeric, Coefficient: 1.1, SE: 0.4, Column: constant},
			{Name: "slope", Role: model.RoleNumeric, Coefficient: 0.5, SE: 0.1, Column: good},
		},
		Response:   resp,
		ResidualDF: float64(n - 2),
	}

	table, err := newTestEngine().Standardize(context.Background(), Input{Model: m},
		standard.Request{Method: standard.MethodPosthoc})
	if err != nil {
		t.Fatalf("posthoc should not fail the request: %v", err)
	}

	flat, _ := table.Row("flat")
	if !flat.Failed() || !core.IsDegenerateColumnError(flat.Err) {
		t.Errorf("expected degenerate-column failure on flat, got %v", flat.Err)
	}
	if mustRow(t, table, "slope").Failed() {
		t.Error("sibling term must survive a degenerate neighbor")
	}
	if got := table.FailedTerms(); len(got) != 1 || got[0] != "flat" {
		t.Errorf("failed terms = %v", got)
	}
}

func TestConstantResponse_FailsRequest(t *testing.T) {
	n := 20
	col := make([]float64, n)
	resp := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = float64(i)
		resp[i] = 7
	}
	m := &model.Fitted{
		Terms:      []model.Term{{Name: "x", Role: model.RoleNumeric, Coefficient: 0, SE: 0, Column: col}},
		Response:   resp,
		ResidualDF: float64(n - 1),
	}

	_, err := newTestEngine().Standardize(context.Background(), Input{Model: m},
		standard.Request{Method: standard.MethodPosthoc})
	if !core.IsDegenerateColumnError(err) {
		t.Fatalf("expected request-fatal degenerate response, got %v", err)
	}
}

func TestRefit_DegeneratePredictorFailsRequest(t *testing.T) {
	n := 30
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = 2
		y[i] = float64(i)
	}
	data, err := dataset.NewTable([]dataset.Column{
		{Name: "x", Kind: dataset.KindNumeric, Values: x},
		{Name: "y", Kind: dataset.KindNumeric, Values: y},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x"}, Intercept: true}

	_, err = newTestEngine().Standardize(context.Background(), Input{Data: data, Spec: spec},
		standard.Request{Method: standard.MethodRefit})
	if !core.IsDegenerateColumnError(err) {
		t.Fatalf("expected degenerate column error, got %v", err)
	}
}

func TestRefit_FitterErrorsAreWrappedAndFatal(t *testing.T) {
	boom := errors.New("optimizer diverged")
	calls := 0
	eng := NewEngine(ports.FitterFunc(func(ctx context.Context, data *dataset.Table, spec dataset.ModelSpec, seed int64) (*model.Fitted, error) {
		calls++
		return nil, boom
	}))

	data := testkit.LinearDataset(50, 1, 0, 1, 4)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x"}, Intercept: true}
	_, err := eng.Standardize(context.Background(), Input{Data: data, Spec: spec},
		standard.Request{Method: standard.MethodRefit})

	if !errors.Is(err, core.ErrRefit) {
		t.Fatalf("expected refit error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fitter called %d times; a failed refit is never retried", calls)
	}
}

func TestRefit_RequiresFitterAndData(t *testing.T) {
	data := testkit.LinearDataset(50, 1, 0, 1, 4)
	spec := dataset.ModelSpec{Response: "y", Predictors: []string{"x"}, Intercept: true}

	_, err := NewEngine(nil).Standardize(context.Background(), Input{Data: data, Spec: spec},
		standard.Request{Method: standard.MethodRefit})
	if !errors.Is(err, core.ErrFitterMissing) {
		t.Fatalf("expected fitter-missing error, got %v", err)
	}

	_, err = newTestEngine().Standardize(context.Background(), Input{Spec: spec},
		standard.Request{Method: standard.MethodRefit})
	if err == nil {
		t.Fatal("expected error when refit has no dataset")
	}
}

func TestNonRefit_RequiresModelWithDesignMatrix(t *testing.T) {
	_, err := newTestEngine().Standardize(context.Background(), Input{},
		standard.Request{Method: standard.MethodPosthoc})
	if err == nil {
		t.Fatal("expected error without a fitted model")
	}

	m := &model.Fitted{
		Terms:      []model.Term{{Name: "x", Role: model.RoleNumeric, Coefficient: 1, SE: 0.5}},
		Response:   []float64{1, 2, 3, 4},
		ResidualDF: 2,
	}
	_, err = newTestEngine().Standardize(context.Background(), Input{Model: m},
		standard.Request{Method: standard.MethodPosthoc})
	if !errors.Is(err, core.ErrMissingDesignMatrix) {
		t.Fatalf("expected missing-design-matrix error, got %v", err)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	_, err := newTestEngine().Standardize(context.Background(), Input{},
		standard.Request{Method: "mystery"})
	if !errors.Is(err, core.ErrUnknownMethod) {
		t.Fatalf("expected unknown-method error, got %v", err)
	}
}

func hasWarning(r standard.Row, w standard.Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// independent sample SD used to cross-check engine scales
func sampleSD(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
