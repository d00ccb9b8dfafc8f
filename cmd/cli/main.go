// Command cli standardizes a fitted model from a spreadsheet in one shot:
// read a dataset, fit via OLS, standardize with the chosen method, print the
// coefficient table as markdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"goeffect/adapters/excel"
	"goeffect/adapters/ols"
	"goeffect/app"
	"goeffect/domain/dataset"
	"goeffect/domain/standard"
	"goeffect/internal"
	"goeffect/internal/render"
	"goeffect/ports"
)

func main() {
	_ = godotenv.Load()

	var (
		file         = flag.String("file", "", "path to .xlsx or .csv dataset (required)")
		response     = flag.String("response", "", "response column (required)")
		predictors   = flag.String("predictors", "", "comma-separated predictor columns (required)")
		interactions = flag.String("interactions", "", "comma-separated a:b interaction pairs")
		grouping     = flag.String("grouping", "", "grouping column for mixed-model pseudo standardization")
		method       = flag.String("method", "refit", "standardization method: refit|posthoc|smart|basic|pseudo")
		robust       = flag.Bool("robust", false, "use median/MAD dispersion")
		twoSD        = flag.Bool("two-sd", false, "double predictor dispersions")
		exponentiate = flag.Bool("exp", false, "exponentiate estimates and CI bounds")
		ciLevel      = flag.Float64("ci", 0.95, "confidence level")
		seed         = flag.Int64("seed", 1, "seed handed to the fitting collaborator")
	)
	flag.Parse()

	if *file == "" || *response == "" || *predictors == "" {
		flag.Usage()
		os.Exit(2)
	}

	spec := dataset.ModelSpec{
		Response:   *response,
		Predictors: splitList(*predictors),
		Grouping:   *grouping,
		Intercept:  true,
	}
	for _, pair := range splitList(*interactions) {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			log.Fatalf("invalid interaction %q: expected a:b", pair)
		}
		spec.Interactions = append(spec.Interactions, dataset.Interaction{A: parts[0], B: parts[1]})
	}

	ctx := context.Background()
	var readerOpts []string
	if *grouping != "" {
		readerOpts = append(readerOpts, *grouping)
	}
	var reader ports.DatasetReader = excel.NewDataReader(*file, readerOpts...)
	data, err := reader.Read(ctx)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}

	service := app.NewStandardizeService(ols.NewFitter(), nil, internal.NewDefaultLogger())
	rep, err := service.Standardize(ctx, app.StandardizeInput{
		DatasetName: *file,
		Data:        data,
		Spec:        spec,
		Request: standard.Request{
			Method:       standard.Method(*method),
			Robust:       *robust,
			TwoSD:        *twoSD,
			Exponentiate: *exponentiate,
			CILevel:      *ciLevel,
			Seed:         *seed,
		},
	})
	if err != nil {
		log.Fatalf("standardize: %v", err)
	}

	fmt.Print(render.Markdown(rep))
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
