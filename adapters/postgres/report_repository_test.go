package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/report"
	"goeffect/domain/standard"
)

// Integration test; runs only when TEST_DATABASE_URL points at a database.
func testRepo(t *testing.T) *ReportRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewReportRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func sampleReport() *report.Report {
	return report.New("motortrend",
		dataset.ModelSpec{Response: "mpg", Predictors: []string{"wt"}, Intercept: true},
		standard.Request{Method: standard.MethodRefit},
		standard.Table{
			Method:  standard.MethodRefit,
			CILevel: 0.95,
			Rows:    []standard.Row{{Term: "wt", Estimate: -0.8676, SE: 0.0905}},
		})
}

func TestSaveGetRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rep := sampleReport()
	require.NoError(t, repo.Save(ctx, rep))

	got, err := repo.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.Table.Rows[0].Estimate, got.Table.Rows[0].Estimate)
}

func TestGet_NotFound(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.Get(context.Background(), core.ReportID("no-such-report"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListRecentAndPurge(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := sampleReport()
	require.NoError(t, repo.Save(ctx, first))
	second := sampleReport()
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, second))

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)

	purged, err := repo.Purge(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(2))
}
