//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/store"
	"linkharvest/internal/services/harvest/domain"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	return dsn, func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
}

func openStore(t *testing.T) (*store.Store, context.Context) {
	t.Helper()
	dsn, stop := startPostgres(t)
	t.Cleanup(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	st, err := store.Open(ctx, store.Config{
		AppName: "linkharvest-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 8, RedactArgs: true, Bootstrap: true},
	}, store.WithLogger(zerolog.New(io.Discard)), store.WithBootstrap(Schema...))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	// bootstrap is idempotent
	if err := st.PG.Tx(ctx, func(q store.RowQuerier) error {
		for _, stmt := range Schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("schema rerun: %v", err)
	}
	return st, ctx
}

func TestRepo_Integration_DedupAcrossCountries(t *testing.T) {
	st, ctx := openStore(t)
	r := NewPG().Bind(st.PG)

	ok, err := r.InsertIfAbsent(ctx, domain.Link{Value: "https://x.test/a", Country: country.PL})
	if err != nil || !ok {
		t.Fatalf("first insert ok=%v err=%v", ok, err)
	}
	// same value under another country is still a duplicate
	ok, err = r.InsertIfAbsent(ctx, domain.Link{Value: "https://x.test/a", Country: country.DE})
	if err != nil || ok {
		t.Fatalf("duplicate insert ok=%v err=%v", ok, err)
	}

	n, err := r.CountByCountry(ctx, country.PL)
	if err != nil || n != 1 {
		t.Fatalf("PL count=%d err=%v", n, err)
	}
	n, err = r.CountByCountry(ctx, country.DE)
	if err != nil || n != 0 {
		t.Fatalf("DE count=%d err=%v", n, err)
	}
}

func TestRepo_Integration_ConcurrentInsertsStoreOnce(t *testing.T) {
	st, ctx := openStore(t)
	r := NewPG().Bind(st.PG)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.InsertIfAbsent(ctx, domain.Link{Value: "https://x.test/race", Country: country.AT})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}
}

func TestRepo_Integration_FirstConsumeDelete(t *testing.T) {
	st, ctx := openStore(t)
	r := NewPG().Bind(st.PG)

	base := time.Now().UTC().Add(-time.Hour)
	for i, v := range []string{"old", "mid", "new"} {
		l := domain.Link{Value: "https://x.test/" + v, Country: country.NL, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := r.InsertIfAbsent(ctx, l); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	first, err := r.FirstLink(ctx, country.NL)
	if err != nil || first.Value != "https://x.test/old" || first.Country != country.NL {
		t.Fatalf("first = %+v err=%v", first, err)
	}

	got, err := r.Consume(ctx, country.NL)
	if err != nil || got.Value != "https://x.test/old" {
		t.Fatalf("consume = %+v err=%v", got, err)
	}
	if n, _ := r.CountByCountry(ctx, country.NL); n != 2 {
		t.Fatalf("count after consume = %d", n)
	}

	deleted, err := r.DeleteLink(ctx, "https://x.test/mid")
	if err != nil || !deleted {
		t.Fatalf("delete deleted=%v err=%v", deleted, err)
	}
	deleted, err = r.DeleteLink(ctx, "https://x.test/mid")
	if err != nil || deleted {
		t.Fatalf("second delete deleted=%v err=%v", deleted, err)
	}

	if _, err := r.FirstLink(ctx, country.HU); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty country err = %v", err)
	}
	if _, err := r.Consume(ctx, country.HU); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty consume err = %v", err)
	}
}

func TestRepo_Integration_AnalyticsAndCounts(t *testing.T) {
	st, ctx := openStore(t)
	r := NewPG().Bind(st.PG)

	if err := r.AppendAnalytics(ctx, domain.Sample{Available: 3, Country: country.PL}); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, err := store.Scalar[int64](ctx, st.PG, `SELECT count(*) FROM analytics WHERE country = 'PL'`)
	if err != nil || rows != 1 {
		t.Fatalf("analytics rows=%d err=%v", rows, err)
	}

	_, _ = r.InsertIfAbsent(ctx, domain.Link{Value: "a", Country: country.PL})
	_, _ = r.InsertIfAbsent(ctx, domain.Link{Value: "b", Country: country.PL})
	_, _ = r.InsertIfAbsent(ctx, domain.Link{Value: "c", Country: country.DE})

	counts, err := r.CountAll(ctx)
	if err != nil || counts[country.PL] != 2 || counts[country.DE] != 1 {
		t.Fatalf("counts = %v err=%v", counts, err)
	}
}
