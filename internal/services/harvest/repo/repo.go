// Package repo provides postgres access for harvested links and analytics samples
package repo

import (
	"context"
	"strings"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit/repokit"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/store"
	"linkharvest/internal/services/harvest/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const linkCols = `link, country::text, coalesce(created_at, now())`

func scanLink(r store.Row) (domain.Link, error) {
	var (
		l domain.Link
		c string
	)
	if err := r.Scan(&l.Value, &c, &l.CreatedAt); err != nil {
		return domain.Link{}, err
	}
	l.Country = country.Code(c)
	return l, nil
}

func (r *queries) CountByCountry(ctx context.Context, c country.Code) (int, error) {
	n, err := store.Scalar[int64](ctx, r.q, `SELECT count(*) FROM links WHERE country = $1`, string(c))
	if err != nil {
		return 0, perr.FromPostgres(err, "count links")
	}
	return int(n), nil
}

func (r *queries) CountAll(ctx context.Context) (map[country.Code]int, error) {
	type row struct {
		c string
		n int64
	}
	rows, err := store.Many(ctx, r.q, func(sr store.Row) (row, error) {
		var x row
		err := sr.Scan(&x.c, &x.n)
		return x, err
	}, `SELECT country::text, count(*) FROM links GROUP BY country`)
	if err != nil {
		return nil, perr.FromPostgres(err, "count links by country")
	}
	out := make(map[country.Code]int, len(rows))
	for _, x := range rows {
		out[country.Code(x.c)] = int(x.n)
	}
	return out, nil
}

// InsertIfAbsent relies on the unique index on links.link; a conflict affects zero rows
func (r *queries) InsertIfAbsent(ctx context.Context, l domain.Link) (bool, error) {
	value := strings.TrimSpace(l.Value)
	if value == "" {
		return false, perr.InvalidArgf("empty link")
	}
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO links (link, country, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (link) DO NOTHING
	`, value, string(l.Country), created)
	if err != nil {
		return false, perr.FromPostgres(err, "insert link")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *queries) AppendAnalytics(ctx context.Context, s domain.Sample) error {
	at := s.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO analytics (timestamp, number_of_available_links, country)
		VALUES ($1, $2, $3)
	`, at, s.Available, string(s.Country))
	return perr.FromPostgres(err, "append analytics")
}

func (r *queries) DeleteLink(ctx context.Context, value string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM links WHERE link = $1`, value)
	if err != nil {
		return false, perr.FromPostgres(err, "delete link")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) FirstLink(ctx context.Context, c country.Code) (domain.Link, error) {
	l, err := store.One(ctx, r.q, scanLink, `
		SELECT `+linkCols+`
		FROM links
		WHERE country = $1
		ORDER BY created_at ASC NULLS LAST, link
		LIMIT 1
	`, string(c))
	if err != nil {
		return domain.Link{}, notFoundOr(err, c, "first link")
	}
	return l, nil
}

// Consume skips rows locked by a concurrent consumer so two callers never receive the same link
func (r *queries) Consume(ctx context.Context, c country.Code) (domain.Link, error) {
	l, err := store.One(ctx, r.q, scanLink, `
		DELETE FROM links
		WHERE link = (
			SELECT link FROM links
			WHERE country = $1
			ORDER BY created_at ASC NULLS LAST, link
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+linkCols, string(c))
	if err != nil {
		return domain.Link{}, notFoundOr(err, c, "consume link")
	}
	return l, nil
}

func notFoundOr(err error, c country.Code, op string) error {
	err = store.NotFound(err, "no links for %s", c)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	return perr.FromPostgres(err, op)
}
