package domain

import (
	"context"

	"linkharvest/internal/adapters/browser"
	"linkharvest/internal/core/country"
)

// StorageRepo is the deduplicating store gateway bound to a queryer
type StorageRepo interface {
	// CountByCountry returns how many links are stored for c
	CountByCountry(ctx context.Context, c country.Code) (int, error)

	// CountAll returns stored counts keyed by country
	CountAll(ctx context.Context) (map[country.Code]int, error)

	// InsertIfAbsent stores l unless its value already exists. inserted is false for a duplicate
	InsertIfAbsent(ctx context.Context, l Link) (inserted bool, err error)

	// AppendAnalytics appends one sample row
	AppendAnalytics(ctx context.Context, s Sample) error

	// DeleteLink removes a link by value. deleted is false when it was not stored
	DeleteLink(ctx context.Context, value string) (deleted bool, err error)

	// FirstLink returns the oldest stored link for c
	FirstLink(ctx context.Context, c country.Code) (Link, error)

	// Consume removes and returns the oldest stored link for c
	Consume(ctx context.Context, c country.Code) (Link, error)
}

// AnalyticsSink mirrors samples into a secondary analytics store
type AnalyticsSink interface {
	AppendSample(ctx context.Context, s Sample) error
}

// PagePool is the slice of browser.Pool the pipeline uses
type PagePool interface {
	Initialize(ctx context.Context) error
	Page(ctx context.Context, c country.Code) (browser.Page, error)
	CloseContext(c country.Code) error
}

// HarvesterPort runs one extraction for a country
type HarvesterPort interface {
	Harvest(ctx context.Context, c country.Code) (Result, error)
}

// LinksPort serves stored links to consumers
type LinksPort interface {
	First(ctx context.Context, c country.Code) (Link, error)
	Consume(ctx context.Context, c country.Code) (Link, error)
	Delete(ctx context.Context, value string) error
	Stats(ctx context.Context, allowed []country.Code) ([]Stat, error)
}
