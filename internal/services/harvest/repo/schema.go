package repo

// Schema is the idempotent DDL for the link store, suitable for store.WithBootstrap.
// country is an enum over every known partition; the allowed subset is enforced by the API
var Schema = []string{
	`DO $$ BEGIN
		CREATE TYPE country AS ENUM ('PL','HU','CZ','SK','DE','AT','NL');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS links (
		created_at timestamp DEFAULT now(),
		link varchar NOT NULL UNIQUE,
		country country NOT NULL DEFAULT 'PL'
	)`,
	`CREATE INDEX IF NOT EXISTS links_country_created_idx ON links (country, created_at)`,
	`CREATE TABLE IF NOT EXISTS analytics (
		timestamp timestamp NOT NULL DEFAULT now(),
		number_of_available_links numeric NOT NULL,
		country country NOT NULL DEFAULT 'PL'
	)`,
}
