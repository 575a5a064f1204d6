package store

import "linkharvest/internal/platform/config"

// Config aggregates per backend configuration
type Config struct {
	// AppName tags connections on both backends
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	RedactArgs  bool
	SlowQueryMs int
	// Bootstrap runs the DDL queued with WithBootstrap after connecting
	Bootstrap bool
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled  bool
	URL      string
	Database string
}

// FromConfig reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* under root
func FromConfig(root config.Conf, appName string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	out := Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			RedactArgs:  pgCfg.MayBool("REDACT_ARGS", true),
			Bootstrap:   pgCfg.MayBool("BOOTSTRAP", false),
		},
		CH: CHConfig{
			Enabled:  chCfg.MayBool("ENABLED", false),
			Database: chCfg.MayString("DATABASE", ""),
		},
	}
	if out.CH.Enabled {
		out.CH.URL = chCfg.MustString("DBURL")
	}
	return out
}
