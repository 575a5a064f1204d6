// Package modkit provides module wiring and core deps
package modkit

import (
	"linkharvest/internal/modkit/repokit"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore copies the backends of an opened store into deps
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
