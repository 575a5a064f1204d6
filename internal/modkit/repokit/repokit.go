// Package repokit binds domain repositories to a store querier, pool or transaction
package repokit

import "linkharvest/internal/platform/store"

type (
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder builds a repo T over a querier. Services hold a Binder rather than a
// repo so the same queries run against the pool or inside a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor into a Binder; fakes use it to hand back a fixed repo
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q. A nil q is a wiring bug and panics
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
