package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakePG struct {
	RowQuerier
	pingErr error
	closed  bool
}

func (f *fakePG) Tx(ctx context.Context, fn func(RowQuerier) error) error { return fn(f) }
func (f *fakePG) Ping(context.Context) error                              { return f.pingErr }
func (f *fakePG) Close() error                                            { f.closed = true; return nil }

type fakeCH struct {
	pingErr  error
	closeErr error
	inserted map[string][][]any
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	if f.inserted == nil {
		f.inserted = map[string][][]any{}
	}
	f.inserted[table] = append(f.inserted[table], rows...)
	return nil
}
func (f *fakeCH) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (f *fakeCH) Ping(context.Context) error                        { return f.pingErr }
func (f *fakeCH) Close() error                                      { return f.closeErr }

func TestGuard_JoinsBackendFailures(t *testing.T) {
	s := &Store{PG: &fakePG{pingErr: errors.New("refused")}, CH: &fakeCH{pingErr: errors.New("timeout")}}
	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: refused") || !strings.Contains(err.Error(), "ch: timeout") {
		t.Fatalf("unexpected guard error %v", err)
	}

	healthy := &Store{PG: &fakePG{}, CH: &fakeCH{}}
	if err := healthy.Guard(context.Background()); err != nil {
		t.Fatalf("healthy guard: %v", err)
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatalf("nil store should fail guard")
	}
	if (&Store{}).Guard(context.Background()) != nil {
		t.Fatalf("store without backends has nothing to ping")
	}
}

func TestClose_ClosesBoth(t *testing.T) {
	pg := &fakePG{}
	s := &Store{PG: pg, CH: &fakeCH{closeErr: errors.New("ch close")}}
	err := s.Close(context.Background())
	if !pg.closed {
		t.Fatalf("pg not closed")
	}
	if err == nil || !strings.Contains(err.Error(), "ch close") {
		t.Fatalf("ch close error lost: %v", err)
	}
}

func TestOpen_NoBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{}, WithLogger(nopLogger()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("disabled backends must stay nil")
	}
}

func TestOpen_OptionError(t *testing.T) {
	boom := func(*Store) error { return errors.New("bad option") }
	if _, err := Open(context.Background(), Config{}, boom); err == nil {
		t.Fatalf("option error not surfaced")
	}
}

type execPG struct {
	fakePG
	failAt int
	execs  []string
	txs    int
}

func (f *execPG) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	if len(f.execs) == f.failAt {
		return nil, errors.New("syntax error")
	}
	return nil, nil
}

func (f *execPG) Tx(ctx context.Context, fn func(RowQuerier) error) error {
	f.txs++
	return fn(f)
}

func TestRunBootstrap_OneTransactionInOrder(t *testing.T) {
	pg := &execPG{}
	s := &Store{Log: nopLogger(), PG: pg, bootstrap: []string{"one", "two"}}
	if err := s.runBootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if pg.txs != 1 || strings.Join(pg.execs, ",") != "one,two" {
		t.Fatalf("txs=%d execs=%v", pg.txs, pg.execs)
	}

	pg = &execPG{failAt: 2}
	s = &Store{Log: nopLogger(), PG: pg, bootstrap: []string{"one", "two", "three"}}
	err := s.runBootstrap(context.Background())
	if err == nil || !strings.Contains(err.Error(), "statement 2: syntax error") {
		t.Fatalf("err = %v", err)
	}
	if len(pg.execs) != 2 {
		t.Fatalf("must stop at the failing statement, ran %v", pg.execs)
	}

	empty := &execPG{}
	if err := (&Store{PG: empty}).runBootstrap(context.Background()); err != nil || empty.txs != 0 {
		t.Fatalf("nothing queued must not open a tx: %v %d", err, empty.txs)
	}
}
