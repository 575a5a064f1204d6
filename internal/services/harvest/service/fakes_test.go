package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"linkharvest/internal/adapters/browser"
	"linkharvest/internal/adapters/browser/browsertest"
	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit/repokit"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/store"
	"linkharvest/internal/services/harvest/domain"
	"linkharvest/internal/services/harvest/guardrails"

	"github.com/rs/zerolog"
)

// nopTx satisfies repokit.TxRunner; the in-memory repo ignores the queryer
type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (t nopTx) Tx(_ context.Context, fn func(repokit.Queryer) error) error  { return fn(t) }

// memRepo is an in-memory deduplicating store
type memRepo struct {
	mu        sync.Mutex
	links     map[string]domain.Link
	order     []string
	samples   []domain.Sample
	countErr  error
	sampleErr error
	insertErr error
	inserts   int
}

func newMemRepo() *memRepo { return &memRepo{links: map[string]domain.Link{}} }

func (m *memRepo) binder() repokit.Binder[domain.StorageRepo] {
	return repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return m })
}

// seed stores n links for c
func (m *memRepo) seed(c country.Code, n int) {
	for i := 0; i < n; i++ {
		_, _ = m.InsertIfAbsent(context.Background(), domain.Link{Value: fmt.Sprintf("seed-%s-%d", c, i), Country: c})
	}
}

func (m *memRepo) CountByCountry(_ context.Context, c country.Code) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, l := range m.links {
		if l.Country == c {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CountAll(context.Context) (map[country.Code]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return nil, m.countErr
	}
	out := map[country.Code]int{}
	for _, l := range m.links {
		out[l.Country]++
	}
	return out, nil
}

func (m *memRepo) InsertIfAbsent(_ context.Context, l domain.Link) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return false, m.insertErr
	}
	if _, ok := m.links[l.Value]; ok {
		return false, nil
	}
	m.links[l.Value] = l
	m.order = append(m.order, l.Value)
	return true, nil
}

func (m *memRepo) AppendAnalytics(_ context.Context, s domain.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sampleErr != nil {
		return m.sampleErr
	}
	m.samples = append(m.samples, s)
	return nil
}

func (m *memRepo) DeleteLink(_ context.Context, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[value]; !ok {
		return false, nil
	}
	delete(m.links, value)
	for i, v := range m.order {
		if v == value {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memRepo) FirstLink(_ context.Context, c country.Code) (domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.order {
		if l := m.links[v]; l.Country == c {
			return l, nil
		}
	}
	return domain.Link{}, perr.NotFoundf("no links for %s", c)
}

func (m *memRepo) Consume(ctx context.Context, c country.Code) (domain.Link, error) {
	l, err := m.FirstLink(ctx, c)
	if err != nil {
		return l, err
	}
	_, _ = m.DeleteLink(ctx, l.Value)
	return l, nil
}

// portal scripts the fake browser like the partner portal: a market select,
// a copy button and a link input that fills after each click
type portal struct {
	mu       sync.Mutex
	selected string
	clicks   int
	failCopy map[int]bool // 1-based click numbers that fail
	links    []string     // handed out in order; exhausted means empty input
	revealed string
}

func (p *portal) script() browsertest.Script {
	sel := DefaultSelectors
	return browsertest.Script{
		Value: func(ctx context.Context, s string) (string, error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			switch s {
			case sel.Country:
				return p.selected, nil
			case sel.Link:
				return p.revealed, nil
			}
			return "", ctx.Err()
		},
		Select: func(_ context.Context, s, v string) error {
			p.mu.Lock()
			p.selected = v
			p.mu.Unlock()
			return nil
		},
		Click: func(_ context.Context, s string) error {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.clicks++
			if p.failCopy[p.clicks] {
				return errors.New("copy button detached")
			}
			p.revealed = ""
			if len(p.links) > 0 {
				p.revealed, p.links = p.links[0], p.links[1:]
			}
			return nil
		},
	}
}

func testConfig(target int) Config {
	return Config{
		Target:   target,
		Timeouts: guardrails.Timeouts{Page: time.Second, Selector: 50 * time.Millisecond},
		Portal: Portal{
			LoginURL:  "https://portal.test/login",
			TargetURL: "https://portal.test/new-partner",
			Username:  "user",
			Password:  "pass",
		},
	}
}

type harness struct {
	svc    *Svc
	repo   *memRepo
	driver *browsertest.Driver
	pool   *browser.Pool
}

func newHarness(t *testing.T, target int, script browsertest.Script) *harness {
	t.Helper()
	repo := newMemRepo()
	d := &browsertest.Driver{Script: script}
	pool := browser.NewPool(d, zerolog.Nop())
	t.Cleanup(func() { _ = pool.Shutdown() })
	return &harness{
		svc:    New(nopTx{}, repo.binder(), pool, nil, testConfig(target)),
		repo:   repo,
		driver: d,
		pool:   pool,
	}
}
