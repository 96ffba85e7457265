package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/metrics"
	"github.com/dmitrijs2005/speaker/internal/store"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"golang.org/x/sync/semaphore"
)

// Mode selects how a transaction may touch its collections.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Scope names the collections a transaction reads or writes.
type Scope struct {
	Collections []string
	Mode        Mode
}

// Read is a read-only scope over collections.
func Read(collections ...string) Scope {
	return Scope{Collections: collections, Mode: ReadOnly}
}

// Write is a read-write scope over collections.
func Write(collections ...string) Scope {
	return Scope{Collections: collections, Mode: ReadWrite}
}

// Engine provides the pools transactions run on. *store.Store satisfies it.
type Engine interface {
	Reader() dbx.Beginner
	Writer() dbx.Beginner
}

// Coordinator runs transactions over named collections.
type Coordinator struct {
	engine  Engine
	locks   map[string]*semaphore.Weighted
	metrics *metrics.Metrics
	log     logging.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithMetrics records transaction outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// New returns a Coordinator over engine with one lock per catalog collection.
func New(engine Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine: engine,
		locks:  make(map[string]*semaphore.Weighted),
	}
	for _, col := range catalog.Collections() {
		c.locks[col.Name] = semaphore.NewWeighted(1)
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.New(nil)
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.With("component", "txn")
	return c
}

// Do runs body in scope. See Run.
func (c *Coordinator) Do(ctx context.Context, scope Scope, body func(ctx context.Context, tx dbx.DBTX) error) error {
	_, err := Run(ctx, c, scope, func(ctx context.Context, tx dbx.DBTX) (struct{}, error) {
		return struct{}{}, body(ctx, tx)
	})
	return err
}

// Run executes body in one transaction over scope and returns its result.
//
// Read-only scopes take no coordinator locks and read one snapshot of the
// database. Read-write scopes hold an exclusive lock on every named
// collection, taken in catalog order, for the whole call; their writes become
// visible only when body returns nil and the commit succeeds.
//
// If body fails, the store reports a constraint or lock error, ctx is
// cancelled, or the commit fails, nothing is written. Read-write failures are
// returned as a common.AbortError, which matches both
// common.ErrTransactionAborted and the underlying kind.
func Run[T any](ctx context.Context, c *Coordinator, scope Scope, body func(ctx context.Context, tx dbx.DBTX) (T, error)) (T, error) {
	var zero T

	names, err := normalize(scope.Collections)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	mode := scope.Mode.String()

	if scope.Mode == ReadOnly {
		res, err := dbx.WithTxResult(ctx, c.engine.Reader(), nil, func(ctx context.Context, tx dbx.DBTX) (T, error) {
			return body(ctx, readOnlyTx{tx})
		})
		if err != nil {
			c.metrics.ObserveTx(mode, metrics.OutcomeFailed, time.Since(start))
			return zero, store.Translate(err)
		}
		c.metrics.ObserveTx(mode, metrics.OutcomeCommitted, time.Since(start))
		return res, nil
	}

	release, err := c.acquire(ctx, names)
	if err != nil {
		c.metrics.ObserveTx(mode, metrics.OutcomeAborted, time.Since(start))
		return zero, common.Abort(err)
	}
	defer release()

	res, err := dbx.WithTxResult(ctx, c.engine.Writer(), nil, body)
	if err != nil {
		err = store.Translate(err)
		c.metrics.ObserveTx(mode, metrics.OutcomeAborted, time.Since(start))
		c.log.Debug(ctx, "transaction rolled back", "collections", names, "error", err)
		return zero, common.Abort(err)
	}
	c.metrics.ObserveTx(mode, metrics.OutcomeCommitted, time.Since(start))
	return res, nil
}

// acquire takes the locks for names, which must already be in catalog order.
func (c *Coordinator) acquire(ctx context.Context, names []string) (func(), error) {
	start := time.Now()
	held := make([]*semaphore.Weighted, 0, len(names))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}
	for _, n := range names {
		sem := c.locks[n]
		if err := sem.Acquire(ctx, 1); err != nil {
			release()
			return nil, fmt.Errorf("waiting for %s: %w", n, err)
		}
		held = append(held, sem)
	}
	c.metrics.LockWait.Observe(time.Since(start).Seconds())
	return release, nil
}

// normalize validates collection names, drops duplicates and sorts them into
// lock order.
func normalize(collections []string) ([]string, error) {
	if len(collections) == 0 {
		return nil, common.Invalid("transaction scope names no collections")
	}
	seen := make(map[string]struct{}, len(collections))
	out := make([]string, 0, len(collections))
	for _, name := range collections {
		if catalog.Order(name) < 0 {
			return nil, common.Invalid("unknown collection %q", name)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return catalog.Order(out[i]) < catalog.Order(out[j]) })
	return out, nil
}

// readOnlyTx turns Exec calls from a read-only body into InvalidArgument.
// Writes through the query methods are refused by the reader pool, whose
// connections run with query_only.
type readOnlyTx struct {
	dbx.DBTX
}

func (r readOnlyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, common.Invalid("write attempted in a read-only transaction")
}

// IsAborted reports whether err came from a rolled-back read-write
// transaction.
func IsAborted(err error) bool {
	return errors.Is(err, common.ErrTransactionAborted)
}
