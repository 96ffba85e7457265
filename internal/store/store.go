package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	defaultBusyTimeout = 5 * time.Second
	defaultMaxReaders  = 4
)

// Options configure Open.
type Options struct {
	// Path is the database file. It must be a file path: readers and the
	// writer use separate connection pools over the same file.
	Path string

	// BusyTimeout bounds how long a connection waits on a locked database.
	BusyTimeout time.Duration

	// MaxReaders caps the read pool.
	MaxReaders int

	Logger logging.Logger
}

// Store is an open, migrated database. Read-only transactions go through a
// pool of query_only connections; writes go through a single-connection
// pool whose transactions start with BEGIN IMMEDIATE, so a writer never has
// to upgrade a read snapshot. A third, unrestricted pool serves migrations
// and DB().
type Store struct {
	path   string
	reader *sql.DB
	writer *sql.DB
	direct *sql.DB
	log    logging.Logger
}

// gooseMu guards goose's package-level dialect and base FS.
var gooseMu sync.Mutex

// Open connects to the database at opts.Path, applies pending migrations and
// verifies the catalog. Unreachable media are reported as
// common.ErrStoreUnavailable.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, common.Invalid("store path is empty")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}
	if opts.MaxReaders <= 0 {
		opts.MaxReaders = defaultMaxReaders
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger.With("component", "store")

	writer, err := sql.Open(driverName, dsn(opts.Path, opts.BusyTimeout, true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", common.ErrStoreUnavailable, opts.Path, err)
	}

	direct, err := sql.Open(driverName, dsn(opts.Path, opts.BusyTimeout, false))
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	direct.SetMaxOpenConns(opts.MaxReaders)

	reader, err := sql.Open(driverName, dsn(opts.Path, opts.BusyTimeout, false, "query_only(1)"))
	if err != nil {
		_ = writer.Close()
		_ = direct.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	reader.SetMaxOpenConns(opts.MaxReaders)

	s := &Store{path: opts.Path, reader: reader, writer: writer, direct: direct, log: log}

	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	log.Info(ctx, "store opened", "path", opts.Path, "schema_version", catalog.Version)
	return s, nil
}

// dsn builds a modernc DSN. Pragmas passed this way apply to every pooled
// connection, which matters for foreign_keys. extra pragmas run last.
func dsn(path string, busy time.Duration, immediate bool, extra ...string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	for _, p := range extra {
		q.Add("_pragma", p)
	}
	if immediate {
		q.Set("_txlock", "immediate")
	}
	return path + "?" + q.Encode()
}

// migrate runs on the direct pool: goose mixes transactional and plain
// statements, which would deadlock the single-connection writer, and the
// read pool is query_only.
func (s *Store) migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: s.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	before, err := goose.GetDBVersionContext(ctx, s.direct)
	if err != nil {
		return fmt.Errorf("%w: read schema version: %v", common.ErrStoreUnavailable, err)
	}
	if before < catalog.Version {
		s.log.Info(ctx, "migrating schema", "from", before, "to", catalog.Version)
	}
	if err := goose.UpContext(ctx, s.direct, "."); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return catalog.Verify(ctx, s.direct)
}

// SchemaVersion reports the persisted schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, s.direct)
}

// Reader is the pool used for read-only transactions. Its connections run
// with query_only, so any write through them fails.
func (s *Store) Reader() dbx.Beginner { return s.reader }

// Writer is the pool used for read-write transactions.
func (s *Store) Writer() dbx.Beginner { return s.writer }

// DB exposes an unrestricted pool for ad-hoc statements outside the
// coordinator.
func (s *Store) DB() *sql.DB { return s.direct }

// Path is the database file.
func (s *Store) Path() string { return s.path }

// Close closes all pools.
func (s *Store) Close() error {
	return errors.Join(s.writer.Close(), s.reader.Close(), s.direct.Close())
}

type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}
