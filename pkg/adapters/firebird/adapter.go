// Package firebird provides the Firebird database adapter: connection
// configuration, error classification, the connection manager and the
// query executor.
package firebird

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/fbdialect/pkg/adapter"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// Adapter implements the adapter.Adapter interface for Firebird.
type Adapter struct {
	// ConnectAttempts bounds retries of transient connect failures.
	ConnectAttempts int

	logger  *slog.Logger
	manager *Manager
	options Options

	types *fbtypes.Marshaller
	gen   *fbdialect.QueryGenerator
	conn  *Connection
	exec  *Executor
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a new Firebird adapter using the database/sql transport.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return NewWithTransport(nil, logger)
}

// NewWithTransport creates an adapter over a custom transport.
func NewWithTransport(transport Transport, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	types := fbtypes.New(fbtypes.Options{Charset: DefaultCharset}, fbdialect.Firebird)
	return &Adapter{
		ConnectAttempts: 1,
		logger:          logger,
		manager:         NewManager(transport, logger),
		types:           types,
		gen:             fbdialect.NewQueryGenerator(fbdialect.Firebird, types),
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return fbdialect.Name
}

// Dialect returns the Firebird dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return fbdialect.Firebird
}

// Generator returns the SQL generator bound to the adapter's marshaller.
// It works without a connection.
func (a *Adapter) Generator() *fbdialect.QueryGenerator {
	return a.gen
}

// Marshaller returns the type marshaller.
func (a *Adapter) Marshaller() *fbtypes.Marshaller {
	return a.types
}

// Connect establishes a session from the host's generic config.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	conf, err := FromAdapterConfig(cfg)
	if err != nil {
		return err
	}
	opts, err := dialectOptions(cfg)
	if err != nil {
		return sqlerr.New(sqlerr.KindInvalidConnection, err)
	}
	return a.ConnectWith(ctx, conf, opts)
}

// ConnectWith establishes a session from a Firebird config and the
// dialect-level options.
func (a *Adapter) ConnectWith(ctx context.Context, conf ConnectionConfig, opts Options) error {
	if a.conn != nil && a.conn.State() == StateOpen {
		return sqlerr.New(sqlerr.KindConnectionError, errAlreadyConnected)
	}
	if _, err := fbtypes.LoadZone(opts.TimeZone); err != nil {
		return sqlerr.Construction("invalid timezone "+opts.TimeZone, err)
	}

	conf = conf.WithDefaults()
	a.logger.Debug("connecting to firebird", slog.String("host", conf.Host), slog.String("database", conf.Database))

	conn, err := a.manager.ConnectRetry(ctx, conf, a.ConnectAttempts)
	if err != nil {
		return err
	}

	a.options = opts
	a.types = fbtypes.New(fbtypes.Options{
		TimeZone:   opts.TimeZone,
		BlobAsText: conf.BlobAsText,
		Charset:    conf.Charset,
	}, fbdialect.Firebird)
	a.gen = fbdialect.NewQueryGenerator(fbdialect.Firebird, a.types)
	a.conn = conn
	a.exec = NewExecutor(conn, a.types, a.logger)
	return nil
}

// Options returns the dialect-level options of the current session.
func (a *Adapter) Options() Options {
	return a.options
}

// Close disconnects. Closing twice is a no-op.
func (a *Adapter) Close() error {
	return a.manager.Disconnect(context.Background(), a.conn)
}

// Validate is the cheap liveness check; it never talks to the server.
func (a *Adapter) Validate() bool {
	return a.manager.Validate(a.conn)
}

func (a *Adapter) executor() (*Executor, error) {
	if a.exec == nil {
		return nil, sqlerr.New(sqlerr.KindConnectionError, errNotOpen)
	}
	return a.exec, nil
}

// Exec executes a statement that doesn't return rows.
func (a *Adapter) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	e, err := a.executor()
	if err != nil {
		return 0, err
	}
	return e.Exec(ctx, sql, args...)
}

// Query executes a statement that returns rows.
func (a *Adapter) Query(ctx context.Context, sql string, args ...any) (*core.ResultSet, error) {
	e, err := a.executor()
	if err != nil {
		return nil, err
	}
	return e.Query(ctx, sql, args...)
}

// Run executes a generated statement.
func (a *Adapter) Run(ctx context.Context, stmt fbdialect.Statement) (*core.ResultSet, error) {
	e, err := a.executor()
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, stmt)
}

// Begin starts a transaction.
func (a *Adapter) Begin(ctx context.Context, opts core.TxOptions) error {
	e, err := a.executor()
	if err != nil {
		return err
	}
	return e.Begin(ctx, opts)
}

// Commit commits the open transaction.
func (a *Adapter) Commit(ctx context.Context) error {
	e, err := a.executor()
	if err != nil {
		return err
	}
	return e.Commit(ctx)
}

// Rollback rolls back the open transaction.
func (a *Adapter) Rollback(ctx context.Context) error {
	e, err := a.executor()
	if err != nil {
		return err
	}
	return e.Rollback(ctx)
}

// Truncate empties a table with DELETE and returns the deleted row count.
// Identity columns are not reset.
func (a *Adapter) Truncate(ctx context.Context, table string) (int64, error) {
	stmt, err := a.gen.TruncateTableQuery(table, fbdialect.TruncateOptions{})
	if err != nil {
		return 0, err
	}
	return a.Exec(ctx, stmt.SQL, stmt.Args...)
}

// Upsert inserts or updates one row through MERGE.
func (a *Adapter) Upsert(ctx context.Context, q fbdialect.Upsert) (int64, error) {
	stmt, err := a.gen.UpsertQuery(q)
	if err != nil {
		return 0, err
	}
	return a.Exec(ctx, stmt.SQL, stmt.Args...)
}
