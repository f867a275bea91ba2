package firebird

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/adapter"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/core"
)

// DriverName is the database/sql driver the default transport opens.
const DriverName = "firebirdsql"

// AttachOptions is the transport-specific form of a ConnectionConfig.
type AttachOptions struct {
	Host          string
	Port          int
	Database      string
	User          string
	Password      string
	Role          string
	Charset       string
	ReadOnly      bool
	LowerCaseKeys bool
}

// attachOptions builds the transport record. Defaults must already be applied.
func (c ConnectionConfig) attachOptions() AttachOptions {
	return AttachOptions{
		Host:          c.Host,
		Port:          c.Port,
		Database:      c.Database,
		User:          c.User,
		Password:      c.Password,
		Role:          c.Role,
		Charset:       c.Charset,
		ReadOnly:      c.ReadOnly,
		LowerCaseKeys: c.LowerCaseKeys,
	}
}

// DSN renders the options in the driver's
// user:password@host:port/database?charset=..&role=.. form.
func (o AttachOptions) DSN() string {
	u := url.URL{
		Host: net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Path: "/" + o.Database,
	}
	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}
	q := url.Values{}
	if o.Charset != "" {
		q.Set("charset", o.Charset)
	}
	if o.Role != "" {
		q.Set("role", o.Role)
	}
	if o.LowerCaseKeys {
		q.Set("column_name_to_lower", "true")
	}
	u.RawQuery = q.Encode()
	return strings.TrimPrefix(u.String(), "//")
}

// Session is one attached engine session.
type Session interface {
	Query(ctx context.Context, query string, args []any) (*sql.Rows, error)
	Exec(ctx context.Context, query string, args []any) (sql.Result, error)
	Begin(ctx context.Context, opts core.TxOptions) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Connected is a local check; it never talks to the server.
	Connected() bool
	Detach(ctx context.Context) error
}

// Transport attaches sessions. Errors it returns are raw and get classified
// by the manager.
type Transport interface {
	Attach(ctx context.Context, opts AttachOptions) (Session, error)
}

// OpenFunc opens a database handle, normally sql.Open.
type OpenFunc func(driver, dsn string) (*sql.DB, error)

// SQLTransport attaches through database/sql.
type SQLTransport struct {
	open   OpenFunc
	logger *slog.Logger
}

// NewSQLTransport returns a transport for the firebirdsql driver. A nil open
// means sql.Open; tests pass a sqlmock opener.
func NewSQLTransport(open OpenFunc, logger *slog.Logger) *SQLTransport {
	if open == nil {
		open = sql.Open
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLTransport{open: open, logger: logger}
}

// Attach opens a single-connection pool and pins its connection.
func (t *SQLTransport) Attach(ctx context.Context, opts AttachOptions) (Session, error) {
	db, err := t.open(DriverName, opts.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s, err := adapter.OpenSQLSession(ctx, db, t.logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlSession{SQLSession: s, readOnly: opts.ReadOnly}, nil
}

type sqlSession struct {
	*adapter.SQLSession
	readOnly bool
}

func (s *sqlSession) Query(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	return s.QueryContext(ctx, query, args...)
}

func (s *sqlSession) Exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	return s.ExecContext(ctx, query, args...)
}

// Begin starts a transaction. A read-only session forces read-only
// transactions.
func (s *sqlSession) Begin(ctx context.Context, opts core.TxOptions) error {
	if _, err := fbdialect.IsolationLevel(opts.Isolation); err != nil {
		return err
	}
	return s.BeginTx(ctx, &sql.TxOptions{
		Isolation: opts.Isolation,
		ReadOnly:  opts.ReadOnly || s.readOnly,
	})
}

func (s *sqlSession) Commit(context.Context) error {
	return s.SQLSession.Commit()
}

func (s *sqlSession) Rollback(context.Context) error {
	return s.SQLSession.Rollback()
}

func (s *sqlSession) Detach(context.Context) error {
	return s.Close()
}
