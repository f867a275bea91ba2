package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotConnected is returned when a session has no live connection.
var ErrNotConnected = errors.New("database connection not established")

// ErrNoTransaction is returned by Commit and Rollback without Begin.
var ErrNoTransaction = errors.New("no transaction in progress")

// SQLSession pins one database/sql connection so that statements and
// transaction control issued by an adapter share a single engine session.
// Statements run inside the open transaction when there is one.
type SQLSession struct {
	DB     *sql.DB
	Logger *slog.Logger

	mu   sync.Mutex
	conn *sql.Conn
	tx   *sql.Tx
}

// OpenSQLSession takes a connection from db and pings it.
// If logger is nil, a discard logger is used.
func OpenSQLSession(ctx context.Context, db *sql.DB, logger *slog.Logger) (*SQLSession, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &SQLSession{DB: db, Logger: logger, conn: conn}, nil
}

// Connected reports whether the session holds a connection.
func (s *SQLSession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// InTx reports whether a transaction is open.
func (s *SQLSession) InTx() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// QueryContext runs a query on the pinned connection.
func (s *SQLSession) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.mu.Lock()
	conn, tx := s.conn, s.tx
	s.mu.Unlock()

	switch {
	case tx != nil:
		return tx.QueryContext(ctx, query, args...)
	case conn != nil:
		return conn.QueryContext(ctx, query, args...)
	default:
		return nil, ErrNotConnected
	}
}

// ExecContext runs a statement on the pinned connection.
func (s *SQLSession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.mu.Lock()
	conn, tx := s.conn, s.tx
	s.mu.Unlock()

	switch {
	case tx != nil:
		return tx.ExecContext(ctx, query, args...)
	case conn != nil:
		return conn.ExecContext(ctx, query, args...)
	default:
		return nil, ErrNotConnected
	}
}

// BeginTx starts a transaction. Nested transactions are not supported.
func (s *SQLSession) BeginTx(ctx context.Context, opts *sql.TxOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	if s.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}
	tx, err := s.conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction.
func (s *SQLSession) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

// Rollback rolls back the open transaction.
func (s *SQLSession) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return ErrNoTransaction
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

// Close rolls back any open transaction and releases the connection and
// its pool. Closing a closed session is a no-op.
func (s *SQLSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	s.Logger.Debug("closing database connection")
	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	s.conn = nil
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
