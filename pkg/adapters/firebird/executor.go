package firebird

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

var (
	errNotOpen          = errors.New("connection is not open")
	errAlreadyConnected = errors.New("adapter is already connected")
)

// Executor sends statements through one open Connection. It assumes one
// request in flight at a time.
type Executor struct {
	conn          *Connection
	types         *fbtypes.Marshaller
	classifier    *sqlerr.Classifier
	lowerCaseKeys bool
	logger        *slog.Logger
}

// NewExecutor creates an executor over conn.
func NewExecutor(conn *Connection, types *fbtypes.Marshaller, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		conn:          conn,
		types:         types,
		classifier:    DefaultClassifier,
		lowerCaseKeys: conn.Config().LowerCaseKeys,
		logger:        logger,
	}
}

func (e *Executor) session() (Session, error) {
	s := e.conn.Session()
	if s == nil {
		return nil, sqlerr.New(sqlerr.KindConnectionError, errNotOpen)
	}
	return s, nil
}

// Query runs a statement that returns rows. Parameters are bound through
// the marshaller first; each cell is parsed by its column's native type.
func (e *Executor) Query(ctx context.Context, query string, params ...any) (*core.ResultSet, error) {
	s, err := e.session()
	if err != nil {
		return nil, err
	}
	args, err := e.types.BindAll(params)
	if err != nil {
		return nil, statementError(err, query, params)
	}

	e.logger.Debug("executing query", slog.String("connection_id", e.conn.ID()), slog.String("sql", query))
	rows, err := s.Query(ctx, query, args)
	if err != nil {
		return nil, e.classifier.ClassifyStatement(err, query, params)
	}
	defer func() { _ = rows.Close() }()

	rs, err := e.collect(rows)
	if err != nil {
		return nil, e.classifier.ClassifyStatement(err, query, params)
	}
	return rs, nil
}

// Exec runs a statement that returns no rows and reports affected rows.
func (e *Executor) Exec(ctx context.Context, query string, params ...any) (int64, error) {
	s, err := e.session()
	if err != nil {
		return 0, err
	}
	args, err := e.types.BindAll(params)
	if err != nil {
		return 0, statementError(err, query, params)
	}

	e.logger.Debug("executing statement", slog.String("connection_id", e.conn.ID()), slog.String("sql", query))
	res, err := s.Exec(ctx, query, args)
	if err != nil {
		return 0, e.classifier.ClassifyStatement(err, query, params)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// EXECUTE BLOCK and DDL report no count
		return 0, nil
	}
	return n, nil
}

// Run executes a generated statement, as a query when it returns rows.
func (e *Executor) Run(ctx context.Context, stmt fbdialect.Statement) (*core.ResultSet, error) {
	if returnsRows(stmt.SQL) {
		return e.Query(ctx, stmt.SQL, stmt.Args...)
	}
	n, err := e.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return &core.ResultSet{
		Columns: []core.Column{{Name: "ROWS_AFFECTED", Type: string(fbtypes.NativeBigint), Position: 1}},
		Rows:    []map[string]any{{"ROWS_AFFECTED": n}},
	}, nil
}

// Begin starts a transaction.
func (e *Executor) Begin(ctx context.Context, opts core.TxOptions) error {
	s, err := e.session()
	if err != nil {
		return err
	}
	if err := s.Begin(ctx, opts); err != nil {
		return e.classifier.Classify(sqlerr.PhaseExecute, err)
	}
	return nil
}

// Commit commits the open transaction.
func (e *Executor) Commit(ctx context.Context) error {
	s, err := e.session()
	if err != nil {
		return err
	}
	if err := s.Commit(ctx); err != nil {
		return e.classifier.Classify(sqlerr.PhaseExecute, err)
	}
	return nil
}

// Rollback rolls back the open transaction.
func (e *Executor) Rollback(ctx context.Context) error {
	s, err := e.session()
	if err != nil {
		return err
	}
	if err := s.Rollback(ctx); err != nil {
		return e.classifier.Classify(sqlerr.PhaseExecute, err)
	}
	return nil
}

func (e *Executor) collect(rows *sql.Rows) (*core.ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &core.ResultSet{Columns: make([]core.Column, len(types))}
	natives := make([]fbtypes.NativeType, len(types))
	keys := make([]string, len(types))
	for i, ct := range types {
		natives[i] = fbtypes.NativeFromName(ct.DatabaseTypeName())
		nullable, _ := ct.Nullable()
		keys[i] = ct.Name()
		if e.lowerCaseKeys {
			keys[i] = strings.ToLower(keys[i])
		}
		rs.Columns[i] = core.Column{
			Name:     keys[i],
			Type:     string(natives[i]),
			Nullable: nullable,
			Position: i + 1,
		}
	}

	for rows.Next() {
		raw := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(types))
		for i, v := range raw {
			parsed, err := e.types.ParseColumnValue(natives[i], v)
			if err != nil {
				return nil, err
			}
			row[keys[i]] = parsed
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}

// statementError attaches the statement to a bind failure. Bind failures
// are already classified, so no rule lookup happens.
func statementError(err error, query string, params []any) error {
	if classified, ok := sqlerr.As(err); ok {
		return classified.WithStatement(query, params)
	}
	return sqlerr.Construction("bind parameters", err).WithStatement(query, params)
}

// returnsRows reports whether a statement produces a result set.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(q, "SELECT"), strings.HasPrefix(q, "WITH"):
		return true
	case strings.Contains(q, " RETURNING "):
		return true
	}
	return false
}
