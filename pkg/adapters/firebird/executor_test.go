package firebird

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nakagami/firebirdsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fbdialect/internal/testutil"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/fbtypes"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// openAdapter connects an adapter to a sqlmock database. Statements are
// matched verbatim.
func openAdapter(t *testing.T, conf ConnectionConfig) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)
	mock.ExpectPing()

	transport := NewSQLTransport(func(driver, _ string) (*sql.DB, error) {
		assert.Equal(t, DriverName, driver)
		return db, nil
	}, nil)

	if conf.Database == "" {
		conf.Database = "db"
	}
	a := NewWithTransport(transport, testutil.NewTestLogger(t))
	require.NoError(t, a.ConnectWith(context.Background(), conf, Options{}))
	return a, mock
}

func column(name, dbType string) *sqlmock.Column {
	return sqlmock.NewColumn(name).OfType(dbType, "").Nullable(true)
}

func TestExecutor_QueryParsesNativeTypes(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})

	rows := sqlmock.NewRowsWithColumnDefinition(
		column("ID", "INT64"),
		column("NAME", "VARYING"),
		column("ACTIVE", "BOOLEAN"),
	).
		AddRow(int64(9007199254740993), []byte("alice"), true).
		AddRow(int64(2), nil, false)
	mock.ExpectQuery(`SELECT "ID", "NAME", "ACTIVE" FROM "USERS" WHERE "ID" > ?`).
		WithArgs(int64(0)).
		WillReturnRows(rows)

	rs, err := a.Query(context.Background(), `SELECT "ID", "NAME", "ACTIVE" FROM "USERS" WHERE "ID" > ?`, int64(0))
	require.NoError(t, err)

	require.Len(t, rs.Columns, 3)
	assert.Equal(t, core.Column{Name: "ID", Type: string(fbtypes.NativeBigint), Nullable: true, Position: 1}, rs.Columns[0])
	assert.Equal(t, string(fbtypes.NativeVarchar), rs.Columns[1].Type)
	assert.Equal(t, string(fbtypes.NativeBoolean), rs.Columns[2].Type)

	require.Equal(t, 2, rs.Len())
	// BIGINT comes back as text so it survives float hosts
	assert.Equal(t, map[string]any{"ID": "9007199254740993", "NAME": "alice", "ACTIVE": true}, rs.Rows[0])
	assert.Equal(t, map[string]any{"ID": "2", "NAME": nil, "ACTIVE": false}, rs.Rows[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_LowerCaseKeys(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{LowerCaseKeys: true})

	mock.ExpectQuery(`SELECT "NAME" FROM "USERS"`).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(column("NAME", "VARYING")).AddRow("bob"))

	rs, err := a.Query(context.Background(), `SELECT "NAME" FROM "USERS"`)
	require.NoError(t, err)
	assert.Equal(t, "name", rs.Columns[0].Name)
	assert.Equal(t, []map[string]any{{"name": "bob"}}, rs.Rows)
}

func TestExecutor_BindFailureNeverReachesServer(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})

	query := `INSERT INTO "SHAPES" ("G") VALUES (?)`
	param := fbtypes.Bind(fbtypes.ColumnType{Logical: fbtypes.TypeGeometry}, "POINT(0 0)")
	_, err := a.Exec(context.Background(), query, param)
	require.Error(t, err)

	classified, ok := sqlerr.As(err)
	require.True(t, ok)
	assert.Equal(t, sqlerr.KindUnsupportedOperation, classified.Kind)
	assert.Equal(t, query, classified.SQL)
	assert.Equal(t, []any{param}, classified.Params)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_ClassifiesStatementErrors(t *testing.T) {
	tests := []struct {
		name  string
		codes []int
		want  sqlerr.Kind
	}{
		{"unique", []int{335544665}, sqlerr.KindUniqueViolation},
		{"foreign key", []int{335544466}, sqlerr.KindForeignKeyViolation},
		{"deadlock", []int{335544336}, sqlerr.KindDeadlock},
		{"other", []int{335544569}, sqlerr.KindDatabaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mock := openAdapter(t, ConnectionConfig{})

			query := `INSERT INTO "USERS" ("NAME") VALUES (?)`
			mock.ExpectExec(query).
				WithArgs("alice").
				WillReturnError(&firebirdsql.FbError{GDSCodes: tt.codes, Message: "violation"})

			_, err := a.Exec(context.Background(), query, "alice")
			classified, ok := sqlerr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, classified.Kind)
			assert.Equal(t, query, classified.SQL)
			assert.Equal(t, []any{"alice"}, classified.Params)
		})
	}
}

func TestExecutor_Exec(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})

	mock.ExpectExec(`UPDATE "USERS" SET "NAME" = ?`).
		WithArgs("x").
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := a.Exec(context.Background(), `UPDATE "USERS" SET "NAME" = ?`, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// DDL reports no affected rows
	mock.ExpectExec(`DROP TABLE "T"`).
		WillReturnResult(sqlmock.NewErrorResult(sql.ErrNoRows))
	n, err = a.Exec(context.Background(), `DROP TABLE "T"`)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExecutor_Run(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})
	ctx := context.Background()

	stmt, err := a.Generator().TruncateTableQuery("USERS", fbdialect.TruncateOptions{})
	require.NoError(t, err)
	mock.ExpectExec(`DELETE FROM "USERS"`).WillReturnResult(sqlmock.NewResult(0, 4))

	rs, err := a.Run(ctx, stmt)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"ROWS_AFFECTED": int64(4)}}, rs.Rows)

	count := a.Generator().CountRowsQuery("USERS")
	mock.ExpectQuery(count.SQL).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(column("ROW_COUNT", "INT64")).AddRow(int64(0)))
	rs, err = a.Run(ctx, count)
	require.NoError(t, err)
	assert.Equal(t, "0", rs.Rows[0]["ROW_COUNT"])
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{`SELECT 1 FROM RDB$DATABASE`, true},
		{`  select 1 from rdb$database`, true},
		{`WITH x AS (SELECT 1 AS a FROM RDB$DATABASE) SELECT a FROM x`, true},
		{`INSERT INTO "T" ("A") VALUES (?) RETURNING "ID"`, true},
		{`DELETE FROM "T"`, false},
		{`EXECUTE BLOCK AS BEGIN END`, false},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(tt.sql))
		})
	}
}

func TestExecutor_Transactions(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "T"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, a.Begin(ctx, core.TxOptions{Isolation: sql.LevelSnapshot}))
	_, err := a.Exec(ctx, `DELETE FROM "T"`)
	require.NoError(t, err)
	require.NoError(t, a.Commit(ctx))

	mock.ExpectBegin()
	mock.ExpectRollback()
	require.NoError(t, a.Begin(ctx, core.TxOptions{}))
	require.NoError(t, a.Rollback(ctx))

	err = a.Begin(ctx, core.TxOptions{Isolation: sql.LevelLinearizable})
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindUnsupportedOperation))

	assert.Error(t, a.Commit(ctx), "commit without begin")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_NotConnected(t *testing.T) {
	a := New(nil)
	ctx := context.Background()

	_, err := a.Query(ctx, "SELECT 1 FROM RDB$DATABASE")
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindConnectionError))
	_, err = a.Exec(ctx, `DELETE FROM "T"`)
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindConnectionError))
	assert.True(t, sqlerr.IsKind(a.Begin(ctx, core.TxOptions{}), sqlerr.KindConnectionError))
	assert.False(t, a.Validate())
	assert.NoError(t, a.Close())
}

func TestAdapter_Close(t *testing.T) {
	a, mock := openAdapter(t, ConnectionConfig{})
	mock.ExpectClose()

	assert.True(t, a.Validate())
	require.NoError(t, a.Close())
	assert.False(t, a.Validate())
	require.NoError(t, a.Close())

	_, err := a.Query(context.Background(), "SELECT 1 FROM RDB$DATABASE")
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindConnectionError))
	assert.NoError(t, mock.ExpectationsWereMet())
}
