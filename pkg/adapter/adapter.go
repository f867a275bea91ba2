// Package adapter provides the database adapter contract that host query
// builders program against, and the adapter factory registry.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
// Core types (AdapterConfig, Column, TableMetadata, ResultSet) are defined in
// pkg/core; this package re-exports them via type aliases.
package adapter

import (
	"context"

	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/dialect"
)

// Type aliases for the core types used in the Adapter contract.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// ResultSet is an alias for core.ResultSet.
	ResultSet = core.ResultSet
)

// Adapter defines the interface that all database adapters must implement.
// An Adapter owns one session; hosts pool adapters, not sessions.
//
// Every method returns either a value or a classified *sqlerr.Error.
type Adapter interface {
	// Connect establishes a session using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close ends the session. Closing twice is not an error.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*ResultSet, error)

	// Begin starts a transaction on the session.
	Begin(ctx context.Context, opts core.TxOptions) error

	// Commit commits the open transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the open transaction.
	Rollback(ctx context.Context) error

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// ListTables lists user tables.
	ListTables(ctx context.Context) ([]string, error)

	// Dialect returns the SQL dialect configuration for this adapter.
	// Hosts read its capability table before generating SQL.
	Dialect() *dialect.Dialect
}
