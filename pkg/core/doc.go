// Package core defines the shared language of the fbdialect system.
//
// This package contains:
//   - Dialect description (DialectConfig, IdentifierConfig, Capabilities)
//   - Introspection entities (Column, TableMetadata, Constraint, Index)
//   - Execution results (ResultSet) and transaction options (TxOptions)
//   - Connection configuration shared with host layers (AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
