package firebird

import (
	"errors"
	"strconv"

	"github.com/nakagami/firebirdsql"

	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// Rules maps Firebird GDS codes, SQLSTATEs and socket errors to kinds.
var Rules = []sqlerr.Rule{
	{Kind: sqlerr.KindConnectionRefused, Codes: []string{"ECONNREFUSED"}},
	{Kind: sqlerr.KindAccessDenied, Codes: []string{"EACCES", "EPERM", "335544472", "28000"}},
	{Kind: sqlerr.KindHostNotFound, Codes: []string{"ENOTFOUND", "EAI_AGAIN"}},
	{Kind: sqlerr.KindHostNotReachable, Codes: []string{"EHOSTUNREACH", "ENETUNREACH"}},
	{Kind: sqlerr.KindInvalidConnection, Codes: []string{"EINVAL"}},
	{Kind: sqlerr.KindUniqueViolation, Codes: []string{"23505", "335544665", "335544349"}},
	{Kind: sqlerr.KindDeadlock, Codes: []string{"40001", "335544336", "335544345"}},
	{Kind: sqlerr.KindForeignKeyViolation, Codes: []string{"23503", "335544466", "335544344"}},
	// SQLSTATE class 08 is a connection exception
	{Kind: sqlerr.KindConnectionError, Codes: []string{"08"}, Prefix: true},
}

// DefaultClassifier is the classifier used by the manager and executor.
var DefaultClassifier = sqlerr.NewClassifier(Rules, gdsCodes)

// gdsCodes reads the status vector of a driver error. The most specific
// code is last in the vector, so codes are returned in reverse.
func gdsCodes(err error) ([]string, bool) {
	var fbErr *firebirdsql.FbError
	if !errors.As(err, &fbErr) {
		return nil, false
	}
	codes := make([]string, 0, len(fbErr.GDSCodes))
	for i := len(fbErr.GDSCodes) - 1; i >= 0; i-- {
		codes = append(codes, strconv.Itoa(fbErr.GDSCodes[i]))
	}
	return codes, true
}
