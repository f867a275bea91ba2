package firebird

import (
	"log/slog"

	"github.com/leapstack-labs/fbdialect/pkg/adapter"
	fbdialect "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird/dialect"
)

// Register the Firebird adapter. Import this package with a blank
// identifier to make "firebird" available to adapter.NewAdapter:
//
//	import _ "github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
func init() {
	adapter.Register(fbdialect.Name, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
