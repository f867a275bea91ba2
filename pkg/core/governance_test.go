//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/fbdialect"

// =============================================================================
// COHESION TEST - Core types must be shared by multiple packages
// =============================================================================

// TestGovernance_CoreCohesion verifies that types in pkg/core are genuinely
// shared across multiple packages. Single-use types should be moved to their
// sole consumer to maintain cohesion.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	coreDefs := make(map[types.Object]string)
	var corePkg *packages.Package
	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" {
			corePkg = p
			scope := p.Types.Scope()
			for _, name := range scope.Names() {
				obj := scope.Lookup(name)
				if obj.Exported() {
					coreDefs[obj] = name
				}
			}
			break
		}
	}
	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	// CoreTypeName -> set of importing packages
	usageMap := make(map[string]map[string]bool)
	for _, name := range coreDefs {
		usageMap[name] = make(map[string]bool)
	}

	base := modulePath + "/"
	for _, p := range pkgs {
		if p.PkgPath == corePkg.PkgPath || strings.HasSuffix(p.PkgPath, "_test") {
			continue
		}
		if p.TypesInfo == nil {
			continue
		}
		for _, info := range p.TypesInfo.Uses {
			if name, exists := coreDefs[info]; exists {
				usageMap[name][strings.TrimPrefix(p.PkgPath, base)] = true
			}
		}
	}

	for typeName, importers := range usageMap {
		if isCohesionAllowlisted(typeName) {
			continue
		}
		if len(importers) == 0 {
			t.Logf("WARNING: Unused Core Type: %s (consider deleting)", typeName)
		} else if len(importers) == 1 {
			var user string
			for k := range importers {
				user = k
			}
			t.Errorf("COHESION VIOLATION: 'core.%s' is used ONLY by '%s'.\n"+
				"   Fix: Move type from pkg/core to %s.",
				typeName, user, user)
		}
	}
}

// isCohesionAllowlisted returns true for names allowed to have single usage.
// Features and normalization strategies are vocabulary a host may query
// even when only one dialect declares them.
func isCohesionAllowlisted(name string) bool {
	if strings.HasPrefix(name, "Feature") || strings.HasPrefix(name, "Norm") || strings.HasPrefix(name, "Placeholder") {
		return true
	}
	allowlist := map[string]bool{
		"DialectConfig":    true, // Config struct for extension point
		"IdentifierConfig": true,
		"NewCapabilities":  true,
		"Yes":              true,
		"No":               true,
		"Keyword":          true,
	}
	return allowlist[name]
}

// =============================================================================
// ISOLATION TEST - Only the Firebird adapter talks to the driver
// =============================================================================

// TestGovernance_DriverIsolation ensures the dialect, the marshaller and the
// shared packages stay usable without the Firebird driver linked in.
func TestGovernance_DriverIsolation(t *testing.T) {
	const driver = "github.com/nakagami/firebirdsql"

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			continue
		}
		if pkg.PkgPath == modulePath+"/pkg/adapters/firebird" {
			continue
		}
		if _, ok := pkg.Imports[driver]; ok {
			t.Errorf("ISOLATION VIOLATION: Package '%s' imports %s.\n"+
				"   Fix: Move the driver-specific code to pkg/adapters/firebird.",
				strings.TrimPrefix(pkg.PkgPath, modulePath+"/"), driver)
		}
	}
}
