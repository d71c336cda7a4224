package catalog

import (
	"testing"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

func mustOption(t *testing.T, location, name, data string) Option {
	t.Helper()
	opt, err := NewOption(ruleset.Default(), location, name, "", data)
	if err != nil {
		t.Fatalf("NewOption(%q): %v", location, err)
	}
	return opt
}

func testModule(t *testing.T, id string, typ ModuleType, locations ...string) Definition {
	t.Helper()
	def := Definition{Kind: KindModule, ID: id, Name: id, Type: typ}
	for _, loc := range locations {
		def.Options = append(def.Options, mustOption(t, loc, id+" "+loc, ""))
	}
	return def
}
