package build

import (
	"testing"
	"time"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

type optionDef struct {
	location string
	data     string
}

func module(t *testing.T, id string, typ catalog.ModuleType, opts ...optionDef) catalog.Definition {
	t.Helper()
	def := catalog.Definition{Kind: catalog.KindModule, ID: id, Name: id, Type: typ}
	for _, o := range opts {
		opt, err := catalog.NewOption(ruleset.Default(), o.location, id+" "+o.location, "", o.data)
		if err != nil {
			t.Fatalf("NewOption: %v", err)
		}
		def.Options = append(def.Options, opt)
	}
	return def
}

func testIndex(t *testing.T) *catalog.Index {
	t.Helper()
	idx, err := catalog.NewIndex(
		module(t, "bard", catalog.ModuleSecondary,
			optionDef{location: "1"}, optionDef{location: "2"},
			optionDef{location: "3a"}, optionDef{location: "3b"}, optionDef{location: "4"}),
		module(t, "warrior", catalog.ModuleCore,
			optionDef{location: "1", data: "WT3=1:WS3=2"}, optionDef{location: "2", data: "STA=1:SSA=X"}),
		module(t, "athlete", catalog.ModuleCore, optionDef{location: "1", data: "ST1=1"}),
		module(t, "stoic", catalog.ModulePersonality, optionDef{location: "1"}, optionDef{location: "2"}),
		module(t, "zealot", catalog.ModulePersonality, optionDef{location: "1"}, optionDef{location: "2"}),
	)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newLedger(t *testing.T, modulePoints int) *Ledger {
	t.Helper()
	rules := ruleset.Default()
	c := character.New(rules, "c1", "Ada")
	c.ModulePoints = modulePoints
	return New(rules, testIndex(t), c, WithClock(func() time.Time { return fixedNow }))
}

func mustSelect(t *testing.T, l *Ledger, moduleID, location string) {
	t.Helper()
	if _, err := l.Select(moduleID, location); err != nil {
		t.Fatalf("Select(%s, %s): %v", moduleID, location, err)
	}
}

func remaining(t *testing.T, l *Ledger, pool string) int {
	t.Helper()
	for _, b := range l.Snapshot().Budgets {
		if string(b.Pool) == pool {
			return b.Remaining
		}
	}
	t.Fatalf("pool %s missing", pool)
	return 0
}
