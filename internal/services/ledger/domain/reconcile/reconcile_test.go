package reconcile

import (
	"reflect"
	"testing"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

func intPtr(v int) *int { return &v }

func testIndex(t *testing.T) *catalog.Index {
	t.Helper()
	rules := ruleset.Default()
	opt := func(location, data string) catalog.Option {
		o, err := catalog.NewOption(rules, location, location, "", data)
		if err != nil {
			t.Fatalf("NewOption: %v", err)
		}
		return o
	}
	idx, err := catalog.NewIndex(
		catalog.Definition{Kind: catalog.KindModule, ID: "bard", Type: catalog.ModuleSecondary,
			Options: []catalog.Option{opt("1", ""), opt("2", "")}},
		catalog.Definition{Kind: catalog.KindAncestry, ID: "human", Options: []catalog.Option{opt("", "UT=2")}},
		catalog.Definition{Kind: catalog.KindTrait, ID: "gifted", Options: []catalog.Option{opt("", "UT=1")}},
	)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func TestRunRemovesOverspendFromLargestFirst(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		ID: "c1",
		Skills: map[string]character.SkillRecord{
			"arcane":      {Talent: 4, BaseTalent: intPtr(4)},
			"black":       {Talent: 4, BaseTalent: intPtr(4)},
			"engineering": {Talent: 3, BaseTalent: intPtr(3)},
		},
		TotalTalentPoints: 8,
		SpentTalentPoints: 11,
	}
	res := Run(ruleset.Default(), testIndex(t), rec)

	if !res.CorrectionApplied || res.PointsRemoved != 3 {
		t.Fatalf("result = applied %v removed %d, want true 3", res.CorrectionApplied, res.PointsRemoved)
	}
	want := []Correction{{Skill: "arcane", From: 4, To: 1, Removed: 3}}
	if !reflect.DeepEqual(res.Corrections, want) {
		t.Fatalf("corrections = %+v, want %+v", res.Corrections, want)
	}
	arcane := res.Record.Skills["arcane"]
	if *arcane.BaseTalent != 1 || arcane.Talent != 1 {
		t.Fatalf("arcane = talent %d base %d, want 1/1", arcane.Talent, *arcane.BaseTalent)
	}
	if res.Talent.Remaining() != 0 || res.Record.SpentTalentPoints != 8 {
		t.Fatalf("talent = %+v, cached spent %d", res.Talent, res.Record.SpentTalentPoints)
	}
	if res.Character.Skills["arcane"] != 1 {
		t.Fatalf("character arcane = %d, want 1", res.Character.Skills["arcane"])
	}
	if res.Unresolved != 0 {
		t.Fatalf("unresolved = %d, want 0", res.Unresolved)
	}
}

func TestRunBreaksTiesBySkillKey(t *testing.T) {
	t.Parallel()

	rec := character.Record{Skills: map[string]character.SkillRecord{}}
	for _, key := range []string{"white", "primal", "mystic", "meta", "black", "arcane"} {
		rec.Skills[key] = character.SkillRecord{Talent: 2, BaseTalent: intPtr(2)}
	}
	res := Run(ruleset.Default(), testIndex(t), rec)

	want := []Correction{
		{Skill: "arcane", From: 2, To: 0, Removed: 2},
		{Skill: "black", From: 2, To: 0, Removed: 2},
	}
	if !reflect.DeepEqual(res.Corrections, want) {
		t.Fatalf("corrections = %+v, want %+v", res.Corrections, want)
	}
	if res.PointsRemoved != 4 {
		t.Fatalf("removed = %d, want 4", res.PointsRemoved)
	}
}

func TestRunCountsBonusSourcesAndFreeRanks(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		AncestryID: "human",
		Traits:     []string{"gifted"},
		Skills: map[string]character.SkillRecord{
			"brawling": {Talent: 4, BaseTalent: intPtr(4)},
			"arcane":   {Talent: 4, BaseTalent: intPtr(4)},
			"cooking":  {Talent: 4, BaseTalent: intPtr(4)},
		},
	}
	// total 8+2+1 = 11, spent 3+4+4 = 11
	res := Run(ruleset.Default(), testIndex(t), rec)
	if res.CorrectionApplied || res.PointsRemoved != 0 {
		t.Fatalf("unexpected correction: %+v", res.Corrections)
	}
	if res.Talent.Total() != 11 || res.Talent.Spent != 11 {
		t.Fatalf("talent = %+v, want 11/11", res.Talent)
	}
}

func TestRunMigratesLegacyFields(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		Skills: map[string]character.SkillRecord{
			"arcane":   {Talent: 2},
			"brawling": {Talent: 1},
		},
		LegacyTraitID: "gifted",
		Modules: []character.ModuleRecord{
			{ModuleID: "bard", SelectedOptions: []character.OptionRecord{{Location: "1"}, {Location: "7"}, {Location: "bad"}}},
			{ModuleID: "retired"},
		},
	}
	res := Run(ruleset.Default(), testIndex(t), rec)

	want := []string{
		"skills.arcane.baseTalent",
		"skills.brawling.baseTalent",
		"characterTrait",
		"modules.bard.7",
		"modules.bard.bad",
		"modules.retired",
	}
	if !reflect.DeepEqual(res.MigratedFields, want) {
		t.Fatalf("migrated = %v, want %v", res.MigratedFields, want)
	}
	if got := res.Record.Skills["arcane"].BaseTalent; got == nil || *got != 2 {
		t.Fatalf("arcane baseTalent = %v, want 2", got)
	}
	if !reflect.DeepEqual(res.Record.Traits, []string{"gifted"}) || res.Record.LegacyTraitID != "" {
		t.Fatalf("traits = %v legacy %q", res.Record.Traits, res.Record.LegacyTraitID)
	}
	if len(res.Record.Modules) != 1 || len(res.Record.Modules[0].SelectedOptions) != 1 {
		t.Fatalf("modules = %+v", res.Record.Modules)
	}
	if res.CorrectionApplied || !res.Changed() {
		t.Fatalf("applied %v changed %v, want false true", res.CorrectionApplied, res.Changed())
	}
	if rec.Skills["arcane"].BaseTalent != nil {
		t.Fatal("input record was mutated")
	}
}

func TestRunCountsLegacyTraitBonus(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		Skills: map[string]character.SkillRecord{
			"arcane":      {Talent: 4, BaseTalent: intPtr(4)},
			"black":       {Talent: 4, BaseTalent: intPtr(4)},
			"engineering": {Talent: 1, BaseTalent: intPtr(1)},
		},
		LegacyTraitID: "gifted",
	}
	// total 8+1 = 9, spent 4+4+1 = 9
	res := Run(ruleset.Default(), testIndex(t), rec)
	if res.CorrectionApplied || res.PointsRemoved != 0 {
		t.Fatalf("unexpected correction: %+v", res.Corrections)
	}
	if res.Talent.Total() != 9 {
		t.Fatalf("talent total = %d, want 9", res.Talent.Total())
	}
	if !reflect.DeepEqual(res.Record.Traits, []string{"gifted"}) || res.Record.LegacyTraitID != "" {
		t.Fatalf("traits = %v legacy %q", res.Record.Traits, res.Record.LegacyTraitID)
	}
}

func TestRunKeepsLegacyTraitWhenTraitsExist(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		Skills:        map[string]character.SkillRecord{},
		Traits:        []string{"gifted"},
		LegacyTraitID: "other",
	}
	res := Run(ruleset.Default(), testIndex(t), rec)
	if len(res.MigratedFields) != 0 {
		t.Fatalf("migrated = %v, want none", res.MigratedFields)
	}
	if !reflect.DeepEqual(res.Record.Traits, []string{"gifted"}) || res.Record.LegacyTraitID != "other" {
		t.Fatalf("traits = %v legacy %q", res.Record.Traits, res.Record.LegacyTraitID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	rec := character.Record{
		Skills: map[string]character.SkillRecord{
			"arcane":      {Talent: 4},
			"black":       {Talent: 4},
			"engineering": {Talent: 3},
		},
		LegacyTraitID: "missing",
		Modules:       []character.ModuleRecord{{ModuleID: "retired"}},
	}
	rules, idx := ruleset.Default(), testIndex(t)
	first := Run(rules, idx, rec)
	if !first.CorrectionApplied {
		t.Fatal("first pass should correct")
	}
	second := Run(rules, idx, first.Record)
	if second.CorrectionApplied || second.Changed() {
		t.Fatalf("second pass changed: %+v", second)
	}
	if !reflect.DeepEqual(first.Record, second.Record) {
		t.Fatalf("second pass record differs:\n%+v\n%+v", first.Record, second.Record)
	}
}

func TestRunToleratesEmptyRecord(t *testing.T) {
	t.Parallel()

	res := Run(ruleset.Default(), nil, character.Record{})
	if res.Changed() || res.Character == nil {
		t.Fatalf("result = %+v", res)
	}
}
