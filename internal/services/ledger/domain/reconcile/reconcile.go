// Package reconcile repairs a persisted character before it is handed to a
// build ledger: it backfills fields missing from older records, drops
// references the catalog no longer knows, and removes overspent talent points.
//
// Run never fails. Anything it cannot repair is reported in the Result.
package reconcile

import (
	"sort"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Correction is one overspend reduction applied to a skill.
type Correction struct {
	Skill   string `json:"skill"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Removed int    `json:"removed"`
}

// Result reports what Run changed.
type Result struct {
	// Record is the migrated and repaired record.
	Record    character.Record
	Character *character.Character
	// Talent is the talent pool after repair.
	Talent budget.Budget

	CorrectionApplied bool
	PointsRemoved     int
	Corrections       []Correction
	// Unresolved is the overspend left after every spendable rank was removed.
	Unresolved     int
	MigratedFields []string
}

// Changed reports whether the record differs from what was loaded.
func (r Result) Changed() bool {
	return r.CorrectionApplied || len(r.MigratedFields) > 0
}

// Run migrates and repairs rec. Running it again on Result.Record is a no-op.
func Run(rules *ruleset.Ruleset, index *catalog.Index, rec character.Record) Result {
	out := rec.Clone()
	var res Result
	res.MigratedFields = migrate(index, &out)

	c := character.FromRecord(rules, out)
	talent := budget.Compute(budget.PoolTalent, rules, c, budget.SourcesFor(index, c))
	if deficit := -talent.Remaining(); deficit > 0 {
		res.Corrections, res.Unresolved = repair(rules, c, deficit)
		for _, corr := range res.Corrections {
			res.PointsRemoved += corr.Removed
			skill := out.Skills[corr.Skill]
			to := corr.To
			skill.BaseTalent = &to
			skill.Talent = max(0, skill.Talent-corr.Removed)
			out.Skills[corr.Skill] = skill
		}
		res.CorrectionApplied = res.PointsRemoved > 0
		talent = budget.Compute(budget.PoolTalent, rules, c, budget.SourcesFor(index, c))
	}

	out.TotalTalentPoints = talent.Total()
	out.SpentTalentPoints = talent.Spent
	res.Record = out
	res.Character = c
	res.Talent = talent
	return res
}

// migrate fills legacy gaps in rec and returns the fields it touched.
func migrate(index *catalog.Index, rec *character.Record) []string {
	var migrated []string

	for _, key := range rec.SkillKeys() {
		skill := rec.Skills[key]
		if skill.BaseTalent != nil {
			continue
		}
		base := skill.Talent
		skill.BaseTalent = &base
		rec.Skills[key] = skill
		migrated = append(migrated, "skills."+key+".baseTalent")
	}

	// The single legacy trait only moves when the traits list is empty.
	if rec.LegacyTraitID != "" && len(rec.Traits) == 0 {
		rec.Traits = []string{rec.LegacyTraitID}
		rec.LegacyTraitID = ""
		migrated = append(migrated, "characterTrait")
	}

	kept := rec.Modules[:0]
	for _, m := range rec.Modules {
		def, ok := index.Module(m.ModuleID)
		if !ok {
			migrated = append(migrated, "modules."+m.ModuleID)
			continue
		}
		options := m.SelectedOptions[:0]
		for _, opt := range m.SelectedOptions {
			loc, err := catalog.ParseLocation(opt.Location)
			if err == nil {
				if _, exists := def.Option(loc); exists {
					options = append(options, opt)
					continue
				}
			}
			migrated = append(migrated, "modules."+m.ModuleID+"."+opt.Location)
		}
		m.SelectedOptions = options
		kept = append(kept, m)
	}
	rec.Modules = kept
	return migrated
}

type candidate struct {
	key       string
	base      int
	spendable int
}

// repair removes deficit points from c, largest spend first with ties broken
// by skill key. It returns the corrections and any deficit left over.
func repair(rules *ruleset.Ruleset, c *character.Character, deficit int) ([]Correction, int) {
	var candidates []candidate
	for _, key := range c.SkillKeys() {
		base := c.Skills[key]
		if spendable := budget.SkillCost(rules, key, base); spendable > 0 {
			candidates = append(candidates, candidate{key: key, base: base, spendable: spendable})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].spendable != candidates[j].spendable {
			return candidates[i].spendable > candidates[j].spendable
		}
		return candidates[i].key < candidates[j].key
	})

	var corrections []Correction
	for _, cand := range candidates {
		if deficit <= 0 {
			break
		}
		removed := min(cand.spendable, deficit)
		to := cand.base - removed
		c.Skills[cand.key] = to
		corrections = append(corrections, Correction{Skill: cand.key, From: cand.base, To: to, Removed: removed})
		deficit -= removed
	}
	return corrections, deficit
}
