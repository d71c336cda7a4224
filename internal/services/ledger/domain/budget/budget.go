// Package budget computes the attribute, talent and module point pools of a
// character and gates every proposed spend against them.
package budget

import (
	"strconv"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Pool identifies one point pool.
type Pool string

const (
	PoolAttribute Pool = "attribute"
	PoolTalent    Pool = "talent"
	PoolModule    Pool = "module"
)

// Pools lists every pool in display order.
var Pools = []Pool{PoolAttribute, PoolTalent, PoolModule}

// Budget is a computed pool.
type Budget struct {
	Pool  Pool
	Base  int
	Bonus int
	Spent int
}

// Total is base plus bonus.
func (b Budget) Total() int { return b.Base + b.Bonus }

// Remaining is total minus spent. It is negative only for unrepaired records.
func (b Budget) Remaining() int { return b.Total() - b.Spent }

// Propose checks a spend of delta points. Refunds (delta <= 0) are always
// accepted; a positive delta is rejected when it would leave the pool negative.
func (b Budget) Propose(delta int) error {
	if delta <= 0 {
		return nil
	}
	remaining := b.Remaining()
	if remaining-delta >= 0 {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeLedgerInsufficientBudget,
		"insufficient "+string(b.Pool)+" points",
		map[string]string{
			"Pool":      string(b.Pool),
			"Cost":      strconv.Itoa(delta),
			"Remaining": strconv.Itoa(remaining),
			"Deficit":   strconv.Itoa(delta - remaining),
		})
}

// Sources are the selected definitions whose option grants feed the pools.
type Sources []catalog.Definition

// SourcesFor collects the character's ancestry and traits from idx. Missing
// definitions contribute nothing.
func SourcesFor(idx *catalog.Index, c *character.Character) Sources {
	var sources Sources
	if def, ok := idx.Get(catalog.KindAncestry, c.AncestryID); ok {
		sources = append(sources, def)
	}
	seen := map[string]bool{}
	for _, id := range c.TraitIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if def, ok := idx.Get(catalog.KindTrait, id); ok {
			sources = append(sources, def)
		}
	}
	return sources
}

// Compute returns the pool for c under rules.
func Compute(pool Pool, rules *ruleset.Ruleset, c *character.Character, sources Sources) Budget {
	b := Budget{Pool: pool, Bonus: Bonus(pool, c, sources), Spent: Spent(pool, rules, c)}
	switch pool {
	case PoolAttribute:
		b.Base = rules.BaseAttributePoints()
	case PoolTalent:
		b.Base = rules.BaseTalentPoints()
	case PoolModule:
		b.Base = rules.BaseModulePoints()
	}
	return b
}

// ComputeAll returns every pool keyed by pool.
func ComputeAll(rules *ruleset.Ruleset, c *character.Character, sources Sources) map[Pool]Budget {
	out := make(map[Pool]Budget, len(Pools))
	for _, pool := range Pools {
		out[pool] = Compute(pool, rules, c, sources)
	}
	return out
}

// Bonus sums the pool grants of every option of every source, plus the
// points awarded directly on the character.
func Bonus(pool Pool, c *character.Character, sources Sources) int {
	switch pool {
	case PoolAttribute:
		return c.AdditionalAttributePoints
	case PoolTalent:
		return grantTotal(sources, catalog.GrantTalentPoints)
	case PoolModule:
		return c.ModulePoints + grantTotal(sources, catalog.GrantModulePoints)
	}
	return 0
}

func grantTotal(sources Sources, kind catalog.GrantKind) int {
	total := 0
	for _, def := range sources {
		total += def.GrantTotal(kind)
	}
	return total
}

// Spent sums what the character has already bought from pool.
func Spent(pool Pool, rules *ruleset.Ruleset, c *character.Character) int {
	switch pool {
	case PoolAttribute:
		return AttributeSpent(rules, c)
	case PoolTalent:
		return TalentSpent(rules, c)
	case PoolModule:
		return ModuleSpent(c)
	}
	return 0
}

// AttributeSpent is the sum of every attribute above the floor.
func AttributeSpent(rules *ruleset.Ruleset, c *character.Character) int {
	spent := 0
	for _, attr := range rules.Attributes() {
		spent += c.Attributes[attr] - rules.AttributeFloor()
	}
	return spent
}

// TalentSpent is the sum of purchased ranks above each skill's free rank.
// Module-granted ranks never count.
func TalentSpent(rules *ruleset.Ruleset, c *character.Character) int {
	spent := 0
	for key, base := range c.Skills {
		spent += SkillCost(rules, key, base)
	}
	return spent
}

// SkillCost is the talent points a purchased rank of base costs for key.
func SkillCost(rules *ruleset.Ruleset, key string, base int) int {
	def, ok := rules.Skill(key)
	if !ok || !def.Namespace.Purchasable() {
		return 0
	}
	return max(0, base-def.FreeRank)
}

// ModuleSpent counts selected non-tier-1 options over attached modules.
func ModuleSpent(c *character.Character) int {
	spent := 0
	for _, m := range c.Modules {
		for _, opt := range m.SelectedOptions {
			if !opt.Location.IsTierOne() {
				spent++
			}
		}
	}
	return spent
}
