package build

import (
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// SkillView is the derived, read-only state of one skill.
type SkillView struct {
	Key       string            `json:"key"`
	Namespace ruleset.Namespace `json:"namespace"`
	Attribute ruleset.Attribute `json:"attribute,omitempty"`
	FreeRank  int               `json:"free_rank,omitempty"`
	// BaseTalent is the purchased rank; always zero for core skills.
	BaseTalent int `json:"base_talent"`
	// Bonus is the talent granted by selected module options.
	Bonus  int    `json:"bonus,omitempty"`
	Talent int    `json:"talent"`
	Tier   int    `json:"tier"`
	Die    int    `json:"die"`
	Dice   string `json:"dice"`
}

// AttributeView is one attribute value.
type AttributeView struct {
	Attribute ruleset.Attribute `json:"attribute"`
	Value     int               `json:"value"`
}

// BudgetView is one pool as shown to callers.
type BudgetView struct {
	Pool      budget.Pool `json:"pool"`
	Base      int         `json:"base"`
	Bonus     int         `json:"bonus"`
	Spent     int         `json:"spent"`
	Remaining int         `json:"remaining"`
}

// ModuleView is one attached module.
type ModuleView struct {
	ModuleID string             `json:"module_id"`
	Name     string             `json:"name,omitempty"`
	Type     catalog.ModuleType `json:"type,omitempty"`
	Options  []string           `json:"options"`
}

// Snapshot is the full read model of the character under edit.
type Snapshot struct {
	CharacterID string          `json:"character_id"`
	Name        string          `json:"name"`
	AncestryID  string          `json:"ancestry_id,omitempty"`
	CultureID   string          `json:"culture_id,omitempty"`
	TraitIDs    []string        `json:"trait_ids,omitempty"`
	Attributes  []AttributeView `json:"attributes"`
	Skills      []SkillView     `json:"skills"`
	Budgets     []BudgetView    `json:"budgets"`
	Modules     []ModuleView    `json:"modules"`
}

// Budget returns the pool view, or false when absent.
func (s Snapshot) Budget(pool budget.Pool) (BudgetView, bool) {
	for _, b := range s.Budgets {
		if b.Pool == pool {
			return b, true
		}
	}
	return BudgetView{}, false
}

// Snapshot renders the current state.
func (l *Ledger) Snapshot() Snapshot {
	c := l.char
	snap := Snapshot{
		CharacterID: c.ID,
		Name:        c.Name,
		AncestryID:  c.AncestryID,
		CultureID:   c.CultureID,
		TraitIDs:    append([]string(nil), c.TraitIDs...),
		Skills:      l.Skills(),
	}
	for _, attr := range l.rules.Attributes() {
		snap.Attributes = append(snap.Attributes, AttributeView{Attribute: attr, Value: c.Attributes[attr]})
	}
	budgets := l.budgets(c)
	for _, pool := range budget.Pools {
		b := budgets[pool]
		snap.Budgets = append(snap.Budgets, BudgetView{
			Pool:      pool,
			Base:      b.Base,
			Bonus:     b.Bonus,
			Spent:     b.Spent,
			Remaining: b.Remaining(),
		})
	}
	for _, m := range c.Modules {
		view := ModuleView{ModuleID: m.ModuleID, Options: make([]string, 0, len(m.SelectedOptions))}
		if def, ok := l.index.Module(m.ModuleID); ok {
			view.Name = def.Name
			view.Type = def.Type
		}
		for _, opt := range m.SelectedOptions {
			view.Options = append(view.Options, opt.Location.String())
		}
		snap.Modules = append(snap.Modules, view)
	}
	return snap
}
