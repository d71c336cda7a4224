// Package character defines the character aggregate owned by a build ledger
// and the persisted record it is loaded from.
package character

import (
	"sort"
	"time"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// SelectedOption is one chosen option of an attached module.
type SelectedOption struct {
	Location   catalog.Location
	SelectedAt time.Time
}

// Module joins a character to an attached catalog module.
type Module struct {
	ModuleID        string
	SelectedOptions []SelectedOption
}

// Has reports whether loc is selected.
func (m Module) Has(loc catalog.Location) bool {
	for _, opt := range m.SelectedOptions {
		if opt.Location == loc {
			return true
		}
	}
	return false
}

// InTier returns the selected option in tier, if any.
func (m Module) InTier(tier int) (SelectedOption, bool) {
	for _, opt := range m.SelectedOptions {
		if opt.Location.Tier == tier {
			return opt, true
		}
	}
	return SelectedOption{}, false
}

// Character is the aggregate every ledger command mutates.
//
// Skills holds the purchased rank (baseTalent) of purchasable skills only.
// Core skill dice follow their attribute and are never stored.
type Character struct {
	ID         string
	Name       string
	AncestryID string
	CultureID  string
	TraitIDs   []string

	Attributes map[ruleset.Attribute]int
	Skills     map[string]int
	Modules    []Module

	// ModulePoints and AdditionalAttributePoints are awarded outside the build,
	// e.g. by advancement.
	ModulePoints              int
	AdditionalAttributePoints int
}

// New returns a character at the ruleset floor: every attribute at its
// minimum and every purchasable skill at its free rank.
func New(rules *ruleset.Ruleset, id, name string) *Character {
	c := &Character{
		ID:         id,
		Name:       name,
		Attributes: make(map[ruleset.Attribute]int),
		Skills:     make(map[string]int),
	}
	for _, attr := range rules.Attributes() {
		c.Attributes[attr] = rules.AttributeFloor()
	}
	for _, skill := range rules.Skills() {
		if skill.Namespace.Purchasable() {
			c.Skills[skill.Key] = skill.FreeRank
		}
	}
	return c
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	out := *c
	out.TraitIDs = append([]string(nil), c.TraitIDs...)
	out.Attributes = make(map[ruleset.Attribute]int, len(c.Attributes))
	for k, v := range c.Attributes {
		out.Attributes[k] = v
	}
	out.Skills = make(map[string]int, len(c.Skills))
	for k, v := range c.Skills {
		out.Skills[k] = v
	}
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = Module{
			ModuleID:        m.ModuleID,
			SelectedOptions: append([]SelectedOption(nil), m.SelectedOptions...),
		}
	}
	return &out
}

// Module returns the attached module with id.
func (c *Character) Module(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ModuleID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Attach adds an empty join entry for id. Attaching twice is a no-op.
func (c *Character) Attach(id string) {
	if _, ok := c.Module(id); ok {
		return
	}
	c.Modules = append(c.Modules, Module{ModuleID: id})
}

// Detach removes the join entry for id.
func (c *Character) Detach(id string) {
	kept := c.Modules[:0]
	for _, m := range c.Modules {
		if m.ModuleID != id {
			kept = append(kept, m)
		}
	}
	c.Modules = kept
}

// AddOption records loc on the attached module id.
func (c *Character) AddOption(id string, loc catalog.Location, at time.Time) {
	for i := range c.Modules {
		if c.Modules[i].ModuleID == id {
			c.Modules[i].SelectedOptions = append(c.Modules[i].SelectedOptions, SelectedOption{Location: loc, SelectedAt: at})
			return
		}
	}
}

// RemoveOption drops loc from the attached module id.
func (c *Character) RemoveOption(id string, loc catalog.Location) {
	for i := range c.Modules {
		if c.Modules[i].ModuleID != id {
			continue
		}
		kept := c.Modules[i].SelectedOptions[:0]
		for _, opt := range c.Modules[i].SelectedOptions {
			if opt.Location != loc {
				kept = append(kept, opt)
			}
		}
		c.Modules[i].SelectedOptions = kept
		return
	}
}

// SkillKeys returns the stored skill keys in lexical order.
func (c *Character) SkillKeys() []string {
	keys := make([]string, 0, len(c.Skills))
	for k := range c.Skills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BonusSources returns the ids of the definitions whose grants feed the
// talent and module pools.
func (c *Character) BonusSources() catalog.Refs {
	return catalog.Refs{
		AncestryID: c.AncestryID,
		CultureID:  c.CultureID,
		TraitIDs:   append([]string(nil), c.TraitIDs...),
	}
}
