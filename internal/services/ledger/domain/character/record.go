package character

import (
	"sort"
	"time"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Record is the persisted, partially trusted shape of a character. Records
// written by older clients may lack BaseTalent, carry a single legacy trait,
// or overspend their pools; reconciliation repairs them before FromRecord.
type Record struct {
	ID             string
	Name           string
	AncestryID     string
	CultureID      string
	Traits         []string
	LegacyTraitID  string
	Attributes     map[string]int
	Skills         map[string]SkillRecord
	Modules        []ModuleRecord
	ModulePoints   int
	AttributeBonus int

	// Cached pool totals, refreshed on every save.
	TotalTalentPoints    int
	SpentTalentPoints    int
	TotalAttributePoints int
	SpentAttributePoints int
	TotalModulePoints    int
	SpentModulePoints    int
}

// SkillRecord is one persisted skill. BaseTalent is nil on legacy records.
type SkillRecord struct {
	Talent     int
	BaseTalent *int
}

// ModuleRecord is one persisted module join entry.
type ModuleRecord struct {
	ModuleID        string
	SelectedOptions []OptionRecord
}

// OptionRecord is a persisted option selection.
type OptionRecord struct {
	Location   string
	SelectedAt time.Time
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.Traits = append([]string(nil), r.Traits...)
	if r.Attributes != nil {
		out.Attributes = make(map[string]int, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	if r.Skills != nil {
		out.Skills = make(map[string]SkillRecord, len(r.Skills))
		for k, v := range r.Skills {
			if v.BaseTalent != nil {
				base := *v.BaseTalent
				v.BaseTalent = &base
			}
			out.Skills[k] = v
		}
	}
	out.Modules = make([]ModuleRecord, len(r.Modules))
	for i, m := range r.Modules {
		out.Modules[i] = ModuleRecord{
			ModuleID:        m.ModuleID,
			SelectedOptions: append([]OptionRecord(nil), m.SelectedOptions...),
		}
	}
	return out
}

// SkillKeys returns the record's skill keys in lexical order.
func (r Record) SkillKeys() []string {
	keys := make([]string, 0, len(r.Skills))
	for k := range r.Skills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromRecord converts a migrated record into a Character. Values the ruleset
// cannot represent are dropped: unknown attributes and skills, core skill
// entries, and options with unparsable locations. Missing attributes and
// skills start at their floor.
func FromRecord(rules *ruleset.Ruleset, rec Record) *Character {
	c := New(rules, rec.ID, rec.Name)
	c.AncestryID = rec.AncestryID
	c.CultureID = rec.CultureID
	c.TraitIDs = append([]string(nil), rec.Traits...)
	c.ModulePoints = rec.ModulePoints
	c.AdditionalAttributePoints = rec.AttributeBonus

	for key, value := range rec.Attributes {
		attr := ruleset.Attribute(key)
		if rules.HasAttribute(attr) {
			c.Attributes[attr] = value
		}
	}
	for key, skill := range rec.Skills {
		def, ok := rules.Skill(key)
		if !ok || !def.Namespace.Purchasable() {
			continue
		}
		base := skill.Talent
		if skill.BaseTalent != nil {
			base = *skill.BaseTalent
		}
		c.Skills[key] = base
	}
	for _, m := range rec.Modules {
		mod := Module{ModuleID: m.ModuleID}
		for _, opt := range m.SelectedOptions {
			loc, err := catalog.ParseLocation(opt.Location)
			if err != nil {
				continue
			}
			mod.SelectedOptions = append(mod.SelectedOptions, SelectedOption{Location: loc, SelectedAt: opt.SelectedAt})
		}
		c.Modules = append(c.Modules, mod)
	}
	return c
}

// ToRecord renders c for persistence. talent supplies the effective rank
// written beside each purchased rank; pass nil to write the purchased rank.
func ToRecord(c *Character, talent func(key string) int) Record {
	rec := Record{
		ID:             c.ID,
		Name:           c.Name,
		AncestryID:     c.AncestryID,
		CultureID:      c.CultureID,
		Traits:         append([]string(nil), c.TraitIDs...),
		Attributes:     make(map[string]int, len(c.Attributes)),
		Skills:         make(map[string]SkillRecord, len(c.Skills)),
		ModulePoints:   c.ModulePoints,
		AttributeBonus: c.AdditionalAttributePoints,
	}
	for attr, v := range c.Attributes {
		rec.Attributes[string(attr)] = v
	}
	for key, base := range c.Skills {
		effective := base
		if talent != nil {
			effective = talent(key)
		}
		rec.Skills[key] = SkillRecord{Talent: effective, BaseTalent: &base}
	}
	for _, m := range c.Modules {
		mr := ModuleRecord{ModuleID: m.ModuleID}
		for _, opt := range m.SelectedOptions {
			mr.SelectedOptions = append(mr.SelectedOptions, OptionRecord{Location: opt.Location.String(), SelectedAt: opt.SelectedAt})
		}
		rec.Modules = append(rec.Modules, mr)
	}
	return rec
}
