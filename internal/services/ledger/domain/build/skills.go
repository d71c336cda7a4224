package build

import (
	"strconv"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Attribute returns the current value of attr.
func (l *Ledger) Attribute(attr ruleset.Attribute) (int, error) {
	if !l.rules.HasAttribute(attr) {
		return 0, unknownAttribute(attr)
	}
	return l.char.Attributes[attr], nil
}

// Skill returns the derived view of key.
func (l *Ledger) Skill(key string) (SkillView, error) {
	if _, ok := l.rules.Skill(key); !ok {
		return SkillView{}, unknownSkill(key)
	}
	return l.skillView(l.char, key), nil
}

// Skills returns every skill in ruleset order.
func (l *Ledger) Skills() []SkillView {
	defs := l.rules.Skills()
	out := make([]SkillView, 0, len(defs))
	for _, def := range defs {
		out = append(out, l.skillView(l.char, def.Key))
	}
	return out
}

// SetAttribute sets attr to value, spending or refunding attribute points.
// Skills owned by attr follow automatically.
func (l *Ledger) SetAttribute(attr ruleset.Attribute, value int) (Snapshot, error) {
	if !l.rules.HasAttribute(attr) {
		return Snapshot{}, unknownAttribute(attr)
	}
	floor, ceiling := l.rules.AttributeFloor(), l.rules.AttributeCeiling()
	if value < floor || value > ceiling {
		return Snapshot{}, outOfRange(string(attr), floor, ceiling)
	}
	delta := value - l.char.Attributes[attr]
	if err := l.Budget(budget.PoolAttribute).Propose(delta); err != nil {
		return Snapshot{}, err
	}
	return l.commit(func(next *character.Character) error {
		next.Attributes[attr] = value
		return nil
	})
}

// SetSkillBaseTalent sets the purchased rank of a weapon, magic or crafting
// skill. Ranks up to the free rank cost nothing.
func (l *Ledger) SetSkillBaseTalent(key string, value int) (Snapshot, error) {
	def, ok := l.rules.Skill(key)
	if !ok {
		return Snapshot{}, unknownSkill(key)
	}
	if !def.Namespace.Purchasable() {
		return Snapshot{}, apperrors.WithMetadata(apperrors.CodeLedgerForbidden,
			"core skill "+key+" follows its attribute",
			map[string]string{"Skill": key, "Reason": "core skills follow their attribute"})
	}
	if value < 0 || value > l.rules.TalentCap() {
		return Snapshot{}, outOfRange(key, 0, l.rules.TalentCap())
	}
	old := l.char.Skills[key]
	delta := budget.SkillCost(l.rules, key, value) - budget.SkillCost(l.rules, key, old)
	if err := l.Budget(budget.PoolTalent).Propose(delta); err != nil {
		return Snapshot{}, err
	}
	return l.commit(func(next *character.Character) error {
		next.Skills[key] = value
		return nil
	})
}

// skillView derives talent and die for key from the attribute, the purchased
// rank and the grants of every selected module option.
func (l *Ledger) skillView(c *character.Character, key string) SkillView {
	def, _ := l.rules.Skill(key)
	view := SkillView{Key: key, Namespace: def.Namespace, Attribute: def.Attribute, FreeRank: def.FreeRank}

	var talentBonus, valueBonus, tierShift int
	for _, g := range l.moduleGrants(c) {
		if g.Kind == catalog.GrantAttributeTalent {
			if def.Namespace == ruleset.NamespaceCore && g.Attribute == def.Attribute {
				talentBonus += g.Amount
			}
			continue
		}
		if g.Skill != key {
			continue
		}
		switch g.Kind {
		case catalog.GrantSkillTalent:
			talentBonus += g.Amount
		case catalog.GrantSkillValue:
			valueBonus += g.Amount
		case catalog.GrantSkillTier:
			tierShift += g.Amount
		}
	}

	if def.Namespace.Purchasable() {
		view.BaseTalent = c.Skills[key]
		view.Talent = view.BaseTalent + talentBonus
	} else {
		view.Talent = c.Attributes[def.Attribute] + talentBonus
	}
	view.Bonus = talentBonus
	view.Tier = l.rules.ClampTier(valueBonus + tierShift)
	view.Die = l.rules.Die(view.Tier)
	view.Dice = diceExpression(view.Talent, view.Die)
	return view
}

func (l *Ledger) moduleGrants(c *character.Character) []catalog.Grant {
	var grants []catalog.Grant
	for _, m := range c.Modules {
		def, ok := l.index.Module(m.ModuleID)
		if !ok {
			continue
		}
		for _, sel := range m.SelectedOptions {
			if opt, ok := def.Option(sel.Location); ok {
				grants = append(grants, opt.Grants...)
			}
		}
	}
	return grants
}

func diceExpression(count, die int) string {
	if count <= 0 {
		return "No dice"
	}
	return strconv.Itoa(count) + "d" + strconv.Itoa(die)
}

func unknownAttribute(attr ruleset.Attribute) error {
	return apperrors.WithMetadata(apperrors.CodeLedgerUnknownAttribute,
		"unknown attribute "+string(attr), map[string]string{"Attribute": string(attr)})
}

func unknownSkill(key string) error {
	return apperrors.WithMetadata(apperrors.CodeLedgerUnknownSkill,
		"unknown skill "+key, map[string]string{"Skill": key})
}

func outOfRange(field string, min, max int) error {
	return apperrors.WithMetadata(apperrors.CodeLedgerOutOfRange,
		field+" must be in range "+strconv.Itoa(min)+".."+strconv.Itoa(max),
		map[string]string{"Field": field, "Min": strconv.Itoa(min), "Max": strconv.Itoa(max)})
}
