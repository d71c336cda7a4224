// Package ruleset defines the constants a build ledger enforces: attributes,
// skills, free ranks, pool allotments and the die-tier table.
package ruleset

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

// Attribute names one of the character's core stats.
type Attribute string

const (
	Physique  Attribute = "physique"
	Finesse   Attribute = "finesse"
	Mind      Attribute = "mind"
	Knowledge Attribute = "knowledge"
	Social    Attribute = "social"
)

// Namespace groups skills. Only purchasable namespaces draw on the Talent pool.
type Namespace string

const (
	NamespaceCore     Namespace = "core"
	NamespaceWeapon   Namespace = "weapon"
	NamespaceMagic    Namespace = "magic"
	NamespaceCrafting Namespace = "crafting"
)

// Purchasable reports whether ranks in the namespace are bought with talent points.
func (n Namespace) Purchasable() bool {
	switch n {
	case NamespaceWeapon, NamespaceMagic, NamespaceCrafting:
		return true
	default:
		return false
	}
}

// SkillDef describes one skill key.
type SkillDef struct {
	Key       string    `yaml:"key"`
	Namespace Namespace `yaml:"namespace"`
	// Attribute is set for core skills; their dice count follows it.
	Attribute Attribute `yaml:"attribute,omitempty"`
	// FreeRank is the innate rank that costs no talent points.
	FreeRank int `yaml:"free_rank,omitempty"`
	// Code is the data-code digit or letter used by content grants.
	Code string `yaml:"code"`
}

// Definition is the serialisable form of a ruleset.
type Definition struct {
	Version             string      `yaml:"version"`
	Attributes          []Attribute `yaml:"attributes"`
	AttributeFloor      int         `yaml:"attribute_floor"`
	AttributeCeiling    int         `yaml:"attribute_ceiling"`
	TalentCap           int         `yaml:"talent_cap"`
	BaseAttributePoints int         `yaml:"base_attribute_points"`
	BaseTalentPoints    int         `yaml:"base_talent_points"`
	BaseModulePoints    int         `yaml:"base_module_points"`
	DieTiers            []int       `yaml:"die_tiers"`
	Skills              []SkillDef  `yaml:"skills"`
}

// Ruleset is an immutable, indexed Definition. Construct with New, Load or Default.
type Ruleset struct {
	def        Definition
	skills     map[string]SkillDef
	attributes map[Attribute]bool
	byCode     map[Namespace]map[string]string
	byAttr     map[Attribute][]string
}

// New validates def and indexes it.
func New(def Definition) (*Ruleset, error) {
	if err := validate(def); err != nil {
		return nil, err
	}
	r := &Ruleset{
		def:        cloneDefinition(def),
		skills:     make(map[string]SkillDef, len(def.Skills)),
		attributes: make(map[Attribute]bool, len(def.Attributes)),
		byCode:     map[Namespace]map[string]string{},
		byAttr:     map[Attribute][]string{},
	}
	for _, attr := range def.Attributes {
		r.attributes[attr] = true
	}
	for _, skill := range def.Skills {
		r.skills[skill.Key] = skill
		if r.byCode[skill.Namespace] == nil {
			r.byCode[skill.Namespace] = map[string]string{}
		}
		if skill.Code != "" {
			r.byCode[skill.Namespace][skill.Code] = skill.Key
		}
		if skill.Attribute != "" {
			r.byAttr[skill.Attribute] = append(r.byAttr[skill.Attribute], skill.Key)
		}
	}
	return r, nil
}

// Load decodes a YAML ruleset definition.
func Load(reader io.Reader) (*Ruleset, error) {
	var def Definition
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode ruleset: %w", err)
	}
	return New(def)
}

// Definition returns a copy of the underlying definition.
func (r *Ruleset) Definition() Definition { return cloneDefinition(r.def) }

func (r *Ruleset) Version() string               { return r.def.Version }
func (r *Ruleset) AttributeFloor() int           { return r.def.AttributeFloor }
func (r *Ruleset) AttributeCeiling() int         { return r.def.AttributeCeiling }
func (r *Ruleset) TalentCap() int                { return r.def.TalentCap }
func (r *Ruleset) BaseAttributePoints() int      { return r.def.BaseAttributePoints }
func (r *Ruleset) BaseTalentPoints() int         { return r.def.BaseTalentPoints }
func (r *Ruleset) BaseModulePoints() int         { return r.def.BaseModulePoints }
func (r *Ruleset) Attributes() []Attribute       { return append([]Attribute(nil), r.def.Attributes...) }
func (r *Ruleset) HasAttribute(a Attribute) bool { return r.attributes[a] }

// Skills returns every skill definition in declaration order.
func (r *Ruleset) Skills() []SkillDef { return append([]SkillDef(nil), r.def.Skills...) }

// Skill looks up a skill definition by key.
func (r *Ruleset) Skill(key string) (SkillDef, bool) {
	skill, ok := r.skills[key]
	return skill, ok
}

// FreeRank returns the innate rank of key, zero for unknown keys.
func (r *Ruleset) FreeRank(key string) int {
	return r.skills[key].FreeRank
}

// SkillsOf returns the keys of the core skills owned by attr.
func (r *Ruleset) SkillsOf(attr Attribute) []string {
	return append([]string(nil), r.byAttr[attr]...)
}

// SkillByCode resolves a content data code inside a namespace.
func (r *Ruleset) SkillByCode(ns Namespace, code string) (string, bool) {
	key, ok := r.byCode[ns][code]
	return key, ok
}

// Die returns the die size for a tier index, clamping to the table bounds.
func (r *Ruleset) Die(tier int) int {
	return r.def.DieTiers[r.ClampTier(tier)]
}

// ClampTier clamps a tier index to the defined table.
func (r *Ruleset) ClampTier(tier int) int {
	if tier < 0 {
		return 0
	}
	if last := len(r.def.DieTiers) - 1; tier > last {
		return last
	}
	return tier
}

func validate(def Definition) error {
	invalid := func(reason string) error {
		return apperrors.WithMetadata(apperrors.CodeRulesetInvalid, "invalid ruleset: "+reason, map[string]string{"Reason": reason})
	}
	if len(def.Attributes) == 0 {
		return invalid("at least one attribute is required")
	}
	if def.AttributeFloor > def.AttributeCeiling {
		return invalid("attribute floor exceeds ceiling")
	}
	if def.TalentCap < 0 {
		return invalid("talent cap must not be negative")
	}
	if def.BaseAttributePoints < 0 || def.BaseTalentPoints < 0 || def.BaseModulePoints < 0 {
		return invalid("base pool allotments must not be negative")
	}
	if len(def.DieTiers) == 0 {
		return invalid("die tier table is empty")
	}
	if !sort.IntsAreSorted(def.DieTiers) {
		return invalid("die tiers must be ascending")
	}

	attrs := make(map[Attribute]bool, len(def.Attributes))
	for _, attr := range def.Attributes {
		if attrs[attr] {
			return invalid("duplicate attribute " + string(attr))
		}
		attrs[attr] = true
	}
	seen := map[string]bool{}
	codes := map[string]bool{}
	for _, skill := range def.Skills {
		key := strings.TrimSpace(skill.Key)
		if key == "" {
			return invalid("skill key is required")
		}
		if seen[key] {
			return invalid("duplicate skill " + key)
		}
		seen[key] = true
		switch skill.Namespace {
		case NamespaceCore:
			if !attrs[skill.Attribute] {
				return invalid("core skill " + key + " needs a known attribute")
			}
			if skill.FreeRank != 0 {
				return invalid("core skill " + key + " cannot carry a free rank")
			}
		case NamespaceWeapon, NamespaceMagic, NamespaceCrafting:
			if skill.FreeRank < 0 || skill.FreeRank > def.TalentCap {
				return invalid("free rank of " + key + " is outside [0, " + strconv.Itoa(def.TalentCap) + "]")
			}
		default:
			return invalid("skill " + key + " has unknown namespace " + string(skill.Namespace))
		}
		if skill.Code != "" {
			codeKey := string(skill.Namespace) + "/" + skill.Code
			if codes[codeKey] {
				return invalid("duplicate data code " + codeKey)
			}
			codes[codeKey] = true
		}
	}
	return nil
}

func cloneDefinition(def Definition) Definition {
	out := def
	out.Attributes = append([]Attribute(nil), def.Attributes...)
	out.DieTiers = append([]int(nil), def.DieTiers...)
	out.Skills = append([]SkillDef(nil), def.Skills...)
	return out
}
