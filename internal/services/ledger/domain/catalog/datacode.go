package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// GrantKind is the structured form of one legacy data-code token.
type GrantKind string

const (
	GrantTalentPoints GrantKind = "talent_points"
	GrantModulePoints GrantKind = "module_points"
	// GrantSkillTalent adds effective talent (dice) to a skill.
	GrantSkillTalent GrantKind = "skill_talent"
	// GrantSkillValue adds to a skill's die-tier level.
	GrantSkillValue GrantKind = "skill_value"
	// GrantSkillTier shifts a skill's die one tier up or down.
	GrantSkillTier GrantKind = "skill_tier"
	// GrantAttributeTalent adds talent to every core skill of an attribute.
	GrantAttributeTalent GrantKind = "attribute_talent"
)

// Grant is one bonus carried by an option.
type Grant struct {
	Kind      GrantKind         `json:"kind" yaml:"kind"`
	Skill     string            `json:"skill,omitempty" yaml:"skill,omitempty"`
	Attribute ruleset.Attribute `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Amount    int               `json:"amount" yaml:"amount"`
}

// Pool markers. TP is the legacy spelling of UT.
var (
	poolPattern        = regexp.MustCompile(`^(UT|TP|MP)=(\d+)$`)
	attributePattern   = regexp.MustCompile(`^S([ST])([1-9])=(-?\d+)$`)
	coreSkillPattern   = regexp.MustCompile(`^S([ST])([A-T])=(-?\d+|[XY])$`)
	specializedPattern = regexp.MustCompile(`^([WMC])([ST])([1-9])=(-?\d+|[XY])$`)
)

var namespaceByLetter = map[string]ruleset.Namespace{
	"W": ruleset.NamespaceWeapon,
	"M": ruleset.NamespaceMagic,
	"C": ruleset.NamespaceCrafting,
}

// ParseData extracts structured grants from a colon-separated data string
// such as "UT=2:WT3=1:SSA=X". Unknown or malformed tokens are skipped.
func ParseData(rules *ruleset.Ruleset, data string) []Grant {
	var grants []Grant
	for _, raw := range strings.Split(data, ":") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if grant, ok := parseToken(rules, token); ok {
			grants = append(grants, grant)
		}
	}
	return grants
}

func parseToken(rules *ruleset.Ruleset, token string) (Grant, bool) {
	if m := poolPattern.FindStringSubmatch(token); m != nil {
		amount, err := strconv.Atoi(m[2])
		if err != nil {
			return Grant{}, false
		}
		kind := GrantTalentPoints
		if m[1] == "MP" {
			kind = GrantModulePoints
		}
		return Grant{Kind: kind, Amount: amount}, true
	}
	if m := attributePattern.FindStringSubmatch(token); m != nil {
		// SS<n> attribute values are never applied to a build.
		if m[1] != "T" {
			return Grant{}, false
		}
		n, _ := strconv.Atoi(m[2])
		attrs := rules.Attributes()
		amount, err := strconv.Atoi(m[3])
		if err != nil || n > len(attrs) {
			return Grant{}, false
		}
		return Grant{Kind: GrantAttributeTalent, Attribute: attrs[n-1], Amount: amount}, true
	}
	if m := coreSkillPattern.FindStringSubmatch(token); m != nil {
		skill, ok := rules.SkillByCode(ruleset.NamespaceCore, m[2])
		if !ok {
			return Grant{}, false
		}
		return skillGrant(skill, m[1], m[3])
	}
	if m := specializedPattern.FindStringSubmatch(token); m != nil {
		skill, ok := rules.SkillByCode(namespaceByLetter[m[1]], m[3])
		if !ok {
			return Grant{}, false
		}
		return skillGrant(skill, m[2], m[4])
	}
	return Grant{}, false
}

func skillGrant(skill, kind, value string) (Grant, bool) {
	switch value {
	case "X", "Y":
		if kind != "S" {
			return Grant{}, false
		}
		amount := 1
		if value == "Y" {
			amount = -1
		}
		return Grant{Kind: GrantSkillTier, Skill: skill, Amount: amount}, true
	}
	amount, err := strconv.Atoi(value)
	if err != nil {
		return Grant{}, false
	}
	if kind == "T" {
		return Grant{Kind: GrantSkillTalent, Skill: skill, Amount: amount}, true
	}
	return Grant{Kind: GrantSkillValue, Skill: skill, Amount: amount}, true
}
