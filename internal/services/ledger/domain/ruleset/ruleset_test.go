package ruleset

import (
	"strings"
	"testing"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
)

func TestDefaultFreeRanks(t *testing.T) {
	t.Parallel()

	r := Default()
	tests := map[string]int{
		"brawling":             1,
		"throwing":             1,
		"simpleMeleeWeapons":   1,
		"simpleRangedWeapons":  1,
		"complexMeleeWeapons":  0,
		"complexRangedWeapons": 0,
		"arcane":               0,
		"cooking":              0,
		"unknown":              0,
	}
	for key, want := range tests {
		if got := r.FreeRank(key); got != want {
			t.Errorf("FreeRank(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestDefaultPools(t *testing.T) {
	t.Parallel()

	r := Default()
	if r.BaseTalentPoints() != 8 {
		t.Fatalf("BaseTalentPoints = %d, want 8", r.BaseTalentPoints())
	}
	if r.BaseAttributePoints() != 6 {
		t.Fatalf("BaseAttributePoints = %d, want 6", r.BaseAttributePoints())
	}
	if r.AttributeFloor() != 1 || r.AttributeCeiling() != 4 {
		t.Fatalf("attribute range = [%d, %d], want [1, 4]", r.AttributeFloor(), r.AttributeCeiling())
	}
}

func TestSkillsOfAttribute(t *testing.T) {
	t.Parallel()

	got := strings.Join(Default().SkillsOf(Mind), ",")
	if got != "resilience,concentration,senses,logic" {
		t.Fatalf("SkillsOf(mind) = %s", got)
	}
}

func TestSkillByCode(t *testing.T) {
	t.Parallel()

	r := Default()
	tests := []struct {
		ns   Namespace
		code string
		want string
	}{
		{NamespaceWeapon, "1", "brawling"},
		{NamespaceWeapon, "6", "complexRangedWeapons"},
		{NamespaceMagic, "4", "white"},
		{NamespaceCrafting, "6", "biosculpting"},
		{NamespaceCore, "S", "insight"},
	}
	for _, tt := range tests {
		got, ok := r.SkillByCode(tt.ns, tt.code)
		if !ok || got != tt.want {
			t.Errorf("SkillByCode(%s, %s) = %q, %v, want %q", tt.ns, tt.code, got, ok, tt.want)
		}
	}
	if _, ok := r.SkillByCode(NamespaceMagic, "9"); ok {
		t.Fatal("expected unknown magic code to miss")
	}
}

func TestDieClampsToTable(t *testing.T) {
	t.Parallel()

	r := Default()
	tests := map[int]int{-3: 4, 0: 4, 2: 8, 7: 24, 12: 24}
	for tier, want := range tests {
		if got := r.Die(tier); got != want {
			t.Errorf("Die(%d) = %d, want %d", tier, got, want)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	doc := `
version: "house-1"
attributes: [physique, mind]
attribute_floor: 1
attribute_ceiling: 6
talent_cap: 5
base_attribute_points: 4
base_talent_points: 10
base_module_points: 2
die_tiers: [4, 6, 8]
skills:
  - {key: fitness, namespace: core, attribute: physique, code: A}
  - {key: brawling, namespace: weapon, free_rank: 2, code: "1"}
`
	r, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Version() != "house-1" || r.TalentCap() != 5 || r.BaseModulePoints() != 2 {
		t.Fatalf("loaded ruleset = %+v", r.Definition())
	}
	if r.FreeRank("brawling") != 2 {
		t.Fatalf("FreeRank(brawling) = %d, want 2", r.FreeRank("brawling"))
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	if _, err := Load(strings.NewReader("version: x\nsurprise: 1\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	tests := map[string]func(*Definition){
		"floor above ceiling": func(d *Definition) { d.AttributeFloor = 5 },
		"empty die table":     func(d *Definition) { d.DieTiers = nil },
		"descending dice":     func(d *Definition) { d.DieTiers = []int{8, 6} },
		"duplicate skill":     func(d *Definition) { d.Skills = append(d.Skills, d.Skills[0]) },
		"core free rank": func(d *Definition) {
			d.Skills[0].FreeRank = 1
		},
		"unknown namespace": func(d *Definition) {
			d.Skills = append(d.Skills, SkillDef{Key: "lute", Namespace: "music"})
		},
		"core without attribute": func(d *Definition) {
			d.Skills = append(d.Skills, SkillDef{Key: "luck", Namespace: NamespaceCore})
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			def := DefaultDefinition()
			mutate(&def)
			_, err := New(def)
			if !apperrors.HasCode(err, apperrors.CodeRulesetInvalid) {
				t.Fatalf("New error = %v, want %s", err, apperrors.CodeRulesetInvalid)
			}
		})
	}
}

func TestDefinitionIsCopied(t *testing.T) {
	t.Parallel()

	def := Default().Definition()
	def.Skills[0].Key = "mutated"
	if _, ok := Default().Skill("fitness"); !ok {
		t.Fatal("mutating a returned definition must not affect the ruleset")
	}
}
