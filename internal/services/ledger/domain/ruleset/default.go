package ruleset

// DefaultVersion identifies the shipped ruleset.
const DefaultVersion = "1.0.0"

var defaultRuleset = mustNew(DefaultDefinition())

// Default returns the shipped ruleset.
func Default() *Ruleset {
	return defaultRuleset
}

// DefaultDefinition returns the shipped ruleset definition.
func DefaultDefinition() Definition {
	return Definition{
		Version:             DefaultVersion,
		Attributes:          []Attribute{Physique, Finesse, Mind, Knowledge, Social},
		AttributeFloor:      1,
		AttributeCeiling:    4,
		TalentCap:           4,
		BaseAttributePoints: 6,
		BaseTalentPoints:    8,
		BaseModulePoints:    0,
		DieTiers:            []int{4, 6, 8, 10, 12, 16, 20, 24},
		Skills: []SkillDef{
			{Key: "fitness", Namespace: NamespaceCore, Attribute: Physique, Code: "A"},
			{Key: "deflection", Namespace: NamespaceCore, Attribute: Physique, Code: "B"},
			{Key: "might", Namespace: NamespaceCore, Attribute: Physique, Code: "C"},
			{Key: "endurance", Namespace: NamespaceCore, Attribute: Physique, Code: "D"},
			{Key: "evasion", Namespace: NamespaceCore, Attribute: Finesse, Code: "E"},
			{Key: "stealth", Namespace: NamespaceCore, Attribute: Finesse, Code: "F"},
			{Key: "coordination", Namespace: NamespaceCore, Attribute: Finesse, Code: "G"},
			{Key: "thievery", Namespace: NamespaceCore, Attribute: Finesse, Code: "H"},
			{Key: "resilience", Namespace: NamespaceCore, Attribute: Mind, Code: "I"},
			{Key: "concentration", Namespace: NamespaceCore, Attribute: Mind, Code: "J"},
			{Key: "senses", Namespace: NamespaceCore, Attribute: Mind, Code: "K"},
			{Key: "logic", Namespace: NamespaceCore, Attribute: Mind, Code: "L"},
			{Key: "wildcraft", Namespace: NamespaceCore, Attribute: Knowledge, Code: "M"},
			{Key: "academics", Namespace: NamespaceCore, Attribute: Knowledge, Code: "N"},
			{Key: "magic", Namespace: NamespaceCore, Attribute: Knowledge, Code: "O"},
			{Key: "medicine", Namespace: NamespaceCore, Attribute: Knowledge, Code: "P"},
			{Key: "expression", Namespace: NamespaceCore, Attribute: Social, Code: "Q"},
			{Key: "presence", Namespace: NamespaceCore, Attribute: Social, Code: "R"},
			{Key: "insight", Namespace: NamespaceCore, Attribute: Social, Code: "S"},
			{Key: "persuasion", Namespace: NamespaceCore, Attribute: Social, Code: "T"},

			{Key: "brawling", Namespace: NamespaceWeapon, FreeRank: 1, Code: "1"},
			{Key: "throwing", Namespace: NamespaceWeapon, FreeRank: 1, Code: "2"},
			{Key: "simpleMeleeWeapons", Namespace: NamespaceWeapon, FreeRank: 1, Code: "3"},
			{Key: "simpleRangedWeapons", Namespace: NamespaceWeapon, FreeRank: 1, Code: "4"},
			{Key: "complexMeleeWeapons", Namespace: NamespaceWeapon, Code: "5"},
			{Key: "complexRangedWeapons", Namespace: NamespaceWeapon, Code: "6"},

			{Key: "black", Namespace: NamespaceMagic, Code: "1"},
			{Key: "primal", Namespace: NamespaceMagic, Code: "2"},
			{Key: "meta", Namespace: NamespaceMagic, Code: "3"},
			{Key: "white", Namespace: NamespaceMagic, Code: "4"},
			{Key: "mystic", Namespace: NamespaceMagic, Code: "5"},
			{Key: "arcane", Namespace: NamespaceMagic, Code: "6"},

			{Key: "engineering", Namespace: NamespaceCrafting, Code: "1"},
			{Key: "fabrication", Namespace: NamespaceCrafting, Code: "2"},
			{Key: "alchemy", Namespace: NamespaceCrafting, Code: "3"},
			{Key: "cooking", Namespace: NamespaceCrafting, Code: "4"},
			{Key: "glyphcraft", Namespace: NamespaceCrafting, Code: "5"},
			{Key: "biosculpting", Namespace: NamespaceCrafting, Code: "6"},
		},
	}
}

func mustNew(def Definition) *Ruleset {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}
