// Package legacydoc reads and writes the JSON character document shared
// with older clients. Decoding is tolerant of missing fields; encoding
// patches only the fields the ledger owns and keeps everything else in the
// document untouched.
package legacydoc

import (
	"fmt"
	"time"

	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Document paths.
const (
	pathID             = "_id"
	pathName           = "name"
	pathAncestry       = "ancestry.ancestryId"
	pathCulture        = "characterCulture.cultureId"
	pathTraits         = "traits"
	pathLegacyTrait    = "characterTrait"
	pathAttributes     = "attributes"
	pathModules        = "modules"
	pathModuleEarned   = "modulePoints.earned"
	pathModuleTotal    = "modulePoints.total"
	pathModuleSpent    = "modulePoints.spent"
	pathAttributeBonus = "attributePoints.bonus"
	pathAttributeTotal = "attributePoints.total"
	pathAttributeSpent = "attributePoints.spent"
	pathTalentTotal    = "talentPoints.total"
	pathTalentSpent    = "talentPoints.spent"
)

var skillGroups = map[ruleset.Namespace]string{
	ruleset.NamespaceWeapon:   "weaponSkills",
	ruleset.NamespaceMagic:    "magicSkills",
	ruleset.NamespaceCrafting: "craftingSkills",
}

// Decode reads a character document. Skills the ruleset does not know, or
// that sit under the wrong group, are ignored.
func Decode(rules *ruleset.Ruleset, raw []byte) (character.Record, error) {
	if !gjson.ValidBytes(raw) {
		return character.Record{}, fmt.Errorf("character document is not valid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return character.Record{}, fmt.Errorf("character document must be a JSON object")
	}

	rec := character.Record{
		ID:                   doc.Get(pathID).String(),
		Name:                 doc.Get(pathName).String(),
		AncestryID:           doc.Get(pathAncestry).String(),
		CultureID:            doc.Get(pathCulture).String(),
		LegacyTraitID:        legacyTraitID(doc.Get(pathLegacyTrait)),
		AttributeBonus:       int(doc.Get(pathAttributeBonus).Int()),
		TotalAttributePoints: int(doc.Get(pathAttributeTotal).Int()),
		SpentAttributePoints: int(doc.Get(pathAttributeSpent).Int()),
		TotalTalentPoints:    int(doc.Get(pathTalentTotal).Int()),
		SpentTalentPoints:    int(doc.Get(pathTalentSpent).Int()),
		TotalModulePoints:    int(doc.Get(pathModuleTotal).Int()),
		SpentModulePoints:    int(doc.Get(pathModuleSpent).Int()),
		Attributes:           map[string]int{},
		Skills:               map[string]character.SkillRecord{},
	}
	if earned := doc.Get(pathModuleEarned); earned.Exists() {
		rec.ModulePoints = int(earned.Int())
	} else {
		rec.ModulePoints = rec.TotalModulePoints
	}

	doc.Get(pathTraits).ForEach(func(_, trait gjson.Result) bool {
		id := trait.Get("traitId").String()
		if trait.Type == gjson.String {
			id = trait.String()
		}
		if id != "" {
			rec.Traits = append(rec.Traits, id)
		}
		return true
	})

	doc.Get(pathAttributes).ForEach(func(key, value gjson.Result) bool {
		rec.Attributes[key.String()] = int(value.Int())
		return true
	})

	for ns, group := range skillGroups {
		doc.Get(group).ForEach(func(key, value gjson.Result) bool {
			def, ok := rules.Skill(key.String())
			if !ok || def.Namespace != ns {
				return true
			}
			skill := character.SkillRecord{Talent: int(value.Get("talent").Int())}
			if base := value.Get("baseTalent"); base.Exists() && base.Type == gjson.Number {
				v := int(base.Int())
				skill.BaseTalent = &v
			}
			rec.Skills[def.Key] = skill
			return true
		})
	}

	doc.Get(pathModules).ForEach(func(_, mod gjson.Result) bool {
		mr := character.ModuleRecord{ModuleID: mod.Get("moduleId").String()}
		mod.Get("selectedOptions").ForEach(func(_, opt gjson.Result) bool {
			or := character.OptionRecord{Location: opt.Get("location").String()}
			if at, err := time.Parse(time.RFC3339Nano, opt.Get("selectedAt").String()); err == nil {
				or.SelectedAt = at.UTC()
			}
			mr.SelectedOptions = append(mr.SelectedOptions, or)
			return true
		})
		rec.Modules = append(rec.Modules, mr)
		return true
	})
	return rec, nil
}

// legacyTraitID accepts both the bare id and the {traitId, ...} object form.
func legacyTraitID(v gjson.Result) string {
	switch {
	case v.IsObject():
		return v.Get("traitId").String()
	case v.Type == gjson.String:
		return v.String()
	}
	return ""
}

type traitDoc struct {
	TraitID string `json:"traitId"`
}

type moduleDoc struct {
	ModuleID        string      `json:"moduleId"`
	SelectedOptions []optionDoc `json:"selectedOptions"`
}

type optionDoc struct {
	Location   string `json:"location"`
	SelectedAt string `json:"selectedAt,omitempty"`
}

// Encode patches raw with rec. A nil or empty raw starts a new document.
func Encode(rules *ruleset.Ruleset, raw []byte, rec character.Record) ([]byte, error) {
	out := append([]byte(nil), raw...)
	if len(out) == 0 {
		out = []byte(`{}`)
	}
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	set(pathID, rec.ID)
	set(pathName, rec.Name)
	set(pathAncestry, rec.AncestryID)
	set(pathCulture, rec.CultureID)

	traits := make([]traitDoc, 0, len(rec.Traits))
	for _, id := range rec.Traits {
		traits = append(traits, traitDoc{TraitID: id})
	}
	set(pathTraits, traits)

	for key, value := range rec.Attributes {
		set(pathAttributes+"."+key, value)
	}
	for _, key := range rec.SkillKeys() {
		def, ok := rules.Skill(key)
		group, grouped := skillGroups[def.Namespace]
		if !ok || !grouped {
			continue
		}
		skill := rec.Skills[key]
		set(group+"."+key+".talent", skill.Talent)
		if skill.BaseTalent != nil {
			set(group+"."+key+".baseTalent", *skill.BaseTalent)
		}
	}

	modules := make([]moduleDoc, 0, len(rec.Modules))
	for _, m := range rec.Modules {
		md := moduleDoc{ModuleID: m.ModuleID, SelectedOptions: make([]optionDoc, 0, len(m.SelectedOptions))}
		for _, opt := range m.SelectedOptions {
			od := optionDoc{Location: opt.Location}
			if !opt.SelectedAt.IsZero() {
				od.SelectedAt = opt.SelectedAt.UTC().Format(time.RFC3339Nano)
			}
			md.SelectedOptions = append(md.SelectedOptions, od)
		}
		modules = append(modules, md)
	}
	set(pathModules, modules)

	set(pathModuleEarned, rec.ModulePoints)
	set(pathModuleTotal, rec.TotalModulePoints)
	set(pathModuleSpent, rec.SpentModulePoints)
	set(pathAttributeBonus, rec.AttributeBonus)
	set(pathAttributeTotal, rec.TotalAttributePoints)
	set(pathAttributeSpent, rec.SpentAttributePoints)
	set(pathTalentTotal, rec.TotalTalentPoints)
	set(pathTalentSpent, rec.SpentTalentPoints)
	if err != nil {
		return nil, fmt.Errorf("encode character document: %w", err)
	}

	if rec.LegacyTraitID == "" {
		if out, err = sjson.DeleteBytes(out, pathLegacyTrait); err != nil {
			return nil, fmt.Errorf("encode character document: %w", err)
		}
	} else {
		path := pathLegacyTrait
		if gjson.GetBytes(out, pathLegacyTrait).IsObject() {
			path = pathLegacyTrait + ".traitId"
		}
		if out, err = sjson.SetBytes(out, path, rec.LegacyTraitID); err != nil {
			return nil, fmt.Errorf("encode character document: %w", err)
		}
	}
	return out, nil
}
