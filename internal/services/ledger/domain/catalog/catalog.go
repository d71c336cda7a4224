// Package catalog holds the immutable reference definitions a character build
// draws on: ancestries, cultures, traits and modules.
//
// The legacy free-text data strings carried by options are parsed exactly once,
// when an Option is constructed; the rest of the ledger only reads Grants.
package catalog

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
)

// Kind classifies a definition.
type Kind string

const (
	KindAncestry Kind = "ancestry"
	KindCulture  Kind = "culture"
	KindTrait    Kind = "trait"
	KindModule   Kind = "module"
)

// Kinds lists every definition kind.
var Kinds = []Kind{KindAncestry, KindCulture, KindTrait, KindModule}

// ModuleType classifies modules. Personality modules are mutually exclusive.
type ModuleType string

const (
	ModuleCore        ModuleType = "core"
	ModuleSecondary   ModuleType = "secondary"
	ModulePersonality ModuleType = "personality"
	ModuleRacial      ModuleType = "racial"
	ModuleCultural    ModuleType = "cultural"
)

// Option is one entry in a definition's option list.
type Option struct {
	// Location is zero for ancestry, culture and trait options that carry none.
	Location    Location
	Name        string
	Description string
	// Data is the raw legacy payload, kept for round-tripping only.
	Data   string
	Grants []Grant
}

// NewOption parses location and data once.
func NewOption(rules *ruleset.Ruleset, location, name, description, data string) (Option, error) {
	opt := Option{
		Name:        name,
		Description: description,
		Data:        data,
		Grants:      ParseData(rules, data),
	}
	if strings.TrimSpace(location) != "" {
		loc, err := ParseLocation(strings.TrimSpace(location))
		if err != nil {
			return Option{}, err
		}
		opt.Location = loc
	}
	return opt, nil
}

// GrantTotal sums the option's grants of kind.
func (o Option) GrantTotal(kind GrantKind) int {
	total := 0
	for _, g := range o.Grants {
		if g.Kind == kind {
			total += g.Amount
		}
	}
	return total
}

// Definition is an immutable catalog entry.
type Definition struct {
	Kind Kind
	ID   string
	Name string
	// Type is only meaningful for modules.
	Type    ModuleType
	Options []Option
}

// Validate checks structural rules: modules need a tier-1 option and unique
// option locations.
func (d Definition) Validate() error {
	invalid := func(reason string) error {
		return apperrors.WithMetadata(apperrors.CodeCatalogInvalidDefinition,
			"invalid "+string(d.Kind)+" "+d.ID+": "+reason,
			map[string]string{"ID": d.ID, "Reason": reason})
	}
	if strings.TrimSpace(d.ID) == "" {
		return invalid("id is required")
	}
	switch d.Kind {
	case KindAncestry, KindCulture, KindTrait:
		return nil
	case KindModule:
	default:
		return invalid("unknown kind " + string(d.Kind))
	}

	switch d.Type {
	case ModuleCore, ModuleSecondary, ModulePersonality, ModuleRacial, ModuleCultural:
	default:
		return invalid("unknown module type " + string(d.Type))
	}
	seen := map[Location]bool{}
	hasTierOne := false
	for _, opt := range d.Options {
		if !opt.Location.Valid() {
			return invalid("module option " + opt.Name + " has no location")
		}
		if seen[opt.Location] {
			return invalid("duplicate location " + opt.Location.String())
		}
		seen[opt.Location] = true
		hasTierOne = hasTierOne || opt.Location.IsTierOne()
	}
	if !hasTierOne {
		return invalid("module has no tier-1 option")
	}
	return nil
}

// Option returns the option at loc.
func (d Definition) Option(loc Location) (Option, bool) {
	for _, opt := range d.Options {
		if opt.Location == loc {
			return opt, true
		}
	}
	return Option{}, false
}

// TierOne returns the first tier-1 option of a module.
func (d Definition) TierOne() (Option, bool) {
	for _, opt := range d.Options {
		if opt.Location.IsTierOne() {
			return opt, true
		}
	}
	return Option{}, false
}

// MaxTier returns the deepest tier among the options.
func (d Definition) MaxTier() int {
	max := 0
	for _, opt := range d.Options {
		if opt.Location.Tier > max {
			max = opt.Location.Tier
		}
	}
	return max
}

// GrantTotal sums grants of kind over every option.
func (d Definition) GrantTotal(kind GrantKind) int {
	total := 0
	for _, opt := range d.Options {
		total += opt.GrantTotal(kind)
	}
	return total
}

// IsPersonality reports whether d is a personality module.
func (d Definition) IsPersonality() bool {
	return d.Kind == KindModule && d.Type == ModulePersonality
}

// Client reads definitions from a backing store.
type Client interface {
	GetDefinition(ctx context.Context, kind Kind, id string) (Definition, error)
	ListDefinitions(ctx context.Context, kind Kind) ([]Definition, error)
}

// Refs names the definitions a character references.
type Refs struct {
	AncestryID string
	CultureID  string
	TraitIDs   []string
}

// Resolve loads every module plus the character's ancestry, culture and
// traits into an Index. Missing references are omitted, not errors, so a
// character with stale references can still be loaded and repaired.
func Resolve(ctx context.Context, client Client, refs Refs) (*Index, error) {
	modules, err := client.ListDefinitions(ctx, KindModule)
	if err != nil {
		return nil, err
	}
	defs := append([]Definition(nil), modules...)

	fetch := func(kind Kind, id string) error {
		if strings.TrimSpace(id) == "" {
			return nil
		}
		def, err := client.GetDefinition(ctx, kind, id)
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		defs = append(defs, def)
		return nil
	}
	if err := fetch(KindAncestry, refs.AncestryID); err != nil {
		return nil, err
	}
	if err := fetch(KindCulture, refs.CultureID); err != nil {
		return nil, err
	}
	for _, id := range uniqueStrings(refs.TraitIDs) {
		if err := fetch(KindTrait, id); err != nil {
			return nil, err
		}
	}
	return NewIndex(defs...)
}

// Index is an in-memory, read-only lookup over resolved definitions.
// Edit operations use it so they never block on I/O.
type Index struct {
	defs map[Kind]map[string]Definition
}

// NewIndex indexes defs, rejecting duplicates and invalid definitions.
func NewIndex(defs ...Definition) (*Index, error) {
	idx := &Index{defs: map[Kind]map[string]Definition{}}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if idx.defs[def.Kind] == nil {
			idx.defs[def.Kind] = map[string]Definition{}
		}
		if _, exists := idx.defs[def.Kind][def.ID]; exists {
			return nil, apperrors.WithMetadata(apperrors.CodeAlreadyExists,
				"duplicate "+string(def.Kind)+" "+def.ID,
				map[string]string{"Kind": string(def.Kind), "ID": def.ID})
		}
		idx.defs[def.Kind][def.ID] = def
	}
	return idx, nil
}

// Get returns the definition of kind with id.
func (i *Index) Get(kind Kind, id string) (Definition, bool) {
	if i == nil {
		return Definition{}, false
	}
	def, ok := i.defs[kind][id]
	return def, ok
}

// Module returns the module with id.
func (i *Index) Module(id string) (Definition, bool) { return i.Get(KindModule, id) }

// List returns every definition of kind ordered by id.
func (i *Index) List(kind Kind) []Definition {
	if i == nil {
		return nil
	}
	out := make([]Definition, 0, len(i.defs[kind]))
	for _, def := range i.defs[kind] {
		out = append(out, def)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
