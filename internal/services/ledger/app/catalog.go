package app

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/platform/timeouts"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	"github.com/louisbranch/buildledger/internal/services/ledger/storage"
)

// storeCatalog serves catalog definitions out of a ContentStore.
type storeCatalog struct {
	rules *ruleset.Ruleset
	store storage.ContentStore
}

var _ catalog.Client = storeCatalog{}

// NewCatalogClient returns a catalog client backed by store.
func NewCatalogClient(rules *ruleset.Ruleset, store storage.ContentStore) catalog.Client {
	return storeCatalog{rules: rules, store: store}
}

func (c storeCatalog) GetDefinition(ctx context.Context, kind catalog.Kind, id string) (catalog.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
	defer cancel()

	row, err := c.store.GetContentDefinition(ctx, string(kind), id)
	if errors.Is(err, storage.ErrNotFound) {
		return catalog.Definition{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			string(kind)+" "+id+" not found", map[string]string{"Kind": string(kind), "ID": id})
	}
	if err != nil {
		return catalog.Definition{}, err
	}
	return ToDefinition(c.rules, row)
}

func (c storeCatalog) ListDefinitions(ctx context.Context, kind catalog.Kind) ([]catalog.Definition, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
	defer cancel()

	rows, err := c.store.ListContentDefinitions(ctx, string(kind))
	if err != nil {
		return nil, err
	}
	defs := make([]catalog.Definition, 0, len(rows))
	for _, row := range rows {
		def, err := ToDefinition(c.rules, row)
		if err != nil {
			log.Printf("skip %s %s: %v", row.Kind, row.ID, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ToDefinition parses a stored definition, including its option data codes.
func ToDefinition(rules *ruleset.Ruleset, row storage.ContentDefinition) (catalog.Definition, error) {
	def := catalog.Definition{
		Kind: catalog.Kind(row.Kind),
		ID:   row.ID,
		Name: row.Name,
	}
	if def.Kind == catalog.KindModule {
		def.Type = catalog.ModuleType(row.Category)
	}
	for _, stored := range row.Options {
		opt, err := catalog.NewOption(rules, stored.Location, stored.Name, stored.Description, stored.Data)
		if err != nil {
			return catalog.Definition{}, err
		}
		def.Options = append(def.Options, opt)
	}
	if err := def.Validate(); err != nil {
		return catalog.Definition{}, err
	}
	return def, nil
}

// FromDefinition renders def for storage.
func FromDefinition(def catalog.Definition) storage.ContentDefinition {
	row := storage.ContentDefinition{
		Kind:     string(def.Kind),
		ID:       def.ID,
		Name:     def.Name,
		Category: string(def.Type),
		Options:  make([]storage.ContentOption, 0, len(def.Options)),
	}
	for _, opt := range def.Options {
		stored := storage.ContentOption{Name: opt.Name, Description: opt.Description, Data: opt.Data}
		if opt.Location.Valid() {
			stored.Location = opt.Location.String()
		}
		row.Options = append(row.Options, stored)
	}
	return row
}
