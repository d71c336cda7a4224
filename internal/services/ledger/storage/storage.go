// Package storage defines persistence contracts for build ledger state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// CharacterDocument stores one persisted character. Document is the JSON
// character document; fields the ledger does not own are preserved verbatim.
type CharacterDocument struct {
	ID        string
	Name      string
	Document  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacterPage stores one page of character documents.
type CharacterPage struct {
	Characters    []CharacterDocument
	NextPageToken string
}

// CharacterStore persists character documents.
type CharacterStore interface {
	CreateCharacter(ctx context.Context, doc CharacterDocument) error
	GetCharacter(ctx context.Context, id string) (CharacterDocument, error)
	UpdateCharacter(ctx context.Context, doc CharacterDocument) error
	ListCharacters(ctx context.Context, pageSize int, pageToken string) (CharacterPage, error)
}

// ContentOption is one persisted option of a content definition. Data keeps
// the raw data-code string.
type ContentOption struct {
	Location    string `json:"location,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Data        string `json:"data,omitempty"`
}

// ContentDefinition stores one catalog definition.
type ContentDefinition struct {
	Kind string
	ID   string
	Name string
	// Category holds the module type for modules and is empty otherwise.
	Category  string
	Options   []ContentOption
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContentStore persists catalog definitions.
type ContentStore interface {
	PutContentDefinition(ctx context.Context, def ContentDefinition) error
	GetContentDefinition(ctx context.Context, kind, id string) (ContentDefinition, error)
	ListContentDefinitions(ctx context.Context, kind string) ([]ContentDefinition, error)
}
