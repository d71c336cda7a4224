package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/buildledger/internal/services/ledger/storage"
)

// PutContentDefinition inserts or replaces a content definition.
func (s *Store) PutContentDefinition(ctx context.Context, def storage.ContentDefinition) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	kind := strings.TrimSpace(def.Kind)
	id := strings.TrimSpace(def.ID)
	if kind == "" || id == "" {
		return fmt.Errorf("content kind and id are required")
	}
	options := def.Options
	if options == nil {
		options = []storage.ContentOption{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode content options: %w", err)
	}
	createdAt := def.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	updatedAt := def.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO content_definitions (kind, id, name, category, options_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(kind, id) DO UPDATE SET
		   name = excluded.name,
		   category = excluded.category,
		   options_json = excluded.options_json,
		   updated_at = excluded.updated_at`,
		kind,
		id,
		strings.TrimSpace(def.Name),
		strings.TrimSpace(def.Category),
		string(optionsJSON),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put content definition: %w", err)
	}
	return nil
}

// GetContentDefinition returns one definition by kind and id.
func (s *Store) GetContentDefinition(ctx context.Context, kind, id string) (storage.ContentDefinition, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContentDefinition{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT kind, id, name, category, options_json, created_at, updated_at
		   FROM content_definitions
		  WHERE kind = ? AND id = ?`,
		strings.TrimSpace(kind),
		strings.TrimSpace(id),
	)
	def, err := scanContent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ContentDefinition{}, storage.ErrNotFound
		}
		return storage.ContentDefinition{}, fmt.Errorf("get content definition: %w", err)
	}
	return def, nil
}

// ListContentDefinitions returns every definition of kind ordered by id.
func (s *Store) ListContentDefinitions(ctx context.Context, kind string) ([]storage.ContentDefinition, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT kind, id, name, category, options_json, created_at, updated_at
		   FROM content_definitions
		  WHERE kind = ?
		  ORDER BY id ASC`,
		strings.TrimSpace(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list content definitions: %w", err)
	}
	defer rows.Close()

	var defs []storage.ContentDefinition
	for rows.Next() {
		def, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("list content definitions: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content definitions: %w", err)
	}
	return defs, nil
}

func scanContent(row scanner) (storage.ContentDefinition, error) {
	var def storage.ContentDefinition
	var optionsJSON string
	var createdAt, updatedAt int64
	if err := row.Scan(&def.Kind, &def.ID, &def.Name, &def.Category, &optionsJSON, &createdAt, &updatedAt); err != nil {
		return storage.ContentDefinition{}, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &def.Options); err != nil {
		return storage.ContentDefinition{}, fmt.Errorf("decode options of %s %s: %w", def.Kind, def.ID, err)
	}
	def.CreatedAt = fromMillis(createdAt)
	def.UpdatedAt = fromMillis(updatedAt)
	return def, nil
}
