package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/buildledger/internal/services/ledger/storage"
)

// CreateCharacter inserts one character document.
func (s *Store) CreateCharacter(ctx context.Context, doc storage.CharacterDocument) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return fmt.Errorf("character id is required")
	}
	createdAt := doc.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	updatedAt := doc.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (id, name, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(doc.Name),
		string(doc.Document),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create character: %w", err)
	}
	return nil
}

// GetCharacter returns one character document by id.
func (s *Store) GetCharacter(ctx context.Context, id string) (storage.CharacterDocument, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterDocument{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.CharacterDocument{}, fmt.Errorf("character id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, document, created_at, updated_at
		   FROM characters
		  WHERE id = ?`,
		id,
	)
	doc, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CharacterDocument{}, storage.ErrNotFound
		}
		return storage.CharacterDocument{}, fmt.Errorf("get character: %w", err)
	}
	return doc, nil
}

// UpdateCharacter replaces the name and document of an existing character.
func (s *Store) UpdateCharacter(ctx context.Context, doc storage.CharacterDocument) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return fmt.Errorf("character id is required")
	}
	updatedAt := doc.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE characters
		    SET name = ?, document = ?, updated_at = ?
		  WHERE id = ?`,
		strings.TrimSpace(doc.Name),
		string(doc.Document),
		toMillis(updatedAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListCharacters returns one page of characters ordered by id.
func (s *Store) ListCharacters(ctx context.Context, pageSize int, pageToken string) (storage.CharacterPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CharacterPage{}, err
	}
	if pageSize <= 0 {
		return storage.CharacterPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, document, created_at, updated_at
		   FROM characters
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	page := storage.CharacterPage{Characters: make([]storage.CharacterDocument, 0, pageSize)}
	for rows.Next() {
		doc, err := scanCharacter(rows)
		if err != nil {
			return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
		}
		page.Characters = append(page.Characters, doc)
	}
	if err := rows.Err(); err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	if len(page.Characters) > pageSize {
		page.NextPageToken = page.Characters[pageSize-1].ID
		page.Characters = page.Characters[:pageSize]
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (storage.CharacterDocument, error) {
	var doc storage.CharacterDocument
	var document string
	var createdAt, updatedAt int64
	if err := row.Scan(&doc.ID, &doc.Name, &document, &createdAt, &updatedAt); err != nil {
		return storage.CharacterDocument{}, err
	}
	doc.Document = []byte(document)
	doc.CreatedAt = fromMillis(createdAt)
	doc.UpdatedAt = fromMillis(updatedAt)
	return doc, nil
}
