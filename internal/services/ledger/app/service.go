// Package app wires the build ledger to persistence: it loads and reconciles
// characters, keeps one editing session per character, and saves them back.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/buildledger/internal/platform/i18n/catalog"
	"github.com/louisbranch/buildledger/internal/platform/id"
	platformotel "github.com/louisbranch/buildledger/internal/platform/otel"
	"github.com/louisbranch/buildledger/internal/platform/pagination"
	"github.com/louisbranch/buildledger/internal/platform/timeouts"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/build"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/reconcile"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	"github.com/louisbranch/buildledger/internal/services/ledger/storage"
	"github.com/louisbranch/buildledger/internal/services/ledger/storage/legacydoc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"
)

const tracerName = "github.com/louisbranch/buildledger/internal/services/ledger/app"

// Config holds the collaborators of a Service.
type Config struct {
	Rules      *ruleset.Ruleset
	Characters storage.CharacterStore
	Content    storage.ContentStore
	// Locale selects the language of user-facing notices.
	Locale string
	// Clock and NewID are replaceable in tests.
	Clock func() time.Time
	NewID func() (string, error)
}

// Service opens, creates and saves characters.
type Service struct {
	rules      *ruleset.Ruleset
	characters storage.CharacterStore
	catalog    catalog.Client
	printer    *message.Printer
	locale     string
	now        func() time.Time
	newID      func() (string, error)
	tracer     trace.Tracer

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Characters == nil {
		return nil, errors.New("character store is required")
	}
	if cfg.Content == nil {
		return nil, errors.New("content store is required")
	}
	rules := cfg.Rules
	if rules == nil {
		rules = ruleset.Default()
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = i18ncatalog.BaseLocale
	}
	s := &Service{
		rules:      rules,
		characters: cfg.Characters,
		catalog:    NewCatalogClient(rules, cfg.Content),
		printer:    i18ncatalog.Default().Printer(locale),
		locale:     locale,
		now:        cfg.Clock,
		newID:      cfg.NewID,
		tracer:     platformotel.Tracer(tracerName),
		sessions:   map[string]*Session{},
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = id.NewID
	}
	return s, nil
}

// Catalog returns the catalog client the service resolves definitions with.
func (s *Service) Catalog() catalog.Client { return s.catalog }

// Rules returns the enforced ruleset.
func (s *Service) Rules() *ruleset.Ruleset { return s.rules }

// Locale returns the notice locale.
func (s *Service) Locale() string { return s.locale }

// CreateInput describes a new character.
type CreateInput struct {
	Name       string
	AncestryID string
	CultureID  string
	TraitIDs   []string
}

// Create persists a new character at the ruleset floor and opens it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		err := apperrors.New(apperrors.CodeLedgerCharacterNameEmpty, "character name is required")
		recordError(span, err)
		return nil, err
	}
	characterID, err := s.newID()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("generate character id: %w", err)
	}
	span.SetAttributes(attribute.String("character.id", characterID))

	c := character.New(s.rules, characterID, name)
	c.AncestryID = strings.TrimSpace(in.AncestryID)
	c.CultureID = strings.TrimSpace(in.CultureID)
	c.TraitIDs = append([]string(nil), in.TraitIDs...)

	index, err := catalog.Resolve(ctx, s.catalog, c.BonusSources())
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	ledger := build.New(s.rules, index, c, build.WithClock(s.now))
	raw, err := legacydoc.Encode(s.rules, nil, ledger.Record())
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	now := s.now()
	doc := storage.CharacterDocument{ID: characterID, Name: name, Document: raw, CreatedAt: now, UpdatedAt: now}

	storeCtx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
	defer cancel()
	if err := s.characters.CreateCharacter(storeCtx, doc); err != nil {
		recordError(span, err)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, "character already exists",
				map[string]string{"Kind": "character", "ID": characterID}, err)
		}
		return nil, fmt.Errorf("create character: %w", err)
	}
	return s.register(&Session{id: characterID, ledger: ledger, document: raw}), nil
}

// Open loads, reconciles and registers a character. Opening a character that
// already has a session returns that session without reconciling again.
func (s *Service) Open(ctx context.Context, characterID string) (*Session, error) {
	characterID = strings.TrimSpace(characterID)
	if sess, ok := s.Session(characterID); ok {
		return sess, nil
	}

	ctx, span := s.tracer.Start(ctx, "ledger.open", trace.WithAttributes(attribute.String("character.id", characterID)))
	defer span.End()

	loaded, err := s.Load(ctx, characterID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("reconcile.correction_applied", loaded.Result.CorrectionApplied),
		attribute.Int("reconcile.points_removed", loaded.Result.PointsRemoved),
		attribute.Int("reconcile.migrated_fields", len(loaded.Result.MigratedFields)),
	)

	sess := &Session{
		id:        characterID,
		ledger:    loaded.Ledger,
		document:  loaded.Document,
		reconcile: loaded.Result,
		notices:   s.Notices(loaded.Result),
	}
	for _, notice := range sess.notices {
		log.Printf("character %s: %s", characterID, notice)
	}
	return s.register(sess), nil
}

// Loaded is a reconciled character that has not been registered.
type Loaded struct {
	Ledger   *build.Ledger
	Document []byte
	Result   reconcile.Result
}

// Load reads and reconciles a character without opening a session.
func (s *Service) Load(ctx context.Context, characterID string) (Loaded, error) {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
	defer cancel()
	doc, err := s.characters.GetCharacter(storeCtx, characterID)
	if errors.Is(err, storage.ErrNotFound) {
		return Loaded{}, apperrors.WrapWithMetadata(apperrors.CodeNotFound, "character not found",
			map[string]string{"Kind": "character", "ID": characterID}, err)
	}
	if err != nil {
		return Loaded{}, fmt.Errorf("get character: %w", err)
	}

	rec, err := legacydoc.Decode(s.rules, doc.Document)
	if err != nil {
		return Loaded{}, fmt.Errorf("decode character %s: %w", characterID, err)
	}
	if rec.ID == "" {
		rec.ID = doc.ID
	}
	if rec.Name == "" {
		rec.Name = doc.Name
	}
	refs := catalog.Refs{AncestryID: rec.AncestryID, CultureID: rec.CultureID}
	refs.TraitIDs = append(refs.TraitIDs, rec.Traits...)
	if rec.LegacyTraitID != "" && len(rec.Traits) == 0 {
		refs.TraitIDs = append(refs.TraitIDs, rec.LegacyTraitID)
	}
	index, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		return Loaded{}, fmt.Errorf("resolve catalog: %w", err)
	}

	result := reconcile.Run(s.rules, index, rec)
	return Loaded{
		Ledger:   build.New(s.rules, index, result.Character, build.WithClock(s.now)),
		Document: doc.Document,
		Result:   result,
	}, nil
}

// Notices renders the user-facing messages for a reconciliation result. It
// returns at most one message per concern.
func (s *Service) Notices(result reconcile.Result) []string {
	var notices []string
	if result.CorrectionApplied {
		notices = append(notices, s.printer.Sprintf("ledger.correction.notice", result.PointsRemoved))
	}
	if result.Unresolved > 0 {
		notices = append(notices, s.printer.Sprintf("ledger.correction.unresolved", result.Unresolved))
	}
	if n := len(result.MigratedFields); n > 0 {
		notices = append(notices, s.printer.Sprintf("ledger.correction.migrated", n))
	}
	return notices
}

// Save writes the session's character back. On failure the in-memory ledger
// is kept as is and the error is returned.
func (s *Service) Save(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "ledger.save", trace.WithAttributes(attribute.String("character.id", sess.id)))
	defer span.End()

	return sess.Do(func(ledger *build.Ledger) error {
		rec := ledger.Record()
		raw, err := legacydoc.Encode(s.rules, sess.document, rec)
		if err != nil {
			recordError(span, err)
			return err
		}
		storeCtx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
		defer cancel()
		err = s.characters.UpdateCharacter(storeCtx, storage.CharacterDocument{
			ID:        sess.id,
			Name:      rec.Name,
			Document:  raw,
			UpdatedAt: s.now(),
		})
		if err != nil {
			recordError(span, err)
			log.Printf("character %s: %s (%v)", sess.id, s.printer.Sprintf("ledger.save.failed"), err)
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.WrapWithMetadata(apperrors.CodeNotFound, "character not found",
					map[string]string{"Kind": "character", "ID": sess.id}, err)
			}
			return fmt.Errorf("save character: %w", err)
		}
		sess.document = raw
		return nil
	})
}

// listPageSize bounds ListCharacters page sizes.
var listPageSize = pagination.PageSizeConfig{Default: 20, Max: 100}

// CharacterSummary identifies one stored character.
type CharacterSummary struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// CharacterList is one page of stored characters.
type CharacterList struct {
	Characters    []CharacterSummary
	NextPageToken string
}

// List returns stored characters ordered by id.
func (s *Service) List(ctx context.Context, pageSize int, pageToken string) (CharacterList, error) {
	storeCtx, cancel := context.WithTimeout(ctx, timeouts.StorageRequest)
	defer cancel()
	page, err := s.characters.ListCharacters(storeCtx, pagination.ClampPageSize(pageSize, listPageSize), pageToken)
	if err != nil {
		return CharacterList{}, fmt.Errorf("list characters: %w", err)
	}
	list := CharacterList{NextPageToken: page.NextPageToken}
	for _, doc := range page.Characters {
		list.Characters = append(list.Characters, CharacterSummary{ID: doc.ID, Name: doc.Name, UpdatedAt: doc.UpdatedAt})
	}
	return list, nil
}

// Session returns the open session for characterID.
func (s *Service) Session(characterID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[characterID]
	return sess, ok
}

// Close forgets the session for characterID. Unsaved edits are discarded.
func (s *Service) Close(characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, characterID)
}

// register stores sess unless another session for the same character won
// the race, in which case that one is returned.
func (s *Service) register(sess *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sess.id]; ok {
		return existing
	}
	s.sessions[sess.id] = sess
	return sess
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
