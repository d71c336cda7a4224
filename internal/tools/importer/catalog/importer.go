// Package catalogimporter loads catalog content files into the ledger's
// SQLite content store.
package catalogimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/buildledger/internal/platform/config"
	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/catalog"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/ruleset"
	"github.com/louisbranch/buildledger/internal/services/ledger/storage"
	storagesqlite "github.com/louisbranch/buildledger/internal/services/ledger/storage/sqlite"
	"gopkg.in/yaml.v3"
)

// payloadVersion is the only content file version accepted.
const payloadVersion = "v1"

// Config holds configuration for the catalog importer.
type Config struct {
	Dir         string `env:"BUILDLEDGER_CONTENT_DIR"`
	DBPath      string `env:"BUILDLEDGER_DB_PATH"      envDefault:"data/ledger.db"`
	RulesetPath string `env:"BUILDLEDGER_RULESET_PATH"`
	DryRun      bool
}

// ParseConfig parses environment and CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory containing content files")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "ledger database path")
	fs.StringVar(&cfg.RulesetPath, "ruleset", cfg.RulesetPath, "optional ruleset YAML used to validate data codes")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	return cfg, nil
}

// contentFiles maps each catalog kind to the file stem it is read from.
var contentFiles = []struct {
	kind catalog.Kind
	stem string
}{
	{kind: catalog.KindAncestry, stem: "ancestries"},
	{kind: catalog.KindCulture, stem: "cultures"},
	{kind: catalog.KindTrait, stem: "traits"},
	{kind: catalog.KindModule, stem: "modules"},
}

type contentPayload struct {
	Version string          `yaml:"version"`
	Source  string          `yaml:"source"`
	Items   []contentRecord `yaml:"items"`
}

type contentRecord struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Options []optionRecord `yaml:"options"`
}

type optionRecord struct {
	Location    string `yaml:"location"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Data        string `yaml:"data"`
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}

	rules, err := ruleset.LoadFile(cfg.RulesetPath)
	if err != nil {
		return err
	}

	var rows []storage.ContentDefinition
	for _, file := range contentFiles {
		payload, name, err := readPayload(dir, file.stem)
		if err != nil {
			return err
		}
		if payload == nil {
			continue
		}
		if err := validatePayload(name, payload); err != nil {
			return err
		}
		for _, item := range payload.Items {
			row := toRow(file.kind, item)
			if _, err := app.ToDefinition(rules, row); err != nil {
				return fmt.Errorf("%s: %s %q: %w", name, file.kind, item.ID, err)
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return fmt.Errorf("no content found in %s", dir)
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %d definition(s)\n", len(rows))
		return err
	}

	store, err := storagesqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open content store: %w", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		row.CreatedAt = now
		row.UpdatedAt = now
		if err := store.PutContentDefinition(ctx, row); err != nil {
			return fmt.Errorf("import %s %s: %w", row.Kind, row.ID, err)
		}
	}
	_, err = fmt.Fprintf(out, "imported %d definition(s) into %s\n", len(rows), cfg.DBPath)
	return err
}

// readPayload reads <stem>.yaml, <stem>.yml or <stem>.json from dir. A
// missing file is not an error.
func readPayload(dir, stem string) (*contentPayload, string, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		name := stem + ext
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, name, err
		}
		var payload contentPayload
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, name, fmt.Errorf("decode %s: %w", name, err)
		}
		return &payload, name, nil
	}
	return nil, "", nil
}

func validatePayload(name string, payload *contentPayload) error {
	if payload.Version != payloadVersion {
		return fmt.Errorf("%s: unsupported version %q", name, payload.Version)
	}
	if strings.TrimSpace(payload.Source) == "" {
		return fmt.Errorf("%s: source is required", name)
	}
	seen := make(map[string]bool, len(payload.Items))
	for _, item := range payload.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%s: item id is required", name)
		}
		if seen[item.ID] {
			return fmt.Errorf("%s: duplicate id %q", name, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

func toRow(kind catalog.Kind, item contentRecord) storage.ContentDefinition {
	row := storage.ContentDefinition{
		Kind:     string(kind),
		ID:       strings.TrimSpace(item.ID),
		Name:     item.Name,
		Category: item.Type,
		Options:  make([]storage.ContentOption, 0, len(item.Options)),
	}
	for _, opt := range item.Options {
		row.Options = append(row.Options, storage.ContentOption{
			Location:    strings.TrimSpace(opt.Location),
			Name:        opt.Name,
			Description: opt.Description,
			Data:        opt.Data,
		})
	}
	return row
}
