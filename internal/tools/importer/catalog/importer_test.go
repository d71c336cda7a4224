package catalogimporter

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	storagesqlite "github.com/louisbranch/buildledger/internal/services/ledger/storage/sqlite"
)

const modulesYAML = `version: v1
source: core book
items:
  - id: bard
    name: Bard
    type: secondary
    options:
      - location: "1"
        name: Verse
      - location: "2"
        name: Chorus
        data: "MP=1:MS6=1"
`

const traitsJSON = `{"version":"v1","source":"core book","items":[{"id":"gifted","name":"Gifted","options":[{"name":"Gift","data":"UT=2"}]}]}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestParseConfigRequiresDir(t *testing.T) {
	t.Setenv("BUILDLEDGER_CONTENT_DIR", "")
	if _, err := ParseConfig(flag.NewFlagSet("importer", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected dir error")
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BUILDLEDGER_CONTENT_DIR", "from-env")
	t.Setenv("BUILDLEDGER_DB_PATH", "env.db")
	cfg, err := ParseConfig(flag.NewFlagSet("importer", flag.ContinueOnError), []string{"-db", "flag.db", "-dry-run"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Dir != "from-env" || cfg.DBPath != "flag.db" || !cfg.DryRun {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRunImportsContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yaml", modulesYAML)
	writeFile(t, dir, "traits.json", traitsJSON)
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, DBPath: dbPath}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "imported 2 definition(s)") {
		t.Fatalf("output = %q", out.String())
	}

	store, err := storagesqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	bard, err := store.GetContentDefinition(context.Background(), "module", "bard")
	if err != nil {
		t.Fatalf("get bard: %v", err)
	}
	if bard.Category != "secondary" || len(bard.Options) != 2 || bard.Options[1].Data != "MP=1:MS6=1" {
		t.Fatalf("bard = %+v", bard)
	}
	if _, err := store.GetContentDefinition(context.Background(), "trait", "gifted"); err != nil {
		t.Fatalf("get gifted: %v", err)
	}
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yml", modulesYAML)
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, DBPath: dbPath, DryRun: true}, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "validated 1 definition(s)") {
		t.Fatalf("output = %q", out.String())
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("dry run created %s", dbPath)
	}
}

func TestRunRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "version",
			content: "version: v2\nsource: x\nitems: []\n",
			want:    "unsupported version",
		},
		{
			name:    "source",
			content: "version: v1\nitems: []\n",
			want:    "source is required",
		},
		{
			name:    "duplicate",
			content: "version: v1\nsource: x\nitems:\n  - {id: bard, type: secondary, options: [{location: \"1\"}]}\n  - {id: bard, type: secondary, options: [{location: \"1\"}]}\n",
			want:    "duplicate id",
		},
		{
			name:    "missing tier one",
			content: "version: v1\nsource: x\nitems:\n  - {id: bard, type: secondary, options: [{location: \"2\"}]}\n",
			want:    "bard",
		},
		{
			name:    "decode",
			content: "version: [",
			want:    "decode modules.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "modules.yaml", tt.content)
			err := Run(context.Background(), Config{Dir: dir, DryRun: true}, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	err := Run(context.Background(), Config{Dir: t.TempDir(), DryRun: true}, nil)
	if err == nil || !strings.Contains(err.Error(), "no content found") {
		t.Fatalf("err = %v, want no content error", err)
	}
}
