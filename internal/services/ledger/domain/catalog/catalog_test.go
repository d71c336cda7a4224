package catalog

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
)

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()

	good := testModule(t, "bard", ModuleSecondary, "1", "2", "3a", "3b")
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name string
		def  Definition
	}{
		{"missing id", Definition{Kind: KindModule, Type: ModuleCore}},
		{"unknown kind", Definition{Kind: "spell", ID: "x"}},
		{"unknown type", testModule(t, "x", "heroic", "1")},
		{"no tier one", testModule(t, "x", ModuleCore, "2")},
		{"duplicate location", testModule(t, "x", ModuleCore, "1", "1")},
		{"missing location", Definition{Kind: KindModule, ID: "x", Type: ModuleCore, Options: []Option{mustOption(t, "", "x", "")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if !apperrors.HasCode(err, apperrors.CodeCatalogInvalidDefinition) {
				t.Fatalf("Validate err = %v, want invalid definition", err)
			}
		})
	}
}

func TestDefinitionQueries(t *testing.T) {
	t.Parallel()

	def := testModule(t, "bard", ModuleSecondary, "1", "2", "3a", "3b")
	if got := def.MaxTier(); got != 3 {
		t.Fatalf("MaxTier = %d, want 3", got)
	}
	if _, ok := def.Option(MustLocation("3b")); !ok {
		t.Fatal("expected option 3b")
	}
	if _, ok := def.Option(MustLocation("4")); ok {
		t.Fatal("unexpected option 4")
	}
	tierOne, ok := def.TierOne()
	if !ok || tierOne.Location != MustLocation("1") {
		t.Fatalf("TierOne = %+v, %v", tierOne, ok)
	}
	if def.IsPersonality() {
		t.Fatal("secondary module reported as personality")
	}
}

func TestNewIndexRejectsDuplicates(t *testing.T) {
	t.Parallel()

	def := testModule(t, "bard", ModuleSecondary, "1")
	_, err := NewIndex(def, def)
	if !apperrors.HasCode(err, apperrors.CodeAlreadyExists) {
		t.Fatalf("NewIndex err = %v, want already exists", err)
	}
}

func TestResolveSkipsMissingReferences(t *testing.T) {
	t.Parallel()

	client := NewMemory(
		testModule(t, "bard", ModuleSecondary, "1", "2"),
		testModule(t, "stoic", ModulePersonality, "1"),
		Definition{Kind: KindAncestry, ID: "human", Options: []Option{mustOption(t, "", "versatile", "UT=1")}},
		Definition{Kind: KindTrait, ID: "quick"},
	)
	idx, err := Resolve(context.Background(), client, Refs{
		AncestryID: "human",
		CultureID:  "lost",
		TraitIDs:   []string{"quick", "quick", "gone"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := len(idx.List(KindModule)); got != 2 {
		t.Fatalf("modules = %d, want 2", got)
	}
	if _, ok := idx.Get(KindAncestry, "human"); !ok {
		t.Fatal("expected ancestry")
	}
	if _, ok := idx.Get(KindCulture, "lost"); ok {
		t.Fatal("missing culture should be omitted")
	}
	if got := len(idx.List(KindTrait)); got != 1 {
		t.Fatalf("traits = %d, want 1", got)
	}
}

func TestResolveHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Resolve(ctx, NewMemory(), Refs{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestListModulesFilters(t *testing.T) {
	t.Parallel()

	client := NewMemory(
		testModule(t, "bard", ModuleSecondary, "1", "2", "3a"),
		testModule(t, "stoic", ModulePersonality, "1"),
	)
	got, err := ListModules(context.Background(), client, `type = "personality"`)
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(got) != 1 || got[0].ID != "stoic" {
		t.Fatalf("ListModules = %+v, want stoic", got)
	}

	all, err := ListModules(context.Background(), client, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListModules(empty) = %d, %v", len(all), err)
	}

	_, err = ListModules(context.Background(), client, `unknown_field = 1`)
	if !apperrors.HasCode(err, apperrors.CodeCatalogInvalidFilter) {
		t.Fatalf("err = %v, want invalid filter", err)
	}
}
