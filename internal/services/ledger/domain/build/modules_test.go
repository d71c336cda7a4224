package build

import (
	"math/rand"
	"testing"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/budget"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/character"
)

func TestSelectTierThreeWithoutTierTwo(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 3)
	mustSelect(t, l, "bard", "1")
	before := l.Budget(budget.PoolModule)

	_, err := l.Select("bard", "3a")
	if !apperrors.HasCode(err, apperrors.CodeLedgerPrerequisiteUnmet) {
		t.Fatalf("err = %v, want prerequisite unmet", err)
	}
	if after := l.Budget(budget.PoolModule); after != before {
		t.Fatalf("module budget changed: %+v -> %+v", before, after)
	}
	if l.CanSelect("bard", "3a") {
		t.Fatal("CanSelect(3a) = true, want false")
	}
}

func TestSecondPersonalityIsForbidden(t *testing.T) {
	t.Parallel()

	for _, points := range []int{0, 5} {
		l := newLedger(t, points)
		mustSelect(t, l, "stoic", "1")

		_, err := l.Select("zealot", "1")
		if !apperrors.HasCode(err, apperrors.CodeLedgerForbidden) {
			t.Fatalf("points %d: err = %v, want forbidden", points, err)
		}
		if l.CanSelect("zealot", "1") {
			t.Fatalf("points %d: CanSelect(zealot) = true", points)
		}
		if _, ok := l.Character().Module("zealot"); ok {
			t.Fatalf("points %d: zealot attached", points)
		}
	}
}

func TestSelectAttachesForFreeAndChargesLaterTiers(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 1)
	snap, err := l.Select("bard", "1")
	if err != nil {
		t.Fatalf("Select(1): %v", err)
	}
	if len(snap.Modules) != 1 || snap.Modules[0].ModuleID != "bard" {
		t.Fatalf("modules = %+v, want bard attached", snap.Modules)
	}
	if got := remaining(t, l, "module"); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
	mustSelect(t, l, "bard", "2")
	if got := remaining(t, l, "module"); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	_, err = l.Select("bard", "3a")
	if !apperrors.HasCode(err, apperrors.CodeLedgerInsufficientBudget) {
		t.Fatalf("err = %v, want insufficient budget", err)
	}
	mod, _ := l.Character().Module("bard")
	if mod.SelectedOptions[0].SelectedAt != fixedNow {
		t.Fatalf("selected at = %v, want %v", mod.SelectedOptions[0].SelectedAt, fixedNow)
	}
}

func TestSelectRejections(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 5)
	mustSelect(t, l, "bard", "1")
	mustSelect(t, l, "bard", "2")
	mustSelect(t, l, "bard", "3a")

	tests := []struct {
		name     string
		module   string
		location string
		code     apperrors.Code
	}{
		{"unknown module", "ghost", "1", apperrors.CodeNotFound},
		{"unknown option", "bard", "9", apperrors.CodeNotFound},
		{"malformed location", "bard", "x1", apperrors.CodeLedgerInvalidLocation},
		{"tier already taken", "bard", "3b", apperrors.CodeLedgerPrerequisiteUnmet},
		{"unattached higher tier", "warrior", "2", apperrors.CodeLedgerPrerequisiteUnmet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.Select(tt.module, tt.location); !apperrors.HasCode(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReselectIsNoOp(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 2)
	mustSelect(t, l, "bard", "1")
	mustSelect(t, l, "bard", "2")
	before := l.Budget(budget.PoolModule)
	mustSelect(t, l, "bard", "2")
	if after := l.Budget(budget.PoolModule); after != before {
		t.Fatalf("budget changed on reselect: %+v -> %+v", before, after)
	}
	mod, _ := l.Character().Module("bard")
	if len(mod.SelectedOptions) != 2 {
		t.Fatalf("options = %d, want 2", len(mod.SelectedOptions))
	}
}

func TestDeselectPrunesLeavesOnly(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 3)
	for _, loc := range []string{"1", "2", "3b"} {
		mustSelect(t, l, "bard", loc)
	}

	for _, loc := range []string{"1", "2"} {
		_, err := l.Deselect("bard", loc)
		if !apperrors.HasCode(err, apperrors.CodeLedgerDependentsExist) {
			t.Fatalf("Deselect(%s) err = %v, want dependents exist", loc, err)
		}
	}
	if _, err := l.Deselect("bard", "3a"); !apperrors.HasCode(err, apperrors.CodeLedgerOptionNotSelected) {
		t.Fatalf("err = %v, want option not selected", err)
	}
	if _, err := l.Deselect("warrior", "1"); !apperrors.HasCode(err, apperrors.CodeLedgerModuleNotAttached) {
		t.Fatalf("err = %v, want module not attached", err)
	}

	for _, loc := range []string{"3b", "2"} {
		if _, err := l.Deselect("bard", loc); err != nil {
			t.Fatalf("Deselect(%s): %v", loc, err)
		}
	}
	if got := remaining(t, l, "module"); got != 3 {
		t.Fatalf("remaining = %d, want full refund 3", got)
	}
	snap, err := l.Deselect("bard", "1")
	if err != nil {
		t.Fatalf("Deselect(1): %v", err)
	}
	if len(snap.Modules) != 0 {
		t.Fatalf("modules = %+v, want detached", snap.Modules)
	}
}

func TestPersonalityTierOneCannotBeDeselected(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 0)
	mustSelect(t, l, "stoic", "1")
	_, err := l.Deselect("stoic", "1")
	if !apperrors.HasCode(err, apperrors.CodeLedgerForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if l.CanDeselect("stoic", "1") {
		t.Fatal("CanDeselect = true, want false")
	}
}

func TestSwapPersonalityRefundsAndAttaches(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 1)
	mustSelect(t, l, "stoic", "1")
	mustSelect(t, l, "stoic", "2")
	if got := remaining(t, l, "module"); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}

	snap, err := l.SwapPersonality("zealot")
	if err != nil {
		t.Fatalf("SwapPersonality: %v", err)
	}
	if len(snap.Modules) != 1 || snap.Modules[0].ModuleID != "zealot" || snap.Modules[0].Options[0] != "1" {
		t.Fatalf("modules = %+v, want zealot tier 1", snap.Modules)
	}
	if got := remaining(t, l, "module"); got != 1 {
		t.Fatalf("remaining = %d, want refund to 1", got)
	}

	if _, err := l.SwapPersonality("zealot"); err != nil {
		t.Fatalf("swap to same module: %v", err)
	}
	if _, err := l.SwapPersonality("bard"); !apperrors.HasCode(err, apperrors.CodeLedgerNotPersonality) {
		t.Fatalf("err = %v, want not personality", err)
	}
	if _, err := l.SwapPersonality("ghost"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestOptionsReportsStates(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 2)
	mustSelect(t, l, "bard", "1")
	mustSelect(t, l, "bard", "2")

	states, err := l.Options("bard")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := map[string]struct {
		status       OptionStatus
		affordable   bool
		deselectable bool
	}{
		"1":  {OptionSelected, true, false},
		"2":  {OptionSelected, true, true},
		"3a": {OptionAvailable, true, false},
		"3b": {OptionAvailable, true, false},
		"4":  {OptionUnavailable, true, false},
	}
	for _, st := range states {
		w := want[st.Location]
		if st.Status != w.status || st.Affordable != w.affordable || st.Deselectable != w.deselectable {
			t.Fatalf("option %s = %+v, want %+v", st.Location, st, w)
		}
	}
	if _, err := l.Options("ghost"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestOptionsAgreeWithCanSelect(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 0)
	mustSelect(t, l, "bard", "1")

	states, err := l.Options("bard")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	for _, st := range states {
		if st.Status == OptionSelected {
			continue
		}
		if got := st.Status == OptionAvailable; got != l.CanSelect("bard", st.Location) {
			t.Fatalf("option %s status %s disagrees with CanSelect", st.Location, st.Status)
		}
		if st.Location == "2" {
			if st.Status != OptionUnavailable || st.Affordable || st.Reason != "not enough module points" {
				t.Fatalf("option 2 = %+v, want unavailable for lack of points", st)
			}
		}
	}
}

func TestSelectionsStayClosedUnderPredecessor(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 10)
	locations := []string{"1", "2", "3a", "3b", "4"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		loc := locations[rng.Intn(len(locations))]
		if rng.Intn(2) == 0 {
			_, _ = l.Select("bard", loc)
		} else {
			_, _ = l.Deselect("bard", loc)
		}
		mod, ok := l.Character().Module("bard")
		if !ok {
			continue
		}
		assertClosed(t, mod)
		if spent := l.Budget(budget.PoolModule).Spent; spent != len(mod.SelectedOptions)-1 {
			t.Fatalf("step %d: module spent = %d with %d options", i, spent, len(mod.SelectedOptions))
		}
	}
}

func assertClosed(t *testing.T, mod character.Module) {
	t.Helper()
	perTier := map[int]int{}
	for _, opt := range mod.SelectedOptions {
		perTier[opt.Location.Tier]++
	}
	for tier, count := range perTier {
		if count > 1 {
			t.Fatalf("tier %d has %d selections", tier, count)
		}
		if tier > 1 && perTier[tier-1] == 0 {
			t.Fatalf("tier %d selected without tier %d: %+v", tier, tier-1, mod.SelectedOptions)
		}
	}
	if perTier[1] != 1 {
		t.Fatalf("attached module without tier 1: %+v", mod.SelectedOptions)
	}
}
