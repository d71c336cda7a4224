package catalog

import (
	"testing"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
)

func TestParseLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Location
	}{
		{"1", Location{Tier: 1}},
		{"2", Location{Tier: 2}},
		{"3a", Location{Tier: 3, Branch: "a"}},
		{"12bc", Location{Tier: 12, Branch: "bc"}},
	}
	for _, tt := range tests {
		got, err := ParseLocation(tt.raw)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLocation(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
		if got.String() != tt.raw {
			t.Fatalf("String() = %q, want %q", got.String(), tt.raw)
		}
	}
}

func TestParseLocationRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "0", "a", "3A", "-1", "1 a"} {
		_, err := ParseLocation(raw)
		if !apperrors.HasCode(err, apperrors.CodeLedgerInvalidLocation) {
			t.Fatalf("ParseLocation(%q) err = %v, want invalid location", raw, err)
		}
	}
}

func TestLocationTierOne(t *testing.T) {
	t.Parallel()

	if !MustLocation("1").IsTierOne() {
		t.Fatal("expected tier one")
	}
	if MustLocation("2a").IsTierOne() {
		t.Fatal("2a is not tier one")
	}
	if (Location{}).Valid() {
		t.Fatal("zero location must be invalid")
	}
}
