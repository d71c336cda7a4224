package catalog

import (
	"regexp"
	"strconv"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
)

var locationPattern = regexp.MustCompile(`^([1-9][0-9]*)([a-z]*)$`)

// Location identifies an option inside a module: "1", "2", "3a", "3b", ...
type Location struct {
	Tier   int
	Branch string
}

// ParseLocation parses a location token.
func ParseLocation(raw string) (Location, error) {
	m := locationPattern.FindStringSubmatch(raw)
	if m == nil {
		return Location{}, apperrors.WithMetadata(
			apperrors.CodeLedgerInvalidLocation,
			"invalid option location "+strconv.Quote(raw),
			map[string]string{"Location": raw},
		)
	}
	tier, err := strconv.Atoi(m[1])
	if err != nil {
		return Location{}, apperrors.WrapWithMetadata(
			apperrors.CodeLedgerInvalidLocation,
			"invalid option tier",
			map[string]string{"Location": raw},
			err,
		)
	}
	return Location{Tier: tier, Branch: m[2]}, nil
}

// MustLocation parses raw and panics on error. For tests and static tables.
func MustLocation(raw string) Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// String renders the location token.
func (l Location) String() string {
	return strconv.Itoa(l.Tier) + l.Branch
}

// IsTierOne reports whether the location attaches its module.
func (l Location) IsTierOne() bool {
	return l.Tier == 1
}

// Valid reports whether the location was parsed from a real token.
func (l Location) Valid() bool {
	return l.Tier >= 1
}
