// Package country holds the closed set of partner portal markets a harvest can target
package country

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Code is an ISO 3166-1 alpha-2 market code
type Code string

// Markets supported by the partner portal
const (
	PL Code = "PL"
	HU Code = "HU"
	CZ Code = "CZ"
	SK Code = "SK"
	DE Code = "DE"
	AT Code = "AT"
	NL Code = "NL"
)

// Primary is the market refreshed on the tight cadence
const Primary = PL

var all = []Code{PL, HU, CZ, SK, DE, AT, NL}

// names are the display names shown by the portal's country picker
var names = map[Code]string{
	PL: "Polska",
	HU: "Węgry",
	CZ: "Republika Czeska",
	SK: "Słowacja",
	DE: "Niemcy",
	AT: "Austria",
	NL: "Niderlandy",
}

// DefaultAllowed is the allowed subset when nothing is configured
var DefaultAllowed = []Code{PL, DE, AT, NL}

var fold = cases.Fold()

// All returns every known code in declaration order
func All() []Code { return append([]Code(nil), all...) }

// Valid reports whether c is a member of the enumeration
func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

// Name returns the portal display name or "" for unknown codes
func (c Code) Name() string { return names[c] }

func (c Code) String() string { return string(c) }

// Parse accepts a code in any case or a portal display name such as "Węgry"
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("country: empty value")
	}
	if c := Code(strings.ToUpper(s)); c.Valid() {
		return c, nil
	}
	want := fold.String(norm.NFC.String(s))
	for _, c := range all {
		if fold.String(norm.NFC.String(names[c])) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("country: unknown value %q", s)
}

// ParseList parses a list of codes, dropping duplicates and keeping order
func ParseList(in []string) ([]Code, error) {
	out := make([]Code, 0, len(in))
	seen := make(map[Code]bool, len(in))
	for _, s := range in {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// Contains reports whether c is in set
func Contains(set []Code, c Code) bool {
	for _, x := range set {
		if x == c {
			return true
		}
	}
	return false
}

// Strings converts codes for validator oneof params and logs
func Strings(set []Code) []string {
	out := make([]string, len(set))
	for i, c := range set {
		out[i] = string(c)
	}
	return out
}
