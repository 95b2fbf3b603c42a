// Package category canonicalizes free-form category names. Entitlement and
// consumption records may have been written under a different but equivalent
// label than a product's own category (belt vs accessory, pant vs trouser),
// so every lookup goes through alias resolution instead of exact matching.
package category

import "strings"

// synonyms maps a normalized category to its known equivalents. Each
// direction is listed explicitly.
var synonyms = map[string][]string{
	"belt":        {"accessory", "accessories"},
	"accessory":   {"belt"},
	"accessories": {"belt"},
	"pant":        {"trouser"},
	"trouser":     {"pant"},
	"jacket":      {"blazer"},
	"blazer":      {"jacket"},
}

// Normalize lowercases and trims a category name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the set of lookup keys equivalent to the given category:
// the normalized input plus its known synonyms. Unknown categories resolve
// to the singleton set of themselves. Never fails.
func Resolve(name string) map[string]bool {
	key := Normalize(name)
	set := map[string]bool{key: true}
	for _, alias := range synonyms[key] {
		set[alias] = true
	}
	return set
}

// ResolveAgainst extends Resolve with the keys of an actual ledger map:
// any ledger key that is a case-insensitive substring match of the input
// (either direction) is absorbed into the set, tolerating pluralization and
// casing drift such as "shirts" vs "shirt".
func ResolveAgainst(name string, ledgerKeys []string) map[string]bool {
	set := Resolve(name)
	key := Normalize(name)
	for _, lk := range ledgerKeys {
		normalized := Normalize(lk)
		if normalized == "" {
			continue
		}
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			set[normalized] = true
		}
	}
	return set
}

// Matches reports whether two category names are equivalent under alias
// resolution: their alias sets intersect. "accessory" and "accessories"
// match through their shared "belt" alias even though neither lists the
// other directly.
func Matches(a, b string) bool {
	setA := Resolve(a)
	for alias := range Resolve(b) {
		if setA[alias] {
			return true
		}
	}
	return false
}

// MatchesLenient extends Matches with the substring drift tolerance
// ResolveAgainst applies to ledger keys, so "shirt" and "shirts" are
// equivalent here too. Used when two free-form category names are compared
// directly, without a ledger to resolve against.
func MatchesLenient(a, b string) bool {
	if Matches(a, b) {
		return true
	}
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
