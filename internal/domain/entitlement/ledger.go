// Package entitlement computes remaining per-category allowance for an
// employee. It is pure: absent data degrades to zero entitlement rather than
// an error, which is the safe default (it charges the employee rather than
// under-charging the company).
package entitlement

import (
	"sort"

	"github.com/uniformhq/uniform-orders/internal/domain/category"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
)

// Remaining returns the quantity of the given category the employee may
// still order against entitlement. Entitlement and consumption may have been
// recorded under an equivalent alias of the product's category; lookup
// prefers an exact match on the original name and otherwise takes the first
// non-zero value among the aliases. Never negative.
func Remaining(ent *entity.EmployeeEntitlement, consumed *entity.ConsumedEntitlement, cat string) int {
	total := 0
	if ent != nil {
		total = Lookup(ent.Merged(), cat)
	}
	used := 0
	if consumed != nil {
		used = Lookup(consumed.Merged(), cat)
	}
	remaining := total - used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Lookup probes a category ledger for the quantity recorded under the given
// category or any of its aliases. The exact (normalized) name wins when it
// holds a non-zero value; otherwise the remaining aliases are probed in
// deterministic order and the first non-zero hit is kept. Absent data is 0.
func Lookup(ledger map[string]int, cat string) int {
	key := category.Normalize(cat)
	if v, ok := ledger[key]; ok && v != 0 {
		return v
	}

	aliases := category.ResolveAgainst(cat, keysOf(ledger))
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		if alias == key {
			continue
		}
		names = append(names, alias)
	}
	sort.Strings(names)

	for _, alias := range names {
		if v, ok := ledger[alias]; ok && v != 0 {
			return v
		}
	}
	return 0
}

func keysOf(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
