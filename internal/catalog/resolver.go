package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Resolution is the outcome of resolving a free-text name: either the id of
// an existing record, or a signal that a new record must be created.
type Resolution struct {
	ExistingID  uuid.UUID
	NeedsCreate bool
	Name        string
	// Warning is set when the same name exists in a different scope, e.g. a
	// service with this name under another category. Non-blocking.
	Warning string
}

// NameResolver resolves free-text service and subcategory names against the
// current store snapshot. Pure lookup, no side effects.
type NameResolver struct {
	store *EntityStore
}

// NewNameResolver creates a resolver over the given store.
func NewNameResolver(store *EntityStore) *NameResolver {
	return &NameResolver{store: store}
}

// ResolveService matches name against the services of the given category,
// case- and accent-insensitively. A match in another category is surfaced as
// a warning and does not block creating a scope-correct record.
func (r *NameResolver) ResolveService(name string, categoryID uuid.UUID) Resolution {
	key := normalizeName(name)
	var crossScope *Service
	for _, svc := range r.store.Services() {
		if normalizeName(svc.Name) != key {
			continue
		}
		if svc.CategoryID == categoryID {
			return Resolution{ExistingID: svc.ID, Name: svc.Name}
		}
		crossScope = &svc
	}

	res := Resolution{NeedsCreate: true, Name: strings.TrimSpace(name)}
	if crossScope != nil {
		res.Warning = fmt.Sprintf("service %q already exists in another category", crossScope.Name)
	}
	return res
}

// ResolveSubcategory matches name against all subcategories. Subcategory
// names are global: price tiers like "0-5000" are shared across services.
func (r *NameResolver) ResolveSubcategory(name string) Resolution {
	key := normalizeName(name)
	for _, sc := range r.store.Subcategories() {
		if normalizeName(sc.Name) == key {
			return Resolution{ExistingID: sc.ID, Name: sc.Name}
		}
	}
	return Resolution{NeedsCreate: true, Name: strings.TrimSpace(name)}
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
}

// normalizeName lowercases, folds common Latin accents, and collapses runs
// of whitespace, so "Declaración  IVA" and "declaracion iva" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true // leading whitespace is dropped
	for _, r := range strings.ToLower(s) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}
