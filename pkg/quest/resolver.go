package quest

import "strings"

// Resolver maps narrative labels (e.g. "white wolf") to canonical game-data
// ids using global alias tables, optionally scoped by quest-local aliases.
// Resolution never fails: an unmapped label resolves to itself.
//
// The resolver is an explicit dependency of the engine so tests can
// substitute alias tables freely.
type Resolver struct {
	global     map[string]map[string][]string // domain -> label -> ids
	npcAliases map[string][]string            // merged into the entities domain
}

// NewResolver builds a resolver from global alias tables keyed by domain
// and a secondary NPC alias table. Labels are matched case-insensitively.
func NewResolver(global map[string]map[string][]string, npcAliases map[string][]string) *Resolver {
	r := &Resolver{
		global:     make(map[string]map[string][]string, len(global)),
		npcAliases: make(map[string][]string, len(npcAliases)),
	}
	for domain, table := range global {
		norm := make(map[string][]string, len(table))
		for label, ids := range table {
			norm[strings.ToLower(label)] = ids
		}
		r.global[strings.ToLower(domain)] = norm
	}
	for label, ids := range npcAliases {
		r.npcAliases[strings.ToLower(label)] = ids
	}
	return r
}

// Resolve returns the canonical ids for label in the given domain. For the
// entities domain the global table is merged with the NPC alias table;
// global entries come first on a key collision and the lists are unioned.
// When no mapping exists the label itself is returned.
func (r *Resolver) Resolve(domain, label string) []string {
	if r == nil {
		return []string{label}
	}
	key := strings.ToLower(label)
	domain = strings.ToLower(domain)

	var ids []string
	if table, ok := r.global[domain]; ok {
		ids = append(ids, table[key]...)
	}
	if domain == "entities" {
		ids = union(ids, r.npcAliases[key])
	}
	if len(ids) == 0 {
		return []string{label}
	}
	return ids
}

// ForQuest returns a ResolveFunc that checks the quest-local alias tables
// first and falls back to the global tables. Quest-local entries take
// precedence on a key collision.
func (r *Resolver) ForQuest(q *Quest) ResolveFunc {
	return func(domain, label string) []string {
		if q != nil {
			if table, ok := lookupDomain(q.Aliases, domain); ok {
				if ids := lookupLabel(table, label); len(ids) > 0 {
					return ids
				}
			}
		}
		return r.Resolve(domain, label)
	}
}

// Base returns the quest-unaware ResolveFunc, used for contradiction checks
// on raw DSL outside any quest context.
func (r *Resolver) Base() ResolveFunc {
	return r.Resolve
}

func lookupDomain(aliases map[string]map[string][]string, domain string) (map[string][]string, bool) {
	for name, table := range aliases {
		if strings.EqualFold(name, domain) {
			return table, true
		}
	}
	return nil, false
}

func lookupLabel(table map[string][]string, label string) []string {
	for name, ids := range table {
		if strings.EqualFold(name, label) {
			return ids
		}
	}
	return nil
}

// union appends items of b not already present in a, preserving order.
func union(a, b []string) []string {
	for _, id := range b {
		seen := false
		for _, have := range a {
			if have == id {
				seen = true
				break
			}
		}
		if !seen {
			a = append(a, id)
		}
	}
	return a
}
