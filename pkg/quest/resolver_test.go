package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverIdentityFallback(t *testing.T) {
	r := NewResolver(nil, nil)

	ids := r.Resolve("entities", "unmapped label")
	assert.Equal(t, []string{"unmapped label"}, ids)

	// Nil resolver still upholds the identity law.
	var nilResolver *Resolver
	assert.Equal(t, []string{"x"}, nilResolver.Resolve("items", "x"))
}

func TestResolverCaseInsensitive(t *testing.T) {
	r := NewResolver(map[string]map[string][]string{
		"Entities": {"White Wolf": {"wolf_white"}},
	}, nil)

	assert.Equal(t, []string{"wolf_white"}, r.Resolve("entities", "white wolf"))
	assert.Equal(t, []string{"wolf_white"}, r.Resolve("ENTITIES", "WHITE WOLF"))
}

func TestResolverNPCAliasMerge(t *testing.T) {
	r := NewResolver(map[string]map[string][]string{
		"entities": {"the warden": {"warden_edda"}},
	}, map[string][]string{
		"Maren":      {"maren_herbalist"},
		"the warden": {"warden_edda", "warden_substitute"},
	})

	// NPC table only applies to the entities domain.
	assert.Equal(t, []string{"maren_herbalist"}, r.Resolve("entities", "maren"))
	assert.Equal(t, []string{"Maren"}, r.Resolve("items", "Maren"))

	// Collision: global entries first, lists unioned without duplicates.
	assert.Equal(t, []string{"warden_edda", "warden_substitute"}, r.Resolve("entities", "the warden"))
}

func TestResolverForQuestPrecedence(t *testing.T) {
	r := NewResolver(map[string]map[string][]string{
		"items": {"the key": {"key_global"}},
	}, nil)

	q := &Quest{
		Aliases: map[string]map[string][]string{
			"items": {"The Key": {"key_cellar"}},
		},
	}

	resolve := r.ForQuest(q)
	assert.Equal(t, []string{"key_cellar"}, resolve("items", "the key"))

	// Labels without a quest-local entry fall through to the global path.
	assert.Equal(t, []string{"key_global"}, r.ForQuest(&Quest{})("items", "the key"))
	assert.Equal(t, []string{"unknown"}, resolve("items", "unknown"))

	// Nil quest behaves like Base.
	assert.Equal(t, []string{"key_global"}, r.ForQuest(nil)("items", "the key"))
}
