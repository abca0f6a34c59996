package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", 0), "anonymous viewers are outside partial rollouts")

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 75)
}

func TestEnabledOr(t *testing.T) {
	m := NewManager("legacy_aliases=off")
	assert.False(t, m.EnabledOr(LegacyAliases, 1, true))
	assert.True(t, m.EnabledOr("unset", 1, true))
	assert.False(t, m.EnabledOr("unset", 1, false))

	var nilManager *Manager
	assert.True(t, nilManager.EnabledOr(LegacyAliases, 1, true))
	assert.False(t, nilManager.Enabled(LegacyAliases, 1))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, Y = 20% ,z=off ")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 4)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
	assert.True(t, snap[LegacyAliases])

	var nilManager *Manager
	assert.Equal(t, map[string]bool{LegacyAliases: true}, nilManager.Snapshot(1))
}
