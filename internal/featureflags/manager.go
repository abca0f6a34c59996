// Package featureflags evaluates per-user rollout flags configured through
// FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// LegacyAliases gates the duplicated field names older clients read from
// post and comment payloads. It is on unless configured otherwise.
const LegacyAliases = "legacy_aliases"

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "legacy_aliases=25%,follow_graph=on"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pctRaw := strings.TrimSuffix(value, "%")
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return false
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if userID == 0 {
			return false
		}
		return rolloutBucket(name, userID) < pct
	}

	return false
}

// EnabledOr is Enabled for configured flags and fallback otherwise.
func (m *Manager) EnabledOr(name string, userID uint, fallback bool) bool {
	if m == nil {
		return fallback
	}
	if _, ok := m.flags[normalize(name)]; !ok {
		return fallback
	}
	return m.Enabled(name, userID)
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user, including the
// built-in defaults.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := map[string]bool{
		LegacyAliases: m.EnabledOr(LegacyAliases, userID, true),
	}
	if m == nil {
		return out
	}
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
