// Package featureflags evaluates static feature flags with per-user percentage rollout.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// SerializedCircleWrites runs admission, change approval and reopen inside
// one transaction with the circle row locked.
const SerializedCircleWrites = "serialized_circle_writes"

// rule is a parsed flag value: fully on, fully off, or a rollout percentage.
type rule struct {
	raw     string
	percent int
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "serialized_circle_writes=on,new_room=25%,legacy_list=off"
type Manager struct {
	flags map[string]rule
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed entries are ignored.
func NewManager(raw string) *Manager {
	out := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			out[key] = r
		}
	}

	return &Manager{flags: out}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}, true
	case "off", "false", "0":
		return rule{raw: value, percent: 0}, true
	}
	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return rule{}, false
		}
		return rule{raw: value, percent: min(max(pct, 0), 100)}, true
	}
	return rule{}, false
}

// Enabled returns whether a flag is enabled for a given user. Partial
// rollouts are deterministic per (flag, user) and need a non-empty user id.
func (m *Manager) Enabled(name, userID string) bool {
	if m == nil {
		return false
	}

	r, ok := m.flags[normalize(name)]
	switch {
	case !ok || r.percent <= 0:
		return false
	case r.percent >= 100:
		return true
	case userID == "":
		return false
	default:
		return rolloutBucket(name, userID) < r.percent
	}
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, r := range m.flags {
		out[k] = r.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID string) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + userID))
	return int(h.Sum32() % 100)
}
