package resolver

import (
	"encoding/json"
	"sort"
)

// unionDedup appends the entries of b missing from a, keeping first-seen
// order. Neither input is modified.
func unionDedup(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}

// mergeSecretPaths unions every tier. Higher tiers only add entries.
func mergeSecretPaths(layers []layer[PatternSet]) PatternSet {
	merged := PatternSet{Deny: []string{}, Allow: []string{}}
	for _, l := range layers {
		merged.Deny = unionDedup(merged.Deny, l.Value.Deny)
		merged.Allow = unionDedup(merged.Allow, l.Value.Allow)
	}
	return merged
}

func mergePopularPackages(layers []layer[map[string][]string]) map[string][]string {
	merged := map[string][]string{}
	for _, l := range layers {
		for eco, names := range l.Value {
			merged[eco] = unionDedup(merged[eco], names)
		}
	}
	return merged
}

// mergeObjects shallow-merges flat objects; later layers overwrite earlier
// keys.
func mergeObjects(layers []layer[map[string]json.RawMessage]) map[string]json.RawMessage {
	merged := map[string]json.RawMessage{}
	for _, l := range layers {
		for k, v := range l.Value {
			merged[k] = v
		}
	}
	return merged
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
