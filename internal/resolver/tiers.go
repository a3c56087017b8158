package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
)

var errTierAbsent = errors.New("tier file not found")

// layer is one successfully decoded tier file.
type layer[T any] struct {
	Tier  config.Tier
	Path  string
	Value T
}

// readTierFile loads a tier file, probing .yaml and .yml siblings when the
// JSON file does not exist. YAML content is normalized to JSON.
func readTierFile(path string) (json.RawMessage, string, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, p := range []string{path, base + ".yaml", base + ".yml"} {
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, p, err
		}
		if filepath.Ext(p) == ".json" {
			if !json.Valid(data) {
				return nil, p, errors.New("invalid JSON")
			}
			return data, p, nil
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, p, fmt.Errorf("invalid YAML: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, p, fmt.Errorf("convert YAML: %w", err)
		}
		return out, p, nil
	}
	return nil, path, errTierAbsent
}

// loadLayers reads and decodes every tier of a domain, lowest priority
// first. A required tier-1 file that is absent or undecodable is a
// ConfigError; every other tier is skipped when absent or corrupt.
func loadLayers[T any](logger *slog.Logger, paths config.Paths, d Domain, decode func(json.RawMessage) (T, error)) ([]layer[T], error) {
	var layers []layer[T]
	for _, tf := range paths.TierFiles(d.FileName()) {
		raw, path, err := readTierFile(tf.Path)
		var value T
		if err == nil {
			value, err = decode(raw)
		}
		if err != nil {
			if tf.Tier == config.TierDefaults && d.Required() {
				return nil, &ConfigError{Domain: d, Path: path, Err: err}
			}
			if !errors.Is(err, errTierAbsent) {
				logger.Warn("skipping unreadable config tier",
					"domain", string(d), "tier", tf.Tier.String(), "path", path, "error", err)
			}
			continue
		}
		layers = append(layers, layer[T]{Tier: tf.Tier, Path: path, Value: value})
	}
	return layers, nil
}

// newestTierChange returns the latest modification time across every
// candidate tier file of a domain. Absent files are ignored.
func newestTierChange(paths config.Paths, d Domain) time.Time {
	var newest time.Time
	for _, tf := range paths.TierFiles(d.FileName()) {
		base := strings.TrimSuffix(tf.Path, filepath.Ext(tf.Path))
		for _, p := range []string{tf.Path, base + ".yaml", base + ".yml"} {
			info, err := os.Stat(p)
			if err != nil {
				continue
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}
	}
	return newest
}

func decodeSecretPaths(raw json.RawMessage) (PatternSet, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return PatternSet{Deny: cleanList(list)}, nil
	}
	var set PatternSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return PatternSet{}, fmt.Errorf("expected {\"deny\": [...], \"allow\": [...]} or an array: %w", err)
	}
	set.Deny = cleanList(set.Deny)
	set.Allow = cleanList(set.Allow)
	return set, nil
}

// decodePopularPackages reads {"<ecosystem>": [names]}. Keys whose value is
// not a string array (comments, metadata) are ignored.
func decodePopularPackages(raw json.RawMessage) (map[string][]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("expected {\"<ecosystem>\": [...]}: %w", err)
	}
	out := make(map[string][]string, len(obj))
	for eco, v := range obj {
		var names []string
		if err := json.Unmarshal(v, &names); err != nil {
			continue
		}
		eco = normalizeEcosystem(eco)
		if eco == "" {
			continue
		}
		out[eco] = unionDedup(out[eco], cleanList(names))
	}
	return out, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("expected a flat object: %w", err)
	}
	return obj, nil
}

// normalizeEcosystem lowercases an ecosystem name and rejects characters
// that cannot appear in a cache key.
func normalizeEcosystem(eco string) string {
	eco = strings.ToLower(strings.TrimSpace(eco))
	for _, r := range eco {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return ""
		}
	}
	return eco
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
