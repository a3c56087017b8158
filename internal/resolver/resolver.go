// Package resolver merges the three configuration tiers of every policy
// domain and caches the result in a per-user store.
//
// Set-valued domains (secret path patterns, popular package names) are a
// union of all tiers: higher tiers add entries and never remove them.
// Object-valued domains (commit rules) are a shallow override on top of a
// compiled-in fallback. Cached artifacts are regenerated when absent,
// corrupt, or older than any tier file.
package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/cache"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
)

// Resolver serves resolved configuration for one set of tier directories.
type Resolver struct {
	paths  config.Paths
	store  cache.Store
	logger *slog.Logger
	prefix string
}

// New returns a resolver reading tiers from paths and caching in store.
// A nil logger discards output.
func New(paths config.Paths, store cache.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		paths:  paths,
		store:  store,
		logger: logger,
		prefix: fingerprint(paths),
	}
}

// Paths returns the tier directories this resolver reads.
func (r *Resolver) Paths() config.Paths { return r.paths }

// fingerprint keys the cache by tier directories, so projects with
// different overrides never share artifacts.
func fingerprint(p config.Paths) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{p.DefaultsDir, p.UserDir, p.ProjectDir}, "\x00")))
	return hex.EncodeToString(sum[:6])
}

func (r *Resolver) key(d Domain, part string) string {
	if part == "" {
		return fmt.Sprintf("%s.%s.json", d, r.prefix)
	}
	return fmt.Sprintf("%s.%s.%s.json", d, r.prefix, part)
}

// SecretPatterns returns the merged secret-path deny and allow patterns.
func (r *Resolver) SecretPatterns(ctx context.Context) (PatternSet, error) {
	d := DomainSecretPaths
	newest := newestTierChange(r.paths, d)
	deny, errDeny := r.readList(ctx, r.key(d, "deny"), newest)
	allow, errAllow := r.readList(ctx, r.key(d, "allow"), newest)
	if errDeny == nil && errAllow == nil {
		return PatternSet{Deny: deny, Allow: allow}, nil
	}
	return r.rebuildSecretPaths(ctx)
}

func (r *Resolver) rebuildSecretPaths(ctx context.Context) (PatternSet, error) {
	d := DomainSecretPaths
	layers, err := loadLayers(r.logger, r.paths, d, decodeSecretPaths)
	if err != nil {
		return PatternSet{}, err
	}
	set := mergeSecretPaths(layers)
	r.writeJSON(ctx, r.key(d, "deny"), set.Deny)
	r.writeJSON(ctx, r.key(d, "allow"), set.Allow)
	r.logger.Debug("regenerated cache", "domain", string(d), "deny", len(set.Deny), "allow", len(set.Allow))
	return set, nil
}

// PopularPackages returns the merged reference list for one ecosystem.
// Unknown ecosystems resolve to an empty list.
func (r *Resolver) PopularPackages(ctx context.Context, ecosystem string) ([]string, error) {
	d := DomainPopularPackages
	eco := normalizeEcosystem(ecosystem)
	if eco == "" {
		return nil, nil
	}
	newest := newestTierChange(r.paths, d)
	if ecos, err := r.readList(ctx, r.key(d, "ecosystems"), newest); err == nil {
		if !slices.Contains(ecos, eco) {
			return []string{}, nil
		}
		if names, err := r.readList(ctx, r.key(d, eco), newest); err == nil {
			return names, nil
		}
	}
	merged, err := r.rebuildPopularPackages(ctx)
	if err != nil {
		return nil, err
	}
	if names, ok := merged[eco]; ok {
		return names, nil
	}
	return []string{}, nil
}

func (r *Resolver) rebuildPopularPackages(ctx context.Context) (map[string][]string, error) {
	d := DomainPopularPackages
	layers, err := loadLayers(r.logger, r.paths, d, decodePopularPackages)
	if err != nil {
		return nil, err
	}
	merged := mergePopularPackages(layers)
	ecos := sortedKeys(merged)
	for _, eco := range ecos {
		r.writeJSON(ctx, r.key(d, eco), merged[eco])
	}
	// The manifest is written last: readers trust per-ecosystem artifacts
	// only once it is in place.
	r.writeJSON(ctx, r.key(d, "ecosystems"), ecos)
	r.logger.Debug("regenerated cache", "domain", string(d), "ecosystems", len(ecos))
	return merged, nil
}

// CommitRules decodes the merged commit rules into out. fallback supplies
// every field; tier files override individual keys.
func (r *Resolver) CommitRules(ctx context.Context, fallback, out any) error {
	d := DomainCommitRules
	base, err := toObject(fallback)
	if err != nil {
		return fmt.Errorf("encode fallback rules: %w", err)
	}
	overrides, err := r.readObject(ctx, r.key(d, ""), newestTierChange(r.paths, d))
	if err != nil {
		if overrides, err = r.rebuildCommitRules(ctx); err != nil {
			return err
		}
	}
	for k, v := range overrides {
		base[k] = v
	}
	data, err := json.Marshal(base)
	if err != nil {
		return err
	}
	// An override of the wrong type discards the tier values.
	if err := json.Unmarshal(data, out); err != nil {
		r.logger.Warn("commit rules override has wrong type, using fallback", "error", err)
		data, _ = json.Marshal(fallback)
		return json.Unmarshal(data, out)
	}
	return nil
}

func (r *Resolver) rebuildCommitRules(ctx context.Context) (map[string]json.RawMessage, error) {
	d := DomainCommitRules
	layers, err := loadLayers(r.logger, r.paths, d, decodeObject)
	if err != nil {
		return nil, err
	}
	merged := mergeObjects(layers)
	r.writeJSON(ctx, r.key(d, ""), merged)
	return merged, nil
}

// Rebuild regenerates every domain's artifacts regardless of freshness.
func (r *Resolver) Rebuild(ctx context.Context) error {
	var errs []error
	if _, err := r.rebuildSecretPaths(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := r.rebuildPopularPackages(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := r.rebuildCommitRules(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Artifact describes one cached file.
type Artifact struct {
	Key     string    `json:"key"`
	Entries int       `json:"entries"`
	ModTime time.Time `json:"mod_time"`
	Corrupt bool      `json:"corrupt,omitempty"`
}

// Artifacts lists every artifact in the store with its entry count.
func (r *Resolver) Artifacts(ctx context.Context) ([]Artifact, error) {
	keys, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Artifact
	for _, k := range keys {
		if !strings.HasSuffix(k, ".json") {
			continue
		}
		a := Artifact{Key: k}
		if mod, err := r.store.ModTime(ctx, k); err == nil {
			a.ModTime = mod
		}
		data, err := r.store.Read(ctx, k)
		if err != nil {
			continue
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			a.Corrupt = true
		}
		switch t := v.(type) {
		case []any:
			a.Entries = len(t)
		case map[string]any:
			a.Entries = len(t)
		}
		out = append(out, a)
	}
	return out, nil
}

// Purge deletes every cached artifact.
func (r *Resolver) Purge(ctx context.Context) (int, error) {
	keys, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if !strings.HasSuffix(k, ".json") {
			continue
		}
		if err := r.store.Delete(ctx, k); err != nil && !errors.Is(err, cache.ErrNotFound) {
			return n, err
		}
		n++
	}
	return n, nil
}

// readList returns a cached string array, or ErrCacheMiss when the
// artifact is absent, older than newest, or not a JSON string array.
func (r *Resolver) readList(ctx context.Context, key string, newest time.Time) ([]string, error) {
	data, err := r.readFresh(ctx, key, newest)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		r.logger.Debug("corrupt cache artifact", "key", key)
		return nil, ErrCacheMiss
	}
	return list, nil
}

func (r *Resolver) readObject(ctx context.Context, key string, newest time.Time) (map[string]json.RawMessage, error) {
	data, err := r.readFresh(ctx, key, newest)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		r.logger.Debug("corrupt cache artifact", "key", key)
		return nil, ErrCacheMiss
	}
	return obj, nil
}

func (r *Resolver) readFresh(ctx context.Context, key string, newest time.Time) ([]byte, error) {
	mod, err := r.store.ModTime(ctx, key)
	if err != nil {
		return nil, ErrCacheMiss
	}
	if newest.After(mod) {
		return nil, ErrCacheMiss
	}
	data, err := r.store.Read(ctx, key)
	if err != nil {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// writeJSON persists an artifact. Failures are logged and the next run
// regenerates.
func (r *Resolver) writeJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("encode cache artifact", "key", key, "error", err)
		return
	}
	if err := r.store.Write(ctx, key, data); err != nil {
		r.logger.Warn("write cache artifact", "key", key, "error", err)
	}
}

func toObject(v any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
