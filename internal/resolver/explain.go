package resolver

import (
	"encoding/json"
	"errors"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
)

// EntrySource is one resolved value and the tier it came from.
type EntrySource struct {
	Key    string          `json:"key,omitempty" yaml:"key,omitempty"`
	Value  json.RawMessage `json:"value" yaml:"-"`
	Text   string          `json:"-" yaml:"value"`
	Source config.Source   `json:"source" yaml:"source"`
}

// TierStatus reports what happened to one tier file.
type TierStatus struct {
	Tier   string `json:"tier" yaml:"tier"`
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
}

// Explanation is the resolved configuration of a domain with per-entry
// sources, used by "config show".
type Explanation struct {
	Domain   Domain                   `json:"domain" yaml:"domain"`
	Tiers    []TierStatus             `json:"tiers" yaml:"tiers"`
	Deny     []EntrySource            `json:"deny,omitempty" yaml:"deny,omitempty"`
	Allow    []EntrySource            `json:"allow,omitempty" yaml:"allow,omitempty"`
	Packages map[string][]EntrySource `json:"packages,omitempty" yaml:"packages,omitempty"`
	Rules    []EntrySource            `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Explain resolves a domain from the tier files directly, bypassing the
// cache. fallback is used for commit rules only.
func (r *Resolver) Explain(d Domain, fallback any) (*Explanation, error) {
	ex := &Explanation{Domain: d, Tiers: tierStatuses(r.paths, d)}
	switch d {
	case DomainSecretPaths:
		layers, err := loadLayers(r.logger, r.paths, d, decodeSecretPaths)
		if err != nil {
			return ex, err
		}
		var deny, allow []layer[[]string]
		for _, l := range layers {
			deny = append(deny, layer[[]string]{Tier: l.Tier, Value: l.Value.Deny})
			allow = append(allow, layer[[]string]{Tier: l.Tier, Value: l.Value.Allow})
		}
		ex.Deny = explainSet(deny)
		ex.Allow = explainSet(allow)
	case DomainPopularPackages:
		layers, err := loadLayers(r.logger, r.paths, d, decodePopularPackages)
		if err != nil {
			return ex, err
		}
		perEco := map[string][]layer[[]string]{}
		for _, l := range layers {
			for eco, names := range l.Value {
				perEco[eco] = append(perEco[eco], layer[[]string]{Tier: l.Tier, Value: names})
			}
		}
		ex.Packages = make(map[string][]EntrySource, len(perEco))
		for eco, ls := range perEco {
			ex.Packages[eco] = explainSet(ls)
		}
	case DomainCommitRules:
		base, err := toObject(fallback)
		if err != nil {
			return ex, err
		}
		layers, err := loadLayers(r.logger, r.paths, d, decodeObject)
		if err != nil {
			return ex, err
		}
		sources := map[string]EntrySource{}
		for k, v := range base {
			sources[k] = entry(k, v, config.SourceBuiltin)
		}
		for _, l := range layers {
			for k, v := range l.Value {
				sources[k] = entry(k, v, l.Tier.Source())
			}
		}
		for _, k := range sortedKeys(sources) {
			ex.Rules = append(ex.Rules, sources[k])
		}
	default:
		return nil, ErrUnknownDomain
	}
	return ex, nil
}

// explainSet attributes each union member to the lowest tier that added it.
func explainSet(layers []layer[[]string]) []EntrySource {
	var out []EntrySource
	seen := map[string]bool{}
	for _, l := range layers {
		for _, v := range l.Value {
			if seen[v] {
				continue
			}
			seen[v] = true
			raw, _ := json.Marshal(v)
			out = append(out, EntrySource{Value: raw, Text: v, Source: l.Tier.Source()})
		}
	}
	return out
}

func entry(key string, v json.RawMessage, src config.Source) EntrySource {
	return EntrySource{Key: key, Value: v, Text: string(v), Source: src}
}

func tierStatuses(paths config.Paths, d Domain) []TierStatus {
	var out []TierStatus
	for _, tf := range paths.TierFiles(d.FileName()) {
		st := TierStatus{Tier: tf.Tier.String(), Path: tf.Path, Status: "loaded"}
		_, path, err := readTierFile(tf.Path)
		st.Path = path
		switch {
		case errors.Is(err, errTierAbsent):
			st.Status = "absent"
		case err != nil:
			st.Status = "error: " + err.Error()
		}
		out = append(out, st)
	}
	return out
}
