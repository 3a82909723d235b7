package web

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultManifest is the built-in console theme with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "stowage",
		Version: "1.0.0",
		Tokens: map[string]string{
			"bg":      "#f5f5f5",
			"fg":      "#1f2933",
			"card":    "#ffffff",
			"accent":  "#3b5bdb",
			"success": "#2f9e44",
			"error":   "#e03131",
			"info":    "#1971c2",
			"muted":   "#868e96",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"bg":   "#141517",
					"fg":   "#e9ecef",
					"card": "#25262b",
				},
			},
		},
	}
}

// ResolveTheme merges the variant over the manifest and derives CSS
// variables from the tokens. Unknown variants fall back to the base tokens.
func ResolveTheme(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	cfg := &theme.RendererConfig{
		Theme:   manifest.Name,
		Tokens:  make(map[string]string, len(manifest.Tokens)),
		CSSVars: make(map[string]string, len(manifest.Tokens)),
	}
	for key, value := range manifest.Tokens {
		cfg.Tokens[key] = value
	}

	assets := manifest.Assets
	if v, ok := manifest.Variants[variant]; ok && variant != "" {
		cfg.Variant = variant
		for key, value := range v.Tokens {
			cfg.Tokens[key] = value
		}
		if len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(assets.Files)+len(v.Assets.Files))
			for key, value := range assets.Files {
				merged[key] = value
			}
			for key, value := range v.Assets.Files {
				merged[key] = value
			}
			assets.Files = merged
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assets.Files[key]
		if !ok || file == "" {
			return ""
		}
		if assets.Prefix == "" {
			return file
		}
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}
