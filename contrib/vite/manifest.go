package vite

import (
	"fmt"
	"html/template"
	"io/fs"

	"github.com/go-json-experiment/json"
)

type rawManifest = map[string]*ManifestEntry

// Manifest represents a parsed Vite build manifest (manifest.json).
// It maps entry points to their compiled assets and dependencies.
type Manifest struct {
	raw rawManifest

	// Base is prepended to the file paths of the manifest, e.g. "/build/".
	Base string
}

// ManifestEntry describes a single asset in the Vite build manifest.
// It contains the asset's output path, dependencies, and metadata.
type ManifestEntry struct {
	Source         string   `json:"src"`
	File           string   `json:"file"`
	Name           string   `json:"name"`
	CSS            []string `json:"css"`
	Assets         []string `json:"assets"`
	Imports        []string `json:"imports"`
	DynamicImports []string `json:"dynamicImports"`
	IsEntry        bool     `json:"isEntry"`
	IsDynamicEntry bool     `json:"isDynamicEntry"`
}

// HTML resolves a manifest entry and returns all required CSS and JS tags.
//
// It recursively walks the static import graph: the entry gets a module
// script, its imports a modulepreload link, and every visited chunk its
// stylesheets.
func (m *Manifest) HTML(name string) ([]template.HTML, []template.HTML, error) {
	entry, ok := m.raw[name]
	if !ok {
		return nil, nil, fmt.Errorf("vite: entry %s not found in manifest", name)
	}

	var (
		css  []template.HTML
		js   []template.HTML
		seen = make(map[string]bool)
	)

	var walk func(key string, e *ManifestEntry)

	walk = func(key string, e *ManifestEntry) {
		if e == nil || seen[key] {
			return
		}

		seen[key] = true

		for _, link := range e.CSS {
			//nolint:gosec
			css = append(css, template.HTML(fmt.Sprintf(
				`<link rel="stylesheet" href="%s%s" />`, m.Base, template.HTMLEscapeString(link))))
		}

		if key == name {
			//nolint:gosec
			js = append(js, template.HTML(fmt.Sprintf(
				`<script type="module" src="%s%s"></script>`, m.Base, template.HTMLEscapeString(e.File))))
		} else {
			//nolint:gosec
			js = append(js, template.HTML(fmt.Sprintf(
				`<link rel="modulepreload" href="%s%s" />`, m.Base, template.HTMLEscapeString(e.File))))
		}

		for _, i := range e.Imports {
			walk(i, m.raw[i])
		}
	}

	walk(name, entry)

	return css, js, nil
}

// ParseManifest parses a Vite build manifest from JSON bytes.
//
// The manifest maps entry point names to their compiled assets and dependencies.
func ParseManifest(b []byte) (*Manifest, error) {
	var raw rawManifest

	err := json.Unmarshal(b, &raw)
	if err != nil {
		return nil, fmt.Errorf("vite: failed to unmarshal manifest: %w", err)
	}

	return &Manifest{raw: raw, Base: "/"}, nil
}

// ParseManifestFromFS reads and parses a Vite manifest from a file system.
func ParseManifestFromFS(fsys fs.FS, path string) (*Manifest, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("vite: failed to read manifest file: %w", err)
	}

	return ParseManifest(b)
}
