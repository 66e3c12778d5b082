// Package vite provides a minimal integration for Vite, the bundler of the
// front-end pages and modal components.
//
// Without a manifest, templates load resources from the Vite dev server
// along with the Vite client and React Refresh. With a manifest, they link
// the bundled resources it declares.
package vite

import (
	"cmp"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"go.inout.gg/foundations/must"
)

const DefaultViteAddress = "http://localhost:5173"

const DefaultTemplateName = "app"

type Config struct {
	// Manifest of the production build. If nil, resources are served by
	// the dev server at ViteAddress.
	Manifest *Manifest

	TemplateName string
	ViteAddress  string
}

func (c *Config) defaults() {
	c.ViteAddress = strings.TrimSuffix(cmp.Or(c.ViteAddress, DefaultViteAddress), "/")
	c.TemplateName = cmp.Or(c.TemplateName, DefaultTemplateName)
}

// NewTemplate creates a new template from a string.
//
// The resulting template will have built-in support for Vite.
// To include Vite React Refresh, use {{template "viteReactRefresh"}}
// and Vite client, use {{template "viteClient"}}.
// To include a Vite resource, use {{viteResource "path/to/resource.js"}}.
// With a manifest, "viteClient" and "viteReactRefresh" are blank.
func NewTemplate(content string, config *Config) (*template.Template, error) {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	t := newTemplate(config)
	if _, err := t.Parse(content); err != nil {
		return nil, fmt.Errorf("vite: failed to parse template: %w", err)
	}

	return t, nil
}

// Must is like NewTemplate but panics on error.
func Must(content string, c *Config) *template.Template {
	return must.Must(NewTemplate(content, c))
}

// FromFS creates a new template from the file at p in fsys.
// See NewTemplate for more information.
//
// The template is named after the file, the TemplateName of cfg is ignored.
func FromFS(fsys fs.FS, p string, cfg *Config) (*template.Template, error) {
	if cfg == nil {
		//nolint:exhaustruct
		cfg = &Config{}
	}

	cfg.TemplateName = path.Base(p)
	cfg.defaults()

	t := newTemplate(cfg)
	if _, err := t.ParseFS(fsys, p); err != nil {
		return nil, fmt.Errorf("vite: failed to parse template: %w", err)
	}

	return t, nil
}

const reactRefresh = `<script type="module">
import RefreshRuntime from "%s/@react-refresh"
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>`

func newTemplate(c *Config) *template.Template {
	t := template.New(c.TemplateName).Funcs(template.FuncMap{
		"viteResource": func(name string) (template.HTML, error) { return resource(c, name) },
	})

	client, refresh := "", ""
	if c.Manifest == nil {
		client = fmt.Sprintf(`<script type="module" src="%s/@vite/client"></script>`, c.ViteAddress)
		refresh = fmt.Sprintf(reactRefresh, c.ViteAddress)
	}

	template.Must(t.New("viteClient").Parse(client))
	template.Must(t.New("viteReactRefresh").Parse(refresh))

	return t
}

// resource returns the tags loading the resource name.
func resource(c *Config, name string) (template.HTML, error) {
	if c.Manifest == nil {
		//nolint:gosec
		return template.HTML(fmt.Sprintf(`<script type="module" src="%s/%s"></script>`,
			c.ViteAddress, template.HTMLEscapeString(strings.TrimPrefix(name, "/")))), nil
	}

	css, js, err := c.Manifest.HTML(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	for _, tag := range append(css, js...) {
		b.WriteString(string(tag))
	}

	//nolint:gosec
	return template.HTML(b.String()), nil
}
