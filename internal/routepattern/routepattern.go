// Package routepattern expands the "{name}" style path patterns understood
// by net/http.ServeMux and chi into URLs.
//
// Supported segments:
//   - "{name}" and "{name:regexp}" match a single segment,
//   - "{name...}" and "*" match the remainder of the path,
//   - "{$}" anchors the end of a path ending in a slash,
//   - a trailing slash (without "{$}") matches any remainder.
package routepattern

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// ErrMissingParam is returned when a pattern parameter has no value.
var ErrMissingParam = errors.New("routepattern: missing parameter")

const wildcardName = "*"

type segment struct {
	literal string
	name    string
	param   bool
	rest    bool // consumes the remainder of the path
	end     bool // {$}
}

// Path strips the optional method and host from a ServeMux pattern,
// e.g. "GET example.com/users/{id}" becomes "/users/{id}".
func Path(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if i := strings.IndexAny(pattern, " \t"); i >= 0 {
		pattern = strings.TrimLeft(pattern[i:], " \t")
	}

	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}

	return pattern
}

func parse(pattern string) []segment {
	parts := strings.Split(strings.TrimPrefix(Path(pattern), "/"), "/")
	segs := make([]segment, 0, len(parts))

	for i, p := range parts {
		switch {
		case p == "*":
			segs = append(segs, segment{name: wildcardName, param: true, rest: true})
		case p == "{$}":
			segs = append(segs, segment{end: true})
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			name := p[1 : len(p)-1]
			if j := strings.IndexByte(name, ':'); j >= 0 {
				name = name[:j]
			}

			rest := strings.HasSuffix(name, "...")
			segs = append(segs, segment{name: strings.TrimSuffix(name, "..."), param: true, rest: rest})
		case p == "" && i == len(parts)-1:
			// "/" and "/prefix/" match every path below the prefix.
			segs = append(segs, segment{rest: true})
		default:
			segs = append(segs, segment{literal: p})
		}
	}

	return segs
}

// Expand substitutes params into pattern and returns the resulting path.
//
// Parameters that do not appear in the pattern are appended as a query
// string in key order. A parameter required by the pattern but absent
// from params results in ErrMissingParam.
func Expand(pattern string, params map[string]string) (string, error) {
	segs := parse(pattern)
	used := make(map[string]struct{}, len(params))

	var b strings.Builder

	for _, s := range segs {
		switch {
		case s.end:
			b.WriteByte('/')
		case s.param:
			v, ok := params[s.name]
			if !ok {
				return "", fmt.Errorf("%w %q in %q", ErrMissingParam, s.name, pattern)
			}

			used[s.name] = struct{}{}

			b.WriteByte('/')

			if s.rest {
				b.WriteString(strings.TrimPrefix(v, "/"))
			} else {
				b.WriteString(url.PathEscape(v))
			}
		case s.rest:
			b.WriteByte('/')
		default:
			b.WriteByte('/')
			b.WriteString(s.literal)
		}
	}

	path := b.String()
	if path == "" {
		path = "/"
	}

	query := url.Values{}
	for _, k := range slices.Sorted(maps.Keys(params)) {
		if _, ok := used[k]; !ok {
			query.Set(k, params[k])
		}
	}

	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	return path, nil
}
