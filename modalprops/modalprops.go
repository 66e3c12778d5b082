// Package modalprops provides map-based props for modals and pages.
package modalprops

import (
	"maps"
	"slices"

	modal "github.com/onlime/momentum-modal"
)

var _ modal.Proper = (*Map)(nil)

// Map is a plain key-value Proper. All values are regular props.
//
// For lazy, deferred or always props use modal.NewProp and friends,
// or modal.ParseStruct.
type Map map[string]any

// Props returns the props of m in key order.
func (m Map) Props() []modal.Prop {
	props := make([]modal.Prop, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		props = append(props, modal.NewProp(k, m[k], nil))
	}

	return props
}

func (m Map) Len() int { return len(m) }

// Always is like Map, but its props ignore partial reload filters.
type Always map[string]any

var _ modal.Proper = (*Always)(nil)

func (m Always) Props() []modal.Prop {
	props := make([]modal.Prop, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		props = append(props, modal.NewAlways(k, m[k]))
	}

	return props
}

func (m Always) Len() int { return len(m) }
