package modal

import (
	"cmp"
	"context"
)

var (
	_ Proper = (Props)(nil)
	_ Proper = (*Prop)(nil)
)

const DefaultDeferredGroup = "default"

// Proper is anything that can be turned into a list of props: a single Prop,
// Props, modalprops.Map, or the result of ParseStruct.
type Proper interface {
	// Props returns the underlying prop slice.
	Props() []Prop

	// Len returns the number of props in the collection.
	Len() int
}

// Props is a collection of props.
type Props []Prop

func (p Props) Len() int      { return len(p) }
func (p Props) Props() []Prop { return p }

// Prop is a single property of a page component or a modal.
//
// Props are created with NewProp, NewAlways, NewOptional and NewDeferred.
type Prop struct {
	val        any
	valFn      Lazy // optional, deferred
	key        string
	group      string // deferred
	mergeable  bool
	deferred   bool
	lazy       bool // optional, deferred
	ignorable  bool // false if always prop
	concurrent bool
}

func (p Prop) Props() []Prop { return []Prop{p} }
func (p Prop) Len() int      { return 1 }

// Key returns the name the prop is sent under.
func (p Prop) Key() string { return p.key }

// value resolves the prop value, calling the lazy function if there is one.
func (p Prop) value(ctx context.Context) (any, error) {
	if p.valFn == nil {
		return p.val, nil
	}

	v, err := p.valFn.Value(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return v, nil
}

type (
	// Lazy is a prop value computed on demand.
	Lazy interface {
		// Value resolves the prop value. The result must be JSON-serializable.
		Value(context.Context) (any, error)
	}

	// LazyFunc adapts a function to Lazy.
	LazyFunc func(context.Context) (any, error)
)

// Value calls fn.
func (fn LazyFunc) Value(ctx context.Context) (any, error) { return fn(ctx) }

// PropOptions configures a regular prop.
type PropOptions struct {
	// Merge makes the client merge the value into its current state
	// on partial reloads instead of replacing it.
	Merge bool
}

// NewProp creates a prop included on the first render and on partial reloads
// that ask for it. A nil opts means no merging.
func NewProp(key string, val any, opts *PropOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{
		ignorable: true,
		key:       key,
		val:       val,
	}

	if opts != nil {
		prop.mergeable = opts.Merge
	}

	return prop
}

// NewAlways creates a prop that ignores X-Inertia-Partial-Data and
// X-Inertia-Partial-Except filters. The modal payload is shared this way.
func NewAlways(key string, value any) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable: false,
		key:       key,
		val:       value,
	}
}

// NewOptional creates a prop resolved only when a partial reload asks for it.
func NewOptional(key string, fn Lazy) Prop {
	//nolint:exhaustruct
	return Prop{
		ignorable: true,
		lazy:      true,
		key:       key,
		valFn:     fn,
	}
}

// DeferredOptions configures a deferred prop.
type DeferredOptions struct {
	// Group is the deferred group the client requests the prop with.
	// Defaults to DefaultDeferredGroup.
	Group string

	// Merge makes the client merge the value instead of replacing it.
	Merge bool

	// Concurrent allows the prop to be resolved in parallel with other
	// concurrent props of the same request.
	Concurrent bool
}

// NewDeferred creates a prop the client loads after the first render.
// A nil opts puts the prop in the default group without merging.
func NewDeferred(key string, fn Lazy, opts *DeferredOptions) Prop {
	//nolint:exhaustruct
	prop := Prop{
		deferred:  true,
		lazy:      true,
		ignorable: true,
		key:       key,
		valFn:     fn,
		group:     DefaultDeferredGroup,
	}

	if opts != nil {
		prop.group = cmp.Or(opts.Group, DefaultDeferredGroup)
		prop.mergeable = opts.Merge
		prop.concurrent = opts.Concurrent
	}

	return prop
}
