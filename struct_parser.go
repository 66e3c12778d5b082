package modal

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

const (
	TagInertia      = "inertia"
	TagInertiaGroup = "inertiagroup"
)

const (
	propTypeRegular  = ""
	propTypeOptional = "optional"
	propTypeDeferred = "deferred"
	propTypeAlways   = "always"

	propDiscard    = "-"
	propOmitEmpty  = "omitempty"
	propMergeable  = "mergeable"
	propConcurrent = "concurrent"
)

var (
	errNotStructPointer = errors.New("modal: props must be a pointer to a struct")
	errInvalidLazy      = errors.New("modal: invalid lazy value")
	errGroupNotDeferred = errors.New("modal: cannot use group tag on non-deferred field")
)

var lazyType = reflect.TypeFor[Lazy]() //nolint:gochecknoglobals

// fieldTag is a parsed `inertia:"..."` struct tag.
type fieldTag struct {
	name       string
	typ        string
	group      string
	mergeable  bool
	concurrent bool
	omitEmpty  bool
}

// parseFieldTag parses the inertia and inertiagroup tags of field.
// The boolean result is false if the field has no inertia tag or is discarded.
func parseFieldTag(field reflect.StructField) (fieldTag, bool) {
	raw := field.Tag.Get(TagInertia)
	if raw == "" {
		return fieldTag{}, false //nolint:exhaustruct
	}

	parts := strings.Split(raw, ",")

	//nolint:exhaustruct
	tag := fieldTag{
		name:  cmp.Or(parts[0], field.Name),
		group: field.Tag.Get(TagInertiaGroup),
	}

	if tag.name == propDiscard {
		return tag, false
	}

	if len(parts) > 1 {
		tag.typ = parts[1]
	}

	tag.mergeable = len(parts) > 2 && parts[2] == propMergeable
	tag.concurrent = len(parts) > 3 && parts[3] == propConcurrent
	tag.omitEmpty = parts[len(parts)-1] == propOmitEmpty

	if tag.typ == propOmitEmpty {
		tag.typ = propTypeRegular
	}

	return tag, true
}

// ParseStruct converts a pointer to a struct into Props using struct tags.
// It is the way to pass a typed value as modal or page props.
//
// Only exported fields tagged with "inertia" are included.
//
// Tag format: `inertia:"name[,type][,mergeable][,concurrent][,omitempty]"`
//
//   - name: prop name, "-" skips the field.
//   - type: "optional", "deferred", "always" or empty for a regular prop.
//   - mergeable, concurrent: literal flags in the third and fourth position.
//   - omitempty: skips zero values, must be the last element.
//
// Deferred props may be grouped with `inertiagroup:"name"`.
// Optional and deferred fields must hold a Lazy or a LazyFunc.
//
//	type EditUserProps struct {
//	    User      User     `inertia:"user,always"`
//	    Roles     []Role   `inertia:"roles"`
//	    Audit     LazyFunc `inertia:"audit,deferred,,concurrent" inertiagroup:"history"`
//	    Avatar    LazyFunc `inertia:"avatar,optional,omitempty"`
//	}
func ParseStruct(v any) (Props, error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return nil, errNotStructPointer
	}

	val = val.Elem()
	typ := val.Type()
	props := make(Props, 0, typ.NumField())

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag, ok := parseFieldTag(field)
		if !ok {
			continue
		}

		fieldVal := val.Field(i)
		if tag.omitEmpty && fieldVal.IsZero() {
			continue
		}

		prop, err := newPropFromField(tag, fieldVal)
		if err != nil {
			return nil, err
		}

		props = append(props, prop)
	}

	return props, nil
}

// MustParseStruct is like ParseStruct, but panics if an error occurs.
func MustParseStruct(v any) Props {
	props, err := ParseStruct(v)
	if err != nil {
		panic(err)
	}

	return props
}

func newPropFromField(tag fieldTag, v reflect.Value) (Prop, error) {
	if tag.group != "" && tag.typ != propTypeDeferred {
		return Prop{}, errGroupNotDeferred //nolint:exhaustruct
	}

	switch tag.typ {
	case propTypeRegular:
		return NewProp(tag.name, v.Interface(), &PropOptions{Merge: tag.mergeable}), nil
	case propTypeAlways:
		return NewAlways(tag.name, v.Interface()), nil
	case propTypeOptional:
		fn, err := toLazy(v)
		if err != nil {
			return Prop{}, err //nolint:exhaustruct
		}

		return NewOptional(tag.name, fn), nil
	case propTypeDeferred:
		fn, err := toLazy(v)
		if err != nil {
			return Prop{}, err //nolint:exhaustruct
		}

		return NewDeferred(tag.name, fn, &DeferredOptions{
			Group:      tag.group,
			Merge:      tag.mergeable,
			Concurrent: tag.concurrent,
		}), nil
	default:
		return Prop{}, fmt.Errorf("modal: unknown field type %q", tag.typ) //nolint:exhaustruct
	}
}

// toLazy converts v to Lazy if it holds a Lazy or a LazyFunc.
func toLazy(v reflect.Value) (Lazy, error) {
	if v.Kind() == reflect.Interface && v.Type().Implements(lazyType) {
		lazy, ok := v.Interface().(Lazy)
		if !ok {
			return nil, errInvalidLazy
		}

		return lazy, nil
	}

	if v.Kind() == reflect.Func {
		fn, ok := v.Interface().(LazyFunc)
		if !ok {
			return nil, errInvalidLazy
		}

		return fn, nil
	}

	return nil, errInvalidLazy
}
