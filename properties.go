/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

package dfxml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type propertyKind int

const (
	scalarProperty propertyKind = iota
	modeProperty
	hashProperty
	byteRunsProperty
)

// property describes one schema property of T. field returns a pointer to
// the struct field holding the value, one of **string, **int64, **bool,
// **TimestampObject or **ByteRuns.
type property[T any] struct {
	name  string
	kind  propertyKind
	facet string
	// poststream properties are written after the child objects.
	poststream bool
	// incomparable properties are skipped by object comparison.
	incomparable bool
	field        func(*T) interface{}
}

// Hash property names.
var HashNames = []string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512"}

// IsHashProperty reports whether a property name denotes a content digest.
func IsHashProperty(name string) bool {
	for _, h := range HashNames {
		if h == name {
			return true
		}
	}
	return false
}

func lookupProperty[T any](props []property[T], name string) (property[T], bool) {
	for _, p := range props {
		if p.name == name {
			return p, true
		}
	}
	return property[T]{}, false
}

// propertyForElement finds the property an element of the manifest encodes.
func propertyForElement[T any](props []property[T], el *Element) (property[T], bool, error) {
	switch el.Name.Local {
	case "hashdigest":
		if !el.hasAttr("type") {
			return property[T]{}, false, errors.Wrap(ErrStreamConsistency, "hashdigest without type attribute")
		}
		name := strings.ToLower(strings.ReplaceAll(el.attr("type"), "-", ""))
		for _, p := range props {
			if p.kind == hashProperty && p.name == name {
				return p, true, nil
			}
		}
		return property[T]{}, false, nil
	case "byte_runs":
		facet := facetOrData(el.attr("facet"))
		for _, p := range props {
			if p.kind == byteRunsProperty && (p.facet == "" || p.facet == facet) {
				return p, true, nil
			}
		}
		return property[T]{}, false, nil
	}
	p, ok := lookupProperty(props, el.Name.Local)
	if ok && (p.kind == hashProperty || p.kind == byteRunsProperty) {
		return property[T]{}, false, nil
	}
	return p, ok, nil
}

// hasElement reports whether props model elements named local.
func hasElement[T any](props []property[T], local string) bool {
	for _, p := range props {
		switch {
		case p.kind == hashProperty && local == "hashdigest",
			p.kind == byteRunsProperty && local == "byte_runs",
			p.kind != hashProperty && p.kind != byteRunsProperty && p.name == local:
			return true
		}
	}
	return false
}

func isPoststream[T any](props []property[T], local string) bool {
	p, ok := lookupProperty(props, local)
	return ok && p.poststream
}

// set assigns v to the property after coercion. obj is left unchanged if
// coercion fails.
func (p property[T]) set(obj *T, v interface{}) error {
	var err error
	switch ptr := p.field(obj).(type) {
	case **string:
		var s *string
		if s, err = CoerceString(v); err == nil {
			*ptr = s
		}
	case **int64:
		var i *int64
		if p.kind == modeProperty {
			i, err = CoerceMode(v)
		} else {
			i, err = CoerceInt(v)
		}
		if err == nil {
			*ptr = i
		}
	case **bool:
		var b *bool
		if b, err = CoerceBool(v); err == nil {
			*ptr = b
		}
	case **TimestampObject:
		var ts *TimestampObject
		if ts, err = CoerceTimestamp(p.name, v); err == nil {
			*ptr = ts
		}
	case **ByteRuns:
		switch v := v.(type) {
		case nil:
			*ptr = nil
		case *ByteRuns:
			*ptr = v
		case []*ByteRun:
			*ptr = NewByteRuns(p.facet, v...)
		default:
			err = errors.Wrapf(ErrTypeCoercion, "cannot use %T as byte runs", v)
		}
	}
	return errors.Wrapf(err, "property %s", p.name)
}

// read assigns the value encoded in el.
func (p property[T]) read(obj *T, el *Element) error {
	switch ptr := p.field(obj).(type) {
	case **TimestampObject:
		ts, err := ParseTimestamp(p.name, el.Text, el.attr("prec"))
		if err != nil {
			return err
		}
		*ptr = ts
		return nil
	case **ByteRuns:
		brs, err := byteRunsFromElement(el)
		if err != nil {
			return err
		}
		if brs != nil && p.facet != "" && brs.Facet == "" {
			brs.Facet = p.facet
		}
		*ptr = brs
		return nil
	}
	return p.set(obj, el.Text)
}

// write encodes the property. Absent values are skipped unless they are
// marked as changed, those are written as empty elements.
func (p property[T]) write(w *xmlWriter, obj *T, changed bool) {
	var attrs []xml.Attr
	if changed {
		attrs = append(attrs, changedPropertyAttr())
	}
	name := p.name
	if p.kind == hashProperty {
		name = "hashdigest"
		attrs = append([]xml.Attr{attr("type", p.name)}, attrs...)
	}

	switch ptr := p.field(obj).(type) {
	case **string:
		if *ptr != nil {
			w.text(name, **ptr, attrs...)
			return
		}
	case **int64:
		if *ptr != nil {
			w.text(name, strconv.FormatInt(**ptr, 10), attrs...)
			return
		}
	case **bool:
		if *ptr != nil {
			w.text(name, formatBool(**ptr), attrs...)
			return
		}
	case **TimestampObject:
		if ts := *ptr; !ts.isNull() {
			if ts.Prec != nil {
				attrs = append([]xml.Attr{attr("prec", ts.Prec.String())}, attrs...)
			}
			w.text(name, ts.String(), attrs...)
			return
		}
	case **ByteRuns:
		if *ptr != nil {
			(*ptr).encode(w, attrs...)
			return
		}
		name = "byte_runs"
		if p.facet != "" {
			attrs = append([]xml.Attr{attr("facet", p.facet)}, attrs...)
		}
	}
	if changed {
		w.text(name, "", attrs...)
	}
}

func (p property[T]) equal(a, b *T) bool {
	switch x := p.field(a).(type) {
	case **string:
		y := p.field(b).(**string)
		if p.kind == hashProperty {
			return hashEqual(*x, *y)
		}
		return stringEqual(*x, *y)
	case **int64:
		return int64Equal(*x, *p.field(b).(**int64))
	case **bool:
		return boolEqual(*x, *p.field(b).(**bool))
	case **TimestampObject:
		return (*x).Equal(*p.field(b).(**TimestampObject))
	case **ByteRuns:
		return (*x).Equal(*p.field(b).(**ByteRuns))
	}
	return false
}

func (p property[T]) isSet(obj *T) bool {
	switch x := p.field(obj).(type) {
	case **string:
		return *x != nil
	case **int64:
		return *x != nil
	case **bool:
		return *x != nil
	case **TimestampObject:
		return !(*x).isNull()
	case **ByteRuns:
		return *x != nil
	}
	return false
}

// compareProperties returns the names of properties that differ between a
// and b. equal overrides the default comparison if it is not nil.
func compareProperties[T any](props []property[T], a, b *T, ignore map[string]bool, equal func(p property[T], a, b *T) bool) map[string]bool {
	diffs := map[string]bool{}
	for _, p := range props {
		if p.incomparable || ignore[p.name] {
			continue
		}
		eq := p.equal
		if equal != nil {
			eq = func(a, b *T) bool { return equal(p, a, b) }
		}
		if !eq(a, b) {
			diffs[p.name] = true
		}
	}
	return diffs
}

// readProperty assigns el to the matching property of obj. It returns false
// if el does not encode a property.
func readProperty[T any](props []property[T], obj *T, ann *annotations, el *Element) (bool, error) {
	p, ok, err := propertyForElement(props, el)
	if err != nil || !ok {
		return false, err
	}
	if err := p.read(obj, el); err != nil {
		return true, err
	}
	if hasChangedProperty(el) {
		ann.AddDiff(p.name)
	}
	return true, nil
}

// writeProperties writes the properties in schema order, skipping
// poststream properties if pre is set.
func writeProperties[T any](w *xmlWriter, props []property[T], obj *T, ann *annotations, pre bool) {
	for _, p := range props {
		if pre && p.poststream {
			continue
		}
		p.write(w, obj, ann != nil && ann.HasDiff(p.name))
	}
}

func writePoststream[T any](w *xmlWriter, props []property[T], obj *T, ann *annotations) {
	for _, p := range props {
		if p.poststream {
			p.write(w, obj, ann != nil && ann.HasDiff(p.name))
		}
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Typed field accessors for property tables.

func str[T any](name string, f func(*T) **string) property[T] {
	return property[T]{name: name, field: func(t *T) interface{} { return f(t) }}
}

func integer[T any](name string, f func(*T) **int64) property[T] {
	return property[T]{name: name, field: func(t *T) interface{} { return f(t) }}
}

func mode[T any](name string, f func(*T) **int64) property[T] {
	return property[T]{name: name, kind: modeProperty, field: func(t *T) interface{} { return f(t) }}
}

func boolean[T any](name string, f func(*T) **bool) property[T] {
	return property[T]{name: name, field: func(t *T) interface{} { return f(t) }}
}

func timestamp[T any](name string, f func(*T) **TimestampObject) property[T] {
	return property[T]{name: name, field: func(t *T) interface{} { return f(t) }}
}

func hash[T any](name string, f func(*T) **string) property[T] {
	return property[T]{name: name, kind: hashProperty, field: func(t *T) interface{} { return f(t) }}
}

func byteRuns[T any](name, facet string, f func(*T) **ByteRuns) property[T] {
	return property[T]{name: name, kind: byteRunsProperty, facet: facet, field: func(t *T) interface{} { return f(t) }}
}

func poststream[T any](p property[T]) property[T] {
	p.poststream = true
	return p
}

func incomparable[T any](p property[T]) property[T] {
	p.incomparable = true
	return p
}
