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
	"sort"
	"strings"
)

// Differential annotations.
const (
	AnnoNew      = "new"
	AnnoDeleted  = "deleted"
	AnnoRenamed  = "renamed"
	AnnoChanged  = "changed"
	AnnoModified = "modified"
	AnnoMatched  = "matched"
)

var kindAnnos = []string{AnnoNew, AnnoDeleted, AnnoRenamed, AnnoChanged, AnnoModified}

// annotations holds the differential state of an object: annotations on
// the object itself and the names of properties that differ from the
// original.
type annotations struct {
	annos map[string]bool
	diffs map[string]bool
}

// Annos returns the sorted annotations.
func (a *annotations) Annos() []string {
	return sortedKeys(a.annos)
}

// HasAnno reports whether the annotation is set.
func (a *annotations) HasAnno(anno string) bool {
	return a.annos[anno]
}

// AddAnno sets an annotation.
func (a *annotations) AddAnno(anno string) {
	if a.annos == nil {
		a.annos = map[string]bool{}
	}
	a.annos[anno] = true
}

// RemoveAnno clears an annotation.
func (a *annotations) RemoveAnno(anno string) {
	delete(a.annos, anno)
}

// Diffs returns the sorted names of differing properties.
func (a *annotations) Diffs() []string {
	return sortedKeys(a.diffs)
}

// HasDiff reports whether the property differs from the original.
func (a *annotations) HasDiff(property string) bool {
	return a.diffs[property]
}

// AddDiff marks a property as differing from the original.
func (a *annotations) AddDiff(property string) {
	if a.diffs == nil {
		a.diffs = map[string]bool{}
	}
	a.diffs[property] = true
}

// SetDiffs replaces the differing properties.
func (a *annotations) SetDiffs(diffs map[string]bool) {
	a.diffs = map[string]bool{}
	for d, ok := range diffs {
		if ok {
			a.diffs[d] = true
		}
	}
}

func (a *annotations) readAnnotations(kind string, attrs []xml.Attr) {
	for _, at := range attrs {
		if !isDeltaName(at.Name) {
			continue
		}
		if at.Name.Local == AnnoMatched {
			if b, err := parseBool(at.Value); err == nil && b != nil && *b {
				a.AddAnno(AnnoMatched)
			}
			continue
		}
		for _, anno := range kindAnnos {
			if at.Name.Local == anno+"_"+kind {
				a.AddAnno(anno)
			}
		}
	}
}

func (a *annotations) annotationAttrs(kind string) []xml.Attr {
	var attrs []xml.Attr
	for _, anno := range a.Annos() {
		if anno == AnnoMatched {
			attrs = append(attrs, attr("delta:matched", "1"))
			continue
		}
		attrs = append(attrs, attr("delta:"+anno+"_"+kind, "1"))
	}
	return attrs
}

func hasChangedProperty(e *Element) bool {
	for _, at := range e.Attr {
		if isDeltaName(at.Name) && at.Name.Local == "changed_property" {
			b, err := parseBool(at.Value)
			return err == nil && b != nil && *b
		}
	}
	return false
}

func changedPropertyAttr() xml.Attr {
	return attr("delta:changed_property", "1")
}

func sortedKeys(m map[string]bool) []string {
	var keys []string
	for k, ok := range m {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func commaList(m map[string]bool) string {
	return strings.Join(sortedKeys(m), ",")
}
