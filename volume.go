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
	"strings"

	"github.com/pkg/errors"
)

// VolumeObject describes a file system.
type VolumeObject struct {
	ByteRuns        *ByteRuns `structs:"byte_runs,omitnested"`
	PartitionOffset *int64    `structs:"partition_offset"`
	SectorSize      *int64    `structs:"sector_size"`
	BlockSize       *int64    `structs:"block_size"`
	Ftype           *int64    `structs:"ftype"`
	FtypeStr        *string   `structs:"ftype_str"`
	BlockCount      *int64    `structs:"block_count"`
	FirstBlock      *int64    `structs:"first_block"`
	LastBlock       *int64    `structs:"last_block"`
	AllocatedOnly   *bool     `structs:"allocated_only"`
	Error           *string   `structs:"error"`

	Externals []*Element    `structs:"-"`
	Original  *VolumeObject `structs:"-"`

	annotations
	childList
}

var volumeProperties = []property[VolumeObject]{
	byteRuns("byte_runs", "", func(v *VolumeObject) **ByteRuns { return &v.ByteRuns }),
	integer("partition_offset", func(v *VolumeObject) **int64 { return &v.PartitionOffset }),
	integer("sector_size", func(v *VolumeObject) **int64 { return &v.SectorSize }),
	integer("block_size", func(v *VolumeObject) **int64 { return &v.BlockSize }),
	integer("ftype", func(v *VolumeObject) **int64 { return &v.Ftype }),
	str("ftype_str", func(v *VolumeObject) **string { return &v.FtypeStr }),
	integer("block_count", func(v *VolumeObject) **int64 { return &v.BlockCount }),
	integer("first_block", func(v *VolumeObject) **int64 { return &v.FirstBlock }),
	integer("last_block", func(v *VolumeObject) **int64 { return &v.LastBlock }),
	boolean("allocated_only", func(v *VolumeObject) **bool { return &v.AllocatedOnly }),
	poststream(str("error", func(v *VolumeObject) **string { return &v.Error })),
}

// NewVolumeObject creates an empty volume.
func NewVolumeObject() *VolumeObject {
	return &VolumeObject{}
}

// Kind returns KindVolume.
func (v *VolumeObject) Kind() Kind { return KindVolume }

// AppendChild adds a child object. Files get v as their volume.
func (v *VolumeObject) AppendChild(child Object) error {
	if f, ok := child.(*FileObject); ok {
		f.SetVolumeObject(v)
	}
	return v.appendChild(child)
}

// SetProperty assigns a property by its schema name after coercion.
func (v *VolumeObject) SetProperty(name string, value interface{}) error {
	p, ok := lookupProperty(volumeProperties, name)
	if !ok {
		return errors.Errorf("volume has no property %s", name)
	}
	return p.set(v, value)
}

// CompareToOther returns the names of properties that differ between v and
// other. File system type names are compared case-insensitively.
func (v *VolumeObject) CompareToOther(other *VolumeObject, ignore map[string]bool) map[string]bool {
	return compareProperties(volumeProperties, v, other, ignore, func(p property[VolumeObject], a, b *VolumeObject) bool {
		if p.name == "ftype_str" {
			return (a.FtypeStr == nil && b.FtypeStr == nil) ||
				(a.FtypeStr != nil && b.FtypeStr != nil && strings.EqualFold(*a.FtypeStr, *b.FtypeStr))
		}
		return p.equal(a, b)
	})
}

// CompareToOriginal sets the differing properties from the comparison with
// Original.
func (v *VolumeObject) CompareToOriginal(ignore map[string]bool) map[string]bool {
	if v.Original == nil {
		v.SetDiffs(nil)
		return nil
	}
	diffs := v.CompareToOther(v.Original, ignore)
	v.SetDiffs(diffs)
	return diffs
}

func (v *VolumeObject) populate(el *Element, diag *Diagnostics) error {
	v.readAnnotations(kindAnnotationNames[KindVolume], el.Attr)
	for _, child := range el.Children {
		switch {
		case isDeltaName(child.Name) && child.Name.Local == "original_volume":
			original := NewVolumeObject()
			if err := original.populate(child, diag); err != nil {
				return err
			}
			v.Original = original
		case readExternal(child, &v.Externals):
		default:
			ok, err := readProperty(volumeProperties, v, &v.annotations, child)
			if err != nil {
				return errors.Wrapf(err, "volume %s", child.Name.Local)
			}
			if !ok {
				diag.Warnf("volume:"+child.Name.Local, "dropping unknown volume element <%s>", child.Name.Local)
			}
		}
	}
	if v.PartitionOffset == nil && el.hasAttr("offset") {
		if err := v.SetProperty("partition_offset", el.attr("offset")); err != nil {
			return err
		}
	}
	return nil
}

func (v *VolumeObject) hasProperty(local string) bool {
	return hasElement(volumeProperties, local)
}

func (v *VolumeObject) isPoststream(local string) bool {
	return isPoststream(volumeProperties, local)
}

func (v *VolumeObject) readPoststream(el *Element) error {
	_, err := readProperty(volumeProperties, v, &v.annotations, el)
	return err
}

func (v *VolumeObject) encodeStart(w *xmlWriter) {
	w.start(kindElements[KindVolume], v.annotationAttrs(kindAnnotationNames[KindVolume])...)
	writeProperties(w, volumeProperties, v, &v.annotations, true)
	for _, e := range v.Externals {
		w.element(e)
	}
	if v.Original != nil {
		w.start("delta:original_volume")
		writeProperties(w, volumeProperties, v.Original, &v.Original.annotations, false)
		w.end("delta:original_volume")
	}
}

func (v *VolumeObject) encodeEnd(w *xmlWriter) {
	writePoststream(w, volumeProperties, v, &v.annotations)
	w.end(kindElements[KindVolume])
}
