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
	"github.com/pkg/errors"
)

// DiskImageObject describes a storage image.
type DiskImageObject struct {
	Filesize   *int64    `structs:"filesize"`
	SectorSize *int64    `structs:"sector_size"`
	ByteRuns   *ByteRuns `structs:"byte_runs,omitnested"`
	Md5        *string   `structs:"md5"`
	Sha1       *string   `structs:"sha1"`
	Sha256     *string   `structs:"sha256"`
	Error      *string   `structs:"error"`

	Externals []*Element `structs:"-"`

	annotations
	childList
}

var diskImageProperties = []property[DiskImageObject]{
	integer("filesize", func(d *DiskImageObject) **int64 { return &d.Filesize }),
	integer("sector_size", func(d *DiskImageObject) **int64 { return &d.SectorSize }),
	byteRuns("byte_runs", "", func(d *DiskImageObject) **ByteRuns { return &d.ByteRuns }),
	hash("md5", func(d *DiskImageObject) **string { return &d.Md5 }),
	hash("sha1", func(d *DiskImageObject) **string { return &d.Sha1 }),
	hash("sha256", func(d *DiskImageObject) **string { return &d.Sha256 }),
	poststream(str("error", func(d *DiskImageObject) **string { return &d.Error })),
}

// NewDiskImageObject creates an empty disk image.
func NewDiskImageObject() *DiskImageObject {
	return &DiskImageObject{}
}

// Kind returns KindDiskImage.
func (d *DiskImageObject) Kind() Kind { return KindDiskImage }

// AppendChild adds a child object.
func (d *DiskImageObject) AppendChild(child Object) error { return d.appendChild(child) }

// SetProperty assigns a property by its schema name after coercion.
func (d *DiskImageObject) SetProperty(name string, v interface{}) error {
	p, ok := lookupProperty(diskImageProperties, name)
	if !ok {
		return errors.Errorf("diskimageobject has no property %s", name)
	}
	return p.set(d, v)
}

func (d *DiskImageObject) populate(el *Element, diag *Diagnostics) error {
	return populateContainer(diskImageProperties, d, &d.annotations, &d.Externals, KindDiskImage, el, diag)
}

func (d *DiskImageObject) hasProperty(local string) bool { return hasElement(diskImageProperties, local) }

func (d *DiskImageObject) isPoststream(local string) bool {
	return isPoststream(diskImageProperties, local)
}

func (d *DiskImageObject) readPoststream(el *Element) error {
	_, err := readProperty(diskImageProperties, d, &d.annotations, el)
	return err
}

func (d *DiskImageObject) encodeStart(w *xmlWriter) {
	encodeContainerStart(w, diskImageProperties, d, &d.annotations, d.Externals, KindDiskImage)
}

func (d *DiskImageObject) encodeEnd(w *xmlWriter) {
	writePoststream(w, diskImageProperties, d, &d.annotations)
	w.end(kindElements[KindDiskImage])
}

// PartitionSystemObject describes a partition table.
type PartitionSystemObject struct {
	PstypeStr *string   `structs:"pstype_str"`
	BlockSize *int64    `structs:"block_size"`
	GUID      *string   `structs:"guid"`
	ByteRuns  *ByteRuns `structs:"byte_runs,omitnested"`
	Error     *string   `structs:"error"`

	Externals []*Element `structs:"-"`

	annotations
	childList
}

var partitionSystemProperties = []property[PartitionSystemObject]{
	str("pstype_str", func(p *PartitionSystemObject) **string { return &p.PstypeStr }),
	integer("block_size", func(p *PartitionSystemObject) **int64 { return &p.BlockSize }),
	str("guid", func(p *PartitionSystemObject) **string { return &p.GUID }),
	byteRuns("byte_runs", "", func(p *PartitionSystemObject) **ByteRuns { return &p.ByteRuns }),
	poststream(str("error", func(p *PartitionSystemObject) **string { return &p.Error })),
}

// NewPartitionSystemObject creates an empty partition system.
func NewPartitionSystemObject() *PartitionSystemObject {
	return &PartitionSystemObject{}
}

// Kind returns KindPartitionSystem.
func (p *PartitionSystemObject) Kind() Kind { return KindPartitionSystem }

// AppendChild adds a child object.
func (p *PartitionSystemObject) AppendChild(child Object) error { return p.appendChild(child) }

// SetProperty assigns a property by its schema name after coercion.
func (p *PartitionSystemObject) SetProperty(name string, v interface{}) error {
	prop, ok := lookupProperty(partitionSystemProperties, name)
	if !ok {
		return errors.Errorf("partitionsystemobject has no property %s", name)
	}
	return prop.set(p, v)
}

func (p *PartitionSystemObject) populate(el *Element, diag *Diagnostics) error {
	return populateContainer(partitionSystemProperties, p, &p.annotations, &p.Externals, KindPartitionSystem, el, diag)
}

func (p *PartitionSystemObject) hasProperty(local string) bool {
	return hasElement(partitionSystemProperties, local)
}

func (p *PartitionSystemObject) isPoststream(local string) bool {
	return isPoststream(partitionSystemProperties, local)
}

func (p *PartitionSystemObject) readPoststream(el *Element) error {
	_, err := readProperty(partitionSystemProperties, p, &p.annotations, el)
	return err
}

func (p *PartitionSystemObject) encodeStart(w *xmlWriter) {
	encodeContainerStart(w, partitionSystemProperties, p, &p.annotations, p.Externals, KindPartitionSystem)
}

func (p *PartitionSystemObject) encodeEnd(w *xmlWriter) {
	writePoststream(w, partitionSystemProperties, p, &p.annotations)
	w.end(kindElements[KindPartitionSystem])
}

// PartitionObject describes an entry of a partition system.
type PartitionObject struct {
	PartitionIndex *int64    `structs:"partition_index"`
	PartitionLabel *string   `structs:"partition_label"`
	Ftype          *int64    `structs:"ftype"`
	FtypeStr       *string   `structs:"ftype_str"`
	GUID           *string   `structs:"guid"`
	BlockCount     *int64    `structs:"block_count"`
	BlockSize      *int64    `structs:"block_size"`
	ByteRuns       *ByteRuns `structs:"byte_runs,omitnested"`
	Error          *string   `structs:"error"`

	Externals []*Element `structs:"-"`

	annotations
	childList
}

var partitionProperties = []property[PartitionObject]{
	integer("partition_index", func(p *PartitionObject) **int64 { return &p.PartitionIndex }),
	str("partition_label", func(p *PartitionObject) **string { return &p.PartitionLabel }),
	integer("ftype", func(p *PartitionObject) **int64 { return &p.Ftype }),
	str("ftype_str", func(p *PartitionObject) **string { return &p.FtypeStr }),
	str("guid", func(p *PartitionObject) **string { return &p.GUID }),
	integer("block_count", func(p *PartitionObject) **int64 { return &p.BlockCount }),
	integer("block_size", func(p *PartitionObject) **int64 { return &p.BlockSize }),
	byteRuns("byte_runs", "", func(p *PartitionObject) **ByteRuns { return &p.ByteRuns }),
	poststream(str("error", func(p *PartitionObject) **string { return &p.Error })),
}

// NewPartitionObject creates an empty partition.
func NewPartitionObject() *PartitionObject {
	return &PartitionObject{}
}

// Kind returns KindPartition.
func (p *PartitionObject) Kind() Kind { return KindPartition }

// AppendChild adds a child object.
func (p *PartitionObject) AppendChild(child Object) error { return p.appendChild(child) }

// SetProperty assigns a property by its schema name after coercion.
func (p *PartitionObject) SetProperty(name string, v interface{}) error {
	prop, ok := lookupProperty(partitionProperties, name)
	if !ok {
		return errors.Errorf("partitionobject has no property %s", name)
	}
	return prop.set(p, v)
}

func (p *PartitionObject) populate(el *Element, diag *Diagnostics) error {
	return populateContainer(partitionProperties, p, &p.annotations, &p.Externals, KindPartition, el, diag)
}

func (p *PartitionObject) hasProperty(local string) bool {
	return hasElement(partitionProperties, local)
}

func (p *PartitionObject) isPoststream(local string) bool {
	return isPoststream(partitionProperties, local)
}

func (p *PartitionObject) readPoststream(el *Element) error {
	_, err := readProperty(partitionProperties, p, &p.annotations, el)
	return err
}

func (p *PartitionObject) encodeStart(w *xmlWriter) {
	encodeContainerStart(w, partitionProperties, p, &p.annotations, p.Externals, KindPartition)
}

func (p *PartitionObject) encodeEnd(w *xmlWriter) {
	writePoststream(w, partitionProperties, p, &p.annotations)
	w.end(kindElements[KindPartition])
}

func populateContainer[T any](props []property[T], obj *T, ann *annotations, externals *[]*Element, kind Kind, el *Element, diag *Diagnostics) error {
	ann.readAnnotations(kindAnnotationNames[kind], el.Attr)
	for _, child := range el.Children {
		if readExternal(child, externals) {
			continue
		}
		ok, err := readProperty(props, obj, ann, child)
		if err != nil {
			return errors.Wrapf(err, "%s %s", kind, child.Name.Local)
		}
		if !ok {
			diag.Warnf(kind.String()+":"+child.Name.Local, "dropping unknown %s element <%s>", kind, child.Name.Local)
		}
	}
	return nil
}

func encodeContainerStart[T any](w *xmlWriter, props []property[T], obj *T, ann *annotations, externals []*Element, kind Kind) {
	w.start(kindElements[kind], ann.annotationAttrs(kindAnnotationNames[kind])...)
	writeProperties(w, props, obj, ann, true)
	for _, e := range externals {
		w.element(e)
	}
}
