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

	"github.com/pkg/errors"
)

// Kind identifies the type of an object in the manifest tree.
type Kind int

// Object kinds.
const (
	KindDocument Kind = iota
	KindDiskImage
	KindPartitionSystem
	KindPartition
	KindVolume
	KindHive
	KindFile
	KindCell
)

var kindElements = map[Kind]string{
	KindDocument:        "dfxml",
	KindDiskImage:       "diskimageobject",
	KindPartitionSystem: "partitionsystemobject",
	KindPartition:       "partitionobject",
	KindVolume:          "volume",
	KindHive:            "hiveobject",
	KindFile:            "fileobject",
	KindCell:            "cellobject",
}

// annotation attribute suffixes, e.g. delta:new_volume
var kindAnnotationNames = map[Kind]string{
	KindDiskImage:       "diskimage",
	KindPartitionSystem: "partitionsystem",
	KindPartition:       "partition",
	KindVolume:          "volume",
	KindHive:            "hive",
	KindFile:            "file",
	KindCell:            "cell",
}

func (k Kind) String() string {
	if name, ok := kindElements[k]; ok {
		return name
	}
	return "unknown"
}

// objectKind returns the kind of object an element opens.
func objectKind(n xml.Name) (Kind, bool) {
	if !isDFXMLName(n) {
		return 0, false
	}
	for kind, local := range kindElements {
		if kind != KindDocument && local == n.Local {
			return kind, true
		}
	}
	return 0, false
}

// Object is a node of the manifest tree.
type Object interface {
	Kind() Kind
}

// Container is an object with an ordered list of child objects.
type Container interface {
	Object
	ChildObjects() []Object
	AppendChild(child Object) error
}

// streamContainer is a container the reader can fill from its proxy
// element and its poststream elements.
type streamContainer interface {
	Container
	populate(el *Element, diag *Diagnostics) error
	hasProperty(local string) bool
	isPoststream(local string) bool
	readPoststream(el *Element) error
	encodeStart(w *xmlWriter)
	encodeEnd(w *xmlWriter)
}

func newContainer(kind Kind) streamContainer {
	switch kind {
	case KindDiskImage:
		return NewDiskImageObject()
	case KindPartitionSystem:
		return NewPartitionSystemObject()
	case KindPartition:
		return NewPartitionObject()
	case KindVolume:
		return NewVolumeObject()
	case KindHive:
		return NewHiveObject()
	}
	return NewDFXMLObject()
}

// childList is embedded by all containers except hives.
type childList struct {
	children []Object
}

// ChildObjects returns the children in document order.
func (c *childList) ChildObjects() []Object {
	return c.children
}

func (c *childList) appendChild(child Object) error {
	switch child.(type) {
	case *DiskImageObject, *PartitionSystemObject, *PartitionObject, *VolumeObject, *HiveObject, *FileObject:
		c.children = append(c.children, child)
		return nil
	}
	return errors.Errorf("cannot append %T to container", child)
}

// DiskImages returns the disk image children.
func (c *childList) DiskImages() []*DiskImageObject {
	var l []*DiskImageObject
	for _, child := range c.children {
		if o, ok := child.(*DiskImageObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// PartitionSystems returns the partition system children.
func (c *childList) PartitionSystems() []*PartitionSystemObject {
	var l []*PartitionSystemObject
	for _, child := range c.children {
		if o, ok := child.(*PartitionSystemObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// Partitions returns the partition children.
func (c *childList) Partitions() []*PartitionObject {
	var l []*PartitionObject
	for _, child := range c.children {
		if o, ok := child.(*PartitionObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// Volumes returns the volume children.
func (c *childList) Volumes() []*VolumeObject {
	var l []*VolumeObject
	for _, child := range c.children {
		if o, ok := child.(*VolumeObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// Hives returns the hive children.
func (c *childList) Hives() []*HiveObject {
	var l []*HiveObject
	for _, child := range c.children {
		if o, ok := child.(*HiveObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// Files returns the direct file children.
func (c *childList) Files() []*FileObject {
	var l []*FileObject
	for _, child := range c.children {
		if o, ok := child.(*FileObject); ok {
			l = append(l, o)
		}
	}
	return l
}

// Walk calls fn for o and all its descendants in document order.
func Walk(o Object, fn func(Object) error) error {
	if err := fn(o); err != nil {
		return err
	}
	if c, ok := o.(Container); ok {
		for _, child := range c.ChildObjects() {
			if err := Walk(child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// AllFiles returns all files below o in document order.
func AllFiles(o Object) []*FileObject {
	var files []*FileObject
	_ = Walk(o, func(o Object) error {
		if f, ok := o.(*FileObject); ok {
			files = append(files, f)
		}
		return nil
	})
	return files
}

// Equal reports whether two object trees have equal properties and equal
// children. Externals and differential annotations are not compared.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *DFXMLObject:
		if !x.equalMetadata(b.(*DFXMLObject)) {
			return false
		}
	case *DiskImageObject:
		if len(compareProperties(diskImageProperties, x, b.(*DiskImageObject), nil, nil)) > 0 {
			return false
		}
	case *PartitionSystemObject:
		if len(compareProperties(partitionSystemProperties, x, b.(*PartitionSystemObject), nil, nil)) > 0 {
			return false
		}
	case *PartitionObject:
		if len(compareProperties(partitionProperties, x, b.(*PartitionObject), nil, nil)) > 0 {
			return false
		}
	case *VolumeObject:
		if len(x.CompareToOther(b.(*VolumeObject), nil)) > 0 {
			return false
		}
	case *HiveObject:
		if len(compareProperties(hiveProperties, x, b.(*HiveObject), nil, nil)) > 0 {
			return false
		}
	case *FileObject:
		return len(x.CompareToOther(b.(*FileObject), nil)) == 0
	case *CellObject:
		return len(compareProperties(cellProperties, x, b.(*CellObject), nil, nil)) == 0
	}

	ca, cb := a.(Container).ChildObjects(), b.(Container).ChildObjects()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !Equal(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

func readExternal(el *Element, externals *[]*Element) bool {
	if isDFXMLName(el.Name) {
		return false
	}
	*externals = append(*externals, el)
	return true
}
