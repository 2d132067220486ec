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

// ErrInvalidCell is returned if a registry cell would violate the key and
// value constraints.
var ErrInvalidCell = errors.New("invalid registry cell")

// Cell name types.
const (
	CellKey   = "k"
	CellValue = "v"
)

// HiveObject describes a registry hive. Its children are cells.
type HiveObject struct {
	Filename *string `structs:"filename"`
	Filesize *int64  `structs:"filesize"`
	Md5      *string `structs:"md5"`
	Sha1     *string `structs:"sha1"`
	Error    *string `structs:"error"`

	Externals []*Element `structs:"-"`

	annotations
	cells []*CellObject
}

var hiveProperties = []property[HiveObject]{
	str("filename", func(h *HiveObject) **string { return &h.Filename }),
	integer("filesize", func(h *HiveObject) **int64 { return &h.Filesize }),
	hash("md5", func(h *HiveObject) **string { return &h.Md5 }),
	hash("sha1", func(h *HiveObject) **string { return &h.Sha1 }),
	poststream(str("error", func(h *HiveObject) **string { return &h.Error })),
}

// NewHiveObject creates an empty hive.
func NewHiveObject() *HiveObject {
	return &HiveObject{}
}

// Kind returns KindHive.
func (h *HiveObject) Kind() Kind { return KindHive }

// ChildObjects returns the cells of the hive.
func (h *HiveObject) ChildObjects() []Object {
	children := make([]Object, 0, len(h.cells))
	for _, c := range h.cells {
		children = append(children, c)
	}
	return children
}

// Cells returns the cells of the hive.
func (h *HiveObject) Cells() []*CellObject {
	return h.cells
}

// AppendChild adds a cell. Hives cannot hold other objects.
func (h *HiveObject) AppendChild(child Object) error {
	c, ok := child.(*CellObject)
	if !ok {
		return errors.Errorf("cannot append %T to hive", child)
	}
	h.cells = append(h.cells, c)
	return nil
}

// SetProperty assigns a property by its schema name after coercion.
func (h *HiveObject) SetProperty(name string, v interface{}) error {
	p, ok := lookupProperty(hiveProperties, name)
	if !ok {
		return errors.Errorf("hiveobject has no property %s", name)
	}
	return p.set(h, v)
}

func (h *HiveObject) populate(el *Element, diag *Diagnostics) error {
	return populateContainer(hiveProperties, h, &h.annotations, &h.Externals, KindHive, el, diag)
}

func (h *HiveObject) hasProperty(local string) bool { return hasElement(hiveProperties, local) }

func (h *HiveObject) isPoststream(local string) bool { return isPoststream(hiveProperties, local) }

func (h *HiveObject) readPoststream(el *Element) error {
	_, err := readProperty(hiveProperties, h, &h.annotations, el)
	return err
}

func (h *HiveObject) encodeStart(w *xmlWriter) {
	encodeContainerStart(w, hiveProperties, h, &h.annotations, h.Externals, KindHive)
}

func (h *HiveObject) encodeEnd(w *xmlWriter) {
	writePoststream(w, hiveProperties, h, &h.annotations)
	w.end(kindElements[KindHive])
}

// CellObject is a key or value of a registry hive. Only keys carry a
// modification time or the root flag.
type CellObject struct {
	Cellpath     *string   `structs:"cellpath"`
	Name         *string   `structs:"name"`
	Alloc        *bool     `structs:"alloc"`
	DataType     *string   `structs:"data_type"`
	Data         *string   `structs:"data"`
	DataEncoding *string   `structs:"data_encoding"`
	DataRaw      *string   `structs:"data_raw"`
	ByteRuns     *ByteRuns `structs:"byte_runs,omitnested"`
	Md5          *string   `structs:"md5"`
	Sha1         *string   `structs:"sha1"`
	Error        *string   `structs:"error"`

	Externals []*Element  `structs:"-"`
	Original  *CellObject `structs:"-"`

	nameType *string
	mtime    *TimestampObject
	root     *bool

	annotations
}

var cellProperties = []property[CellObject]{
	str("cellpath", func(c *CellObject) **string { return &c.Cellpath }),
	str("name", func(c *CellObject) **string { return &c.Name }),
	str("name_type", func(c *CellObject) **string { return &c.nameType }),
	boolean("alloc", func(c *CellObject) **bool { return &c.Alloc }),
	timestamp(Mtime, func(c *CellObject) **TimestampObject { return &c.mtime }),
	boolean("root", func(c *CellObject) **bool { return &c.root }),
	str("data_type", func(c *CellObject) **string { return &c.DataType }),
	str("data", func(c *CellObject) **string { return &c.Data }),
	str("data_encoding", func(c *CellObject) **string { return &c.DataEncoding }),
	str("data_raw", func(c *CellObject) **string { return &c.DataRaw }),
	byteRuns("byte_runs", "", func(c *CellObject) **ByteRuns { return &c.ByteRuns }),
	hash("md5", func(c *CellObject) **string { return &c.Md5 }),
	hash("sha1", func(c *CellObject) **string { return &c.Sha1 }),
	str("error", func(c *CellObject) **string { return &c.Error }),
}

// NewCellObject creates an empty cell.
func NewCellObject() *CellObject {
	return &CellObject{}
}

// Kind returns KindCell.
func (c *CellObject) Kind() Kind { return KindCell }

// NameType returns "k" for keys and "v" for values.
func (c *CellObject) NameType() *string { return c.nameType }

// Mtime returns the modification time of a key.
func (c *CellObject) Mtime() *TimestampObject { return c.mtime }

// Root reports whether a key is the root key of its hive.
func (c *CellObject) Root() *bool { return c.root }

// SetNameType sets the name type.
func (c *CellObject) SetNameType(v interface{}) error { return c.SetProperty("name_type", v) }

// SetMtime sets the modification time.
func (c *CellObject) SetMtime(v interface{}) error { return c.SetProperty(Mtime, v) }

// SetRoot sets the root flag.
func (c *CellObject) SetRoot(v interface{}) error { return c.SetProperty("root", v) }

// SetProperty assigns a property by its schema name after coercion. The
// cell is left unchanged if the result would be invalid.
func (c *CellObject) SetProperty(name string, v interface{}) error {
	p, ok := lookupProperty(cellProperties, name)
	if !ok {
		return errors.Errorf("cellobject has no property %s", name)
	}
	saved := *c
	if err := p.set(c, v); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		*c = saved
		return err
	}
	return nil
}

func (c *CellObject) validate() error {
	if c.nameType == nil {
		return nil
	}
	switch *c.nameType {
	case CellKey:
		return nil
	case CellValue:
	default:
		return errors.Wrapf(ErrInvalidCell, "unknown name type %q", *c.nameType)
	}
	if !c.mtime.isNull() {
		return errors.Wrap(ErrInvalidCell, "only keys have a modification time")
	}
	if c.root != nil {
		return errors.Wrap(ErrInvalidCell, "only keys can be the root")
	}
	return nil
}

// CompareToOther returns the names of properties that differ between c and
// other.
func (c *CellObject) CompareToOther(other *CellObject, ignore map[string]bool) map[string]bool {
	return compareProperties(cellProperties, c, other, ignore, nil)
}

func (c *CellObject) populate(el *Element, diag *Diagnostics) error {
	c.readAnnotations(kindAnnotationNames[KindCell], el.Attr)
	for _, child := range el.Children {
		switch {
		case isDeltaName(child.Name) && child.Name.Local == "original_cellobject":
			original := NewCellObject()
			if err := original.populate(child, diag); err != nil {
				return err
			}
			c.Original = original
		case readExternal(child, &c.Externals):
		default:
			saved := *c
			ok, err := readProperty(cellProperties, c, &c.annotations, child)
			if err == nil && ok {
				if err = c.validate(); err != nil {
					*c = saved
				}
			}
			if err != nil {
				return errors.Wrapf(err, "cellobject %s", child.Name.Local)
			}
			if !ok {
				diag.Warnf("cellobject:"+child.Name.Local, "dropping unknown cellobject element <%s>", child.Name.Local)
			}
		}
	}
	return nil
}

func (c *CellObject) encode(w *xmlWriter) {
	w.start(kindElements[KindCell], c.annotationAttrs(kindAnnotationNames[KindCell])...)
	c.encodeBody(w)
	w.end(kindElements[KindCell])
}

func (c *CellObject) encodeBody(w *xmlWriter) {
	writeProperties(w, cellProperties, c, &c.annotations, false)
	for _, e := range c.Externals {
		w.element(e)
	}
	if c.Original != nil {
		w.start("delta:original_cellobject")
		c.Original.encodeBody(w)
		w.end("delta:original_cellobject")
	}
}
