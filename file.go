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

// FileObject describes a file of a file system or other container.
type FileObject struct {
	Filename   *string          `structs:"filename"`
	Error      *string          `structs:"error"`
	Partition  *int64           `structs:"partition"`
	ID         *int64           `structs:"id"`
	NameType   *string          `structs:"name_type"`
	Filesize   *int64           `structs:"filesize"`
	AllocInode *bool            `structs:"alloc_inode"`
	AllocName  *bool            `structs:"alloc_name"`
	Orphan     *bool            `structs:"orphan"`
	Compressed *bool            `structs:"compressed"`
	Inode      *int64           `structs:"inode"`
	MetaType   *int64           `structs:"meta_type"`
	Mode       *int64           `structs:"mode"`
	Nlink      *int64           `structs:"nlink"`
	UID        *int64           `structs:"uid"`
	GID        *int64           `structs:"gid"`
	Mtime      *TimestampObject `structs:"mtime,omitnested"`
	Ctime      *TimestampObject `structs:"ctime,omitnested"`
	Atime      *TimestampObject `structs:"atime,omitnested"`
	Crtime     *TimestampObject `structs:"crtime,omitnested"`
	Seq        *int64           `structs:"seq"`
	Dtime      *TimestampObject `structs:"dtime,omitnested"`
	BkupTime   *TimestampObject `structs:"bkup_time,omitnested"`
	LinkTarget *string          `structs:"link_target"`
	Libmagic   *string          `structs:"libmagic"`
	DataBrs    *ByteRuns        `structs:"data_brs,omitnested"`
	InodeBrs   *ByteRuns        `structs:"inode_brs,omitnested"`
	NameBrs    *ByteRuns        `structs:"name_brs,omitnested"`
	Md5        *string          `structs:"md5"`
	Sha1       *string          `structs:"sha1"`
	Sha224     *string          `structs:"sha224"`
	Sha256     *string          `structs:"sha256"`
	Sha384     *string          `structs:"sha384"`
	Sha512     *string          `structs:"sha512"`

	// Externals are elements of foreign namespaces.
	Externals []*Element `structs:"-"`
	// Original is the state of the file in the earlier manifest of a
	// differential.
	Original *FileObject `structs:"-"`

	annotations
	volume *VolumeObject
}

var fileScalarProperties = []property[FileObject]{
	str("filename", func(f *FileObject) **string { return &f.Filename }),
	str("error", func(f *FileObject) **string { return &f.Error }),
	integer("partition", func(f *FileObject) **int64 { return &f.Partition }),
	incomparable(integer("id", func(f *FileObject) **int64 { return &f.ID })),
	str("name_type", func(f *FileObject) **string { return &f.NameType }),
	integer("filesize", func(f *FileObject) **int64 { return &f.Filesize }),
	boolean("alloc_inode", func(f *FileObject) **bool { return &f.AllocInode }),
	boolean("alloc_name", func(f *FileObject) **bool { return &f.AllocName }),
	boolean("orphan", func(f *FileObject) **bool { return &f.Orphan }),
	boolean("compressed", func(f *FileObject) **bool { return &f.Compressed }),
	integer("inode", func(f *FileObject) **int64 { return &f.Inode }),
	integer("meta_type", func(f *FileObject) **int64 { return &f.MetaType }),
	mode("mode", func(f *FileObject) **int64 { return &f.Mode }),
	integer("nlink", func(f *FileObject) **int64 { return &f.Nlink }),
	integer("uid", func(f *FileObject) **int64 { return &f.UID }),
	integer("gid", func(f *FileObject) **int64 { return &f.GID }),
	timestamp(Mtime, func(f *FileObject) **TimestampObject { return &f.Mtime }),
	timestamp(Ctime, func(f *FileObject) **TimestampObject { return &f.Ctime }),
	timestamp(Atime, func(f *FileObject) **TimestampObject { return &f.Atime }),
	timestamp(Crtime, func(f *FileObject) **TimestampObject { return &f.Crtime }),
	integer("seq", func(f *FileObject) **int64 { return &f.Seq }),
	timestamp(Dtime, func(f *FileObject) **TimestampObject { return &f.Dtime }),
	timestamp(BkupTime, func(f *FileObject) **TimestampObject { return &f.BkupTime }),
	str("link_target", func(f *FileObject) **string { return &f.LinkTarget }),
	str("libmagic", func(f *FileObject) **string { return &f.Libmagic }),
}

var fileContentProperties = []property[FileObject]{
	byteRuns("data_brs", FacetData, func(f *FileObject) **ByteRuns { return &f.DataBrs }),
	byteRuns("inode_brs", FacetInode, func(f *FileObject) **ByteRuns { return &f.InodeBrs }),
	byteRuns("name_brs", FacetName, func(f *FileObject) **ByteRuns { return &f.NameBrs }),
	hash("md5", func(f *FileObject) **string { return &f.Md5 }),
	hash("sha1", func(f *FileObject) **string { return &f.Sha1 }),
	hash("sha224", func(f *FileObject) **string { return &f.Sha224 }),
	hash("sha256", func(f *FileObject) **string { return &f.Sha256 }),
	hash("sha384", func(f *FileObject) **string { return &f.Sha384 }),
	hash("sha512", func(f *FileObject) **string { return &f.Sha512 }),
}

var fileProperties = append(append([]property[FileObject]{}, fileScalarProperties...), fileContentProperties...)

// FilePropertyNames returns the names of all file properties in schema
// order.
func FilePropertyNames() []string {
	names := make([]string, 0, len(fileProperties))
	for _, p := range fileProperties {
		names = append(names, p.name)
	}
	return names
}

// NewFileObject creates an empty file.
func NewFileObject() *FileObject {
	return &FileObject{}
}

// Kind returns KindFile.
func (f *FileObject) Kind() Kind { return KindFile }

// SetProperty assigns a property by its schema name after coercion.
// "alloc" sets both allocation flags.
func (f *FileObject) SetProperty(name string, v interface{}) error {
	if name == "alloc" {
		return f.SetAlloc(v)
	}
	p, ok := lookupProperty(fileProperties, name)
	if !ok {
		return errors.Errorf("fileobject has no property %s", name)
	}
	return p.set(f, v)
}

// SetAlloc sets alloc_inode and alloc_name to the same value.
func (f *FileObject) SetAlloc(v interface{}) error {
	b, err := CoerceBool(v)
	if err != nil {
		return errors.Wrap(err, "property alloc")
	}
	f.AllocInode = b
	if b != nil {
		f.AllocName = boolPtr(*b)
	} else {
		f.AllocName = nil
	}
	return nil
}

// IsAllocated combines the allocation flags of inode and name. It is true
// if both are allocated, nil if both are unknown and false otherwise.
func (f *FileObject) IsAllocated() *bool {
	switch {
	case f.AllocInode == nil && f.AllocName == nil:
		return nil
	case f.AllocInode != nil && *f.AllocInode && f.AllocName != nil && *f.AllocName:
		return boolPtr(true)
	}
	return boolPtr(false)
}

// VolumeObject returns the volume containing the file.
func (f *FileObject) VolumeObject() *VolumeObject {
	return f.volume
}

// SetVolumeObject sets the volume containing the file.
func (f *FileObject) SetVolumeObject(v *VolumeObject) {
	f.volume = v
}

// ByteRuns returns the data facet.
func (f *FileObject) ByteRuns() *ByteRuns {
	return f.DataBrs
}

// AppendByteRuns assigns a run list to the field of its facet. Lists without
// facet describe data.
func (f *FileObject) AppendByteRuns(brs *ByteRuns) error {
	switch facetOrData(brs.Facet) {
	case FacetData:
		f.DataBrs = brs
	case FacetInode:
		f.InodeBrs = brs
	case FacetName:
		f.NameBrs = brs
	default:
		return errors.Errorf("unknown byte run facet %s", brs.Facet)
	}
	return nil
}

// GlomByteRuns merges adjacent runs of all facets.
func (f *FileObject) GlomByteRuns() {
	f.DataBrs = f.DataBrs.Glommed()
	f.InodeBrs = f.InodeBrs.Glommed()
	f.NameBrs = f.NameBrs.Glommed()
}

// Hash returns the digest of the named hash property.
func (f *FileObject) Hash(name string) *string {
	p, ok := lookupProperty(fileContentProperties, name)
	if !ok || p.kind != hashProperty {
		return nil
	}
	return *p.field(f).(**string)
}

// Hashes returns all recorded digests by hash name.
func (f *FileObject) Hashes() map[string]string {
	hashes := map[string]string{}
	for _, name := range HashNames {
		if h := f.Hash(name); h != nil {
			hashes[name] = *h
		}
	}
	return hashes
}

// CompareToOther returns the names of properties that differ between f and
// other. The id property is never compared.
func (f *FileObject) CompareToOther(other *FileObject, ignore map[string]bool) map[string]bool {
	return compareProperties(fileProperties, f, other, ignore, nil)
}

// CompareToOriginal sets the differing properties from the comparison with
// Original.
func (f *FileObject) CompareToOriginal(ignore map[string]bool) map[string]bool {
	if f.Original == nil {
		f.SetDiffs(nil)
		return nil
	}
	diffs := f.CompareToOther(f.Original, ignore)
	f.SetDiffs(diffs)
	return diffs
}

func (f *FileObject) populate(el *Element, diag *Diagnostics) error {
	f.readAnnotations(kindAnnotationNames[KindFile], el.Attr)
	for _, child := range el.Children {
		switch {
		case isDeltaName(child.Name) && child.Name.Local == "original_fileobject":
			original := NewFileObject()
			if err := original.populate(child, diag); err != nil {
				return err
			}
			f.Original = original
		case readExternal(child, &f.Externals):
		case child.Name.Local == "alloc":
			if err := f.SetAlloc(child.Text); err != nil {
				return err
			}
		case child.Name.Local == "unalloc":
			b, err := CoerceBool(child.Text)
			if err != nil {
				return errors.Wrap(err, "property unalloc")
			}
			if b != nil && *b {
				f.AllocInode, f.AllocName = boolPtr(false), boolPtr(false)
			}
		default:
			ok, err := readProperty(fileProperties, f, &f.annotations, child)
			if err != nil {
				return errors.Wrapf(err, "fileobject %s", child.Name.Local)
			}
			if !ok {
				diag.Warnf("fileobject:"+child.Name.Local, "dropping unknown fileobject element <%s>", child.Name.Local)
			}
		}
	}
	return nil
}

func (f *FileObject) encode(w *xmlWriter) {
	w.start(kindElements[KindFile], f.annotationAttrs(kindAnnotationNames[KindFile])...)
	f.encodeBody(w)
	w.end(kindElements[KindFile])
}

func (f *FileObject) encodeBody(w *xmlWriter) {
	writeProperties(w, fileScalarProperties, f, &f.annotations, false)
	for _, e := range f.Externals {
		w.element(e)
	}
	writeProperties(w, fileContentProperties, f, &f.annotations, false)
	if f.Original != nil {
		w.start("delta:original_fileobject")
		f.Original.encodeBody(w)
		w.end("delta:original_fileobject")
	}
}
