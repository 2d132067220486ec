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

// Version is the schema version written to new documents.
const Version = "1.2.0"

// LibraryObject names a library a program was built with.
type LibraryObject struct {
	Name    string
	Version string
}

// ExecutionEnvironment describes the host a document was created on.
type ExecutionEnvironment struct {
	OSSysname   string
	OSRelease   string
	OSVersion   string
	Host        string
	Arch        string
	UID         string
	Username    string
	StartTime   string
	CommandLine string
}

type envField struct {
	name  string
	value *string
}

func (e *ExecutionEnvironment) fields() []envField {
	return []envField{
		{"os_sysname", &e.OSSysname},
		{"os_release", &e.OSRelease},
		{"os_version", &e.OSVersion},
		{"host", &e.Host},
		{"arch", &e.Arch},
		{"uid", &e.UID},
		{"username", &e.Username},
		{"start_time", &e.StartTime},
		{"command_line", &e.CommandLine},
	}
}

// DFXMLObject is the root of a manifest.
type DFXMLObject struct {
	Version string
	// Namespaces maps additional prefixes to namespace URIs.
	Namespaces map[string]string
	// DC holds Dublin Core metadata by element name, e.g. "type".
	DC                   map[string]string
	Program              string
	ProgramVersion       string
	Libraries            []*LibraryObject
	ExecutionEnvironment *ExecutionEnvironment
	Sources              []string
	DiffFileIgnores      map[string]bool
	Externals            []*Element

	childList
}

// NewDFXMLObject creates an empty document of the current schema version.
func NewDFXMLObject() *DFXMLObject {
	return &DFXMLObject{
		Version:         Version,
		Namespaces:      map[string]string{},
		DC:              map[string]string{},
		DiffFileIgnores: map[string]bool{},
	}
}

// Kind returns KindDocument.
func (d *DFXMLObject) Kind() Kind { return KindDocument }

// AppendChild adds a child object.
func (d *DFXMLObject) AppendChild(child Object) error { return d.appendChild(child) }

// AddNamespace registers a prefix for a namespace URI.
func (d *DFXMLObject) AddNamespace(prefix, uri string) {
	if d.Namespaces == nil {
		d.Namespaces = map[string]string{}
	}
	d.Namespaces[prefix] = uri
}

// AddLibrary records a library the creating program was built with.
func (d *DFXMLObject) AddLibrary(name, version string) {
	for _, l := range d.Libraries {
		if l.Name == name {
			l.Version = version
			return
		}
	}
	d.Libraries = append(d.Libraries, &LibraryObject{Name: name, Version: version})
}

// AddDiffFileIgnore records a file property ignored by a differential.
func (d *DFXMLObject) AddDiffFileIgnore(property string) {
	if d.DiffFileIgnores == nil {
		d.DiffFileIgnores = map[string]bool{}
	}
	d.DiffFileIgnores[property] = true
}

func (d *DFXMLObject) equalMetadata(o *DFXMLObject) bool {
	if d.Version != o.Version || d.Program != o.Program || d.ProgramVersion != o.ProgramVersion {
		return false
	}
	if !stringMapEqual(d.DC, o.DC) || commaList(d.DiffFileIgnores) != commaList(o.DiffFileIgnores) {
		return false
	}
	if strings.Join(d.Sources, "\x00") != strings.Join(o.Sources, "\x00") || len(d.Libraries) != len(o.Libraries) {
		return false
	}
	for i := range d.Libraries {
		if *d.Libraries[i] != *o.Libraries[i] {
			return false
		}
	}
	return true
}

func stringMapEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || v != w {
			return false
		}
	}
	return true
}

func (d *DFXMLObject) hasProperty(local string) bool {
	switch local {
	case "metadata", "creator", "source":
		return true
	}
	return false
}

func (d *DFXMLObject) isPoststream(string) bool { return false }

func (d *DFXMLObject) readPoststream(*Element) error { return nil }

func (d *DFXMLObject) populate(el *Element, diag *Diagnostics) error {
	for _, a := range el.Attr {
		switch {
		case a.Name.Space == "xmlns":
			if a.Value != NamespaceDFXML && a.Value != NamespaceDC && a.Value != NamespaceDelta {
				d.AddNamespace(a.Name.Local, a.Value)
			}
		case a.Name.Space == "" && a.Name.Local == "version":
			d.Version = a.Value
		}
	}

	for _, child := range el.Children {
		switch {
		case isDeltaName(child.Name) && child.Name.Local == "diff_file_ignores":
			for _, ignore := range child.Children {
				if isDeltaName(ignore.Name) && ignore.Name.Local == "file_ignore" {
					d.AddDiffFileIgnore(ignore.attr("name"))
				}
			}
		case readExternal(child, &d.Externals):
		case child.Name.Local == "metadata":
			for _, m := range child.Children {
				if isDCName(m.Name) {
					d.DC[m.Name.Local] = m.Text
				}
			}
		case child.Name.Local == "creator":
			d.readCreator(child)
		case child.Name.Local == "source":
			for _, s := range child.Children {
				if s.Name.Local == "image_filename" {
					d.Sources = append(d.Sources, s.Text)
				}
			}
		default:
			diag.Warnf("dfxml:"+child.Name.Local, "dropping unknown dfxml element <%s>", child.Name.Local)
		}
	}
	return nil
}

func (d *DFXMLObject) readCreator(el *Element) {
	for _, c := range el.Children {
		switch c.Name.Local {
		case "program", "package":
			d.Program = c.Text
		case "version":
			d.ProgramVersion = c.Text
		case "library":
			d.AddLibrary(c.attr("name"), c.attr("version"))
		case "build_environment":
			for _, l := range c.Children {
				if l.Name.Local == "library" {
					d.AddLibrary(l.attr("name"), l.attr("version"))
				}
			}
		case "execution_environment":
			env := &ExecutionEnvironment{}
			for _, e := range c.Children {
				for _, f := range env.fields() {
					if f.name == e.Name.Local {
						*f.value = e.Text
					}
				}
			}
			d.ExecutionEnvironment = env
		}
	}
}

func (d *DFXMLObject) encodeStart(w *xmlWriter) {
	attrs := []xml.Attr{
		attr("version", d.Version),
		attr("xmlns", NamespaceDFXML),
		attr("xmlns:dc", NamespaceDC),
		attr("xmlns:delta", NamespaceDelta),
	}
	var prefixes []string
	for prefix := range d.Namespaces {
		if prefix != "" && prefix != "dc" && prefix != "delta" {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		attrs = append(attrs, attr("xmlns:"+prefix, d.Namespaces[prefix]))
	}
	w.start("dfxml", attrs...)

	if len(d.DC) > 0 {
		w.start("metadata")
		var keys []string
		for k := range d.DC {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.text("dc:"+k, d.DC[k])
		}
		w.end("metadata")
	}

	if d.Program != "" || d.ProgramVersion != "" || len(d.Libraries) > 0 || d.ExecutionEnvironment != nil {
		w.start("creator")
		if d.Program != "" {
			w.text("program", d.Program)
		}
		if d.ProgramVersion != "" {
			w.text("version", d.ProgramVersion)
		}
		if len(d.Libraries) > 0 {
			w.start("build_environment")
			for _, l := range d.Libraries {
				w.text("library", "", attr("name", l.Name), attr("version", l.Version))
			}
			w.end("build_environment")
		}
		if env := d.ExecutionEnvironment; env != nil {
			w.start("execution_environment")
			for _, f := range env.fields() {
				if *f.value != "" {
					w.text(f.name, *f.value)
				}
			}
			w.end("execution_environment")
		}
		w.end("creator")
	}

	for _, s := range d.Sources {
		w.start("source")
		w.text("image_filename", s)
		w.end("source")
	}

	if len(d.DiffFileIgnores) > 0 {
		w.start("delta:diff_file_ignores")
		for _, name := range sortedKeys(d.DiffFileIgnores) {
			w.text("delta:file_ignore", "", attr("name", name))
		}
		w.end("delta:diff_file_ignores")
	}

	for _, e := range d.Externals {
		w.element(e)
	}
}

func (d *DFXMLObject) encodeEnd(w *xmlWriter) {
	w.end("dfxml")
}
