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
	"io"
	"strings"

	"github.com/pkg/errors"
)

// XML namespaces used in manifests.
const (
	NamespaceDFXML = "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML"
	NamespaceDC    = "http://purl.org/dc/elements/1.1/"
	NamespaceDelta = "http://www.forensicswiki.org/wiki/Forensic_Disk_Differencing"
)

// Element is a generic XML element. Objects keep elements of foreign
// namespaces as externals and write them back verbatim.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Text     string
	Children []*Element
}

// readElement consumes the rest of the element opened by start.
func readElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Name: start.Name, Attr: append([]xml.Attr(nil), start.Attr...)}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.Wrapf(ErrStreamConsistency, "unexpected end of input in <%s>", start.Name.Local)
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed manifest")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el.Text = strings.TrimSpace(text.String())
			return el, nil
		}
	}
}

func (e *Element) attr(local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local && (a.Name.Space == "" || a.Name.Space == NamespaceDFXML) {
			return a.Value
		}
	}
	return ""
}

func (e *Element) hasAttr(local string) bool {
	for _, a := range e.Attr {
		if a.Name.Local == local && (a.Name.Space == "" || a.Name.Space == NamespaceDFXML) {
			return true
		}
	}
	return false
}

func isDFXMLName(n xml.Name) bool {
	return n.Space == "" || n.Space == NamespaceDFXML
}

func isDeltaName(n xml.Name) bool {
	return n.Space == NamespaceDelta || n.Space == "delta"
}

func isDCName(n xml.Name) bool {
	return n.Space == NamespaceDC || n.Space == "dc"
}

// xmlWriter wraps an xml.Encoder and keeps the first error.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func newXMLWriter(w io.Writer) *xmlWriter {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &xmlWriter{enc: enc}
}

func (w *xmlWriter) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}

func (w *xmlWriter) start(name string, attr ...xml.Attr) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attr})
}

func (w *xmlWriter) end(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *xmlWriter) text(name, value string, attr ...xml.Attr) {
	w.start(name, attr...)
	if value != "" {
		w.token(xml.CharData(value))
	}
	w.end(name)
}

func (w *xmlWriter) element(e *Element) {
	var attr []xml.Attr
	for _, a := range e.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attr = append(attr, a)
	}
	w.token(xml.StartElement{Name: e.Name, Attr: attr})
	if e.Text != "" {
		w.token(xml.CharData(e.Text))
	}
	for _, child := range e.Children {
		w.element(child)
	}
	w.token(xml.EndElement{Name: e.Name})
}

func (w *xmlWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}
