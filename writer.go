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
	"io"

	"github.com/pkg/errors"
)

// Writer writes a manifest incrementally. Containers are written with
// WriteStart and WriteEnd, files and cells with WriteObject.
type Writer struct {
	out   io.Writer
	xw    *xmlWriter
	stack []streamContainer
	done  bool
}

// NewWriter creates a writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w, xw: newXMLWriter(w)}
}

// WriteStart writes a container up to its first child. The first container
// must be the document.
func (w *Writer) WriteStart(c Container) error {
	sc, ok := c.(streamContainer)
	if !ok {
		return errors.Errorf("cannot write %T", c)
	}
	if w.done {
		return errors.New("document already closed")
	}
	if len(w.stack) == 0 {
		if _, ok := c.(*DFXMLObject); !ok {
			return errors.Errorf("%s outside of document", c.Kind())
		}
		if _, err := io.WriteString(w.out, xmlHeader); err != nil {
			return err
		}
	} else if _, ok := c.(*DFXMLObject); ok {
		return errors.New("nested document")
	}
	sc.encodeStart(w.xw)
	w.stack = append(w.stack, sc)
	return w.xw.err
}

// WriteEnd writes the poststream properties and closes the container. c
// must be the innermost open container.
func (w *Writer) WriteEnd(c Container) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1] != c {
		return errors.Errorf("%s is not the innermost open container", c.Kind())
	}
	w.stack = w.stack[:len(w.stack)-1]
	c.(streamContainer).encodeEnd(w.xw)
	if len(w.stack) == 0 {
		w.done = true
		if err := w.xw.flush(); err != nil {
			return err
		}
		_, err := io.WriteString(w.out, "\n")
		return err
	}
	return w.xw.err
}

// WriteObject writes an object with all its linked children.
func (w *Writer) WriteObject(o Object) error {
	switch o := o.(type) {
	case *FileObject:
		if len(w.stack) == 0 {
			return errors.New("fileobject outside of document")
		}
		if _, ok := w.stack[len(w.stack)-1].(*HiveObject); ok {
			return errors.New("fileobject inside hiveobject")
		}
		o.encode(w.xw)
		return w.xw.err
	case *CellObject:
		if len(w.stack) == 0 {
			return errors.New("cellobject outside of hiveobject")
		}
		if _, ok := w.stack[len(w.stack)-1].(*HiveObject); !ok {
			return errors.New("cellobject outside of hiveobject")
		}
		o.encode(w.xw)
		return w.xw.err
	case Container:
		if err := w.WriteStart(o); err != nil {
			return err
		}
		for _, child := range o.ChildObjects() {
			if err := w.WriteObject(child); err != nil {
				return err
			}
		}
		return w.WriteEnd(o)
	}
	return errors.Errorf("cannot write %T", o)
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	return w.xw.flush()
}

// Encode writes a whole document.
func Encode(out io.Writer, doc *DFXMLObject) error {
	w := NewWriter(out)
	if err := w.WriteObject(doc); err != nil {
		return err
	}
	return w.Flush()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
