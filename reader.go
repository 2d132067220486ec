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

	"github.com/pkg/errors"
)

// ErrStreamConsistency is returned if a manifest violates the container
// grammar, e.g. a property that follows the child objects of its container.
var ErrStreamConsistency = errors.New("manifest is not schema-consistent")

// Phase tells whether an event opens or closes an object.
type Phase int

// Event phases. Files and cells are only reported at their end.
const (
	Start Phase = iota
	End
)

func (p Phase) String() string {
	if p == Start {
		return "start"
	}
	return "end"
}

// Event is an object boundary reported by the reader. Objects of start
// events carry all properties written before their children. Objects of
// end events are complete, except that child objects are not linked.
type Event struct {
	Phase  Phase
	Object Object
}

type frame struct {
	obj     streamContainer
	kind    Kind
	proxy   *Element
	started bool
}

// Reader reads a manifest as a stream of events in document order.
// Memory use is bounded by the nesting depth and the size of a single
// file object.
type Reader struct {
	dec    *xml.Decoder
	diag   *Diagnostics
	state  State
	frames []*frame
	queue  []Event
	err    error
}

// NewReader creates a reader. Warnings are reported to diag.
func NewReader(r io.Reader, diag *Diagnostics) *Reader {
	return &Reader{
		dec:   xml.NewDecoder(r),
		diag:  diag,
		state: InputStart,
	}
}

// State returns the current state of the reader.
func (r *Reader) State() State {
	return r.state
}

// Next returns the next event. It returns io.EOF after the end event of the
// document. Errors are fatal, all later calls return the same error.
func (r *Reader) Next() (Event, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return Event{}, r.err
		}
		if r.state == DocumentEnd {
			return Event{}, io.EOF
		}
		r.err = r.step()
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, nil
}

func (r *Reader) step() error {
	tok, err := r.dec.Token()
	if err == io.EOF {
		return errors.Wrapf(ErrStreamConsistency, "unexpected end of input in state %s", r.state)
	}
	if err != nil {
		return errors.Wrap(err, "malformed manifest")
	}
	switch t := tok.(type) {
	case xml.StartElement:
		return r.startElement(t)
	case xml.EndElement:
		return r.endElement(t)
	}
	return nil
}

func (r *Reader) transition(to State) error {
	if !isLegalTransition(r.state, to) {
		return errors.Wrapf(ErrStreamConsistency, "illegal transition from %s to %s", r.state, to)
	}
	r.diag.Debugf("%s -> %s", r.state, to)
	r.state = to
	return nil
}

func (r *Reader) top() *frame {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

func (r *Reader) startElement(t xml.StartElement) error {
	if r.state == InputStart {
		if !isDFXMLName(t.Name) || t.Name.Local != "dfxml" {
			return errors.Wrapf(ErrStreamConsistency, "expected <dfxml> root element, found <%s>", t.Name.Local)
		}
		if err := r.transition(DocumentStart); err != nil {
			return err
		}
		r.frames = append(r.frames, &frame{
			obj:   NewDFXMLObject(),
			kind:  KindDocument,
			proxy: &Element{Name: t.Name, Attr: t.Attr},
		})
		return r.transition(DocumentPrestream)
	}

	top := r.top()
	if kind, ok := objectKind(t.Name); ok {
		if top.kind == KindHive && kind != KindCell {
			return errors.Wrapf(ErrStreamConsistency, "%s inside hiveobject", kind)
		}
		if r.state == poststreamState(top.kind) {
			return errors.Wrapf(ErrStreamConsistency, "%s after the poststream properties of %s", kind, top.kind)
		}
		if err := r.cut(top); err != nil {
			return err
		}
		if kind == KindFile || kind == KindCell {
			return r.leaf(top, kind, t)
		}
		if err := r.transition(prestreamState(kind)); err != nil {
			return err
		}
		r.frames = append(r.frames, &frame{
			obj:   newContainer(kind),
			kind:  kind,
			proxy: &Element{Name: t.Name, Attr: t.Attr},
		})
		return nil
	}

	el, err := readElement(r.dec, t)
	if err != nil {
		return err
	}
	if !top.started {
		top.proxy.Children = append(top.proxy.Children, el)
		return nil
	}
	return r.poststream(top, el)
}

// cut populates a container from the elements read before its first child
// and reports its start.
func (r *Reader) cut(f *frame) error {
	if f.started {
		return nil
	}
	f.started = true
	if err := f.obj.populate(f.proxy, r.diag); err != nil {
		return err
	}
	f.proxy = nil
	r.queue = append(r.queue, Event{Phase: Start, Object: f.obj})
	return nil
}

func (r *Reader) leaf(parent *frame, kind Kind, t xml.StartElement) error {
	start, end := FileStart, FileEnd
	if kind == KindCell {
		start, end = CellStart, CellEnd
	}
	if err := r.transition(start); err != nil {
		return err
	}
	el, err := readElement(r.dec, t)
	if err != nil {
		return err
	}

	var obj Object
	if kind == KindFile {
		f := NewFileObject()
		if err := f.populate(el, r.diag); err != nil {
			return err
		}
		f.volume = r.volume()
		obj = f
	} else {
		c := NewCellObject()
		if err := c.populate(el, r.diag); err != nil {
			return err
		}
		obj = c
	}

	if err := r.transition(end); err != nil {
		return err
	}
	r.queue = append(r.queue, Event{Phase: End, Object: obj})
	return r.transition(prestreamState(parent.kind))
}

// volume returns the innermost open volume.
func (r *Reader) volume() *VolumeObject {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if v, ok := r.frames[i].obj.(*VolumeObject); ok {
			return v
		}
	}
	return nil
}

// poststream handles an element that follows the children of its
// container. Only poststream properties are allowed there.
func (r *Reader) poststream(f *frame, el *Element) error {
	if isDFXMLName(el.Name) {
		if f.obj.isPoststream(el.Name.Local) {
			if err := r.transition(poststreamState(f.kind)); err != nil {
				return err
			}
			return f.obj.readPoststream(el)
		}
		if f.obj.hasProperty(el.Name.Local) {
			return errors.Wrapf(ErrStreamConsistency, "<%s> of %s found after its child objects", el.Name.Local, f.kind)
		}
	}
	r.diag.Warnf(f.kind.String()+":poststream:"+el.Name.Local, "dropping <%s> after the child objects of %s", el.Name.Local, f.kind)
	return nil
}

func (r *Reader) endElement(t xml.EndElement) error {
	f := r.top()
	if f == nil {
		return errors.Wrapf(ErrStreamConsistency, "unexpected </%s>", t.Name.Local)
	}
	if r.state != prestreamState(f.kind) && r.state != poststreamState(f.kind) {
		return errors.Wrapf(ErrStreamConsistency, "</%s> in state %s", t.Name.Local, r.state)
	}
	if err := r.cut(f); err != nil {
		return err
	}
	r.frames = r.frames[:len(r.frames)-1]

	if f.kind == KindDocument {
		if r.state == DocumentPrestream {
			if err := r.transition(DocumentPoststream); err != nil {
				return err
			}
		}
		if err := r.transition(DocumentEnd); err != nil {
			return err
		}
	} else if err := r.transition(prestreamState(r.top().kind)); err != nil {
		return err
	}
	r.queue = append(r.queue, Event{Phase: End, Object: f.obj})
	return nil
}

// Parse reads a whole manifest and links every object into its parent.
func Parse(r io.Reader, diag *Diagnostics) (*DFXMLObject, error) {
	reader := NewReader(r, diag)
	var stack []Container
	var doc *DFXMLObject
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch ev.Phase {
		case Start:
			c := ev.Object.(Container)
			if d, ok := c.(*DFXMLObject); ok {
				doc = d
			} else if err := stack[len(stack)-1].AppendChild(c); err != nil {
				return nil, err
			}
			stack = append(stack, c)
		case End:
			if _, ok := ev.Object.(Container); ok {
				stack = stack[:len(stack)-1]
				continue
			}
			if err := stack[len(stack)-1].AppendChild(ev.Object); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}
