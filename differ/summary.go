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

package differ

import (
	"io"
	"sort"

	"github.com/forensicanalysis/dfxml"
)

// Summary counts the annotations of a differential manifest.
type Summary struct {
	// Files and Bytes are keyed by annotation name.
	Files   map[string]int   `json:"files"`
	Bytes   map[string]int64 `json:"bytes"`
	Volumes map[string]int   `json:"volumes"`
	// ChangedProperties counts how often each file property changed.
	ChangedProperties map[string]int `json:"changed_properties"`
	Unannotated       int            `json:"unannotated"`
}

func newSummary() *Summary {
	return &Summary{
		Files:             map[string]int{},
		Bytes:             map[string]int64{},
		Volumes:           map[string]int{},
		ChangedProperties: map[string]int{},
	}
}

// Summarize reads a differential manifest as a stream and counts its
// annotations.
func Summarize(r io.Reader, diag *dfxml.Diagnostics) (*Summary, error) {
	s := newSummary()
	reader := dfxml.NewReader(r, diag)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		switch o := ev.Object.(type) {
		case *dfxml.VolumeObject:
			if ev.Phase == dfxml.End {
				s.addVolume(o)
			}
		case *dfxml.FileObject:
			s.addFile(o)
		}
	}
}

// SummarizeDocument counts the annotations of a parsed differential.
func SummarizeDocument(doc *dfxml.DFXMLObject) *Summary {
	s := newSummary()
	_ = dfxml.Walk(doc, func(o dfxml.Object) error {
		switch o := o.(type) {
		case *dfxml.VolumeObject:
			s.addVolume(o)
		case *dfxml.FileObject:
			s.addFile(o)
		}
		return nil
	})
	return s
}

func (s *Summary) addVolume(v *dfxml.VolumeObject) {
	for _, anno := range v.Annos() {
		s.Volumes[anno]++
	}
}

func (s *Summary) addFile(f *dfxml.FileObject) {
	annos := f.Annos()
	if len(annos) == 0 {
		s.Unannotated++
		return
	}
	size := f.Filesize
	if size == nil && f.Original != nil {
		size = f.Original.Filesize
	}
	for _, anno := range annos {
		s.Files[anno]++
		if size != nil {
			s.Bytes[anno] += *size
		}
	}
	for _, p := range f.Diffs() {
		s.ChangedProperties[p]++
	}
}

// Annotations returns the file annotations in sorted order.
func (s *Summary) Annotations() []string {
	var annos []string
	for anno := range s.Files {
		annos = append(annos, anno)
	}
	sort.Strings(annos)
	return annos
}
