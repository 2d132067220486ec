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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Byte run facets.
const (
	FacetData  = "data"
	FacetInode = "inode"
	FacetName  = "name"
)

// ByteRun is a contiguous extent of bytes. Runs with a fill value do not
// reference storage, every byte of the run equals the fill value.
type ByteRun struct {
	ImgOffset       *int64  `json:"img_offset,omitempty"`
	FsOffset        *int64  `json:"fs_offset,omitempty"`
	FileOffset      *int64  `json:"file_offset,omitempty"`
	Len             *int64  `json:"len,omitempty"`
	Fill            *int64  `json:"fill,omitempty"`
	Type            *string `json:"type,omitempty"`
	UncompressedLen *int64  `json:"uncompressed_len,omitempty"`
	Md5             *string `json:"md5,omitempty"`
	Sha1            *string `json:"sha1,omitempty"`
}

// Add merges other into a copy of br. It returns nil if the runs are not
// adjacent in every offset space or carry data that forbids merging.
func (br *ByteRun) Add(other *ByteRun) *ByteRun {
	if br == nil || other == nil {
		return nil
	}
	if !int64Equal(br.Fill, other.Fill) || !stringEqual(br.Type, other.Type) {
		return nil
	}
	if br.UncompressedLen != nil || other.UncompressedLen != nil {
		return nil
	}
	if br.Md5 != nil || br.Sha1 != nil || other.Md5 != nil || other.Sha1 != nil {
		return nil
	}
	if br.Len == nil || other.Len == nil {
		return nil
	}
	for _, offsets := range [][2]*int64{
		{br.ImgOffset, other.ImgOffset},
		{br.FsOffset, other.FsOffset},
		{br.FileOffset, other.FileOffset},
	} {
		a, b := offsets[0], offsets[1]
		if (a == nil) != (b == nil) {
			return nil
		}
		if a != nil && *a+*br.Len != *b {
			return nil
		}
	}

	merged := *br
	merged.Len = int64Ptr(*br.Len + *other.Len)
	return &merged
}

// Equal reports whether both runs have the same attributes.
func (br *ByteRun) Equal(o *ByteRun) bool {
	if br == nil || o == nil {
		return br == nil && o == nil
	}
	return int64Equal(br.ImgOffset, o.ImgOffset) &&
		int64Equal(br.FsOffset, o.FsOffset) &&
		int64Equal(br.FileOffset, o.FileOffset) &&
		int64Equal(br.Len, o.Len) &&
		int64Equal(br.Fill, o.Fill) &&
		stringEqual(br.Type, o.Type) &&
		int64Equal(br.UncompressedLen, o.UncompressedLen) &&
		hashEqual(br.Md5, o.Md5) &&
		hashEqual(br.Sha1, o.Sha1)
}

func (br *ByteRun) attrs() []xml.Attr {
	var attrs []xml.Attr
	for _, a := range []struct {
		name  string
		value *int64
	}{
		{"file_offset", br.FileOffset},
		{"fs_offset", br.FsOffset},
		{"img_offset", br.ImgOffset},
		{"len", br.Len},
		{"fill", br.Fill},
	} {
		if a.value != nil {
			attrs = append(attrs, attr(a.name, strconv.FormatInt(*a.value, 10)))
		}
	}
	if br.Type != nil {
		attrs = append(attrs, attr("type", *br.Type))
	}
	if br.UncompressedLen != nil {
		attrs = append(attrs, attr("uncompressed_len", strconv.FormatInt(*br.UncompressedLen, 10)))
	}
	return attrs
}

func (br *ByteRun) encode(w *xmlWriter) {
	w.start("byte_run", br.attrs()...)
	if br.Md5 != nil {
		w.text("hashdigest", *br.Md5, attr("type", "md5"))
	}
	if br.Sha1 != nil {
		w.text("hashdigest", *br.Sha1, attr("type", "sha1"))
	}
	w.end("byte_run")
}

func byteRunFromElement(el *Element) (*ByteRun, error) {
	br := &ByteRun{}
	var err error
	for _, a := range []struct {
		name  string
		field **int64
	}{
		{"img_offset", &br.ImgOffset},
		{"fs_offset", &br.FsOffset},
		{"file_offset", &br.FileOffset},
		{"len", &br.Len},
		{"fill", &br.Fill},
		{"uncompressed_len", &br.UncompressedLen},
	} {
		if *a.field, err = CoerceInt(el.attr(a.name)); err != nil {
			return nil, errors.Wrapf(err, "byte run attribute %s", a.name)
		}
	}
	if br.FileOffset == nil && el.hasAttr("offset") {
		if br.FileOffset, err = CoerceInt(el.attr("offset")); err != nil {
			return nil, errors.Wrap(err, "byte run attribute offset")
		}
	}
	if br.Fill != nil && (*br.Fill < 0 || *br.Fill > 255) {
		return nil, errors.Wrapf(ErrTypeCoercion, "fill value %d is not a byte", *br.Fill)
	}
	if el.hasAttr("type") {
		br.Type = stringPtr(el.attr("type"))
	}
	for _, child := range el.Children {
		if !isDFXMLName(child.Name) || child.Name.Local != "hashdigest" {
			continue
		}
		switch strings.ToLower(child.attr("type")) {
		case "md5":
			br.Md5, _ = CoerceString(child.Text)
		case "sha1":
			br.Sha1, _ = CoerceString(child.Text)
		}
	}
	return br, nil
}

// ByteRuns is an ordered list of byte runs describing one facet of an
// object's storage.
type ByteRuns struct {
	Facet string     `json:"facet,omitempty"`
	Runs  []*ByteRun `json:"runs"`
}

// NewByteRuns creates a run list for a facet.
func NewByteRuns(facet string, runs ...*ByteRun) *ByteRuns {
	return &ByteRuns{Facet: facet, Runs: runs}
}

// Append adds a run without merging.
func (brs *ByteRuns) Append(br *ByteRun) {
	brs.Runs = append(brs.Runs, br)
}

// Glom adds a run, merging it into the last run where possible.
func (brs *ByteRuns) Glom(br *ByteRun) {
	if n := len(brs.Runs); n > 0 {
		if merged := brs.Runs[n-1].Add(br); merged != nil {
			brs.Runs[n-1] = merged
			return
		}
	}
	brs.Runs = append(brs.Runs, br)
}

// Glommed returns a copy of the list with adjacent runs merged.
func (brs *ByteRuns) Glommed() *ByteRuns {
	if brs == nil {
		return nil
	}
	glommed := &ByteRuns{Facet: brs.Facet, Runs: []*ByteRun{}}
	for _, br := range brs.Runs {
		glommed.Glom(br)
	}
	return glommed
}

// Len returns the sum of all run lengths.
func (brs *ByteRuns) Len() int64 {
	var n int64
	if brs == nil {
		return 0
	}
	for _, br := range brs.Runs {
		if br.Len != nil {
			n += *br.Len
		}
	}
	return n
}

// Equal reports whether both lists describe the same facet with the same
// runs. A missing facet equals the data facet.
func (brs *ByteRuns) Equal(o *ByteRuns) bool {
	if brs == nil || o == nil {
		return brs == nil && o == nil
	}
	if facetOrData(brs.Facet) != facetOrData(o.Facet) || len(brs.Runs) != len(o.Runs) {
		return false
	}
	for i := range brs.Runs {
		if !brs.Runs[i].Equal(o.Runs[i]) {
			return false
		}
	}
	return true
}

func (brs *ByteRuns) encode(w *xmlWriter, attrs ...xml.Attr) {
	if brs.Facet != "" {
		attrs = append([]xml.Attr{attr("facet", brs.Facet)}, attrs...)
	}
	w.start("byte_runs", attrs...)
	for _, br := range brs.Runs {
		br.encode(w)
	}
	w.end("byte_runs")
}

func byteRunsFromElement(el *Element) (*ByteRuns, error) {
	brs := &ByteRuns{Facet: el.attr("facet"), Runs: []*ByteRun{}}
	for _, child := range el.Children {
		if !isDFXMLName(child.Name) || (child.Name.Local != "byte_run" && child.Name.Local != "run") {
			continue
		}
		br, err := byteRunFromElement(child)
		if err != nil {
			return nil, err
		}
		brs.Append(br)
	}
	if len(brs.Runs) == 0 && hasChangedProperty(el) {
		return nil, nil
	}
	return brs, nil
}

func facetOrData(facet string) string {
	if facet == "" {
		return FacetData
	}
	return facet
}

func int64Equal(a, b *int64) bool {
	return (a == nil && b == nil) || (a != nil && b != nil && *a == *b)
}

func stringEqual(a, b *string) bool {
	return (a == nil && b == nil) || (a != nil && b != nil && *a == *b)
}

func hashEqual(a, b *string) bool {
	return (a == nil && b == nil) || (a != nil && b != nil && strings.EqualFold(*a, *b))
}

func boolEqual(a, b *bool) bool {
	return (a == nil && b == nil) || (a != nil && b != nil && *a == *b)
}
