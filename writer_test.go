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
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFile(t *testing.T, name string) *DFXMLObject {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	doc, err := Parse(f, nil)
	require.NoError(t, err)
	return doc
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, name := range []string{"testdata/nested.xml", "testdata/pre.xml", "testdata/post.xml"} {
		t.Run(name, func(t *testing.T) {
			doc := parseFile(t, name)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, doc))

			again, err := Parse(bytes.NewReader(buf.Bytes()), nil)
			require.NoError(t, err, buf.String())
			assert.True(t, Equal(doc, again), buf.String())

			var second bytes.Buffer
			require.NoError(t, Encode(&second, again))
			assert.Equal(t, buf.String(), second.String())
		})
	}
}

func TestEncode_Differential(t *testing.T) {
	original := NewFileObject()
	require.NoError(t, original.SetProperty("filename", "a.txt"))
	require.NoError(t, original.SetProperty("md5", "11"))
	require.NoError(t, original.SetProperty("link_target", "b.txt"))

	f := NewFileObject()
	require.NoError(t, f.SetProperty("filename", "a.txt"))
	require.NoError(t, f.SetProperty("md5", "22"))
	f.Original = original
	f.CompareToOriginal(nil)
	f.AddAnno(AnnoModified)
	f.AddAnno(AnnoMatched)

	v := NewVolumeObject()
	require.NoError(t, v.SetProperty("partition_offset", 0))
	v.AddAnno(AnnoNew)
	require.NoError(t, v.AppendChild(f))

	doc := NewDFXMLObject()
	doc.DC["type"] = "Disk image difference set"
	doc.AddDiffFileIgnore("atime")
	require.NoError(t, doc.AppendChild(v))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	out := buf.String()
	assert.Contains(t, out, `delta:new_volume="1"`)
	assert.Contains(t, out, `delta:modified_file="1"`)
	assert.Contains(t, out, `delta:matched="1"`)
	assert.Contains(t, out, `<hashdigest type="md5" delta:changed_property="1">22</hashdigest>`)
	assert.Contains(t, out, `<link_target delta:changed_property="1"></link_target>`)
	assert.Contains(t, out, `<delta:original_fileobject>`)
	assert.Contains(t, out, `<delta:file_ignore name="atime"></delta:file_ignore>`)

	again, err := Parse(strings.NewReader(out), nil)
	require.NoError(t, err)
	got := again.Volumes()[0].Files()[0]
	assert.Equal(t, []string{AnnoMatched, AnnoModified}, got.Annos())
	assert.Equal(t, []string{"link_target", "md5"}, got.Diffs())
	assert.Nil(t, got.LinkTarget)
	require.NotNil(t, got.Original)
	assert.Equal(t, "b.txt", *got.Original.LinkTarget)
	assert.True(t, again.Volumes()[0].HasAnno(AnnoNew))
	assert.True(t, again.DiffFileIgnores["atime"])
}

func TestWriter_Streaming(t *testing.T) {
	f, err := os.Open("testdata/nested.xml")
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	reader := NewReader(f, nil)
	writer := NewWriter(&buf)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		c, isContainer := ev.Object.(Container)
		switch {
		case ev.Phase == Start:
			require.NoError(t, writer.WriteStart(c))
		case isContainer:
			require.NoError(t, writer.WriteEnd(c))
		default:
			require.NoError(t, writer.WriteObject(ev.Object))
		}
	}
	require.NoError(t, writer.Flush())

	var whole bytes.Buffer
	require.NoError(t, Encode(&whole, parseFile(t, "testdata/nested.xml")))
	assert.Equal(t, whole.String(), buf.String())
}

func TestWriter_Errors(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer) error
	}{
		{"file outside document", func(w *Writer) error { return w.WriteObject(NewFileObject()) }},
		{"volume outside document", func(w *Writer) error { return w.WriteStart(NewVolumeObject()) }},
		{"cell outside hive", func(w *Writer) error {
			if err := w.WriteStart(NewDFXMLObject()); err != nil {
				return err
			}
			return w.WriteObject(NewCellObject())
		}},
		{"wrong end", func(w *Writer) error {
			if err := w.WriteStart(NewDFXMLObject()); err != nil {
				return err
			}
			return w.WriteEnd(NewVolumeObject())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.write(NewWriter(io.Discard)))
		})
	}
}
