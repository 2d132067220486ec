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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/dfxml"
)

func TestSummarize(t *testing.T) {
	out, err := Diff(manifest(t, "../testdata/pre.xml"), manifest(t, "../testdata/post.xml"), nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dfxml.Encode(&buf, out))

	got, err := Summarize(&buf, nil)
	require.NoError(t, err)

	want := &Summary{
		Files: map[string]int{
			dfxml.AnnoChanged:  1,
			dfxml.AnnoModified: 1,
			dfxml.AnnoRenamed:  1,
			dfxml.AnnoDeleted:  2,
			dfxml.AnnoNew:      1,
		},
		Bytes: map[string]int64{
			dfxml.AnnoChanged:  9,
			dfxml.AnnoModified: 9,
			dfxml.AnnoRenamed:  3,
			dfxml.AnnoDeleted:  11,
			dfxml.AnnoNew:      2,
		},
		Volumes: map[string]int{},
		ChangedProperties: map[string]int{
			"filesize":    1,
			"mtime":       1,
			"md5":         1,
			"filename":    1,
			"alloc_inode": 1,
			"alloc_name":  1,
		},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, SummarizeDocument(out))
	assert.Equal(t, []string{dfxml.AnnoChanged, dfxml.AnnoDeleted, dfxml.AnnoModified, dfxml.AnnoNew, dfxml.AnnoRenamed}, got.Annotations())
}

func TestSummarize_Unannotated(t *testing.T) {
	got, err := Summarize(bytes.NewReader([]byte(header+`<fileobject><filename>a</filename></fileobject></dfxml>`)), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Unannotated)
	assert.Empty(t, got.Files)
}

func TestSummarize_Error(t *testing.T) {
	_, err := Summarize(bytes.NewReader([]byte(header+`<fileobject>`)), nil)
	assert.Error(t, err)
}
