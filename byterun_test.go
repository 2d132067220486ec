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
	"testing"

	"github.com/stretchr/testify/assert"
)

func run(img, fs, file, length int64) *ByteRun {
	return &ByteRun{ImgOffset: int64Ptr(img), FsOffset: int64Ptr(fs), FileOffset: int64Ptr(file), Len: int64Ptr(length)}
}

func TestByteRun_Add(t *testing.T) {
	fill := func(br *ByteRun, v int64) *ByteRun { br.Fill = int64Ptr(v); return br }
	hashed := func(br *ByteRun) *ByteRun { br.Md5 = stringPtr("00"); return br }
	imgOnly := func(img, length int64) *ByteRun { return &ByteRun{ImgOffset: int64Ptr(img), Len: int64Ptr(length)} }

	tests := []struct {
		name  string
		a, b  *ByteRun
		want  *ByteRun
	}{
		{"contiguous", run(100, 0, 0, 10), run(110, 10, 10, 5), run(100, 0, 0, 15)},
		{"gap", run(100, 0, 0, 10), run(111, 10, 10, 5), nil},
		{"reversed", run(110, 10, 10, 5), run(100, 0, 0, 10), nil},
		{"one side offset", imgOnly(100, 10), run(110, 10, 10, 5), nil},
		{"image offsets only", imgOnly(100, 10), imgOnly(110, 5), imgOnly(100, 15)},
		{"same fill", fill(run(100, 0, 0, 10), 0), fill(run(110, 10, 10, 5), 0), fill(run(100, 0, 0, 15), 0)},
		{"other fill", fill(run(100, 0, 0, 10), 0), fill(run(110, 10, 10, 5), 1), nil},
		{"hashed", hashed(run(100, 0, 0, 10)), run(110, 10, 10, 5), nil},
		{"missing len", &ByteRun{ImgOffset: int64Ptr(1)}, run(1, 0, 0, 1), nil},
		{"uncompressed", &ByteRun{ImgOffset: int64Ptr(0), Len: int64Ptr(1), UncompressedLen: int64Ptr(4)}, imgOnly(1, 1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Add(tt.b)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestByteRuns_Glom(t *testing.T) {
	contiguous := []*ByteRun{run(0, 0, 0, 512), run(512, 512, 512, 512), run(1024, 1024, 1024, 100)}
	scattered := []*ByteRun{run(0, 0, 0, 512), run(4096, 4096, 512, 512), run(8192, 8192, 1024, 100)}

	tests := []struct {
		name     string
		runs     []*ByteRun
		wantRuns int
	}{
		{"contiguous", contiguous, 1},
		{"scattered", scattered, 3},
		{"reversed", []*ByteRun{contiguous[2], contiguous[1], contiguous[0]}, 3},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brs := NewByteRuns(FacetData)
			var total int64
			for _, br := range tt.runs {
				brs.Glom(br)
				total += *br.Len
			}
			assert.Len(t, brs.Runs, tt.wantRuns)
			assert.Equal(t, total, brs.Len())

			again := brs.Glommed()
			assert.True(t, brs.Equal(again), "glomming twice must not change the runs")
		})
	}
}

func TestByteRuns_GlomReverse(t *testing.T) {
	runs := []*ByteRun{run(0, 0, 0, 512), run(512, 512, 512, 512), run(1024, 1024, 1024, 100), run(9000, 9000, 1124, 1)}
	forward := NewByteRuns(FacetData, runs...).Glommed()
	reverse := NewByteRuns(FacetData)
	for i := len(runs) - 1; i >= 0; i-- {
		reverse.Glom(runs[i])
	}
	assert.LessOrEqual(t, len(forward.Runs), len(reverse.Runs))
	assert.Equal(t, forward.Len(), reverse.Len())
}

func TestByteRuns_Equal(t *testing.T) {
	a := NewByteRuns("", run(0, 0, 0, 1))
	b := NewByteRuns(FacetData, run(0, 0, 0, 1))
	c := NewByteRuns(FacetInode, run(0, 0, 0, 1))
	var null *ByteRuns

	assert.True(t, a.Equal(b))
	assert.False(t, b.Equal(c))
	assert.False(t, a.Equal(null))
	assert.True(t, null.Equal(nil))
}
