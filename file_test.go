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
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileObject_IsAllocated(t *testing.T) {
	tests := []struct {
		name  string
		inode *bool
		fname *bool
		want  *bool
	}{
		{"both allocated", boolPtr(true), boolPtr(true), boolPtr(true)},
		{"name unallocated", boolPtr(true), boolPtr(false), boolPtr(false)},
		{"inode unallocated", boolPtr(false), boolPtr(true), boolPtr(false)},
		{"both unallocated", boolPtr(false), boolPtr(false), boolPtr(false)},
		{"name unknown", boolPtr(true), nil, boolPtr(false)},
		{"inode unknown", nil, boolPtr(true), boolPtr(false)},
		{"unknown unallocated", nil, boolPtr(false), boolPtr(false)},
		{"both unknown", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FileObject{AllocInode: tt.inode, AllocName: tt.fname}
			assert.Equal(t, tt.want, f.IsAllocated())
		})
	}
}

func TestFileObject_SetProperty(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    interface{}
		check    func(*FileObject) bool
		wantErr  bool
	}{
		{"filesize string", "filesize", "1024", func(f *FileObject) bool { return *f.Filesize == 1024 }, false},
		{"octal mode", "mode", "0755", func(f *FileObject) bool { return *f.Mode == 0755 }, false},
		{"alloc", "alloc", "1", func(f *FileObject) bool { return *f.AllocInode && *f.AllocName }, false},
		{"time", Mtime, time.Unix(0, 0).UTC(), func(f *FileObject) bool { return f.Mtime.Name == Mtime }, false},
		{"hash", "sha1", "abc", func(f *FileObject) bool { return *f.Hash("sha1") == "abc" }, false},
		{"bad int", "filesize", "big", func(f *FileObject) bool { return f.Filesize == nil }, true},
		{"bad bool", "orphan", "maybe", func(f *FileObject) bool { return f.Orphan == nil }, true},
		{"unknown", "color", "blue", func(f *FileObject) bool { return true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileObject()
			err := f.SetProperty(tt.property, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetProperty() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.True(t, tt.check(f))
		})
	}
}

func TestFileObject_SetPropertyKeepsValueOnError(t *testing.T) {
	f := NewFileObject()
	require.NoError(t, f.SetProperty("inode", 7))
	err := f.SetProperty("inode", "seven")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeCoercion))
	assert.EqualValues(t, 7, *f.Inode)
}

func TestFileObject_CompareToOther(t *testing.T) {
	a := NewFileObject()
	require.NoError(t, a.SetProperty("filename", "a.txt"))
	require.NoError(t, a.SetProperty(Mtime, "2010-01-01T00:00:00Z"))
	require.NoError(t, a.SetProperty("id", 1))
	require.NoError(t, a.SetProperty("md5", "ABCDEF"))

	b := NewFileObject()
	require.NoError(t, b.SetProperty("filename", "a.txt"))
	require.NoError(t, b.SetProperty(Mtime, "2010-01-02T00:00:00Z"))
	require.NoError(t, b.SetProperty("id", 2))
	require.NoError(t, b.SetProperty("md5", "abcdef"))

	assert.Equal(t, map[string]bool{Mtime: true}, a.CompareToOther(b, nil))
	assert.Empty(t, a.CompareToOther(b, map[string]bool{Mtime: true}))

	b.Original = a
	b.CompareToOriginal(nil)
	assert.Equal(t, []string{Mtime}, b.Diffs())
}

func TestFileObject_AppendByteRuns(t *testing.T) {
	f := NewFileObject()
	require.NoError(t, f.AppendByteRuns(NewByteRuns("", run(0, 0, 0, 1))))
	require.NoError(t, f.AppendByteRuns(NewByteRuns(FacetInode, run(8, 8, 0, 1))))
	assert.Error(t, f.AppendByteRuns(NewByteRuns("slack")))
	assert.NotNil(t, f.ByteRuns())
	assert.NotNil(t, f.InodeBrs)
	assert.Nil(t, f.NameBrs)
}
