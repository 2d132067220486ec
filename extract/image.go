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

package extract

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Image reads extents of a raw image file.
type Image struct {
	file afero.File
	size int64
}

// OpenImage opens a raw image.
func OpenImage(fs afero.Fs, name string) (*Image, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Image{file: f, size: info.Size()}, nil
}

// Size returns the image size in bytes.
func (i *Image) Size() int64 { return i.size }

// ReadExtent returns a reader over length bytes at offset.
func (i *Image) ReadExtent(offset, length int64) (io.ReadCloser, error) {
	if offset < 0 || length < 0 || offset+length > i.size {
		return nil, errors.Errorf("extent %d+%d outside of image of %d bytes", offset, length, i.size)
	}
	return io.NopCloser(io.NewSectionReader(i.file, offset, length)), nil
}

// Close closes the image file.
func (i *Image) Close() error {
	return i.file.Close()
}
