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

// Package extract streams file contents out of disk images, guided by the
// byte runs of a manifest, and verifies recorded digests.
package extract

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/forensicanalysis/dfxml"
)

// ExtentReader reads a byte range of an image.
type ExtentReader interface {
	ReadExtent(offset, length int64) (io.ReadCloser, error)
}

type segment struct {
	offset int64
	length int64
	fill   *byte
}

// Contents returns the data of f. Fill runs are synthesized, fs_offset is
// resolved against the partition offset of the containing volume and the
// result is truncated to the file size.
func Contents(f *dfxml.FileObject, r ExtentReader) (io.ReadCloser, error) {
	segments, err := segments(f)
	if err != nil {
		return nil, err
	}
	limit := int64(-1)
	if f.Filesize != nil {
		limit = *f.Filesize
	}
	return &contentReader{source: r, segments: segments, limit: limit}, nil
}

func segments(f *dfxml.FileObject) ([]segment, error) {
	brs := f.ByteRuns()
	if brs == nil {
		if f.Filesize != nil && *f.Filesize > 0 {
			return nil, errors.New("file has no data byte runs")
		}
		return nil, nil
	}

	var segments []segment
	for i, run := range brs.Runs {
		if run.Len == nil {
			return nil, errors.Errorf("byte run %d has no length", i)
		}
		if run.UncompressedLen != nil {
			return nil, errors.Errorf("byte run %d is compressed", i)
		}
		s := segment{length: *run.Len}
		switch {
		case run.Fill != nil:
			b := byte(*run.Fill)
			s.fill = &b
		case run.ImgOffset != nil:
			s.offset = *run.ImgOffset
		case run.FsOffset != nil:
			v := f.VolumeObject()
			if v == nil || v.PartitionOffset == nil {
				return nil, errors.Errorf("byte run %d has a file system offset but the volume offset is unknown", i)
			}
			s.offset = *v.PartitionOffset + *run.FsOffset
		default:
			return nil, errors.Errorf("byte run %d has no image offset", i)
		}
		segments = append(segments, s)
	}
	return segments, nil
}

type contentReader struct {
	source   ExtentReader
	segments []segment
	current  io.ReadCloser
	// limit is the number of bytes left to read, -1 if unbounded
	limit int64
}

func (c *contentReader) Read(p []byte) (int, error) {
	for {
		if c.limit == 0 {
			return 0, io.EOF
		}
		if c.current == nil {
			if len(c.segments) == 0 {
				return 0, io.EOF
			}
			if err := c.open(); err != nil {
				return 0, err
			}
		}
		if c.limit > 0 && int64(len(p)) > c.limit {
			p = p[:c.limit]
		}
		n, err := c.current.Read(p)
		if c.limit > 0 {
			c.limit -= int64(n)
		}
		if err == io.EOF {
			if cerr := c.closeCurrent(); cerr != nil {
				return n, cerr
			}
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *contentReader) open() error {
	s := c.segments[0]
	c.segments = c.segments[1:]
	if s.fill != nil {
		c.current = io.NopCloser(io.LimitReader(fillReader(*s.fill), s.length))
		return nil
	}
	rc, err := c.source.ReadExtent(s.offset, s.length)
	if err != nil {
		return errors.Wrapf(err, "could not read extent at %d", s.offset)
	}
	c.current = &exactReader{rc: rc, left: s.length}
	return nil
}

func (c *contentReader) closeCurrent() error {
	err := c.current.Close()
	c.current = nil
	return err
}

// Close releases the extent that is currently read.
func (c *contentReader) Close() error {
	c.segments = nil
	if c.current == nil {
		return nil
	}
	return c.closeCurrent()
}

type fillReader byte

func (f fillReader) Read(p []byte) (int, error) {
	copy(p, bytes.Repeat([]byte{byte(f)}, len(p)))
	return len(p), nil
}

// exactReader fails if an extent ends early.
type exactReader struct {
	rc   io.ReadCloser
	left int64
}

func (e *exactReader) Read(p []byte) (int, error) {
	if e.left == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > e.left {
		p = p[:e.left]
	}
	n, err := e.rc.Read(p)
	e.left -= int64(n)
	if err == io.EOF && e.left > 0 {
		return n, io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (e *exactReader) Close() error {
	return e.rc.Close()
}
