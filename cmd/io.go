// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package cmd

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/forensicanalysis/dfxml"
)

// appFS is the file system manifests, configs and images are read from.
var appFS = afero.NewOsFs()

func diagnostics(debug bool) *dfxml.Diagnostics {
	diag := dfxml.NewDiagnostics(log.New(color.Error, color.YellowString("warning: "), 0))
	diag.Debug = debug
	return diag
}

type multiCloser struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openManifest opens a manifest for reading, "-" is stdin. Files ending in
// .zst or .gz are decompressed.
func openManifest(name string) (io.ReadCloser, error) {
	var f io.ReadCloser = os.Stdin
	if name != "-" {
		file, err := appFS.Open(name)
		if err != nil {
			return nil, err
		}
		f = file
	}

	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "could not read %s", name)
		}
		r := dec.IOReadCloser()
		return &multiCloser{Reader: r, closers: []io.Closer{r, f}}, nil
	case strings.HasSuffix(name, ".gz"):
		dec, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "could not read %s", name)
		}
		return &multiCloser{Reader: dec, closers: []io.Closer{dec, f}}, nil
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// createOutput creates an output file, "" and "-" are stdout. Files ending
// in .zst or .gz are compressed.
func createOutput(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := appFS.Create(name)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(name, ".zst"):
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "could not create %s", name)
		}
		return &multiCloser{Writer: enc, closers: []io.Closer{enc, f}}, nil
	case strings.HasSuffix(name, ".gz"):
		enc := gzip.NewWriter(f)
		return &multiCloser{Writer: enc, closers: []io.Closer{enc, f}}, nil
	}
	return f, nil
}
