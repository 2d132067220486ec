// Copyright (c) 2019 Siemens AG
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

// Package dfxml reads, writes and compares Digital Forensics XML manifests.
//
// A manifest describes the file system metadata of a disk image: volumes,
// the files they contain with their timestamps and hashes, the byte runs
// locating file contents in the image, and Windows Registry hives with their
// cells.
//
// Reading
//
// Manifests can be read as a whole with Parse or as a stream of events with a
// Reader. Streaming keeps memory bounded by the nesting depth of the
// manifest, file and cell objects are delivered complete with their End
// event:
//     r := dfxml.NewReader(f, nil)
//     for {
//         ev, err := r.Next()
//         if err == io.EOF {
//             break
//         }
//         ...
//     }
//
// Writing
//
// Encode writes a whole document, a Writer emits the same events a Reader
// produces so manifests can be filtered without being held in memory.
//
// Subpackages
//
// The differ package compares two manifests, extract reads file contents
// from images and checks their hashes, dfxmldb exports manifests to sqlite
// and provenance records the creating program and host.
package dfxml
