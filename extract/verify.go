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
	"crypto/md5"  // #nosec
	"crypto/sha1" // #nosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/forensicanalysis/dfxml"
)

// ErrNoHashes is returned for files without supported digests.
var ErrNoHashes = errors.New("file has no recorded digests")

var hashFuncs = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// Mismatch is a digest that differs from the extracted content.
type Mismatch struct {
	Algorithm string
	Recorded  string
	Computed  string
}

// Verify extracts f and compares the content with all recorded digests.
func Verify(f *dfxml.FileObject, r ExtentReader) ([]Mismatch, error) {
	recorded := f.Hashes()
	hashes := map[string]hash.Hash{}
	var writers []io.Writer
	for name := range recorded {
		newHash, ok := hashFuncs[name]
		if !ok {
			continue
		}
		h := newHash()
		hashes[name] = h
		writers = append(writers, h)
	}
	if len(hashes) == 0 {
		return nil, ErrNoHashes
	}

	content, err := Contents(f, r)
	if err != nil {
		return nil, err
	}
	defer content.Close()
	if _, err := io.Copy(io.MultiWriter(writers...), content); err != nil {
		return nil, errors.Wrap(err, "could not read content")
	}

	var mismatches []Mismatch
	for name, h := range hashes {
		computed := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(computed, recorded[name]) {
			mismatches = append(mismatches, Mismatch{Algorithm: name, Recorded: recorded[name], Computed: computed})
		}
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Algorithm < mismatches[j].Algorithm })
	return mismatches, nil
}
