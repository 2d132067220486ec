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

// Package differ compares two manifests and produces a differential
// manifest. Every file and volume of the result is annotated as new,
// deleted, renamed, changed or modified, changed properties are marked and
// the earlier state is kept as original.
package differ

import (
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"github.com/forensicanalysis/dfxml"
)

// DocumentType is the Dublin Core type of differential manifests.
const DocumentType = "Disk image difference set"

// Manifest is an input of a differential.
type Manifest struct {
	Name   string
	Reader io.Reader
}

type optInt struct {
	v  int64
	ok bool
}

func someInt(i *int64) optInt {
	if i == nil {
		return optInt{}
	}
	return optInt{v: *i, ok: true}
}

type optString struct {
	v  string
	ok bool
}

func someString(s *string) optString {
	if s == nil {
		return optString{}
	}
	return optString{v: *s, ok: true}
}

type fileKey struct {
	partition optInt
	inode     optInt
	filename  optString
}

type volumeKey struct {
	offset int64
	ftype  string
}

type engine struct {
	cfg    *Config
	diag   *dfxml.Diagnostics
	ignore map[string]bool
	// ignoreVolume holds volume properties excluded from comparison
	ignoreVolume map[string]bool
	ignoreNames  map[string]bool
	legacy       map[string]bool

	out *dfxml.DFXMLObject

	volumeIDs   map[volumeKey]int64
	preVolumes  map[volumeKey]*dfxml.VolumeObject
	postVolumes map[volumeKey]*dfxml.VolumeObject
	ambiguous   map[volumeKey]bool

	oldFiles   map[fileKey]*dfxml.FileObject
	newFiles   map[fileKey]*dfxml.FileObject
	oldUnalloc map[fileKey][]*dfxml.FileObject
	newUnalloc map[fileKey][]*dfxml.FileObject

	preOrder  []*dfxml.FileObject
	postOrder []*dfxml.FileObject
	parents   map[*dfxml.FileObject]dfxml.Container
	report    map[*dfxml.FileObject]bool
}

// legacyProperties are the file properties compared in idifference mode.
var legacyProperties = []string{"filename", "filesize", "mode", "uid", "gid", "mtime", "atime", "ctime", "crtime", "md5", "sha1"}

// Diff compares the manifests pre and post and returns the differential.
// Both manifests are read as streams. Files of pre are indexed, files of
// post are matched as they arrive.
func Diff(pre, post Manifest, cfg *Config, diag *dfxml.Diagnostics) (*dfxml.DFXMLObject, error) {
	merged := DefaultConfig()
	if cfg != nil {
		c := *cfg
		if err := mergo.Merge(&c, merged); err != nil {
			return nil, errors.Wrap(err, "could not apply config defaults")
		}
		merged = &c
	}
	cfg = merged
	e := &engine{
		cfg:          cfg,
		diag:         diag,
		ignore:       toSet(cfg.Ignore),
		ignoreVolume: toSet(cfg.IgnoreVolumeProperties),
		ignoreNames:  toSet(cfg.IgnoreFilenames),
		out:          dfxml.NewDFXMLObject(),
		volumeIDs:    map[volumeKey]int64{},
		preVolumes:   map[volumeKey]*dfxml.VolumeObject{},
		postVolumes:  map[volumeKey]*dfxml.VolumeObject{},
		ambiguous:    map[volumeKey]bool{},
		oldFiles:     map[fileKey]*dfxml.FileObject{},
		newFiles:     map[fileKey]*dfxml.FileObject{},
		oldUnalloc:   map[fileKey][]*dfxml.FileObject{},
		newUnalloc:   map[fileKey][]*dfxml.FileObject{},
		parents:      map[*dfxml.FileObject]dfxml.Container{},
		report:       map[*dfxml.FileObject]bool{},
	}
	if cfg.Mode == ModeIDifference {
		e.legacy = toSet(legacyProperties)
	}

	e.out.DC["type"] = DocumentType
	e.out.Sources = []string{pre.Name, post.Name}
	for p := range e.ignore {
		e.out.AddDiffFileIgnore(p)
	}

	if err := e.index(pre); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", pre.Name)
	}
	if err := e.match(post); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", post.Name)
	}
	e.renames()
	e.reusedInodes()
	e.unallocated()
	if err := e.finish(); err != nil {
		return nil, err
	}
	return e.out, nil
}

func toSet(l []string) map[string]bool {
	s := map[string]bool{}
	for _, i := range l {
		s[i] = true
	}
	return s
}

func (e *engine) inheritNamespaces(doc *dfxml.DFXMLObject) {
	for prefix, uri := range doc.Namespaces {
		e.out.AddNamespace(prefix, uri)
	}
}

func (e *engine) volumeKey(v *dfxml.VolumeObject) (volumeKey, error) {
	if v.PartitionOffset == nil {
		return volumeKey{}, errors.New("volume without partition_offset, use ignore_volumes to compare it")
	}
	key := volumeKey{offset: *v.PartitionOffset}
	if v.FtypeStr != nil {
		key.ftype = strings.ToLower(*v.FtypeStr)
	}
	if _, ok := e.volumeIDs[key]; !ok {
		e.volumeIDs[key] = int64(len(e.volumeIDs) + 1)
	}
	return key, nil
}

// partition returns the normalized partition number of a file.
func (e *engine) partition(f *dfxml.FileObject) *int64 {
	if e.cfg.IgnoreVolumes {
		return f.Partition
	}
	v := f.VolumeObject()
	if v == nil || v.PartitionOffset == nil {
		return f.Partition
	}
	key := volumeKey{offset: *v.PartitionOffset}
	if v.FtypeStr != nil {
		key.ftype = strings.ToLower(*v.FtypeStr)
	}
	id, ok := e.volumeIDs[key]
	if !ok {
		return f.Partition
	}
	return &id
}

func (e *engine) fileKey(f *dfxml.FileObject) fileKey {
	var k fileKey
	if !e.ignore["partition"] {
		k.partition = someInt(f.Partition)
	}
	if !e.ignore["inode"] {
		k.inode = someInt(f.Inode)
	}
	if !e.ignore["filename"] {
		k.filename = someString(f.Filename)
	}
	return k
}

func (e *engine) ignorable(f *dfxml.FileObject) bool {
	if f.Filename == nil {
		return false
	}
	return e.ignoreNames[*f.Filename] || e.ignoreNames[path.Base(*f.Filename)]
}

// prepare normalizes a file before indexing. It returns false for files
// that take no part in the differential.
func (e *engine) prepare(f *dfxml.FileObject) bool {
	if e.ignorable(f) {
		return false
	}
	f.Partition = e.partition(f)
	if e.cfg.GlomByteRuns {
		f.GlomByteRuns()
	}
	return true
}

// allocated treats files of unknown allocation as allocated.
func allocated(f *dfxml.FileObject) bool {
	a := f.IsAllocated()
	return a == nil || *a
}

func (e *engine) index(m Manifest) error {
	reader := dfxml.NewReader(m.Reader, e.diag)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch o := ev.Object.(type) {
		case *dfxml.DFXMLObject:
			if ev.Phase == dfxml.Start {
				e.inheritNamespaces(o)
			}
		case *dfxml.VolumeObject:
			if ev.Phase != dfxml.Start || e.cfg.IgnoreVolumes {
				continue
			}
			key, err := e.volumeKey(o)
			if err != nil {
				return err
			}
			if _, ok := e.preVolumes[key]; ok {
				e.diag.Warnf("ambiguous-volume", "volume at offset %d (%s) appears twice in %s and is not compared", key.offset, key.ftype, m.Name)
				e.ambiguous[key] = true
				continue
			}
			e.preVolumes[key] = o
		case *dfxml.FileObject:
			if !e.prepare(o) {
				continue
			}
			e.preOrder = append(e.preOrder, o)
			key := e.fileKey(o)
			if !allocated(o) {
				e.oldUnalloc[key] = append(e.oldUnalloc[key], o)
				continue
			}
			if _, ok := e.oldFiles[key]; ok {
				e.diag.Warnf("duplicate-file", "file %s appears twice in %s", describe(o), m.Name)
			}
			e.oldFiles[key] = o
		}
	}
}

func (e *engine) match(m Manifest) error {
	reader := dfxml.NewReader(m.Reader, e.diag)
	var stack []dfxml.Container
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if c, ok := ev.Object.(dfxml.Container); ok {
			if ev.Phase == dfxml.End {
				if v, ok := c.(*dfxml.VolumeObject); ok && v.Original != nil {
					if len(v.CompareToOriginal(e.ignoreVolume)) > 0 {
						v.AddAnno(dfxml.AnnoModified)
					}
				}
				stack = stack[:len(stack)-1]
				continue
			}
			if doc, ok := c.(*dfxml.DFXMLObject); ok {
				e.inheritNamespaces(doc)
				stack = append(stack, e.out)
				continue
			}
			if v, ok := c.(*dfxml.VolumeObject); ok {
				if err := e.matchVolume(v, m.Name); err != nil {
					return err
				}
			}
			if err := stack[len(stack)-1].AppendChild(c); err != nil {
				return err
			}
			stack = append(stack, c)
			continue
		}

		if cell, ok := ev.Object.(*dfxml.CellObject); ok {
			if e.cfg.RetainUnchanged {
				if err := stack[len(stack)-1].AppendChild(cell); err != nil {
					return err
				}
			}
			continue
		}
		f, ok := ev.Object.(*dfxml.FileObject)
		if !ok || !e.prepare(f) {
			continue
		}
		e.postOrder = append(e.postOrder, f)
		e.parents[f] = stack[len(stack)-1]
		key := e.fileKey(f)
		if !allocated(f) {
			e.newUnalloc[key] = append(e.newUnalloc[key], f)
			continue
		}
		if old, ok := e.oldFiles[key]; ok {
			delete(e.oldFiles, key)
			e.compare(f, old, false)
			continue
		}
		if _, ok := e.newFiles[key]; ok {
			e.diag.Warnf("duplicate-file", "file %s appears twice in %s", describe(f), m.Name)
		}
		e.newFiles[key] = f
	}
}

func (e *engine) matchVolume(v *dfxml.VolumeObject, name string) error {
	if e.cfg.IgnoreVolumes {
		return nil
	}
	key, err := e.volumeKey(v)
	if err != nil {
		return err
	}
	if _, ok := e.postVolumes[key]; ok {
		e.diag.Warnf("ambiguous-volume", "volume at offset %d (%s) appears twice in %s and is not compared", key.offset, key.ftype, name)
		e.ambiguous[key] = true
		return nil
	}
	e.postVolumes[key] = v

	if e.ambiguous[key] {
		return nil
	}
	old, ok := e.preVolumes[key]
	if !ok {
		v.AddAnno(dfxml.AnnoNew)
		return nil
	}
	delete(e.preVolumes, key)
	v.Original = old
	if e.cfg.AnnotateMatches {
		v.AddAnno(dfxml.AnnoMatched)
	}
	return nil
}

// compare links post to its pre-image counterpart and annotates the
// differences. It returns false if post is unchanged.
func (e *engine) compare(post, pre *dfxml.FileObject, renamed bool) bool {
	post.Original = pre
	diffs := e.diffs(post, pre)
	post.SetDiffs(diffs)

	if renamed {
		post.AddAnno(dfxml.AnnoRenamed)
	}
	for d := range diffs {
		switch {
		case dfxml.IsHashProperty(d):
			post.AddAnno(dfxml.AnnoModified)
		case renamed && d == "filename":
		default:
			post.AddAnno(dfxml.AnnoChanged)
		}
	}
	if e.cfg.AnnotateMatches {
		post.AddAnno(dfxml.AnnoMatched)
	}

	changed := renamed || len(diffs) > 0
	if changed || e.cfg.RetainUnchanged {
		e.report[post] = true
	}
	return changed
}

// diffs compares two files, restricted to the legacy property set in
// idifference mode.
func (e *engine) diffs(post, pre *dfxml.FileObject) map[string]bool {
	diffs := post.CompareToOther(pre, e.ignore)
	if e.legacy != nil {
		for d := range diffs {
			if !e.legacy[d] {
				delete(diffs, d)
			}
		}
	}
	return diffs
}

// renames pairs unmatched allocated files by partition and inode.
func (e *engine) renames() {
	if e.ignore["inode"] {
		return
	}
	type inodeKey struct{ partition, inode optInt }
	group := func(files map[fileKey]*dfxml.FileObject) map[inodeKey][]fileKey {
		g := map[inodeKey][]fileKey{}
		for k, f := range files {
			if f.Inode == nil || pseudoEntry(f) {
				continue
			}
			ik := inodeKey{k.partition, k.inode}
			g[ik] = append(g[ik], k)
		}
		return g
	}
	olds, news := group(e.oldFiles), group(e.newFiles)

	for ik, newKeys := range news {
		oldKeys := olds[ik]
		if len(newKeys) != 1 || len(oldKeys) != 1 {
			if len(oldKeys) > 0 && len(newKeys) > 0 {
				e.diag.Warnf("ambiguous-rename", "inode %d is shared by several files and is not checked for renames", ik.inode.v)
			}
			continue
		}
		post, pre := e.newFiles[newKeys[0]], e.oldFiles[oldKeys[0]]
		if e.cfg.RenameRequiresHash && !sameContent(pre, post) {
			continue
		}
		delete(e.newFiles, newKeys[0])
		delete(e.oldFiles, oldKeys[0])
		e.compare(post, pre, true)
	}
}

// pseudoEntry reports directory self and parent entries.
func pseudoEntry(f *dfxml.FileObject) bool {
	if f.Filename == nil {
		return false
	}
	name := path.Base(*f.Filename)
	return name == "." || name == ".."
}

func sameContent(a, b *dfxml.FileObject) bool {
	common := false
	for _, name := range dfxml.HashNames {
		ha, hb := a.Hash(name), b.Hash(name)
		if ha == nil || hb == nil {
			continue
		}
		if !strings.EqualFold(*ha, *hb) {
			return false
		}
		common = true
	}
	return common
}

// reusedInodes pairs unmatched allocated files by partition and filename.
// A match means the path was recreated with a new inode.
func (e *engine) reusedInodes() {
	if e.ignore["filename"] {
		return
	}
	type nameKey struct {
		partition optInt
		filename  optString
	}
	group := func(files map[fileKey]*dfxml.FileObject) map[nameKey][]fileKey {
		g := map[nameKey][]fileKey{}
		for k := range files {
			if !k.filename.ok {
				continue
			}
			nk := nameKey{k.partition, k.filename}
			g[nk] = append(g[nk], k)
		}
		return g
	}
	olds, news := group(e.oldFiles), group(e.newFiles)

	for nk, newKeys := range news {
		oldKeys := olds[nk]
		if len(newKeys) != 1 || len(oldKeys) != 1 {
			if len(oldKeys) > 0 && len(newKeys) > 0 {
				e.diag.Warnf("ambiguous-name", "%s is shared by several files and is not checked for inode reuse", nk.filename.v)
			}
			continue
		}
		post, pre := e.newFiles[newKeys[0]], e.oldFiles[oldKeys[0]]
		delete(e.newFiles, newKeys[0])
		delete(e.oldFiles, oldKeys[0])
		e.compare(post, pre, false)
	}
}

// unallocated reconciles files that are unallocated in either image. A key
// is only matched if it holds exactly one candidate on each side. A match
// against an allocated file of the pre-image marks the file as deleted.
func (e *engine) unallocated() {
	for key, news := range e.newUnalloc {
		if len(news) != 1 {
			e.diag.Warnf("ambiguous-unallocated", "%d unallocated files share the key of %s", len(news), describe(news[0]))
			continue
		}
		post := news[0]
		if olds := e.oldUnalloc[key]; len(olds) > 0 {
			if len(olds) != 1 {
				e.diag.Warnf("ambiguous-unallocated", "%d unallocated files share the key of %s", len(olds), describe(olds[0]))
				continue
			}
			delete(e.oldUnalloc, key)
			delete(e.newUnalloc, key)
			e.compare(post, olds[0], false)
			continue
		}
		if pre, ok := e.oldFiles[key]; ok {
			delete(e.oldFiles, key)
			delete(e.newUnalloc, key)
			post.Original = pre
			post.SetDiffs(e.diffs(post, pre))
			post.AddAnno(dfxml.AnnoDeleted)
			if e.cfg.AnnotateMatches {
				post.AddAnno(dfxml.AnnoMatched)
			}
			e.report[post] = true
		}
	}

	// files allocated again
	for key, post := range e.newFiles {
		olds := e.oldUnalloc[key]
		if len(olds) == 0 {
			continue
		}
		if len(olds) != 1 {
			e.diag.Warnf("ambiguous-unallocated", "%d unallocated files share the key of %s", len(olds), describe(olds[0]))
			continue
		}
		delete(e.oldUnalloc, key)
		delete(e.newFiles, key)
		e.compare(post, olds[0], false)
	}
}

// finish links the reported files into the output and adds placeholders
// for deleted files and volumes.
func (e *engine) finish() error {
	for _, f := range e.newFiles {
		f.AddAnno(dfxml.AnnoNew)
		e.report[f] = true
	}
	for _, files := range e.newUnalloc {
		for _, f := range files {
			f.AddAnno(dfxml.AnnoNew)
			e.report[f] = true
		}
	}
	for _, f := range e.postOrder {
		if !e.report[f] {
			continue
		}
		if err := e.parents[f].AppendChild(f); err != nil {
			return err
		}
	}

	deletedVolumes := map[*dfxml.VolumeObject]*dfxml.VolumeObject{}
	for _, key := range e.sortedPreVolumeKeys() {
		old := e.preVolumes[key]
		if e.ambiguous[key] {
			continue
		}
		v := dfxml.NewVolumeObject()
		v.Original = old
		v.AddAnno(dfxml.AnnoDeleted)
		if err := e.out.AppendChild(v); err != nil {
			return err
		}
		deletedVolumes[old] = v
	}

	stillOld := map[*dfxml.FileObject]bool{}
	for _, f := range e.oldFiles {
		stillOld[f] = true
	}
	for _, files := range e.oldUnalloc {
		for _, f := range files {
			stillOld[f] = true
		}
	}
	for _, pre := range e.preOrder {
		if !stillOld[pre] {
			continue
		}
		placeholder := dfxml.NewFileObject()
		placeholder.Original = pre
		placeholder.AddAnno(dfxml.AnnoDeleted)
		if err := e.placeholderParent(pre, deletedVolumes).AppendChild(placeholder); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) sortedPreVolumeKeys() []volumeKey {
	keys := make([]volumeKey, 0, len(e.preVolumes))
	for key := range e.preVolumes {
		keys = append(keys, key)
	}
	// volume ids follow encounter order
	sort.Slice(keys, func(i, j int) bool { return e.volumeIDs[keys[i]] < e.volumeIDs[keys[j]] })
	return keys
}

func (e *engine) placeholderParent(pre *dfxml.FileObject, deletedVolumes map[*dfxml.VolumeObject]*dfxml.VolumeObject) dfxml.Container {
	v := pre.VolumeObject()
	if v == nil || e.cfg.IgnoreVolumes {
		return e.out
	}
	if deleted, ok := deletedVolumes[v]; ok {
		return deleted
	}
	if v.PartitionOffset != nil {
		key := volumeKey{offset: *v.PartitionOffset}
		if v.FtypeStr != nil {
			key.ftype = strings.ToLower(*v.FtypeStr)
		}
		if post, ok := e.postVolumes[key]; ok {
			return post
		}
	}
	return e.out
}

func describe(f *dfxml.FileObject) string {
	name := "<unnamed>"
	if f.Filename != nil {
		name = *f.Filename
	}
	if f.Inode != nil {
		return name + " (inode " + strconv.FormatInt(*f.Inode, 10) + ")"
	}
	return name
}
