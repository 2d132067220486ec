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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func stdout(f func()) []byte {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r) // nolint
		outC <- buf.Bytes()
	}()

	f()

	w.Close()
	os.Stdout = old
	return <-outC
}

// setup serves the test manifests from a memory file system.
func setup(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range []string{"nested.xml", "pre.xml", "post.xml"} {
		b, err := os.ReadFile(filepath.Join("..", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fs, name, b, 0644))
	}
	old := appFS
	appFS = fs
	t.Cleanup(func() { appFS = old })
	return fs
}

func run(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	require.NoError(t, cmd.Flags().Parse(args))
	var err error
	output := stdout(func() {
		err = cmd.RunE(cmd, args)
	})
	return string(output), err
}

func Test_lsCommand(t *testing.T) {
	setup(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"ls", []string{"nested.xml"}, "-\t10\talloc\t5\ta.txt\n-\t11\tunalloc\t0\tb.txt\n", false},
		{"ls missing", []string{"missing.xml"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, Ls(), tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Ls() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_summaryCommand(t *testing.T) {
	setup(t)
	_, err := run(t, Diff(), []string{"pre.xml", "post.xml", "-o", "diff.xml.zst"})
	require.NoError(t, err)

	got, err := run(t, Summary(), []string{"diff.xml.zst", "--json"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, gjson.Get(got, "files.deleted").Int())
	assert.EqualValues(t, 11, gjson.Get(got, "bytes.deleted").Int())
	assert.EqualValues(t, 1, gjson.Get(got, "changed_properties.md5").Int())
	assert.EqualValues(t, 0, gjson.Get(got, "unannotated").Int())

	got, err = run(t, Summary(), []string{"diff.xml.zst"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "files:\n"))
	assert.Contains(t, got, "11 B")
	assert.Contains(t, got, "changed properties:")
	assert.NotContains(t, got, "volumes:")
}

func Test_sortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"mtime": 1, "filesize": 3, "atime": 1})
	assert.Equal(t, []string{"filesize", "atime", "mtime"}, got)
}
