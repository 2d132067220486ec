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

package dfxmldb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importFile(t *testing.T, db *DB, name string) int {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	count, err := db.Import(f, nil)
	require.NoError(t, err)
	return count
}

func TestDB_Import(t *testing.T) {
	url := filepath.Join(t.TempDir(), "manifest.db")
	db, err := Create(url)
	require.NoError(t, err)

	assert.Equal(t, 2, importFile(t, db, "../testdata/nested.xml"))

	volumes, err := db.Volumes()
	require.NoError(t, err)
	require.Len(t, volumes, 1)
	assert.EqualValues(t, 32256, volumes[0]["partition_offset"])
	assert.Equal(t, "volume walk incomplete", volumes[0]["error"])
	assert.True(t, strings.HasPrefix(volumes[0]["id"].(string), "volume--"))

	files, err := db.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	a := files[0]
	assert.Equal(t, "a.txt", a["filename"])
	assert.EqualValues(t, 0644, a["mode"])
	assert.EqualValues(t, 1, a["alloc_inode"])
	assert.Equal(t, "0123456789abcdef0123456789abcdef", a["md5"])
	assert.Contains(t, a["data_brs"], `"img_offset":40448`)
	assert.Equal(t, volumes[0]["id"], a["volume_id"])
	assert.True(t, strings.HasPrefix(a["id"].(string), "fileobject--"))
	assert.NotContains(t, a, "sha512")

	require.NoError(t, db.Close())

	db, err = Open(url)
	require.NoError(t, err)
	files, err = db.Files()
	require.NoError(t, err)
	assert.Len(t, files, 2)
	require.NoError(t, db.Close())
}

func TestDB_ImportDifferential(t *testing.T) {
	db, err := Create(filepath.Join(t.TempDir(), "diff.db"))
	require.NoError(t, err)
	defer db.Close()

	input := `<dfxml version="1.2.0" xmlns="http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML" xmlns:delta="http://www.forensicswiki.org/wiki/Forensic_Disk_Differencing">` +
		`<fileobject delta:changed_file="1" delta:modified_file="1"><filename>a</filename><filesize delta:changed_property="1">2</filesize></fileobject></dfxml>`
	count, err := db.Import(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	files, err := db.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "changed,modified", files[0]["annos"])
	assert.Equal(t, "filesize", files[0]["diffs"])
	assert.NotContains(t, files[0], "volume_id")
}

func TestDB_ImportError(t *testing.T) {
	db, err := Create(filepath.Join(t.TempDir(), "broken.db"))
	require.NoError(t, err)
	defer db.Close()

	input := `<dfxml xmlns="http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML"><fileobject><filename>a</filename></fileobject><fileobject><inode>x</inode></fileobject></dfxml>`
	_, err = db.Import(strings.NewReader(input), nil)
	assert.Error(t, err)

	files, err := db.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.db")
	db, err := Create(existing)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	other := filepath.Join(dir, "other.db")
	require.NoError(t, os.WriteFile(other, nil, 0600))

	tests := []struct {
		name    string
		open    func() (*DB, error)
		wantErr error
	}{
		{"create existing", func() (*DB, error) { return Create(existing) }, ErrDBExists},
		{"open missing", func() (*DB, error) { return Open(filepath.Join(dir, "missing.db")) }, ErrDBNotExists},
		{"open foreign", func() (*DB, error) { return Open(other) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.open()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}
