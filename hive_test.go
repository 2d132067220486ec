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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellObject_Validation(t *testing.T) {
	type step struct {
		property string
		value    interface{}
	}
	tests := []struct {
		name    string
		steps   []step
		wantErr bool
	}{
		{"key with mtime", []step{{"name_type", "k"}, {Mtime, "2010-01-01T00:00:00Z"}, {"root", "1"}}, false},
		{"value without mtime", []step{{"name_type", "v"}, {"data", "1"}}, false},
		{"value with mtime", []step{{"name_type", "v"}, {Mtime, "2010-01-01T00:00:00Z"}}, true},
		{"mtime before value", []step{{Mtime, "2010-01-01T00:00:00Z"}, {"name_type", "v"}}, true},
		{"value with root", []step{{"name_type", "v"}, {"root", "0"}}, true},
		{"unknown name type", []step{{"name_type", "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCellObject()
			var err error
			for _, s := range tt.steps {
				if err = c.SetProperty(s.property, s.value); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("SetProperty() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				assert.True(t, errors.Is(err, ErrInvalidCell) || errors.Is(err, ErrTypeCoercion))
			}
		})
	}
}

func TestCellObject_RejectedMutationKeepsState(t *testing.T) {
	c := NewCellObject()
	require.NoError(t, c.SetNameType(CellValue))
	require.Error(t, c.SetMtime("2010-01-01T00:00:00Z"))
	assert.Nil(t, c.Mtime())
	assert.Equal(t, CellValue, *c.NameType())
}

func TestHiveObject_AppendChild(t *testing.T) {
	h := NewHiveObject()
	assert.NoError(t, h.AppendChild(NewCellObject()))
	assert.Error(t, h.AppendChild(NewFileObject()))
	assert.Len(t, h.Cells(), 1)
	assert.Len(t, h.ChildObjects(), 1)
}
