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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		name    string
		prec    string
		want    *Precision
		wantErr bool
	}{
		{"nanoseconds", "100ns", &Precision{100, "ns"}, false},
		{"seconds", "2s", &Precision{2, "s"}, false},
		{"bare unit", "ms", &Precision{1, "ms"}, false},
		{"bare number", "2", &Precision{2, "s"}, false},
		{"days", "1d", &Precision{1, "d"}, false},
		{"empty", "", nil, false},
		{"unknown unit", "3h", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrecision(tt.prec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePrecision() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    time.Time
		wantErr bool
	}{
		{"utc", "2010-01-01T00:00:00Z", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"offset", "2010-01-01T01:00:00+01:00", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"fraction", "2010-01-01T00:00:00.5Z", time.Date(2010, 1, 1, 0, 0, 0, 500000000, time.UTC), false},
		{"no zone", "2010-01-01T00:00:00", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"epoch", "1262304000", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(Mtime, tt.text, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimestamp() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil {
				assert.True(t, tt.want.Equal(*got.Time), "got %s", got)
			}
		})
	}
}

func TestTimestampObject_Equal(t *testing.T) {
	base := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := func(name string, t time.Time, prec *Precision) *TimestampObject {
		return &TimestampObject{Name: name, Time: &t, Prec: prec}
	}

	tests := []struct {
		name string
		a, b *TimestampObject
		want bool
	}{
		{"same", ts(Mtime, base, nil), ts(Mtime, base, nil), true},
		{"other zone", ts(Mtime, base, nil), ts(Mtime, base.In(time.FixedZone("x", 3600)), nil), true},
		{"other name", ts(Mtime, base, nil), ts(Atime, base, nil), false},
		{"other precision", ts(Mtime, base, &Precision{1, "s"}), ts(Mtime, base, &Precision{2, "s"}), false},
		{"other instant", ts(Mtime, base, nil), ts(Mtime, base.Add(time.Second), nil), false},
		{"both null", nil, &TimestampObject{Name: Mtime}, true},
		{"one null", nil, ts(Mtime, base, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestTimestampObject_Compare(t *testing.T) {
	early := NewTimestamp(Mtime, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	late := NewTimestamp(Mtime, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC))
	var null *TimestampObject

	assert.True(t, early.Less(late))
	assert.False(t, late.Less(early))
	assert.True(t, null.Less(early))
	assert.Equal(t, 0, null.Compare(&TimestampObject{Name: Mtime}))
	assert.Equal(t, 1, late.Compare(null))
}

func TestTimestampObject_String(t *testing.T) {
	ts, err := ParseTimestamp(Crtime, "2010-01-01T00:00:00.000000100Z", "100ns")
	require.NoError(t, err)
	assert.Equal(t, "2010-01-01T00:00:00.0000001Z", ts.String())
	assert.Equal(t, "100ns", ts.Prec.String())
}
