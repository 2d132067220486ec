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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Timestamp property names of files.
const (
	Mtime    = "mtime"
	Atime    = "atime"
	Ctime    = "ctime"
	Crtime   = "crtime"
	Dtime    = "dtime"
	BkupTime = "bkup_time"
)

var precisionUnits = map[string]bool{"s": true, "ms": true, "us": true, "ns": true, "d": true}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Precision is the resolution of a timestamp, e.g. 100ns or 2s.
type Precision struct {
	Magnitude int64
	Unit      string
}

// ParsePrecision parses a prec attribute value. A bare unit has magnitude
// one, a bare number is counted in seconds.
func ParsePrecision(s string) (*Precision, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	p := &Precision{Magnitude: 1, Unit: "s"}
	digits := s
	if i >= 0 {
		digits, p.Unit = s[:i], s[i:]
	}
	if digits != "" {
		m, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrTypeCoercion, "invalid precision %q", s)
		}
		p.Magnitude = m
	}
	if !precisionUnits[p.Unit] {
		return nil, errors.Wrapf(ErrTypeCoercion, "invalid precision unit in %q", s)
	}
	return p, nil
}

func (p Precision) String() string {
	return fmt.Sprintf("%d%s", p.Magnitude, p.Unit)
}

// TimestampObject is a named point in time with an optional precision.
type TimestampObject struct {
	Name string
	Time *time.Time
	Prec *Precision
}

// NewTimestamp creates a timestamp without precision.
func NewTimestamp(name string, t time.Time) *TimestampObject {
	return &TimestampObject{Name: name, Time: &t}
}

// ParseTimestamp creates a timestamp from its text and prec attribute.
// Timestamps without zone are read as UTC.
func ParseTimestamp(name, text, prec string) (*TimestampObject, error) {
	p, err := ParsePrecision(prec)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		if p == nil {
			return nil, nil
		}
		return &TimestampObject{Name: name, Prec: p}, nil
	}

	t, err := parseTime(text)
	if err != nil {
		return nil, errors.Wrapf(ErrTypeCoercion, "invalid %s timestamp %q", name, text)
	}
	return &TimestampObject{Name: name, Time: &t, Prec: p}, nil
}

func parseTime(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	if secs, err := strconv.ParseInt(text, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, errors.New("unknown time format")
}

func (t *TimestampObject) isNull() bool {
	return t == nil || (t.Time == nil && t.Prec == nil)
}

// Equal reports whether both timestamps have the same name, precision and
// instant.
func (t *TimestampObject) Equal(o *TimestampObject) bool {
	if t.isNull() || o.isNull() {
		return t.isNull() && o.isNull()
	}
	if t.Name != o.Name {
		return false
	}
	if (t.Prec == nil) != (o.Prec == nil) || (t.Prec != nil && *t.Prec != *o.Prec) {
		return false
	}
	if t.Time == nil || o.Time == nil {
		return t.Time == nil && o.Time == nil
	}
	return t.Time.Equal(*o.Time)
}

// Compare orders timestamps by instant. Null timestamps sort before all
// others.
func (t *TimestampObject) Compare(o *TimestampObject) int {
	var a, b *time.Time
	if t != nil {
		a = t.Time
	}
	if o != nil {
		b = o.Time
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

// Less reports whether t sorts before o.
func (t *TimestampObject) Less(o *TimestampObject) bool {
	return t.Compare(o) < 0
}

func (t *TimestampObject) String() string {
	if t == nil || t.Time == nil {
		return ""
	}
	return t.Time.Format(time.RFC3339Nano)
}
