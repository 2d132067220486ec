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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrTypeCoercion is returned if a value cannot be converted to the type of
// the property it is assigned to.
var ErrTypeCoercion = errors.New("type coercion failed")

// CoerceBool converts v to a nullable boolean. Accepted are booleans, the
// integers 0 and 1 and the strings "0", "1", "true" and "false". nil and the
// empty string are absent values.
func CoerceBool(v interface{}) (*bool, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return &v, nil
	case *bool:
		if v == nil {
			return nil, nil
		}
		b := *v
		return &b, nil
	case string:
		return parseBool(v)
	case *string:
		if v == nil {
			return nil, nil
		}
		return parseBool(*v)
	}

	i, err := CoerceInt(v)
	if err != nil {
		return nil, errors.Wrapf(ErrTypeCoercion, "cannot use %T as boolean", v)
	}
	if i == nil {
		return nil, nil
	}
	switch *i {
	case 0:
		return boolPtr(false), nil
	case 1:
		return boolPtr(true), nil
	}
	return nil, errors.Wrapf(ErrTypeCoercion, "%d is not a boolean", *i)
}

func parseBool(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "1", "true":
		return boolPtr(true), nil
	case "0", "false":
		return boolPtr(false), nil
	}
	return nil, errors.Wrapf(ErrTypeCoercion, "%q is not a boolean", s)
}

// CoerceInt converts v to a nullable integer. Strings are parsed as base 10.
func CoerceInt(v interface{}) (*int64, error) {
	var i int64
	switch v := v.(type) {
	case nil:
		return nil, nil
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint8:
		i = int64(v)
	case uint16:
		i = int64(v)
	case uint32:
		i = int64(v)
	case uint64:
		if v > 1<<63-1 {
			return nil, errors.Wrapf(ErrTypeCoercion, "%d overflows int64", v)
		}
		i = int64(v)
	case *int64:
		if v == nil {
			return nil, nil
		}
		i = *v
	case string:
		return parseInt(v, 10)
	case *string:
		if v == nil {
			return nil, nil
		}
		return parseInt(*v, 10)
	default:
		return nil, errors.Wrapf(ErrTypeCoercion, "cannot use %T as integer", v)
	}
	return &i, nil
}

// CoerceMode converts v to a nullable permission mode. Strings with a leading
// zero are parsed as octal, all other strings as decimal.
func CoerceMode(v interface{}) (*int64, error) {
	switch v := v.(type) {
	case string:
		return parseMode(v)
	case *string:
		if v == nil {
			return nil, nil
		}
		return parseMode(*v)
	}
	return CoerceInt(v)
}

func parseMode(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[0] == '0' {
		return parseInt(strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0"), 8)
	}
	return parseInt(s, 10)
}

func parseInt(s string, base int) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrTypeCoercion, "%q is not an integer", s)
	}
	return &i, nil
}

// CoerceString converts v to a nullable string. Integers are formatted in
// base 10, the empty string is an absent value.
func CoerceString(v interface{}) (*string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return &v, nil
	case *string:
		if v == nil || *v == "" {
			return nil, nil
		}
		s := *v
		return &s, nil
	case []byte:
		return CoerceString(string(v))
	case bool, *bool:
		return nil, errors.Wrapf(ErrTypeCoercion, "cannot use %T as string", v)
	}

	i, err := CoerceInt(v)
	if err != nil {
		return nil, errors.Wrapf(ErrTypeCoercion, "cannot use %T as string", v)
	}
	if i == nil {
		return nil, nil
	}
	s := strconv.FormatInt(*i, 10)
	return &s, nil
}

// CoerceTimestamp converts v to a named timestamp. Accepted are timestamps,
// time.Time values and strings in RFC 3339 form.
func CoerceTimestamp(name string, v interface{}) (*TimestampObject, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case *TimestampObject:
		if v == nil {
			return nil, nil
		}
		ts := *v
		ts.Name = name
		return &ts, nil
	case TimestampObject:
		v.Name = name
		return &v, nil
	case time.Time:
		return NewTimestamp(name, v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return NewTimestamp(name, *v), nil
	case string:
		return ParseTimestamp(name, v, "")
	}
	return nil, errors.Wrapf(ErrTypeCoercion, "cannot use %T as timestamp", v)
}

func boolPtr(b bool) *bool {
	return &b
}

func int64Ptr(i int64) *int64 {
	return &i
}

func stringPtr(s string) *string {
	return &s
}
