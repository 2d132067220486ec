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
)

func TestCoerceBool(t *testing.T) {
	type args struct {
		v interface{}
	}
	tests := []struct {
		name    string
		args    args
		want    *bool
		wantErr bool
	}{
		{"true", args{true}, boolPtr(true), false},
		{"string one", args{"1"}, boolPtr(true), false},
		{"string zero", args{"0"}, boolPtr(false), false},
		{"string false", args{"false"}, boolPtr(false), false},
		{"int one", args{1}, boolPtr(true), false},
		{"int zero", args{int64(0)}, boolPtr(false), false},
		{"nil", args{nil}, nil, false},
		{"empty", args{""}, nil, false},
		{"yes", args{"yes"}, nil, true},
		{"two", args{2}, nil, true},
		{"float", args{1.0}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceBool(tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("CoerceBool() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				assert.True(t, errors.Is(err, ErrTypeCoercion))
			}
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestCoerceInt(t *testing.T) {
	type args struct {
		v interface{}
	}
	tests := []struct {
		name    string
		args    args
		want    *int64
		wantErr bool
	}{
		{"int", args{42}, int64Ptr(42), false},
		{"uint32", args{uint32(7)}, int64Ptr(7), false},
		{"string", args{" 1024 "}, int64Ptr(1024), false},
		{"negative", args{"-1"}, int64Ptr(-1), false},
		{"empty", args{""}, nil, false},
		{"overflow", args{uint64(1 << 63)}, nil, true},
		{"bool", args{true}, nil, true},
		{"text", args{"ten"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceInt(tt.args.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("CoerceInt() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestCoerceMode(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{}
		want    *int64
		wantErr bool
	}{
		{"octal", "0644", int64Ptr(0644), false},
		{"octal prefix", "0o755", int64Ptr(0755), false},
		{"decimal", "420", int64Ptr(420), false},
		{"zero", "0", int64Ptr(0), false},
		{"native", 0755, int64Ptr(0755), false},
		{"invalid octal", "0999", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceMode(tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("CoerceMode() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{}
		want    *string
		wantErr bool
	}{
		{"string", "a.txt", stringPtr("a.txt"), false},
		{"bytes", []byte("b"), stringPtr("b"), false},
		{"int", 12, stringPtr("12"), false},
		{"empty", "", nil, false},
		{"bool", false, nil, true},
		{"float", 1.5, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceString(tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("CoerceString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.EqualValues(t, tt.want, got)
		})
	}
}
