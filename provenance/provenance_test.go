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

package provenance

import (
	"bytes"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/dfxml"
)

func fixedHost(t *testing.T, info *host.InfoStat, err error) {
	t.Helper()
	oldInfo, oldNow := hostInfo, now
	hostInfo = func() (*host.InfoStat, error) { return info, err }
	now = func() time.Time { return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { hostInfo, now = oldInfo, oldNow })
}

func TestEnvironment(t *testing.T) {
	tests := []struct {
		name string
		info *host.InfoStat
		err  error
		want dfxml.ExecutionEnvironment
	}{
		{
			"host info",
			&host.InfoStat{OS: "linux", KernelVersion: "5.10.0", Platform: "debian", PlatformVersion: "11", Hostname: "lab", KernelArch: "x86_64"},
			nil,
			dfxml.ExecutionEnvironment{OSSysname: "linux", OSRelease: "5.10.0", OSVersion: "debian 11", Host: "lab", Arch: "x86_64"},
		},
		{
			"no host info",
			nil,
			errors.New("not supported"),
			dfxml.ExecutionEnvironment{OSSysname: runtime.GOOS, Arch: runtime.GOARCH},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixedHost(t, tt.info, tt.err)
			got := Environment([]string{"dfxml", "diff", "a.xml", "b.xml"})

			assert.Equal(t, tt.want.OSSysname, got.OSSysname)
			assert.Equal(t, tt.want.OSRelease, got.OSRelease)
			assert.Equal(t, tt.want.OSVersion, got.OSVersion)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Arch, got.Arch)
			assert.Equal(t, "2020-01-02T03:04:05Z", got.StartTime)
			assert.Equal(t, "dfxml diff a.xml b.xml", got.CommandLine)
		})
	}
}

func TestStamp(t *testing.T) {
	fixedHost(t, &host.InfoStat{OS: "linux", Hostname: "lab"}, nil)

	doc := dfxml.NewDFXMLObject()
	Stamp(doc, "dfxml", "1.0.0", []string{"dfxml", "cat"})
	assert.Equal(t, "dfxml", doc.Program)
	assert.Equal(t, "1.0.0", doc.ProgramVersion)
	require.Len(t, doc.Libraries, 1)
	assert.Equal(t, "go", doc.Libraries[0].Name)

	var buf bytes.Buffer
	require.NoError(t, dfxml.Encode(&buf, doc))
	assert.Contains(t, buf.String(), "<host>lab</host>")
	assert.Contains(t, buf.String(), "<command_line>dfxml cat</command_line>")

	again, err := dfxml.Parse(&buf, nil)
	require.NoError(t, err)
	require.NotNil(t, again.ExecutionEnvironment)
	assert.Equal(t, "lab", again.ExecutionEnvironment.Host)
	assert.Equal(t, "1.0.0", again.ProgramVersion)
}
