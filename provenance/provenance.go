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

// Package provenance records which program created a manifest and on which
// host it ran.
package provenance

import (
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/forensicanalysis/dfxml"
)

var hostInfo = host.Info

var now = time.Now

// Stamp sets the creator of doc: program, version, the Go runtime as
// library and the execution environment of the current process.
func Stamp(doc *dfxml.DFXMLObject, program, version string, args []string) {
	doc.Program = program
	doc.ProgramVersion = version
	doc.AddLibrary("go", runtime.Version())
	doc.ExecutionEnvironment = Environment(args)
}

// Environment describes the current host. Fields that cannot be
// determined stay empty.
func Environment(args []string) *dfxml.ExecutionEnvironment {
	env := &dfxml.ExecutionEnvironment{
		OSSysname:   runtime.GOOS,
		Arch:        runtime.GOARCH,
		StartTime:   now().UTC().Format(time.RFC3339),
		CommandLine: strings.Join(args, " "),
	}
	if info, err := hostInfo(); err == nil {
		if info.OS != "" {
			env.OSSysname = info.OS
		}
		env.OSRelease = info.KernelVersion
		env.OSVersion = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		env.Host = info.Hostname
		if info.KernelArch != "" {
			env.Arch = info.KernelArch
		}
	}
	if u, err := user.Current(); err == nil {
		env.UID = u.Uid
		env.Username = u.Username
	}
	return env
}
