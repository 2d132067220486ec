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

// Package dfxml implements the dfxml command line tool with subcommands to
// read, compare and check DFXML manifests.
//     cat      Re-serialize a manifest
//     ls       List the file objects of a manifest
//     diff     Compare two manifests and write a differential manifest
//     summary  Count the annotations of a differential manifest
//     export   Write the objects of a manifest into a sqlite database
//     verify   Check the recorded hashes against a disk image
//
// Usage
//
// Compare two manifests
//     dfxml diff --ignore atime pre.xml post.xml -o diff.xml.zst
// Summarize the differences
//     dfxml summary diff.xml.zst
// Verify a manifest against its image
//     dfxml verify disk.xml disk.raw
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dfxml/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "dfxml",
		Short:   "Handle DFXML manifests",
		Version: cmd.Version,
	}
	rootCmd.AddCommand(cmd.Cat(), cmd.Ls(), cmd.Diff(), cmd.Summary(), cmd.Export(), cmd.Verify())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
