// Copyright (c) 2019 Siemens AG
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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dfxml"
	"github.com/forensicanalysis/dfxml/differ"
)

// Ls is the dfxml ls commandline subcommand
func Ls() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <manifest>",
		Short: "List partition, inode, allocation, size and name of all files",
		Args:  requireManifests(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openManifest(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			defer in.Close()
			return ls(in, diagnostics(false))
		},
	}
}

func ls(in io.Reader, diag *dfxml.Diagnostics) error {
	reader := dfxml.NewReader(in, diag)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if f, ok := ev.Object.(*dfxml.FileObject); ok {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", optInt(f.Partition), optInt(f.Inode), allocation(f), optInt(f.Filesize), filename(f))
		}
	}
}

func optInt(i *int64) string {
	if i == nil {
		return "-"
	}
	return strconv.FormatInt(*i, 10)
}

func allocation(f *dfxml.FileObject) string {
	a := f.IsAllocated()
	switch {
	case a == nil:
		return "-"
	case *a:
		return "alloc"
	}
	return "unalloc"
}

// Summary is the dfxml summary commandline subcommand
func Summary() *cobra.Command {
	var asJSON bool
	summaryCommand := &cobra.Command{
		Use:   "summary <differential>",
		Short: "Count the annotations of a differential manifest",
		Args:  requireManifests(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openManifest(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			defer in.Close()

			summary, err := differ.Summarize(in, diagnostics(false))
			if err != nil {
				return err
			}
			if asJSON {
				b, _ := json.Marshal(summary)
				fmt.Printf("%s\n", b)
				return nil
			}
			printSummary(summary)
			return nil
		},
	}
	summaryCommand.Flags().BoolVar(&asJSON, "json", false, "print json")
	return summaryCommand
}

func printSummary(s *differ.Summary) {
	fmt.Println("files:")
	for _, anno := range s.Annotations() {
		fmt.Printf("  %-10s %8s  %s\n", anno, humanize.Comma(int64(s.Files[anno])), humanize.Bytes(uint64(s.Bytes[anno])))
	}
	fmt.Printf("  %-10s %8s\n", "unchanged", humanize.Comma(int64(s.Unannotated)))

	if len(s.Volumes) > 0 {
		fmt.Println("volumes:")
		for _, anno := range sortedCounts(s.Volumes) {
			fmt.Printf("  %-10s %8s\n", anno, humanize.Comma(int64(s.Volumes[anno])))
		}
	}

	if len(s.ChangedProperties) > 0 {
		fmt.Println("changed properties:")
		for _, p := range sortedCounts(s.ChangedProperties) {
			fmt.Printf("  %-16s %8s\n", p, humanize.Comma(int64(s.ChangedProperties[p])))
		}
	}
}

// sortedCounts returns the keys by descending count, ties by name.
func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
