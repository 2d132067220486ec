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
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dfxml"
	"github.com/forensicanalysis/dfxml/dfxmldb"
	"github.com/forensicanalysis/dfxml/extract"
)

// Version of the dfxml commandline tool.
const Version = "0.1.0"

// Cat is the dfxml cat commandline subcommand
func Cat() *cobra.Command {
	var output string
	var glom, debug bool
	catCommand := &cobra.Command{
		Use:   "cat <manifest>",
		Short: "Parse and write a manifest again",
		Args:  requireManifests(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openManifest(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := createOutput(output)
			if err != nil {
				return err
			}
			if err := cat(in, out, glom, diagnostics(debug)); err != nil {
				out.Close() // nolint:errcheck
				return err
			}
			return out.Close()
		},
	}
	catCommand.Flags().StringVarP(&output, "output", "o", "", "output file (.zst and .gz are compressed)")
	catCommand.Flags().BoolVar(&glom, "glom", false, "merge adjacent byte runs")
	catCommand.Flags().BoolVar(&debug, "debug", false, "print debug messages")
	return catCommand
}

func cat(in io.Reader, out io.Writer, glom bool, diag *dfxml.Diagnostics) error {
	reader := dfxml.NewReader(in, diag)
	writer := dfxml.NewWriter(out)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return writer.Flush()
		}
		if err != nil {
			return err
		}

		c, isContainer := ev.Object.(dfxml.Container)
		switch {
		case ev.Phase == dfxml.Start:
			err = writer.WriteStart(c)
		case isContainer:
			err = writer.WriteEnd(c)
		default:
			if f, ok := ev.Object.(*dfxml.FileObject); ok && glom {
				f.GlomByteRuns()
			}
			err = writer.WriteObject(ev.Object)
		}
		if err != nil {
			return err
		}
	}
}

// Export is the dfxml export commandline subcommand
func Export() *cobra.Command {
	return &cobra.Command{
		Use:   "export <manifest> <database>",
		Short: "Export the volumes and files of a manifest into a sqlite database",
		Args:  requireManifests(2, 1), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openManifest(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			defer in.Close()

			dbName := cmd.Flags().Args()[1]
			db, err := dfxmldb.Create(dbName)
			if err != nil {
				return err
			}
			count, err := db.Import(in, diagnostics(false))
			if err != nil {
				db.Close() // nolint:errcheck
				return err
			}
			fmt.Printf("%d files exported to %s\n", count, dbName)
			return db.Close()
		},
	}
}

// Verify is the dfxml verify commandline subcommand
func Verify() *cobra.Command {
	var imgCat bool
	var sectorSize int64
	verifyCommand := &cobra.Command{
		Use:   "verify <manifest> <image>",
		Short: "Extract all files from the image and compare them with the recorded digests",
		Args:  requireManifests(2, 2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openManifest(cmd.Flags().Args()[0])
			if err != nil {
				return err
			}
			defer in.Close()

			imageName := cmd.Flags().Args()[1]
			var source extract.ExtentReader
			if imgCat {
				source = &extract.ImgCat{Image: imageName, SectorSize: sectorSize}
			} else {
				img, err := extract.OpenImage(appFS, imageName)
				if err != nil {
					return err
				}
				defer img.Close()
				source = img
			}
			return verify(in, source, diagnostics(false))
		},
	}
	verifyCommand.Flags().BoolVar(&imgCat, "img-cat", false, "read the image with img_cat")
	verifyCommand.Flags().Int64Var(&sectorSize, "sector-size", extract.DefaultSectorSize, "sector size for img_cat")
	return verifyCommand
}

func verify(in io.Reader, source extract.ExtentReader, diag *dfxml.Diagnostics) error {
	var verified, failed, skipped int
	reader := dfxml.NewReader(in, diag)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		f, ok := ev.Object.(*dfxml.FileObject)
		if !ok {
			continue
		}

		name := filename(f)
		mismatches, err := extract.Verify(f, source)
		switch {
		case errors.Is(err, extract.ErrNoHashes):
			skipped++
		case err != nil:
			fmt.Printf("ERROR\t%s\t%s\n", name, err)
			failed++
		case len(mismatches) > 0:
			for _, m := range mismatches {
				fmt.Printf("MISMATCH\t%s\t%s recorded %s computed %s\n", name, m.Algorithm, m.Recorded, m.Computed)
			}
			failed++
		default:
			fmt.Printf("OK\t%s\n", name)
			verified++
		}
	}

	fmt.Printf("%d verified, %d failed, %d without digests\n", verified, failed, skipped)
	if failed > 0 {
		return fmt.Errorf("%d files failed verification", failed)
	}
	return nil
}

func filename(f *dfxml.FileObject) string {
	if f.Filename == nil {
		return "-"
	}
	return *f.Filename
}

// requireManifests checks the argument count and that the first inputs
// arguments exist. "-" is stdin.
func requireManifests(n, inputs int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("requires exactly %d arguments", n)
		}
		for _, arg := range args[:inputs] {
			if arg == "-" {
				continue
			}
			if _, err := appFS.Stat(arg); os.IsNotExist(err) {
				return errors.Wrap(os.ErrNotExist, arg)
			}
		}
		return nil
	}
}
