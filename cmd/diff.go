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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dfxml"
	"github.com/forensicanalysis/dfxml/differ"
	"github.com/forensicanalysis/dfxml/provenance"
)

type diffFlags struct {
	output             string
	config             string
	mode               string
	ignore             []string
	retainUnchanged    bool
	annotateMatches    bool
	renameRequiresHash bool
	ignoreVolumes      bool
	glom               bool
	debug              bool
}

// Diff is the dfxml diff commandline subcommand
func Diff() *cobra.Command {
	flags := &diffFlags{}
	diffCommand := &cobra.Command{
		Use:   "diff <pre> <post>",
		Short: "Compare two manifests and write the differential manifest",
		Args:  requireManifests(2, 2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			preName, postName := cmd.Flags().Args()[0], cmd.Flags().Args()[1]
			pre, err := openManifest(preName)
			if err != nil {
				return err
			}
			defer pre.Close()
			post, err := openManifest(postName)
			if err != nil {
				return err
			}
			defer post.Close()

			diag := diagnostics(flags.debug)
			doc, err := differ.Diff(differ.Manifest{Name: preName, Reader: pre}, differ.Manifest{Name: postName, Reader: post}, cfg, diag)
			if err != nil {
				return err
			}
			provenance.Stamp(doc, "dfxml", Version, os.Args)

			out, err := createOutput(flags.output)
			if err != nil {
				return err
			}
			if err := dfxml.Encode(out, doc); err != nil {
				out.Close() // nolint:errcheck
				return err
			}
			return out.Close()
		},
	}
	f := diffCommand.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (.zst and .gz are compressed)")
	f.StringVar(&flags.config, "config", "", "diff configuration file (json)")
	f.StringVar(&flags.mode, "mode", string(differ.ModeAll), "compared properties: all or idifference")
	f.StringArrayVar(&flags.ignore, "ignore", nil, "file property to ignore (repeatable)")
	f.BoolVar(&flags.retainUnchanged, "retain-unchanged", false, "keep unchanged files in the output")
	f.BoolVar(&flags.annotateMatches, "annotate-matches", false, "annotate matched files and volumes")
	f.BoolVar(&flags.renameRequiresHash, "rename-requires-hash", false, "only report renames of files with equal digests")
	f.BoolVar(&flags.ignoreVolumes, "ignore-volumes", false, "match files regardless of their volume")
	f.BoolVar(&flags.glom, "glom", false, "merge adjacent byte runs before comparison")
	f.BoolVar(&flags.debug, "debug", false, "print debug messages")
	return diffCommand
}

// load reads the configuration file. Flags that are set override it.
func (d *diffFlags) load(cmd *cobra.Command) (*differ.Config, error) {
	cfg := differ.DefaultConfig()
	if d.config != "" {
		var err error
		cfg, err = differ.LoadConfig(appFS, d.config)
		if err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("mode") {
		switch differ.Mode(d.mode) {
		case differ.ModeAll, differ.ModeIDifference:
			cfg.Mode = differ.Mode(d.mode)
		default:
			return nil, fmt.Errorf("unknown mode %s", d.mode)
		}
	}
	for _, p := range d.ignore {
		cfg.Ignore = append(cfg.Ignore, differ.NormalizeProperty(p))
	}
	for name, value := range map[string]*bool{
		"retain-unchanged":     &cfg.RetainUnchanged,
		"annotate-matches":     &cfg.AnnotateMatches,
		"rename-requires-hash": &cfg.RenameRequiresHash,
		"ignore-volumes":       &cfg.IgnoreVolumes,
		"glom":                 &cfg.GlomByteRuns,
	} {
		if set(name) {
			flag, _ := cmd.Flags().GetBool(name)
			*value = flag
		}
	}
	return cfg, nil
}
