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

package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSectorSize is used by ImgCat if no sector size is set.
const DefaultSectorSize = 512

// ExitError is returned if the extraction command fails.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ImgCat reads extents with the img_cat tool of The Sleuth Kit, so every
// image format supported by TSK can be read.
type ImgCat struct {
	Image      string
	SectorSize int64
	// Binary defaults to img_cat from PATH.
	Binary string
}

// ReadExtent runs img_cat for the sectors that contain the extent.
func (c *ImgCat) ReadExtent(offset, length int64) (io.ReadCloser, error) {
	if offset < 0 || length < 0 {
		return nil, errors.Errorf("invalid extent %d+%d", offset, length)
	}
	if length == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	sectorSize := c.SectorSize
	if sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	binary := c.Binary
	if binary == "" {
		binary = "img_cat"
	}

	first := offset / sectorSize
	last := (offset + length - 1) / sectorSize
	args := []string{
		"-b", strconv.FormatInt(sectorSize, 10),
		"-s", strconv.FormatInt(first, 10),
		"-e", strconv.FormatInt(last, 10),
		c.Image,
	}
	cmd := exec.Command(binary, args...) // #nosec
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "could not start %s", binary)
	}

	p := &process{cmd: cmd, stderr: stderr, out: bufio.NewReader(stdout)}
	if _, err := p.out.Discard(int(offset - first*sectorSize)); err != nil {
		if werr := p.wait(); werr != nil {
			return nil, werr
		}
		return nil, errors.Wrap(err, "extent starts behind image end")
	}
	p.left = length
	return p, nil
}

type process struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	out    *bufio.Reader
	left   int64
	done   bool
}

func (p *process) Read(b []byte) (int, error) {
	if p.left == 0 {
		return 0, io.EOF
	}
	if int64(len(b)) > p.left {
		b = b[:p.left]
	}
	n, err := p.out.Read(b)
	p.left -= int64(n)
	if err == io.EOF {
		if werr := p.wait(); werr != nil {
			return n, werr
		}
		if p.left > 0 {
			return n, io.ErrUnexpectedEOF
		}
	}
	return n, err
}

// wait reaps the finished process.
func (p *process) wait() error {
	if p.done {
		return nil
	}
	p.done = true
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Command: strings.Join(p.cmd.Args, " "),
			Code:    exitErr.ExitCode(),
			Stderr:  strings.TrimSpace(p.stderr.String()),
		}
	}
	return err
}

// Close stops the process if it still runs.
func (p *process) Close() error {
	if p.done {
		return nil
	}
	p.done = true
	_ = p.cmd.Process.Kill()
	_ = p.cmd.Wait()
	return nil
}
