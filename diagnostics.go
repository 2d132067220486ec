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
	"log"
	"sync"
)

// Diagnostics collects warnings of a parse or diff run. Every warning key
// is logged once. A nil *Diagnostics logs every warning through the
// standard logger.
type Diagnostics struct {
	sync.Mutex
	Logger *log.Logger
	Debug  bool
	warned map[string]int
}

// NewDiagnostics creates diagnostics writing to logger. A nil logger uses
// the standard logger.
func NewDiagnostics(logger *log.Logger) *Diagnostics {
	return &Diagnostics{
		Logger: logger,
		warned: map[string]int{},
	}
}

// Warnf logs a warning unless a warning with the same key was logged
// before.
func (d *Diagnostics) Warnf(key, format string, args ...interface{}) {
	if d == nil {
		log.Printf(format, args...)
		return
	}

	d.Lock()
	if d.warned == nil {
		d.warned = map[string]int{}
	}
	d.warned[key]++
	first := d.warned[key] == 1
	d.Unlock()

	if first {
		d.output(fmt.Sprintf(format, args...))
	}
}

// Debugf logs a message if debugging is enabled.
func (d *Diagnostics) Debugf(format string, args ...interface{}) {
	if d == nil || !d.Debug {
		return
	}
	d.output(fmt.Sprintf(format, args...))
}

// Warnings returns how often each warning key was raised.
func (d *Diagnostics) Warnings() map[string]int {
	if d == nil {
		return nil
	}
	d.Lock()
	defer d.Unlock()
	warnings := make(map[string]int, len(d.warned))
	for k, v := range d.warned {
		warnings[k] = v
	}
	return warnings
}

func (d *Diagnostics) output(msg string) {
	if d.Logger != nil {
		_ = d.Logger.Output(3, msg)
		return
	}
	_ = log.Output(3, msg)
}
