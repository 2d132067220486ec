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

// State is a position of the reader in the container grammar of a manifest.
type State int

// Reader states.
const (
	InputStart State = iota
	DocumentStart
	DocumentPrestream
	DocumentPoststream
	DocumentEnd
	DiskImagePrestream
	DiskImagePoststream
	PartitionSystemPrestream
	PartitionSystemPoststream
	PartitionPrestream
	PartitionPoststream
	VolumePrestream
	VolumePoststream
	HivePrestream
	HivePoststream
	FileStart
	FileEnd
	CellStart
	CellEnd
)

var stateNames = map[State]string{
	InputStart:                "INPUT_START",
	DocumentStart:             "DOCUMENT_START",
	DocumentPrestream:         "DOCUMENT_PRESTREAM",
	DocumentPoststream:        "DOCUMENT_POSTSTREAM",
	DocumentEnd:               "DOCUMENT_END",
	DiskImagePrestream:        "DISK_IMAGE_PRESTREAM",
	DiskImagePoststream:       "DISK_IMAGE_POSTSTREAM",
	PartitionSystemPrestream:  "PARTITION_SYSTEM_PRESTREAM",
	PartitionSystemPoststream: "PARTITION_SYSTEM_POSTSTREAM",
	PartitionPrestream:        "PARTITION_PRESTREAM",
	PartitionPoststream:       "PARTITION_POSTSTREAM",
	VolumePrestream:           "VOLUME_PRESTREAM",
	VolumePoststream:          "VOLUME_POSTSTREAM",
	HivePrestream:             "HIVE_PRESTREAM",
	HivePoststream:            "HIVE_POSTSTREAM",
	FileStart:                 "FILE_START",
	FileEnd:                   "FILE_END",
	CellStart:                 "CELL_START",
	CellEnd:                   "CELL_END",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

var streamStates = map[Kind][2]State{
	KindDocument:        {DocumentPrestream, DocumentPoststream},
	KindDiskImage:       {DiskImagePrestream, DiskImagePoststream},
	KindPartitionSystem: {PartitionSystemPrestream, PartitionSystemPoststream},
	KindPartition:       {PartitionPrestream, PartitionPoststream},
	KindVolume:          {VolumePrestream, VolumePoststream},
	KindHive:            {HivePrestream, HivePoststream},
}

func prestreamState(k Kind) State  { return streamStates[k][0] }
func poststreamState(k Kind) State { return streamStates[k][1] }

// legalTransitions maps each state to the states that may follow it.
var legalTransitions = map[State]map[State]bool{}

func allow(from State, to ...State) {
	if legalTransitions[from] == nil {
		legalTransitions[from] = map[State]bool{}
	}
	for _, s := range to {
		legalTransitions[from][s] = true
	}
}

func init() {
	allow(InputStart, DocumentStart)
	allow(DocumentStart, DocumentPrestream)
	allow(DocumentPrestream, DocumentPoststream)
	allow(DocumentPoststream, DocumentEnd)

	// containers that may hold files and other containers
	parents := []State{DocumentPrestream, DiskImagePrestream, PartitionSystemPrestream, PartitionPrestream, VolumePrestream}
	children := []State{DiskImagePrestream, PartitionSystemPrestream, PartitionPrestream, VolumePrestream, HivePrestream}

	for _, p := range parents {
		allow(p, children...)
		allow(p, FileStart)
	}
	allow(FileStart, FileEnd)
	allow(FileEnd, parents...)

	allow(HivePrestream, CellStart)
	allow(CellStart, CellEnd)
	allow(CellEnd, HivePrestream)

	for _, k := range []Kind{KindDiskImage, KindPartitionSystem, KindPartition, KindVolume, KindHive} {
		allow(prestreamState(k), poststreamState(k))
		// a closing container returns to the prestream of its parent
		allow(prestreamState(k), parents...)
		allow(poststreamState(k), parents...)
	}
}

func isLegalTransition(from, to State) bool {
	return legalTransitions[from][to]
}
