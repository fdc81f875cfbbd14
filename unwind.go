//  Copyright (c) 2018 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the
//  License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing,
//  software distributed under the License is distributed on an "AS
//  IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
//  express or implied. See the License for the specific language
//  governing permissions and limitations under the License.

package threadstacks

import (
	"runtime"
	"strings"
)

// StackBufferSizeStart is the initial buffer size for the
// all-goroutine stack dump; the buffer is doubled until the dump
// fits, up to StackBufferSizeMax.
var StackBufferSizeStart = 256 * 1024

const StackBufferSizeMax = 1 << 28

// captureAllStacks returns the runtime's textual dump of every
// goroutine's stack, growing the buffer until the dump fits.
func captureAllStacks() []byte {
	for size := StackBufferSizeStart; size <= StackBufferSizeMax; size *= 2 {
		buf := make([]byte, size)
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
	}
	buf := make([]byte, StackBufferSizeMax)
	n := runtime.Stack(buf, true)
	return buf[:n]
}

// captureProfileRecords snapshots the goroutine profile, which
// supplies the per-frame instruction addresses that the textual dump
// lacks.  The count can race with goroutine creation, so retry with
// headroom until the profile fits, like runtime/pprof does; after 16
// attempts that do not fit, it returns nil.
func captureProfileRecords() []runtime.StackRecord {
	n := runtime.NumGoroutine()
	for i := 0; i < 16; i++ {
		records := make([]runtime.StackRecord, n+10+n/20)
		var ok bool
		n, ok = runtime.GoroutineProfile(records)
		if ok {
			return records[:n]
		}
	}
	return nil
}

// CaptureCurrent captures the calling goroutine's own stack through
// runtime.Callers, skipping the given number of frames beyond
// CaptureCurrent itself.  Frames carry real instruction addresses.
func CaptureCurrent(skip int) *ThreadStack {
	var pcs [MaxStackDepth]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	rv := stackFromPCs(pcs[:n])
	rv.ID = CurrentGoroutineID()
	rv.State = "running"
	return rv
}

// stackFromPCs expands a raw address sequence, such as one produced
// by runtime.Callers or a goroutine profile record, into frames.
func stackFromPCs(pcs []uintptr) *ThreadStack {
	rv := &ThreadStack{}
	if len(pcs) <= 0 {
		return rv
	}
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		rv.AddFrame(Frame{
			PC:       frame.PC,
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return rv
}

// ------------------------------------------------------------------

// The textual dump identifies goroutines but has no addresses; the
// profile has addresses but no goroutine ids.  The two snapshots are
// joined by the symbolized function sequence of each stack.

// addrIndex maps a function-sequence key to the unconsumed profile
// records carrying that stack.
type addrIndex map[string][][]uintptr

func buildAddrIndex(records []runtime.StackRecord) addrIndex {
	rv := addrIndex{}
	for i := range records {
		pcs := records[i].Stack()
		if len(pcs) <= 0 {
			continue
		}
		key := pcsKey(pcs)
		rv[key] = append(rv[key], pcs)
	}
	return rv
}

// pcsKey symbolizes an address sequence into the join key, dropping
// the trailing runtime.goexit and runtime.main frames, which the
// textual dump omits.  Runtime frames elsewhere in the sequence stay
// in the key.
func pcsKey(pcs []uintptr) string {
	var names []string
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		names = append(names, frame.Function)
		if !more {
			break
		}
	}
	for len(names) > 0 {
		last := names[len(names)-1]
		if last != "runtime.goexit" && last != "runtime.main" {
			break
		}
		names = names[:len(names)-1]
	}
	return strings.Join(names, "\n")
}

func stackKey(s *ThreadStack) string {
	names := make([]string, 0, s.Depth)
	for _, f := range s.Frames() {
		names = append(names, f.Function)
	}
	return strings.Join(names, "\n")
}

// attachAddrs copies per-frame addresses from a matching profile
// record into a parsed stack.  Stacks with no matching record, such
// as goroutines that moved between the two snapshots or stacks deeper
// than the profile's frame cap, are left with zero addresses.
func (idx addrIndex) attachAddrs(s *ThreadStack) bool {
	entries := idx[stackKey(s)]
	if len(entries) <= 0 {
		return false
	}
	pcs := entries[len(entries)-1]
	idx[stackKey(s)] = entries[:len(entries)-1]

	i := 0
	frames := runtime.CallersFrames(pcs)
	for i < s.Depth {
		frame, more := frames.Next()
		if frame.Function != s.frames[i].Function {
			break
		}
		s.frames[i].PC = frame.PC
		if !more {
			break
		}
		i++
	}
	return true
}
