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
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// The runtime renders every goroutine in the all-stacks dump as a
// section of the form...
//
//	goroutine 18 [chan receive]:
//	main.worker(0x2)
//		/tmp/x.go:12 +0x2c
//	created by main.main in goroutine 1
//		/tmp/x.go:20 +0x45
//
// ...with sections separated by a blank line.

var goroutineHeaderPrefix = []byte("goroutine ")

// splitSections splits an all-goroutine dump into per-goroutine
// sections, dropping anything that does not start with a goroutine
// header.  The second return value counts the dropped sections.
func splitSections(buf []byte) ([][]byte, int) {
	var sections [][]byte
	dropped := 0
	for _, section := range bytes.Split(buf, []byte("\n\n")) {
		section = bytes.TrimSpace(section)
		if len(section) <= 0 {
			continue
		}
		if !bytes.HasPrefix(section, goroutineHeaderPrefix) {
			dropped++
			continue
		}
		sections = append(sections, section)
	}
	return sections, dropped
}

// parseSection parses one goroutine section into a ThreadStack.
// Frames carry function/file/line only; addresses are attached later
// from the goroutine profile, when a matching record exists.
func parseSection(section []byte) (*ThreadStack, error) {
	lines := strings.Split(strings.TrimRight(string(section), "\n"), "\n")
	if len(lines) <= 0 {
		return nil, fmt.Errorf("parse: empty goroutine section")
	}

	id, state, err := parseGoStackHeader(lines[0])
	if err != nil {
		return nil, err
	}

	rv := &ThreadStack{ID: id, State: state}

	i := 1
	for i < len(lines) {
		line := lines[i]

		if strings.HasPrefix(line, "created by ") {
			name := strings.TrimPrefix(line, "created by ")
			if idx := strings.Index(name, " in goroutine "); idx >= 0 {
				name = name[:idx]
			}
			rv.CreatedBy = name
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
				i++
			}
			i++
			continue
		}

		frame := Frame{Function: funcNameFromLine(line)}
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
			frame.File, frame.Line = parseLocationLine(lines[i+1])
			i++
		}
		rv.AddFrame(frame)
		i++
	}

	if rv.Depth <= 0 {
		return nil, fmt.Errorf("parse: no frames in section"+
			" for goroutine %d", id)
	}

	return rv, nil
}

// parseGoStackHeader parses a line like "goroutine 123 [running]:"
// or "goroutine 123 [chan receive, 5 minutes]:".
func parseGoStackHeader(line string) (int64, string, error) {
	if !strings.HasPrefix(line, "goroutine ") {
		return 0, "", fmt.Errorf("parse: not a goroutine header: %q", line)
	}

	rest := strings.TrimPrefix(line, "goroutine ")
	idx := strings.IndexByte(rest, ' ')
	if idx < 0 {
		return 0, "", fmt.Errorf("parse: malformed goroutine header: %q", line)
	}

	id, err := strconv.ParseInt(rest[:idx], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse: bad goroutine id in header:"+
			" %q, err: %v", line, err)
	}

	rest = rest[idx+1:]
	if len(rest) < 2 || rest[0] != '[' {
		return 0, "", fmt.Errorf("parse: missing state in header: %q", line)
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, "", fmt.Errorf("parse: unterminated state in header:"+
			" %q", line)
	}

	// The state may carry a wait duration, ex: "[chan receive, 5
	// minutes]"; keep only the state itself.
	state := rest[1:end]
	if idx := strings.IndexByte(state, ','); idx >= 0 {
		state = state[:idx]
	}

	return id, state, nil
}

// funcNameFromLine strips the rendered argument list from a function
// line, ex: "main.worker(0x0?)" => "main.worker".
func funcNameFromLine(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasSuffix(line, ")") {
		if idx := strings.LastIndexByte(line, '('); idx > 0 {
			return line[:idx]
		}
	}
	return line
}

// parseLocationLine parses a line like "\t/path/file.go:23 +0x2c".
func parseLocationLine(line string) (string, int) {
	loc := strings.TrimSpace(line)
	if idx := strings.IndexByte(loc, ' '); idx >= 0 {
		loc = loc[:idx]
	}
	colon := strings.LastIndexByte(loc, ':')
	if colon <= 0 {
		return loc, 0
	}
	n, err := strconv.Atoi(loc[colon+1:])
	if err != nil {
		return loc, 0
	}
	return loc[:colon], n
}

// CurrentGoroutineID returns the id of the calling goroutine, parsed
// from the header of its own stack dump.
func CurrentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id, _, err := parseGoStackHeader(firstLine(string(buf[:n])))
	if err != nil {
		return 0
	}
	return id
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
