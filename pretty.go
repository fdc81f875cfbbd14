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
	"strconv"
)

// ToPrettyString formats grouped results as text, one block per
// Result, blocks separated by a blank line.  The output is
// deterministic given its input.
//
//	Threads: 1, 18, 19
//	Stack trace:
//	PC: @ 0x4f2a10  unknown  main.worker
//	    @ 0x4013aa  unknown  runtime.gopark
func ToPrettyString(results []Result) string {
	var buf bytes.Buffer

	for i, r := range results {
		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString("Threads: ")
		for j, id := range r.IDs {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(strconv.FormatInt(id, 10))
		}
		buf.WriteByte('\n')

		buf.WriteString("Stack trace:\n")
		for j, f := range r.Trace.Frames() {
			prefix := "    "
			if j == 0 {
				prefix = "PC: "
			}

			size := "unknown"
			if f.Size > 0 {
				size = strconv.FormatInt(f.Size, 10)
			}

			symbol := f.Function
			if symbol == "" {
				symbol = symbolForPC(f.PC)
			}

			fmt.Fprintf(&buf, "%s@ 0x%x  %s  %s\n",
				prefix, f.PC, size, symbol)
		}
	}

	return buf.String()
}
