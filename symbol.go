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
	"fmt"
	"runtime"
)

// SymbolizeFunc resolves an instruction address to a symbol name.
type SymbolizeFunc func(pc uintptr) (string, error)

// Symbolize is the symbol resolver used by the pretty printer.
// Applications may swap in their own resolver.
var Symbolize SymbolizeFunc = runtimeSymbolize

func runtimeSymbolize(pc uintptr) (string, error) {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "", fmt.Errorf("symbol: no function at pc: %#x", pc)
	}
	return fn.Name(), nil
}

// symbolForPC resolves pc, retrying with pc-1 on failure since a
// return address points one past its call instruction, and falls back
// to "(unknown)".
func symbolForPC(pc uintptr) string {
	if name, err := Symbolize(pc); err == nil {
		return name
	}
	if pc > 0 {
		if name, err := Symbolize(pc - 1); err == nil {
			return name
		}
	}
	return "(unknown)"
}
