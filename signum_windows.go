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

//go:build windows
// +build windows

package threadstacks

import (
	"fmt"
	"os"
	"syscall"
)

// Windows has no real-time signals; the numbers are reserved so the
// API shape holds, but delivery is not supported.
const (
	internalSignum = syscall.Signal(35)
	externalSignum = syscall.Signal(36)
)

func InternalSignum() os.Signal { return internalSignum }

func ExternalSignum() os.Signal { return externalSignum }

func stderrWrite(buf []byte) error {
	_, err := os.Stderr.Write(buf)
	return err
}

func RequestDump(sig os.Signal) error {
	return fmt.Errorf("signum: signal delivery not supported" +
		" on this platform")
}
