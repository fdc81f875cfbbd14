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

//go:build !windows
// +build !windows

package threadstacks

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Two real-time signal numbers are reserved for dump triggers.  The
// Go runtime claims the three lowest (32, 33 and 34) for itself and
// cannot deliver them through os/signal, so the reservation starts at
// 35.
const (
	internalSignum = syscall.Signal(35)
	externalSignum = syscall.Signal(36)
)

// InternalSignum returns the reserved signal for in-process dump
// triggers.
func InternalSignum() os.Signal { return internalSignum }

// ExternalSignum returns the reserved signal that foreign processes
// use to demand a stack dump on this process's stderr.
func ExternalSignum() os.Signal { return externalSignum }

// stderrWrite writes a preformatted report straight to the stderr
// file descriptor, bypassing buffered and formatted I/O.
func stderrWrite(buf []byte) error {
	fd := int(os.Stderr.Fd())
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// RequestDump delivers one of the reserved signals to this process,
// nudging the request service the same way a foreign process would.
func RequestDump(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return fmt.Errorf("signum: not a deliverable signal: %v", sig)
	}
	return unix.Kill(os.Getpid(), s)
}
