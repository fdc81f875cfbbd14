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

package cmd

import (
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	log "github.com/couchbase/clog"

	"github.com/couchbase/threadstacks"
)

// DumpOnSignalForPlatform registers the reserved thread stack dump
// signals plus the classic SIGUSR2 pprof dump.
func DumpOnSignalForPlatform() {
	threadstacks.InstallInternalHandler()
	threadstacks.InstallExternalHandler()
	DumpOnSignal(syscall.SIGUSR2)
}

// DumpOnSignal dumps the pprof goroutine and heap profiles to stderr
// whenever one of the given signals arrives.
func DumpOnSignal(signals ...os.Signal) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, signals...)
	for range c {
		log.Printf("dump: goroutine...")
		pprof.Lookup("goroutine").WriteTo(os.Stderr, 1)
		log.Printf("dump: heap...")
		pprof.Lookup("heap").WriteTo(os.Stderr, 1)
	}
}
