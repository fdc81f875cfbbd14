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

package cmd

import (
	"flag"
	"os"
	"runtime"

	log "github.com/couchbase/clog"

	"github.com/couchbase/threadstacks"
)

// MainCommon is shared startup for cmd-line tools built on the
// library: it logs the version banner, registers the dump signals and
// logs the parsed flags.
func MainCommon(version string) {
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	log.Printf("main: %s started (%s/%s)",
		os.Args[0], version, threadstacks.VERSION)

	go DumpOnSignalForPlatform()

	LogFlags()
}

func LogFlags() {
	flag.VisitAll(func(f *flag.Flag) {
		log.Printf("  -%s=%q", f.Name, f.Value)
	})
	log.Printf("  GOMAXPROCS=%d", runtime.GOMAXPROCS(-1))
}
