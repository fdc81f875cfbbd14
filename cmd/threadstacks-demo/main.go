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

// threadstacks-demo is a small program to exercise the thread stack
// dump machinery.  It parks a handful of worker goroutines in
// recognizable call chains, then either dumps once to stdout or
// serves the REST API so dumps can be requested over HTTP and via
// signals.
//
// Example usage:
//
//	threadstacks-demo -workers=8 -bindHttp=:9700
//	kill -36 $(pgrep threadstacks-demo)
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	log "github.com/couchbase/clog"

	"github.com/couchbase/threadstacks"
	"github.com/couchbase/threadstacks/cmd"
	"github.com/couchbase/threadstacks/rest"
)

var VERSION = "v0.1.0"

var (
	bindHttp = flag.String("bindHttp", ":9700",
		"HTTP listen address:port for the REST API.")
	workers = flag.Int("workers", 4,
		"number of parked worker goroutines.")
	dumpOnce = flag.Bool("dumpOnce", false,
		"collect one dump to stdout and exit.")
)

func main() {
	flag.Parse()

	cmd.MainCommon(VERSION)

	stopCh := make(chan struct{})
	for i := 0; i < *workers; i++ {
		if i%2 == 0 {
			go parkShallow(stopCh)
		} else {
			go parkDeep(stopCh, 10)
		}
	}

	// Give the workers a moment to reach their parking spots.
	time.Sleep(100 * time.Millisecond)

	if *dumpOnce {
		results, err := threadstacks.Collect()
		if err != nil {
			log.Fatalf("main: collect, err: %v", err)
			return
		}
		fmt.Print(threadstacks.ToPrettyString(results))
		return
	}

	router := rest.NewRESTRouter(VERSION, threadstacks.DumpReports)

	log.Printf("main: listening on: %s", *bindHttp)
	err := http.ListenAndServe(*bindHttp, router)
	if err != nil {
		log.Fatalf("main: listen, err: %v\n"+
			"  Please check that your -bindHttp parameter (%q)\n"+
			"  is correct and available.", err, *bindHttp)
	}
}

func parkShallow(stopCh chan struct{}) {
	<-stopCh
}

func parkDeep(stopCh chan struct{}, depth int) {
	if depth > 0 {
		parkDeep(stopCh, depth-1)
		return
	}
	<-stopCh
}
